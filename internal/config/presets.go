package config

import "sort"

var Presets = map[string]*Config{
	// A layered rocky body: molten interior, solid mantle, loose surface.
	"earthlike": DefaultConfig(),

	// Small enough to step interactively at full activity, with sand left
	// hanging over the core so something visibly happens from frame one.
	"testbed": {
		Body: BodyConfig{
			CellRadius:              1.0,
			NumLayers:               5,
			FirstRadialLines:        8,
			SecondConcentricCircles: 2,
			DoublingPeriod:          1,
			MaxChunkCells:           256,
			Composition: []CompositionBand{
				{Element: "stone", MaxRadiusFrac: 0.4},
				{Element: "sand", MaxRadiusFrac: 0.6},
			},
		},
		Frame: FrameConfig{
			ActivityDensity: 1.0,
			StepTime:        1.0,
		},
	},

	// All plasma. Interesting mostly for its thermal behavior: the rim
	// cools and condenses to lava while the interior stays hot.
	"star": {
		Body: BodyConfig{
			CellRadius:              1.0,
			NumLayers:               10,
			FirstRadialLines:        32,
			SecondConcentricCircles: 2,
			DoublingPeriod:          2,
			MaxChunkCells:           2048,
			Composition: []CompositionBand{
				{Element: "solar_plasma", MaxRadiusFrac: 1.0},
			},
		},
		Frame: FrameConfig{
			ActivityDensity: 0.25,
			StepTime:        0.5,
		},
	},
}

func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
