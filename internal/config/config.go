// Package config defines the YAML-backed run configuration: body topology
// and composition plus frame-loop tuning, with named presets.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/orbsand/internal/coords"
	"github.com/san-kum/orbsand/internal/element"
	"github.com/san-kum/orbsand/internal/sched"
	"github.com/san-kum/orbsand/internal/world"
)

const (
	DefaultCellRadius      = 1.0
	DefaultNumLayers       = 12
	DefaultRadialLines     = 64
	DefaultCircles         = 2
	DefaultDoublingPeriod  = 2
	DefaultMaxChunkCells   = 4096
	DefaultActivityDensity = 0.125
	DefaultStepTime        = 0.1
)

type Config struct {
	Body  BodyConfig  `yaml:"body"`
	Frame FrameConfig `yaml:"frame"`
	Seed  uint64      `yaml:"seed"`
}

// BodyConfig generates the topology and the initial material layout.
type BodyConfig struct {
	CellRadius              float64           `yaml:"cell_radius"`
	NumLayers               int               `yaml:"num_layers"`
	FirstRadialLines        int               `yaml:"first_radial_lines"`
	SecondConcentricCircles int               `yaml:"second_concentric_circles"`
	DoublingPeriod          int               `yaml:"doubling_period"`
	MaxChunkCells           int               `yaml:"max_chunk_cells"`
	Composition             []CompositionBand `yaml:"composition"`
}

// CompositionBand fills all radii up to a fraction of the bounding radius
// with one element.
type CompositionBand struct {
	Element       string  `yaml:"element"`
	MaxRadiusFrac float64 `yaml:"max_radius_frac"`
}

// FrameConfig tunes the scheduler.
type FrameConfig struct {
	ActivityDensity float64 `yaml:"activity_density"`
	StepTime        float64 `yaml:"step_time"`
	Workers         int     `yaml:"workers"`
}

func DefaultConfig() *Config {
	return &Config{
		Body: BodyConfig{
			CellRadius:              DefaultCellRadius,
			NumLayers:               DefaultNumLayers,
			FirstRadialLines:        DefaultRadialLines,
			SecondConcentricCircles: DefaultCircles,
			DoublingPeriod:          DefaultDoublingPeriod,
			MaxChunkCells:           DefaultMaxChunkCells,
			Composition: []CompositionBand{
				{Element: "lava", MaxRadiusFrac: 0.6},
				{Element: "stone", MaxRadiusFrac: 0.8},
				{Element: "sand", MaxRadiusFrac: 0.9},
				{Element: "water", MaxRadiusFrac: 0.95},
			},
		},
		Frame: FrameConfig{
			ActivityDensity: DefaultActivityDensity,
			StepTime:        DefaultStepTime,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// CoordsParams maps the body section onto topology generation parameters.
func (c *Config) CoordsParams() coords.Params {
	return coords.Params{
		CellRadius:              c.Body.CellRadius,
		NumLayers:               c.Body.NumLayers,
		FirstRadialLines:        c.Body.FirstRadialLines,
		SecondConcentricCircles: c.Body.SecondConcentricCircles,
		DoublingPeriod:          c.Body.DoublingPeriod,
		MaxChunkCells:           c.Body.MaxChunkCells,
	}
}

// SchedOptions maps the frame section onto scheduler options.
func (c *Config) SchedOptions() sched.Options {
	return sched.Options{
		ActivityDensity: c.Frame.ActivityDensity,
		StepTime:        c.Frame.StepTime,
		Workers:         c.Frame.Workers,
		Seed:            c.Seed,
	}
}

// Bands resolves the composition's element names.
func (c *Config) Bands() ([]world.Band, error) {
	bands := make([]world.Band, 0, len(c.Body.Composition))
	for _, b := range c.Body.Composition {
		e, err := element.Parse(b.Element)
		if err != nil {
			return nil, fmt.Errorf("config: composition: %w", err)
		}
		bands = append(bands, world.Band{Element: e, MaxRadiusFrac: b.MaxRadiusFrac})
	}
	return bands, nil
}

// Validate checks every section against the packages that consume it.
func (c *Config) Validate() error {
	if err := c.CoordsParams().Validate(); err != nil {
		return err
	}
	if err := c.SchedOptions().Validate(); err != nil {
		return err
	}
	bands, err := c.Bands()
	if err != nil {
		return err
	}
	return world.ValidateBands(bands)
}
