package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/orbsand/internal/element"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config must validate: %v", err)
	}
	if cfg.Body.NumLayers <= 0 {
		t.Error("layer count should be positive")
	}
	if len(cfg.Body.Composition) == 0 {
		t.Error("default composition should not be empty")
	}
}

func TestValidateRejectsBadSections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero layers", func(c *Config) { c.Body.NumLayers = 0 }},
		{"bad circle count", func(c *Config) { c.Body.SecondConcentricCircles = 3 }},
		{"zero density", func(c *Config) { c.Frame.ActivityDensity = 0 }},
		{"unknown element", func(c *Config) { c.Body.Composition[0].Element = "plutonium" }},
		{"band beyond rim", func(c *Config) { c.Body.Composition[0].MaxRadiusFrac = 2.0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestBandsResolveElements(t *testing.T) {
	cfg := DefaultConfig()
	bands, err := cfg.Bands()
	if err != nil {
		t.Fatal(err)
	}
	if bands[0].Element != element.Lava {
		t.Errorf("innermost band should be lava, got %v", bands[0].Element)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")

	cfg := DefaultConfig()
	cfg.Seed = 1234
	cfg.Frame.Workers = 8
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Seed != 1234 || loaded.Frame.Workers != 8 {
		t.Errorf("round trip lost fields: %+v", loaded)
	}
	if len(loaded.Body.Composition) != len(cfg.Body.Composition) {
		t.Errorf("composition length changed: %d", len(loaded.Body.Composition))
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	partial := []byte("seed: 7\nframe:\n  step_time: 2.5\n")
	if err := os.WriteFile(path, partial, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Seed != 7 || cfg.Frame.StepTime != 2.5 {
		t.Errorf("explicit fields not applied: %+v", cfg)
	}
	if cfg.Body.NumLayers != DefaultNumLayers {
		t.Errorf("missing fields should keep defaults, got %d layers", cfg.Body.NumLayers)
	}
	if cfg.Frame.ActivityDensity != DefaultActivityDensity {
		t.Errorf("activity density default lost: %f", cfg.Frame.ActivityDensity)
	}
}

func TestPresetsAllValidate(t *testing.T) {
	if len(ListPresets()) < 3 {
		t.Fatalf("expected at least 3 presets, got %v", ListPresets())
	}
	for _, name := range ListPresets() {
		cfg := GetPreset(name)
		if cfg == nil {
			t.Fatalf("listed preset %q not gettable", name)
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("preset %q invalid: %v", name, err)
		}
	}
	if GetPreset("nonexistent") != nil {
		t.Error("expected nil for unknown preset")
	}
}
