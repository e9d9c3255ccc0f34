package config

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/scene"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Scene != "Empty" {
		t.Errorf("expected scene Empty, got %s", cfg.Scene)
	}
	if cfg.G != 1000 {
		t.Errorf("expected G 1000, got %g", cfg.G)
	}
	if cfg.Dt <= 0 {
		t.Error("dt should be positive")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero dt", func(c *Config) { c.Dt = 0 }},
		{"negative G", func(c *Config) { c.G = -1 }},
		{"negative softening", func(c *Config) { c.Softening = -0.1 }},
		{"negative workers", func(c *Config) { c.Workers = -2 }},
		{"unknown integrator", func(c *Config) { c.Integrator = "rk9" }},
		{"unknown scene", func(c *Config) { c.Scene = "Nebula" }},
		{"scene param out of range", func(c *Config) {
			c.Scene = "Orbits"
			c.SceneParams = map[string]float64{"main_mass": 1}
		}},
		{"unknown scene param", func(c *Config) {
			c.Scene = "Figure8"
			c.SceneParams = map[string]float64{"spin": 2}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if !errors.Is(err, dynamo.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gravsim.yaml")

	cfg := DefaultConfig()
	cfg.Scene = "Orbits"
	cfg.SceneParams = map[string]float64{"bodies_count": 250}
	cfg.Softening = 0.5
	cfg.Workers = 4

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Scene != "Orbits" || loaded.SceneParams["bodies_count"] != 250 {
		t.Errorf("scene not preserved: %+v", loaded)
	}
	if loaded.Softening != 0.5 || loaded.Workers != 4 {
		t.Errorf("numerics not preserved: %+v", loaded)
	}
}

func TestDescriptorAppliesParams(t *testing.T) {
	cfg := GetPreset("orbits", "small")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	d, err := cfg.Descriptor(scene.DefaultCatalog(cfg.G))
	if err != nil {
		t.Fatalf("descriptor: %v", err)
	}
	if n := d.(*scene.Orbits).BodiesCount; n != 200 {
		t.Errorf("expected 200 bodies, got %d", n)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("figure8", "wide")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.SceneParams["radius"] != 60 {
		t.Errorf("expected radius 60, got %g", cfg.SceneParams["radius"])
	}

	cfg.SceneParams["radius"] = 5
	if again := GetPreset("figure8", "wide"); again.SceneParams["radius"] != 60 {
		t.Error("preset was mutated through a returned copy")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("orbits", "nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
	if cfg := GetPreset("nonexistent", "disc"); cfg != nil {
		t.Error("expected nil for nonexistent group")
	}
}

func TestPresetsValidate(t *testing.T) {
	for _, group := range ListGroups() {
		for _, name := range ListPresets(group) {
			if err := GetPreset(group, name).Validate(); err != nil {
				t.Errorf("%s/%s: %v", group, name, err)
			}
		}
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets("orbits")
	if len(presets) != 4 {
		t.Errorf("expected 4 orbit presets, got %v", presets)
	}
	if presets[0] != "dense" {
		t.Errorf("expected sorted names, got %v", presets)
	}
	if ListPresets("nonexistent") != nil {
		t.Error("expected nil for nonexistent group")
	}
}
