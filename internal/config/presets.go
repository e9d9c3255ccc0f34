package config

import (
	"maps"
	"slices"

	"github.com/san-kum/gravsim/internal/integrators"
)

func preset(sceneName string, dt float64, params map[string]float64) *Config {
	return &Config{
		Scene:       sceneName,
		SceneParams: params,
		Integrator:  integrators.DefaultName,
		G:           DefaultG,
		Dt:          dt,
		Softening:   DefaultSoftening,
		Seed:        1,
		Ticks:       DefaultTicks,
		DataDir:     DefaultDataDir,
	}
}

var Presets = map[string]map[string]*Config{
	"orbits": {
		"disc":  preset("Orbits", DefaultDt, nil),
		"small": preset("Orbits", DefaultDt, map[string]float64{"bodies_count": 200}),
		"dense": preset("Orbits", DefaultDt/2, map[string]float64{
			"main_mass": 1e6, "bodies_count": 5000, "bodies_max_pos": 4000,
		}),
		"test-particles": preset("Orbits", DefaultDt, map[string]float64{
			"bodies_count": 3000, "bodies_with_mass": 0,
		}),
	},
	"figure8": {
		"classic": preset("Figure8", DefaultDt, nil),
		"wide":    preset("Figure8", DefaultDt, map[string]float64{"radius": 60}),
	},
	"ternary": {
		"triangle": preset("TernaryOrbit", DefaultDt, nil),
	},
	"double_oval": {
		"ovals": preset("DoubleOval", DefaultDt/2, nil),
	},
	"empty": {
		"sandbox": preset("Empty", DefaultDt, nil),
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(group, name string) *Config {
	groupPresets, ok := Presets[group]
	if !ok {
		return nil
	}
	cfg, ok := groupPresets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets(group string) []string {
	groupPresets, ok := Presets[group]
	if !ok {
		return nil
	}
	return slices.Sorted(maps.Keys(groupPresets))
}

func ListGroups() []string {
	return slices.Sorted(maps.Keys(Presets))
}
