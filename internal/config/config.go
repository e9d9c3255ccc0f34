package config

import (
	"fmt"
	"maps"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/integrators"
	"github.com/san-kum/gravsim/internal/scene"
)

const (
	DefaultG         = 1000.0
	DefaultDt        = 1.0 / 60
	DefaultSoftening = 0.01
	DefaultTicks     = 600
	DefaultScene     = "Empty"
	DefaultDataDir   = "data"
)

type Config struct {
	Scene       string             `yaml:"scene"`
	SceneParams map[string]float64 `yaml:"scene_params,omitempty"`
	Integrator  string             `yaml:"integrator"`
	G           float64            `yaml:"g"`
	Dt          float64            `yaml:"dt"`
	Softening   float64            `yaml:"softening"`
	Workers     int                `yaml:"workers"`
	Seed        int64              `yaml:"seed"`
	Ticks       int                `yaml:"ticks"`
	MetricsAddr string             `yaml:"metrics_addr,omitempty"`
	DataDir     string             `yaml:"data_dir"`
}

func DefaultConfig() *Config {
	return &Config{
		Scene:      DefaultScene,
		Integrator: integrators.DefaultName,
		G:          DefaultG,
		Dt:         DefaultDt,
		Softening:  DefaultSoftening,
		Seed:       1,
		Ticks:      DefaultTicks,
		DataDir:    DefaultDataDir,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
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

// Clone returns a copy that shares no maps with c.
func (c *Config) Clone() *Config {
	out := *c
	out.SceneParams = maps.Clone(c.SceneParams)
	return &out
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", dynamo.ErrInvalidConfig, fmt.Sprintf(format, args...))
}

// Validate checks numeric ranges, the integrator name, and that the scene
// exists and accepts SceneParams.
func (c *Config) Validate() error {
	if !(c.G > 0) {
		return invalid("g must be positive, got %g", c.G)
	}
	if !(c.Dt > 0) {
		return invalid("dt must be positive, got %g", c.Dt)
	}
	if !(c.Softening >= 0) {
		return invalid("softening must be non-negative, got %g", c.Softening)
	}
	if c.Workers < 0 {
		return invalid("workers must be non-negative, got %d", c.Workers)
	}
	if c.Ticks < 0 {
		return invalid("ticks must be non-negative, got %d", c.Ticks)
	}
	if _, err := integrators.New(c.Integrator); err != nil {
		return invalid("%v", err)
	}
	if _, err := c.Descriptor(scene.DefaultCatalog(c.G)); err != nil {
		return fmt.Errorf("%w: %w", dynamo.ErrInvalidConfig, err)
	}
	return nil
}

// Descriptor looks the configured scene up in cat and applies SceneParams to it.
func (c *Config) Descriptor(cat *scene.Catalog) (scene.Descriptor, error) {
	d, err := cat.Lookup(c.Scene)
	if err != nil {
		return nil, err
	}
	if err := scene.Apply(d, c.SceneParams); err != nil {
		return nil, fmt.Errorf("scene %s: %w", d.Name(), err)
	}
	return d, nil
}
