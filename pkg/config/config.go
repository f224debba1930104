// Package config handles loading and validating bvhtool settings.
package config

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/df07/go-raytracer-bvh/pkg/accel"
	"github.com/df07/go-raytracer-bvh/pkg/scene"
)

// Config holds all settings.
type Config struct {
	Scene   SceneConfig   `yaml:"scene"`
	BVH     BVHConfig     `yaml:"bvh"`
	Accel   string        `yaml:"accel"`
	Tracer  TracerConfig  `yaml:"tracer"`
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
}

// SceneConfig selects and sizes the procedural scene.
type SceneConfig struct {
	Kind        string  `yaml:"kind"`
	Count       int     `yaml:"count"`
	Seed        int64   `yaml:"seed"`
	Radius      float64 `yaml:"radius"`
	Extent      float64 `yaml:"extent"`
	GroundPlane bool    `yaml:"ground_plane"`
}

// BVHConfig holds hierarchy construction settings.
type BVHConfig struct {
	LeafThreshold int    `yaml:"leaf_threshold"`
	MaxDepth      int    `yaml:"max_depth"`
	Split         string `yaml:"split"`
}

// TracerConfig holds batch query settings.
type TracerConfig struct {
	Workers     int   `yaml:"workers"` // 0 means one per CPU
	Rays        int   `yaml:"rays"`
	Seed        int64 `yaml:"seed"`
	AxisAligned bool  `yaml:"axis_aligned"`
}

// ServerConfig holds HTTP service settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Scene: SceneConfig{
			Kind:   scene.KindRandomSpheres,
			Count:  10000,
			Seed:   1,
			Radius: 0.5,
			Extent: 100,
		},
		BVH: BVHConfig{
			LeafThreshold: 2,
			MaxDepth:      64,
			Split:         "median",
		},
		Accel: scene.AccelBVH,
		Tracer: TracerConfig{
			Workers: 0,
			Rays:    100000,
			Seed:    7,
		},
		Server: ServerConfig{
			Port: 8080,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Load returns the defaults overlaid with the YAML file at path. An empty
// path returns the defaults. The result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, errors.Wrapf(err, "loading config from %s", path)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFromFile loads config from a YAML file, merging with existing values.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// SaveTo writes the config to a specific path.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, "creating config directory")
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "encoding config")
	}

	return errors.Wrapf(os.WriteFile(path, data, 0644), "writing %s", path)
}

// Validate checks that every setting is usable.
func (c *Config) Validate() error {
	if !scene.IsKnownKind(c.Scene.Kind) {
		return errors.Errorf("scene.kind: unknown scene %q (want one of %v)", c.Scene.Kind, scene.Kinds())
	}
	if c.Scene.Count < 0 {
		return errors.Errorf("scene.count: must not be negative, got %d", c.Scene.Count)
	}
	if c.Scene.Radius <= 0 {
		return errors.Errorf("scene.radius: must be positive, got %g", c.Scene.Radius)
	}
	if c.Scene.Extent <= 0 {
		return errors.Errorf("scene.extent: must be positive, got %g", c.Scene.Extent)
	}

	if c.BVH.LeafThreshold < 1 {
		return errors.Errorf("bvh.leaf_threshold: must be at least 1, got %d", c.BVH.LeafThreshold)
	}
	if c.BVH.MaxDepth < 1 {
		return errors.Errorf("bvh.max_depth: must be at least 1, got %d", c.BVH.MaxDepth)
	}
	if _, err := accel.ParseSplitMethod(c.BVH.Split); err != nil {
		return errors.Wrap(err, "bvh.split")
	}

	if c.Accel != scene.AccelBVH && c.Accel != scene.AccelNone {
		return errors.Errorf("accel: unknown accelerator %q (want %s or %s)", c.Accel, scene.AccelBVH, scene.AccelNone)
	}

	if c.Tracer.Workers < 0 {
		return errors.Errorf("tracer.workers: must not be negative, got %d", c.Tracer.Workers)
	}
	if c.Tracer.Rays < 0 {
		return errors.Errorf("tracer.rays: must not be negative, got %d", c.Tracer.Rays)
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return errors.Errorf("server.port: out of range, got %d", c.Server.Port)
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return errors.Errorf("logging.level: unknown level %q", c.Logging.Level)
	}

	return nil
}

// BuildOptions converts the bvh section into accel build options.
func (c *Config) BuildOptions() accel.BuildOptions {
	split, _ := accel.ParseSplitMethod(c.BVH.Split)
	return accel.BuildOptions{
		LeafThreshold: c.BVH.LeafThreshold,
		MaxDepth:      c.BVH.MaxDepth,
		Split:         split,
	}
}

// SceneSpec converts the scene section into a generator spec.
func (c *Config) SceneSpec() scene.Spec {
	return scene.Spec{
		Kind:        c.Scene.Kind,
		Count:       c.Scene.Count,
		Seed:        c.Scene.Seed,
		Radius:      c.Scene.Radius,
		Extent:      c.Scene.Extent,
		GroundPlane: c.Scene.GroundPlane,
	}
}

// SceneOptions converts the accel and bvh sections into scene options.
func (c *Config) SceneOptions() scene.Options {
	return scene.Options{
		Accel: c.Accel,
		Build: c.BuildOptions(),
	}
}
