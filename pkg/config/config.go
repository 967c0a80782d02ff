// Package config loads Mirage settings from a YAML file.
package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file read when MIRAGE_CONFIG is unset.
const DefaultPath = "mirage.yaml"

// EnvPath names the environment variable overriding DefaultPath.
const EnvPath = "MIRAGE_CONFIG"

// Config holds every tunable of the application.
type Config struct {
	Log    LogConfig    `yaml:"log"`
	Script ScriptConfig `yaml:"script"`
	Kernel KernelConfig `yaml:"kernel"`
	Ground GroundConfig `yaml:"ground"`
	GPU    GPUConfig    `yaml:"gpu"`
	Window WindowConfig `yaml:"window"`
}

// LogConfig selects the log level ("debug", "info", "warn", "error").
type LogConfig struct {
	Level string `yaml:"level"`
}

// ScriptConfig bounds a single script evaluation.
type ScriptConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}

// KernelConfig selects the solid-modeling backend ("sdfx" or "manifold")
// and its tessellation resolution. MeshCells is the marching-cubes
// resolution of sdfx; Segments is the circle resolution of manifold.
type KernelConfig struct {
	Backend   string `yaml:"backend"`
	MeshCells int    `yaml:"mesh_cells"`
	Segments  int    `yaml:"segments"`
}

// GroundConfig describes the grid used as every scene's root node.
type GroundConfig struct {
	Extent    float32 `yaml:"extent"`
	Divisions int     `yaml:"divisions"`
}

// GPUConfig limits the headless device.
type GPUConfig struct {
	BudgetBytes int `yaml:"budget_bytes"`
}

// WindowConfig is passed to the application shell.
type WindowConfig struct {
	Title  string `yaml:"title"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

// Default returns the settings used when no file is present.
func Default() Config {
	return Config{
		Log:    LogConfig{Level: "info"},
		Script: ScriptConfig{Timeout: 5 * time.Second},
		Kernel: KernelConfig{Backend: "sdfx", MeshCells: 64, Segments: 48},
		Ground: GroundConfig{Extent: 2, Divisions: 16},
		GPU:    GPUConfig{BudgetBytes: 256 << 20},
		Window: WindowConfig{Title: "Mirage", Width: 1280, Height: 800},
	}
}

// Path returns the config path, honoring MIRAGE_CONFIG.
func Path() string {
	if p := os.Getenv(EnvPath); p != "" {
		return p
	}
	return DefaultPath
}

// Load reads the file at path over the defaults. A missing file is not an
// error; the defaults are returned as is.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, errors.Wrapf(err, "read config %s", path)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Default(), errors.Wrapf(err, "parse config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return Default(), errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// Validate rejects settings the rest of the program cannot run with.
func (c Config) Validate() error {
	if c.Script.Timeout <= 0 {
		return errors.Errorf("script.timeout must be positive, got %s", c.Script.Timeout)
	}
	switch c.Kernel.Backend {
	case "sdfx", "manifold":
	default:
		return errors.Errorf("kernel.backend must be sdfx or manifold, got %q", c.Kernel.Backend)
	}
	if c.Kernel.MeshCells < 8 {
		return errors.Errorf("kernel.mesh_cells must be at least 8, got %d", c.Kernel.MeshCells)
	}
	if c.Kernel.Segments < 8 {
		return errors.Errorf("kernel.segments must be at least 8, got %d", c.Kernel.Segments)
	}
	if c.Ground.Extent < 0 || c.Ground.Divisions < 0 {
		return errors.New("ground.extent and ground.divisions must not be negative")
	}
	if c.GPU.BudgetBytes < 0 {
		return errors.Errorf("gpu.budget_bytes must not be negative, got %d", c.GPU.BudgetBytes)
	}
	return nil
}
