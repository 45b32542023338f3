// Package config provides configuration loading and management for ctheadviewer.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"

	"ctheadviewer/internal/logging"
	"ctheadviewer/internal/models"
	"ctheadviewer/pkg/transfer"
	"ctheadviewer/pkg/visualization"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Volume describes the input scan
	Volume struct {
		// Path is the raw volume file, optionally .gz, .zst or .sz compressed
		Path string `yaml:"path"`

		// Dims is the fixed geometry of the raw grid
		models.Dims `yaml:",inline"`

		// StrictRange rejects volumes whose samples all have one value
		// instead of drawing them mid-gray
		StrictRange bool `yaml:"strictRange"`
	} `yaml:"volume"`

	// Render parameters
	Render struct {
		// NumWorkers bounds the goroutines used per render
		NumWorkers int `yaml:"numWorkers"`

		// SkinOpacity is used when no opacity is given on the command line
		SkinOpacity float64 `yaml:"skinOpacity"`

		// PresetSlice is the slice shown on every axis when no index is given
		PresetSlice int `yaml:"presetSlice"`
	} `yaml:"render"`

	// Output parameters
	Output struct {
		Dir     string `yaml:"dir"`
		Format  string `yaml:"format"`
		Quality int    `yaml:"quality"`

		// Scale enlarges saved images by an integer factor
		Scale  int    `yaml:"scale"`
		Filter string `yaml:"filter"`

		// Verbose controls the level of logging output
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`

	Logging logging.Config `yaml:"logging"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Volume.Path = "CThead"
	cfg.Volume.Dims = models.DefaultDims

	cfg.Render.NumWorkers = runtime.NumCPU() // Use all available cores by default
	cfg.Render.SkinOpacity = transfer.DefaultSkinOpacity
	cfg.Render.PresetSlice = 76

	cfg.Output.Dir = "views"
	cfg.Output.Format = string(visualization.PNG)
	cfg.Output.Quality = 90
	cfg.Output.Scale = 1
	cfg.Output.Filter = string(visualization.Nearest)
	cfg.Output.Verbose = true

	cfg.Logging.MaxSize = 10
	cfg.Logging.MaxAge = 7

	return cfg
}

// Validate checks that every value is usable
func (c *Config) Validate() error {
	var errs []error
	if err := c.Volume.Dims.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Render.NumWorkers < 0 {
		errs = append(errs, fmt.Errorf("numWorkers must not be negative, got %d", c.Render.NumWorkers))
	}
	if !transfer.ValidOpacity(c.Render.SkinOpacity) {
		errs = append(errs, fmt.Errorf("skinOpacity must be within [0,1], got %v", c.Render.SkinOpacity))
	}
	if c.Render.PresetSlice < 0 {
		errs = append(errs, fmt.Errorf("presetSlice must not be negative, got %d", c.Render.PresetSlice))
	}
	if _, err := visualization.ParseFormat(c.Output.Format); err != nil {
		errs = append(errs, err)
	}
	switch visualization.Filter(c.Output.Filter) {
	case visualization.Nearest, visualization.Bilinear, visualization.CatmullRom:
	default:
		errs = append(errs, fmt.Errorf("unknown filter %q", c.Output.Filter))
	}
	if c.Output.Scale < 1 {
		errs = append(errs, fmt.Errorf("scale must be at least 1, got %d", c.Output.Scale))
	}
	return errors.Join(errs...)
}

// LoadConfig reads configPath over the defaults and validates the result. A
// missing file yields the defaults unchanged.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(configPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return cfg, nil
	case err != nil:
		return nil, fmt.Errorf("read %s: %w", configPath, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", configPath, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", configPath, err)
	}
	return cfg, nil
}

// SaveConfig writes cfg as YAML, creating parent directories as needed.
func SaveConfig(cfg *Config, configPath string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if dir := filepath.Dir(configPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", configPath, err)
	}
	return nil
}

// CreateDefaultConfigFile writes DefaultConfig to configPath.
func CreateDefaultConfigFile(configPath string) error {
	return SaveConfig(DefaultConfig(), configPath)
}
