// Package config provides configuration loading and management for mrimetrics.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"

	"mrimetrics/pkg/navigator"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Denoising filter parameters
	Filters struct {
		// GaussianSigma is the standard deviation of the Gaussian kernel in voxels
		GaussianSigma float64 `yaml:"gaussianSigma"`

		// GaussianRadiusFactor bounds the kernel radius to sigma*factor voxels
		GaussianRadiusFactor float64 `yaml:"gaussianRadiusFactor"`

		// MedianKernel is the in-plane median neighbourhood (3 or 5)
		MedianKernel int `yaml:"medianKernel"`

		// Workers is the number of slices filtered concurrently
		// (0 means one per CPU core)
		Workers int `yaml:"workers"`
	} `yaml:"filters"`

	// Statistics parameters
	Statistics struct {
		// FullExtent makes the SNR loops cover every voxel instead of
		// stopping one short on each axis
		FullExtent bool `yaml:"fullExtent"`
	} `yaml:"statistics"`

	// Display parameters
	Display struct {
		// Viewports is the number of images shown side by side (1, 2 or 4)
		Viewports int `yaml:"viewports"`

		// WindowWidth and WindowHeight are the viewer window size in pixels
		WindowWidth  int `yaml:"windowWidth"`
		WindowHeight int `yaml:"windowHeight"`

		// ColorLevel and ColorWindow seed the grayscale mapping
		ColorLevel  float64 `yaml:"colorLevel"`
		ColorWindow float64 `yaml:"colorWindow"`

		// AutoWindow derives level/window from the original volume's 1st to
		// 99th percentile
		AutoWindow bool `yaml:"autoWindow"`

		// Step is the level/window increment per key press
		Step float64 `yaml:"step"`

		// Keys maps navigator actions to key names. Listed actions override
		// the defaults; a default whose key is taken by a listed action is
		// left unbound.
		Keys map[string]string `yaml:"keys"`
	} `yaml:"display"`

	// Output parameters
	Output struct {
		// Verbose controls the level of logging output
		Verbose bool `yaml:"verbose"`

		// ExportDir receives per-slice JPEGs of every variant when set
		ExportDir string `yaml:"exportDir"`

		// ExportAxis is the slicing axis of exported JPEGs: x, y or z
		ExportAxis string `yaml:"exportAxis"`

		// ReportFile receives the statistics table as CSV when set
		ReportFile string `yaml:"reportFile"`

		// HistogramBins is the bin count of the exported intensity histogram
		HistogramBins int `yaml:"histogramBins"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Filters.GaussianSigma = 1.0
	cfg.Filters.GaussianRadiusFactor = 1.0
	cfg.Filters.MedianKernel = 3
	cfg.Filters.Workers = runtime.NumCPU()

	cfg.Statistics.FullExtent = false

	cfg.Display.Viewports = 4
	cfg.Display.WindowWidth = 800
	cfg.Display.WindowHeight = 800
	cfg.Display.ColorLevel = 1000
	cfg.Display.ColorWindow = 2000
	cfg.Display.AutoWindow = false
	cfg.Display.Step = 10
	cfg.Display.Keys = map[string]string{
		"sliceForward":        "Up",
		"sliceBackward":       "Down",
		"windowLevelForward":  "Right",
		"windowLevelBackward": "Left",
		"windowForward":       "Prior",
		"windowBackward":      "Next",
	}

	cfg.Output.Verbose = false
	cfg.Output.ExportDir = ""
	cfg.Output.ExportAxis = "z"
	cfg.Output.ReportFile = ""
	cfg.Output.HistogramBins = 128

	return cfg
}

// Validate checks values that the rest of the program relies on
func (c *Config) Validate() error {
	switch c.Display.Viewports {
	case 1, 2, 4:
	default:
		return fmt.Errorf("display.viewports must be 1, 2 or 4, got %d", c.Display.Viewports)
	}

	if c.Filters.MedianKernel != 3 && c.Filters.MedianKernel != 5 {
		return fmt.Errorf("filters.medianKernel must be 3 or 5, got %d", c.Filters.MedianKernel)
	}

	if c.Filters.GaussianSigma < 0 {
		return fmt.Errorf("filters.gaussianSigma must not be negative, got %g", c.Filters.GaussianSigma)
	}

	if c.Filters.Workers <= 0 {
		c.Filters.Workers = runtime.NumCPU()
	}

	switch c.Output.ExportAxis {
	case "x", "y", "z":
	default:
		return fmt.Errorf("output.exportAxis must be x, y or z, got %q", c.Output.ExportAxis)
	}

	if c.Output.HistogramBins < 1 {
		return fmt.Errorf("output.histogramBins must be positive, got %d", c.Output.HistogramBins)
	}

	if _, err := navigator.BindingsFromConfig(c.Display.Keys); err != nil {
		return fmt.Errorf("display.keys: %w", err)
	}

	if c.Display.Step <= 0 {
		return fmt.Errorf("display.step must be positive, got %g", c.Display.Step)
	}

	return nil
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath == "" {
		return cfg, nil
	}

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Parse YAML on top of the defaults so omitted keys keep their values.
	// The key map is decoded on its own, yaml would merge it into the defaults.
	defaultKeys := cfg.Display.Keys
	cfg.Display.Keys = nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	cfg.Display.Keys = mergeKeys(defaultKeys, cfg.Display.Keys)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
	}

	return cfg, nil
}

// mergeKeys overlays the user's key bindings on the defaults. An action the
// user did not list keeps its default key unless the user gave that key to
// another action, in which case it stays unbound.
func mergeKeys(defaults, user map[string]string) map[string]string {
	if user == nil {
		return defaults
	}

	claimed := make(map[string]bool, len(user))
	for _, key := range user {
		if key != "" {
			claimed[key] = true
		}
	}

	merged := make(map[string]string, len(defaults)+len(user))
	for action, key := range defaults {
		if claimed[key] {
			key = ""
		}
		merged[action] = key
	}
	for action, key := range user {
		merged[action] = key
	}

	return merged
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}
