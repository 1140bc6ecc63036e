package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Filters.GaussianSigma != 1.0 {
		t.Errorf("Expected gaussianSigma=1.0, got %f", cfg.Filters.GaussianSigma)
	}
	if cfg.Display.Step != 10 {
		t.Errorf("Expected step=10, got %f", cfg.Display.Step)
	}
	if cfg.Display.WindowWidth != 800 || cfg.Display.WindowHeight != 800 {
		t.Errorf("Expected 800x800 window, got %dx%d", cfg.Display.WindowWidth, cfg.Display.WindowHeight)
	}
	if cfg.Display.Keys["sliceForward"] != "Up" {
		t.Errorf("Expected sliceForward bound to Up, got %q", cfg.Display.Keys["sliceForward"])
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected defaults to validate, got %v", err)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.Display.Viewports != 4 {
		t.Errorf("Expected default viewports=4, got %d", cfg.Display.Viewports)
	}
}

func TestSaveAndLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "mrimetrics.yaml")

	cfg := DefaultConfig()
	cfg.Statistics.FullExtent = true
	cfg.Display.Viewports = 2
	cfg.Filters.MedianKernel = 5

	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if !loaded.Statistics.FullExtent {
		t.Error("Expected fullExtent=true after reload")
	}
	if loaded.Display.Viewports != 2 {
		t.Errorf("Expected viewports=2, got %d", loaded.Display.Viewports)
	}
	if loaded.Filters.MedianKernel != 5 {
		t.Errorf("Expected medianKernel=5, got %d", loaded.Filters.MedianKernel)
	}
}

// TestPartialConfigKeepsDefaults verifies omitted keys keep their default values
func TestPartialConfigKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	if err := os.WriteFile(path, []byte("display:\n  viewports: 1\n"), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Display.Viewports != 1 {
		t.Errorf("Expected viewports=1, got %d", cfg.Display.Viewports)
	}
	if cfg.Display.ColorWindow != 2000 {
		t.Errorf("Expected default colorWindow=2000, got %f", cfg.Display.ColorWindow)
	}
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	tests := map[string]string{
		"viewports": "display:\n  viewports: 3\n",
		"median":    "filters:\n  medianKernel: 7\n",
		"step":      "display:\n  step: 0\n",
		"axis":      "output:\n  exportAxis: w\n",
		"syntax":    "display: [\n",
	}

	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.yaml")
			if err := os.WriteFile(path, []byte(body), 0644); err != nil {
				t.Fatalf("Failed to write config: %v", err)
			}
			if _, err := LoadConfig(path); err == nil {
				t.Error("Expected error, got nil")
			}
		})
	}
}

func TestCreateDefaultConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "default.yaml")
	if err := CreateDefaultConfigFile(path); err != nil {
		t.Fatalf("Failed to create default config: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("Expected config file to exist: %v", err)
	}
}

func TestValidateFillsWorkers(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Filters.Workers = 0

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.Filters.Workers < 1 {
		t.Errorf("Expected workers to default to the CPU count, got %d", cfg.Filters.Workers)
	}
}

// TestPartialKeyRebind verifies that rebinding one action onto a default key
// does not clash with the action that held it
func TestPartialKeyRebind(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys.yaml")
	if err := os.WriteFile(path, []byte("display:\n  keys:\n    windowForward: Up\n"), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	keys := cfg.Display.Keys
	if keys["windowForward"] != "Up" {
		t.Errorf("Expected windowForward bound to Up, got %q", keys["windowForward"])
	}
	if keys["sliceForward"] != "" {
		t.Errorf("Expected sliceForward unbound after losing Up, got %q", keys["sliceForward"])
	}
	if keys["sliceBackward"] != "Down" {
		t.Errorf("Expected sliceBackward to keep Down, got %q", keys["sliceBackward"])
	}

	// The default table must be untouched by the load
	if DefaultConfig().Display.Keys["sliceForward"] != "Up" {
		t.Error("Expected the default table to keep sliceForward on Up")
	}
}

func TestKeySwap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "swap.yaml")
	content := "display:\n  keys:\n    sliceForward: Down\n    sliceBackward: Up\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Display.Keys["sliceForward"] != "Down" || cfg.Display.Keys["sliceBackward"] != "Up" {
		t.Errorf("Expected swapped slice keys, got %v", cfg.Display.Keys)
	}
}

func TestLoadConfigRejectsDuplicateKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dup.yaml")
	content := "display:\n  keys:\n    windowForward: F1\n    windowBackward: F1\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	if _, err := LoadConfig(path); err == nil {
		t.Error("Expected error for a key bound twice, got nil")
	}

	cfg := DefaultConfig()
	cfg.Display.Keys["zoomIn"] = "Z"
	if err := cfg.Validate(); err == nil {
		t.Error("Expected error for an unknown action, got nil")
	}
}
