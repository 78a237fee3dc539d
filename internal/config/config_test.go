package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault_IsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero focal length", func(c *Config) { c.Geometry.FocalLength = 0 }},
		{"negative focal length", func(c *Config) { c.Geometry.FocalLength = -525 }},
		{"zero frame width", func(c *Config) { c.Camera.Width = 0 }},
		{"zero fps", func(c *Config) { c.Camera.FPS = 0 }},
		{"zero ground tolerance", func(c *Config) { c.Geometry.GroundTolerance = 0 }},
		{"zero eps", func(c *Config) { c.Clustering.Eps = 0 }},
		{"zero min samples", func(c *Config) { c.Clustering.MinSamples = 0 }},
		{"no sectors", func(c *Config) { c.Sectors = nil }},
		{"duplicate sector name", func(c *Config) { c.Sectors[1].Name = "N" }},
		{"inverted sector bounds", func(c *Config) { c.Sectors[0].MinDeg = 20 }},
		{"shared motor", func(c *Config) { c.Sectors[1].Motor = 0 }},
		{"zero warning distance", func(c *Config) { c.Haptics.WarningDistance = 0 }},
		{"zero baud rate", func(c *Config) { c.Haptics.BaudRate = 0 }},
		{"zero collaborator wait", func(c *Config) { c.CollaboratorWait = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoad_LayersOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
camera:
  index: 2
  width: 640
  height: 480
  fps: 10
haptics:
  port: /dev/ttyUSB0
  baud_rate: 9600
  warning_distance: 1.5
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Camera.Index != 2 {
		t.Errorf("camera index = %d, want 2", cfg.Camera.Index)
	}
	if cfg.Haptics.WarningDistance != 1.5 {
		t.Errorf("warning distance = %g, want 1.5", cfg.Haptics.WarningDistance)
	}
	// Sections the file omits keep their defaults.
	if cfg.Geometry.FocalLength != 525.0 {
		t.Errorf("focal length = %g, want default 525", cfg.Geometry.FocalLength)
	}
	if len(cfg.Sectors) != 3 {
		t.Errorf("sectors = %d, want default 3", len(cfg.Sectors))
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("loaded config should validate, got %v", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestBands_PreservesOrderAndWiring(t *testing.T) {
	bands := Default().Bands()

	if len(bands) != 3 {
		t.Fatalf("expected 3 bands, got %d", len(bands))
	}
	if bands[0].Name != "N" || bands[0].Motor != 0 {
		t.Errorf("first band = %+v, want N on motor 0", bands[0])
	}
	if bands[1].Name != "NE" || bands[1].Motor != 1 {
		t.Errorf("second band = %+v, want NE on motor 1", bands[1])
	}
	if bands[2].Name != "NW" || bands[2].Motor != 2 {
		t.Errorf("third band = %+v, want NW on motor 2", bands[2])
	}
}
