// Package config loads and validates the static wayband configuration.
// Configuration is read once at startup; the validated struct is immutable
// and passed by value into each component's constructor.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/wayband/wayband/internal/sector"
)

// Duration wraps time.Duration so YAML configs can use forms like "5s".
type Duration time.Duration

// UnmarshalYAML parses a duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// CameraConfig selects the capture device and frame geometry.
type CameraConfig struct {
	Index  int `yaml:"index"`
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	FPS    int `yaml:"fps"`
}

// GeometryConfig holds the pinhole and ground-plane parameters.
type GeometryConfig struct {
	FocalLength    float64 `yaml:"focal_length"`
	CameraHeight   float64 `yaml:"camera_height"`
	GroundTolerance float64 `yaml:"ground_tolerance"`
}

// DepthConfig configures the depth estimator.
type DepthConfig struct {
	ModelPath string `yaml:"model_path"`
	InputSize int    `yaml:"input_size"`
}

// ClusteringConfig holds the DBSCAN parameters.
type ClusteringConfig struct {
	Eps        float64 `yaml:"eps"`
	MinSamples int     `yaml:"min_samples"`
}

// SectorConfig declares one angular band and its motor wiring.
type SectorConfig struct {
	Name   string  `yaml:"name"`
	MinDeg float64 `yaml:"min_deg"`
	MaxDeg float64 `yaml:"max_deg"`
	Motor  int     `yaml:"motor"`
}

// HapticsConfig configures the belt transport and actuation law.
type HapticsConfig struct {
	Port            string  `yaml:"port"`
	BaudRate        int     `yaml:"baud_rate"`
	WarningDistance float64 `yaml:"warning_distance"`
	ResetOnClear    bool    `yaml:"reset_on_clear"`
}

// ServerConfig controls the optional HTTP/websocket visualizer server.
type ServerConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// StoreConfig controls the optional telemetry store.
type StoreConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Config aggregates all configuration sections.
type Config struct {
	Camera           CameraConfig     `yaml:"camera"`
	Geometry         GeometryConfig   `yaml:"geometry"`
	Depth            DepthConfig      `yaml:"depth"`
	Clustering       ClusteringConfig `yaml:"clustering"`
	Sectors          []SectorConfig   `yaml:"sectors"`
	Haptics          HapticsConfig    `yaml:"haptics"`
	Server           ServerConfig     `yaml:"server"`
	Store            StoreConfig      `yaml:"store"`
	CollaboratorWait Duration         `yaml:"collaborator_wait"`
}

// Default returns the reference configuration: 640x480 webcam, focal length
// 525px, camera 1.2m above the floor with a 10cm ground band, warning
// distance 2.0, belt motors N/NE/NW on 0/1/2 at 9600 baud.
func Default() Config {
	return Config{
		Camera:   CameraConfig{Index: 0, Width: 640, Height: 480, FPS: 15},
		Geometry: GeometryConfig{FocalLength: 525.0, CameraHeight: 1.2, GroundTolerance: 0.1},
		Depth:    DepthConfig{InputSize: 256},
		Clustering: ClusteringConfig{
			Eps:        10,
			MinSamples: 20,
		},
		Sectors: []SectorConfig{
			{Name: "N", MinDeg: -15, MaxDeg: 15, Motor: 0},
			{Name: "NE", MinDeg: 15, MaxDeg: 45, Motor: 1},
			{Name: "NW", MinDeg: -45, MaxDeg: -15, Motor: 2},
		},
		Haptics:          HapticsConfig{BaudRate: 9600, WarningDistance: 2.0},
		Server:           ServerConfig{Addr: ":8080"},
		CollaboratorWait: Duration(5 * time.Second),
	}
}

// Load reads a YAML config from disk, layered over Default. Values the file
// omits keep their defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks every field the pipeline depends on. A failure here is
// fatal at startup: running with garbage geometry would silently produce
// garbage obstacle positions.
func (c Config) Validate() error {
	if c.Camera.Width <= 0 || c.Camera.Height <= 0 {
		return fmt.Errorf("config: frame dimensions %dx%d must be positive", c.Camera.Width, c.Camera.Height)
	}
	if c.Camera.FPS <= 0 {
		return fmt.Errorf("config: fps %d must be positive", c.Camera.FPS)
	}
	if c.Geometry.FocalLength <= 0 {
		return fmt.Errorf("config: focal length %g must be positive", c.Geometry.FocalLength)
	}
	if c.Geometry.CameraHeight <= 0 {
		return fmt.Errorf("config: camera height %g must be positive", c.Geometry.CameraHeight)
	}
	if c.Geometry.GroundTolerance <= 0 {
		return fmt.Errorf("config: ground tolerance %g must be positive", c.Geometry.GroundTolerance)
	}
	if c.Clustering.Eps <= 0 {
		return fmt.Errorf("config: clustering eps %g must be positive", c.Clustering.Eps)
	}
	if c.Clustering.MinSamples < 1 {
		return fmt.Errorf("config: clustering min_samples %d must be at least 1", c.Clustering.MinSamples)
	}
	if len(c.Sectors) == 0 {
		return fmt.Errorf("config: at least one sector is required")
	}
	motors := make(map[int]string, len(c.Sectors))
	names := make(map[string]bool, len(c.Sectors))
	for _, s := range c.Sectors {
		if s.Name == "" {
			return fmt.Errorf("config: sector with empty name")
		}
		if names[s.Name] {
			return fmt.Errorf("config: duplicate sector name %q", s.Name)
		}
		names[s.Name] = true
		if s.MinDeg >= s.MaxDeg {
			return fmt.Errorf("config: sector %q bounds [%g, %g] are inverted", s.Name, s.MinDeg, s.MaxDeg)
		}
		if other, taken := motors[s.Motor]; taken {
			return fmt.Errorf("config: sectors %q and %q share motor %d", other, s.Name, s.Motor)
		}
		motors[s.Motor] = s.Name
	}
	if c.Haptics.WarningDistance <= 0 {
		return fmt.Errorf("config: warning distance %g must be positive", c.Haptics.WarningDistance)
	}
	if c.Haptics.BaudRate <= 0 {
		return fmt.Errorf("config: baud rate %d must be positive", c.Haptics.BaudRate)
	}
	if c.CollaboratorWait <= 0 {
		return fmt.Errorf("config: collaborator wait %s must be positive", time.Duration(c.CollaboratorWait))
	}
	return nil
}

// Bands converts the sector configuration into mapper bands, preserving
// the configured evaluation order.
func (c Config) Bands() []sector.Band {
	bands := make([]sector.Band, len(c.Sectors))
	for i, s := range c.Sectors {
		bands[i] = sector.Band{Name: s.Name, MinDeg: s.MinDeg, MaxDeg: s.MaxDeg, Motor: s.Motor}
	}
	return bands
}
