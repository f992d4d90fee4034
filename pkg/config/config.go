package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/df07/go-soa-raytracer/pkg/geometry"
	"github.com/df07/go-soa-raytracer/pkg/logger"
)

// Config represents the main configuration
type Config struct {
	Render  RenderConfig  `yaml:"render"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
}

// RenderConfig controls scene selection and sampling
type RenderConfig struct {
	Scene                     string     `yaml:"scene"`      // Built-in name, yaml:<name> or a blueprint path
	ScenesDir                 string     `yaml:"scenes_dir"` // Directory searched for yaml:<name> scenes
	Width                     int        `yaml:"width"`
	Height                    int        `yaml:"height"`
	SamplesPerPixel           int        `yaml:"samples_per_pixel"`
	MaxDepth                  int        `yaml:"max_depth"`
	Workers                   int        `yaml:"workers"` // 0 means runtime.NumCPU()
	Seed                      int64      `yaml:"seed"`
	Kernel                    string     `yaml:"kernel"`               // auto, scalar, lanes4, lanes8
	Background                *[]float64 `yaml:"background,omitempty"` // Overrides the scene background
	RussianRouletteMinBounces int        `yaml:"russian_roulette_min_bounces"`
}

// OutputConfig controls where results go
type OutputConfig struct {
	Path       string `yaml:"path"`
	CPUProfile string `yaml:"cpu_profile"`
}

// LoggingConfig controls the logger
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Default creates a default configuration
func Default() *Config {
	return &Config{
		Render: RenderConfig{
			Scene:           "default",
			ScenesDir:       "scenes",
			Width:           400,
			Height:          225,
			SamplesPerPixel: 100,
			MaxDepth:        50,
			Seed:            1,
			Kernel:          "auto",
		},
		Output: OutputConfig{
			Path: "output/render.png",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads a configuration file over the defaults
func Load(filePath string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config %s: %w", filePath, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", filePath, err)
	}
	return cfg, nil
}

// Save writes the configuration to a file
func Save(cfg *Config, filePath string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error serializing config: %w", err)
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}
	return nil
}

// Validate reports the first invalid setting
func (c *Config) Validate() error {
	r := c.Render
	if r.Width <= 0 || r.Height <= 0 {
		return fmt.Errorf("image size must be positive, got %dx%d", r.Width, r.Height)
	}
	if r.SamplesPerPixel <= 0 {
		return fmt.Errorf("samples_per_pixel must be positive, got %d", r.SamplesPerPixel)
	}
	if r.MaxDepth < 0 {
		return fmt.Errorf("max_depth must not be negative, got %d", r.MaxDepth)
	}
	if r.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", r.Workers)
	}
	if r.RussianRouletteMinBounces < 0 {
		return fmt.Errorf("russian_roulette_min_bounces must not be negative, got %d", r.RussianRouletteMinBounces)
	}
	if r.Background != nil && len(*r.Background) != 3 {
		return fmt.Errorf("background needs 3 components, got %d", len(*r.Background))
	}
	if _, err := geometry.KernelByName(r.Kernel); err != nil {
		return err
	}
	if _, err := logger.ParseLevel(c.Logging.Level); err != nil {
		return err
	}
	return nil
}
