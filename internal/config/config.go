package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultTheme      = "light"
	DefaultFPS        = 60
	DefaultCellWidth  = 8
	DefaultCellHeight = 16
	DefaultCellGain   = 2.5
	DefaultDataDir    = ".particlefield"
	DefaultLogLevel   = "info"
	DefaultScale      = 1.0
	MaxFPS            = 240
)

var ErrInvalid = errors.New("config: invalid value")

type Config struct {
	Theme   string       `yaml:"theme"`
	FPS     int          `yaml:"fps"`
	Seed    int64        `yaml:"seed"`
	Cell    CellConfig   `yaml:"cell"`
	DataDir string       `yaml:"data_dir"`
	Log     LogConfig    `yaml:"log"`
	Export  ExportConfig `yaml:"export"`
}

// CellConfig is the size in viewport pixels of one terminal cell. Gain
// scales ink alpha before a cell is shaded.
type CellConfig struct {
	Width  int     `yaml:"width"`
	Height int     `yaml:"height"`
	Gain   float64 `yaml:"gain"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

type ExportConfig struct {
	Scale      float64 `yaml:"scale"`
	Background bool    `yaml:"background"`
}

func DefaultConfig() *Config {
	return &Config{
		Theme: DefaultTheme,
		FPS:   DefaultFPS,
		Cell: CellConfig{
			Width:  DefaultCellWidth,
			Height: DefaultCellHeight,
			Gain:   DefaultCellGain,
		},
		DataDir: DefaultDataDir,
		Log: LogConfig{
			Level: DefaultLogLevel,
		},
		Export: ExportConfig{
			Scale:      DefaultScale,
			Background: true,
		},
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

func (c *Config) Validate() error {
	if c.FPS <= 0 || c.FPS > MaxFPS {
		return fmt.Errorf("%w: fps must be in 1..%d, got %d", ErrInvalid, MaxFPS, c.FPS)
	}
	if c.Cell.Width <= 0 || c.Cell.Height <= 0 {
		return fmt.Errorf("%w: cell size must be positive, got %dx%d", ErrInvalid, c.Cell.Width, c.Cell.Height)
	}
	if c.Cell.Gain < 0 {
		return fmt.Errorf("%w: cell gain must not be negative, got %g", ErrInvalid, c.Cell.Gain)
	}
	if c.Export.Scale <= 0 {
		return fmt.Errorf("%w: export scale must be positive, got %g", ErrInvalid, c.Export.Scale)
	}
	if c.Theme == "" {
		return fmt.Errorf("%w: theme is empty", ErrInvalid)
	}
	return nil
}

// Viewport converts a terminal size in cells to viewport pixels.
func (c *Config) Viewport(cols, rows int) (int, int) {
	return cols * c.Cell.Width, rows * c.Cell.Height
}
