package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const (
	MinSpeed           = 1.0
	MaxSpeed           = 100.0
	MinSpeedMultiplier = 1.0
	MaxSpeedMultiplier = 10.0
)

type Config struct {
	FreeCamSpeed    float64 `yaml:"freecam_speed" env:"CINEMATIC_FREECAM_SPEED"`
	SpeedMultiplier float64 `yaml:"speed_multiplier" env:"CINEMATIC_SPEED_MULTIPLIER"`
	ScrollScale     float64 `yaml:"scroll_scale" env:"CINEMATIC_SCROLL_SCALE"`
	TimelineLength  float64 `yaml:"timeline_length" env:"CINEMATIC_TIMELINE_LENGTH"`
	FixedStep       float64 `yaml:"fixed_step" env:"CINEMATIC_FIXED_STEP"`
	BakeFPS         int     `yaml:"bake_fps" env:"CINEMATIC_BAKE_FPS"`
	Workers         int     `yaml:"workers" env:"CINEMATIC_WORKERS"`
	Replay          string  `yaml:"replay" env:"CINEMATIC_REPLAY"`
	OSCHost         string  `yaml:"osc_host" env:"CINEMATIC_OSC_HOST"`
	OSCPort         int     `yaml:"osc_port" env:"CINEMATIC_OSC_PORT"`
	SessionDir      string  `yaml:"session_dir" env:"CINEMATIC_SESSION_DIR"`
	DatabasePath    string  `yaml:"database" env:"CINEMATIC_DATABASE"`
	ShowStats       bool    `yaml:"show_stats" env:"CINEMATIC_SHOW_STATS"`
	BuildVersion    string  `yaml:"-"`
}

func Default() *Config {
	return &Config{
		FreeCamSpeed:    10,
		SpeedMultiplier: 3,
		ScrollScale:     1,
		TimelineLength:  60,
		FixedStep:       0.02,
		BakeFPS:         60,
		Replay:          "nop",
		OSCHost:         "127.0.0.1",
		OSCPort:         9000,
		SessionDir:      "sessions",
		DatabasePath:    "cinematic.db",
	}
}

// Load reads a YAML config file over the defaults, then applies
// environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate clamps tunables into range. Only values that cannot be
// repaired are reported.
func (c *Config) Validate() error {
	c.FreeCamSpeed = ClampSpeed(c.FreeCamSpeed)
	c.SpeedMultiplier = ClampSpeedMultiplier(c.SpeedMultiplier)
	if c.ScrollScale <= 0 {
		c.ScrollScale = 1
	}
	if c.TimelineLength <= 0 {
		c.TimelineLength = 60
	}
	if c.FixedStep <= 0 {
		c.FixedStep = 0.02
	}
	if c.BakeFPS <= 0 {
		c.BakeFPS = 60
	}
	if c.Workers < 0 {
		c.Workers = 0
	}

	switch c.Replay {
	case "", "nop", "log":
	case "osc":
		if c.OSCHost == "" || c.OSCPort <= 0 || c.OSCPort > 65535 {
			return fmt.Errorf("invalid osc endpoint %q:%d", c.OSCHost, c.OSCPort)
		}
	default:
		return fmt.Errorf("unknown replay kind: %s", c.Replay)
	}
	return nil
}

func ClampSpeed(v float64) float64 {
	return clamp(v, MinSpeed, MaxSpeed)
}

func ClampSpeedMultiplier(v float64) float64 {
	return clamp(v, MinSpeedMultiplier, MaxSpeedMultiplier)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
