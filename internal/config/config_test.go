package config

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/quasilyte/gdata/v2"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.FreeCamSpeed != 10 || cfg.SpeedMultiplier != 3 || cfg.TimelineLength != 60 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cinematic.yaml")
	body := "freecam_speed: 250\nspeed_multiplier: 0.5\ntimeline_length: 30\nreplay: log\n"
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CINEMATIC_BAKE_FPS", "24")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"speed clamped", cfg.FreeCamSpeed, MaxSpeed},
		{"multiplier clamped", cfg.SpeedMultiplier, MinSpeedMultiplier},
		{"timeline length", cfg.TimelineLength, 30},
		{"bake fps from env", float64(cfg.BakeFPS), 24},
		{"fixed step default", cfg.FixedStep, 0.02},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: got %v, want %v", tt.name, tt.got, tt.want)
		}
	}
	if cfg.Replay != "log" {
		t.Errorf("replay: %s", cfg.Replay)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"unknown replay", func(c *Config) { c.Replay = "tape" }, true},
		{"osc without port", func(c *Config) { c.Replay = "osc"; c.OSCPort = 0 }, true},
		{"osc ok", func(c *Config) { c.Replay = "osc" }, false},
		{"bad fixed step repaired", func(c *Config) { c.FixedStep = -1 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(c)
			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if c.FixedStep <= 0 {
				t.Errorf("fixed step not repaired: %v", c.FixedStep)
			}
		})
	}
}

func discard() *log.Logger { return log.New(io.Discard, "", 0) }

func TestSettingsManagerDegraded(t *testing.T) {
	sm := NewSettingsManager(nil, discard())
	if sm.Persistent() {
		t.Error("nil store reported persistent")
	}
	got, err := sm.SetSpeed(500)
	if err != nil {
		t.Fatalf("SetSpeed: %v", err)
	}
	if got != MaxSpeed || sm.Settings().Speed != MaxSpeed {
		t.Errorf("speed not clamped: %v", got)
	}
	if got, _ := sm.SetSpeedMultiplier(0); got != MinSpeedMultiplier {
		t.Errorf("multiplier not clamped: %v", got)
	}
}

func TestSettingsManagerRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", "")

	store, err := gdata.Open(gdata.Config{AppName: "cinematic_settings_test"})
	if err != nil {
		t.Skipf("gdata unavailable: %v", err)
	}

	sm := NewSettingsManager(store, discard())
	if _, err := sm.SetSpeed(42); err != nil {
		t.Fatalf("SetSpeed: %v", err)
	}
	if _, err := sm.SetSpeedMultiplier(7); err != nil {
		t.Fatalf("SetSpeedMultiplier: %v", err)
	}

	reopened := NewSettingsManager(store, discard())
	s := reopened.Settings()
	if s.Speed != 42 || s.SpeedMultiplier != 7 {
		t.Errorf("settings not persisted: %+v", s)
	}
}
