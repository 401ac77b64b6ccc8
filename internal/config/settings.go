package config

import (
	"fmt"
	"log"

	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"
)

// FreeCamSettings are the operator's free-camera preferences. They outlive
// a session and are shared by every project on the machine.
type FreeCamSettings struct {
	Speed           float64 `yaml:"speed"`
	SpeedMultiplier float64 `yaml:"speedMultiplier"`
}

func DefaultFreeCamSettings() *FreeCamSettings {
	return &FreeCamSettings{Speed: 10, SpeedMultiplier: 3}
}

const (
	settingsObject   = "freecam"
	settingsProperty = "settings"
)

// SettingsManager loads and saves FreeCamSettings. A nil gdata manager
// keeps the settings in memory only.
type SettingsManager struct {
	store    *gdata.Manager
	settings *FreeCamSettings
	logger   *log.Logger
}

// OpenSettings opens the per-user gdata store for appName. When the store
// cannot be opened the manager runs in memory.
func OpenSettings(appName string, logger *log.Logger) *SettingsManager {
	if logger == nil {
		logger = log.Default()
	}
	m, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		logger.Printf("[SettingsManager] Warning: persistent storage unavailable: %v", err)
		m = nil
	}
	return NewSettingsManager(m, logger)
}

func NewSettingsManager(store *gdata.Manager, logger *log.Logger) *SettingsManager {
	if logger == nil {
		logger = log.Default()
	}
	sm := &SettingsManager{
		store:    store,
		settings: DefaultFreeCamSettings(),
		logger:   logger,
	}
	if err := sm.Load(); err != nil {
		sm.logger.Printf("[SettingsManager] Warning: Failed to load settings: %v (using defaults)", err)
	}
	return sm
}

// Persistent reports whether saves reach disk.
func (sm *SettingsManager) Persistent() bool {
	return sm.store != nil
}

func (sm *SettingsManager) Load() error {
	if sm.store == nil || !sm.store.ObjectPropExists(settingsObject, settingsProperty) {
		sm.settings = DefaultFreeCamSettings()
		return nil
	}

	data, err := sm.store.LoadObjectProp(settingsObject, settingsProperty)
	if err != nil {
		sm.settings = DefaultFreeCamSettings()
		return fmt.Errorf("failed to load settings: %w", err)
	}

	var loaded FreeCamSettings
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		sm.settings = DefaultFreeCamSettings()
		return fmt.Errorf("failed to unmarshal settings: %w", err)
	}
	loaded.Speed = ClampSpeed(loaded.Speed)
	loaded.SpeedMultiplier = ClampSpeedMultiplier(loaded.SpeedMultiplier)
	sm.settings = &loaded
	return nil
}

func (sm *SettingsManager) Save() error {
	if sm.store == nil {
		return nil
	}

	data, err := yaml.Marshal(sm.settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	if err := sm.store.SaveObjectProp(settingsObject, settingsProperty, data); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

func (sm *SettingsManager) Settings() FreeCamSettings {
	return *sm.settings
}

// SetSpeed clamps to [MinSpeed, MaxSpeed] and saves.
func (sm *SettingsManager) SetSpeed(v float64) (float64, error) {
	sm.settings.Speed = ClampSpeed(v)
	return sm.settings.Speed, sm.Save()
}

// SetSpeedMultiplier clamps to [MinSpeedMultiplier, MaxSpeedMultiplier]
// and saves.
func (sm *SettingsManager) SetSpeedMultiplier(v float64) (float64, error) {
	sm.settings.SpeedMultiplier = ClampSpeedMultiplier(v)
	return sm.settings.SpeedMultiplier, sm.Save()
}
