package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	dataDirName      = ".readtrack"
	settingsFileName = "config.yaml"

	defaultTickInterval   = time.Second
	defaultReadingMinutes = 5
	defaultLogLevel       = "info"
)

// Settings are the user-tunable knobs read from <vault>/.readtrack/config.yaml.
type Settings struct {
	TickInterval          time.Duration
	DefaultReadingMinutes int
	LogLevel              string
	Chime                 bool
	HooksEnabled          bool
}

type Config struct {
	VaultPath string
	DataDir   string
	DBPath    string
	LogPath   string
	Settings  Settings
}

type yamlSettings struct {
	TickIntervalMS        int    `yaml:"tick_interval_ms"`
	DefaultReadingMinutes int    `yaml:"default_reading_minutes"`
	LogLevel              string `yaml:"log_level"`
	Chime                 *bool  `yaml:"chime"`
	HooksEnabled          *bool  `yaml:"hooks_enabled"`
}

func DefaultSettings() Settings {
	return Settings{
		TickInterval:          defaultTickInterval,
		DefaultReadingMinutes: defaultReadingMinutes,
		LogLevel:              defaultLogLevel,
		Chime:                 false,
		HooksEnabled:          true,
	}
}

func New(vaultPath string) (Config, error) {
	if vaultPath == "" {
		return Config{}, fmt.Errorf("vault path is required")
	}
	dataDir := filepath.Join(vaultPath, dataDirName)
	settings, err := LoadSettings(filepath.Join(dataDir, settingsFileName))
	if err != nil {
		return Config{}, err
	}
	return Config{
		VaultPath: vaultPath,
		DataDir:   dataDir,
		DBPath:    filepath.Join(dataDir, "readtrack.db"),
		LogPath:   filepath.Join(dataDir, "readtrack.log"),
		Settings:  settings,
	}, nil
}

// LoadSettings reads settings from path. A missing file yields the defaults.
func LoadSettings(path string) (Settings, error) {
	settings := DefaultSettings()
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return settings, fmt.Errorf("read settings file: %w", err)
	}

	var fileData yamlSettings
	if err := yaml.Unmarshal(raw, &fileData); err != nil {
		return settings, fmt.Errorf("parse settings yaml: %w", err)
	}
	applyYamlSettings(&settings, fileData)
	return settings, nil
}

// SaveSettings writes settings to path, creating the data directory.
func SaveSettings(path string, settings Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	chime := settings.Chime
	hooks := settings.HooksEnabled
	serialized, err := yaml.Marshal(yamlSettings{
		TickIntervalMS:        int(settings.TickInterval / time.Millisecond),
		DefaultReadingMinutes: settings.DefaultReadingMinutes,
		LogLevel:              settings.LogLevel,
		Chime:                 &chime,
		HooksEnabled:          &hooks,
	})
	if err != nil {
		return fmt.Errorf("marshal settings yaml: %w", err)
	}
	if err := os.WriteFile(path, serialized, 0o644); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}
	return nil
}

// SettingsPath returns where the settings file for cfg lives.
func (c Config) SettingsPath() string {
	return filepath.Join(c.DataDir, settingsFileName)
}

func applyYamlSettings(settings *Settings, fileData yamlSettings) {
	// sub-100ms ticks only burn CPU; the display has one-second resolution
	if fileData.TickIntervalMS >= 100 && fileData.TickIntervalMS <= 60_000 {
		settings.TickInterval = time.Duration(fileData.TickIntervalMS) * time.Millisecond
	}
	if fileData.DefaultReadingMinutes > 0 && fileData.DefaultReadingMinutes <= 24*60 {
		settings.DefaultReadingMinutes = fileData.DefaultReadingMinutes
	}
	switch level := strings.ToLower(strings.TrimSpace(fileData.LogLevel)); level {
	case "trace", "debug", "info", "warn", "error", "off":
		settings.LogLevel = level
	}
	if fileData.Chime != nil {
		settings.Chime = *fileData.Chime
	}
	if fileData.HooksEnabled != nil {
		settings.HooksEnabled = *fileData.HooksEnabled
	}
}
