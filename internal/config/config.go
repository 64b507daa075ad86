package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"clipreplace/internal/clipboard"
	"clipreplace/internal/replace"
)

const (
	DefaultMonitorInterval = 500
	DefaultMaxHistoryItems = 500
	DefaultMaxHistoryDays  = 14
)

type Config struct {
	MonitorInterval  int    `json:"monitor_interval_ms"`
	MaxPairs         int    `json:"max_pairs"`
	ClipboardBackend string `json:"clipboard_backend"`

	// History settings
	RecordHistory   bool `json:"record_history"`
	MaxHistoryItems int  `json:"max_history_items"`
	MaxHistoryDays  int  `json:"max_history_days"`

	CheckUpdatesOnStartup bool `json:"check_updates_on_startup"`

	LogLevel      string `json:"log_level"`
	LastTablePath string `json:"last_table_path"`
}

func Default() *Config {
	return &Config{
		MonitorInterval:  DefaultMonitorInterval,
		MaxPairs:         replace.DefaultCapacity,
		ClipboardBackend: clipboard.BackendSystem,

		RecordHistory:   true,
		MaxHistoryItems: DefaultMaxHistoryItems,
		MaxHistoryDays:  DefaultMaxHistoryDays,

		CheckUpdatesOnStartup: true,

		LogLevel: zerolog.InfoLevel.String(),
	}
}

// Load reads the config at path, falling back to defaults when the file does not exist.
func Load(path string) (*Config, error) {
	config := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return nil, errors.Errorf("reading config file: %w", err)
	}

	if err := json.Unmarshal(data, config); err != nil {
		return nil, errors.Errorf("unmarshaling config: %w", err)
	}

	config.validate()

	return config, nil
}

func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Errorf("creating config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Errorf("writing config file: %w", err)
	}

	return nil
}

func (c *Config) Interval() time.Duration {
	return time.Duration(c.MonitorInterval) * time.Millisecond
}

// Level parses LogLevel, defaulting to info.
func (c *Config) Level() zerolog.Level {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

func (c *Config) validate() {
	if c.MonitorInterval <= 0 {
		c.MonitorInterval = DefaultMonitorInterval
	}
	if c.MaxPairs <= 0 {
		c.MaxPairs = replace.DefaultCapacity
	}
	if c.ClipboardBackend == "" {
		c.ClipboardBackend = clipboard.BackendSystem
	}
	if c.MaxHistoryItems <= 0 {
		c.MaxHistoryItems = DefaultMaxHistoryItems
	}
	if c.MaxHistoryDays <= 0 {
		c.MaxHistoryDays = DefaultMaxHistoryDays
	}
}

// Dir returns ~/.clipreplace, creating it if needed.
func Dir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Errorf("locating home directory: %w", err)
	}

	dir := filepath.Join(homeDir, ".clipreplace")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.Errorf("creating config directory: %w", err)
	}
	return dir, nil
}
