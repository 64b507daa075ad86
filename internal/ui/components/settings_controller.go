package components

import (
	"strconv"
	"strings"

	"gitlab.com/tozd/go/errors"

	"clipreplace/internal/clipboard"
	"clipreplace/internal/config"
)

// SettingsValues is the raw text of the settings form.
type SettingsValues struct {
	MonitorInterval       string
	MaxPairs              string
	ClipboardBackend      string
	RecordHistory         bool
	MaxHistoryItems       string
	MaxHistoryDays        string
	CheckUpdatesOnStartup bool
}

type SettingsController struct {
	config *config.Config
	onSave func(*config.Config)
}

func NewSettingsController(cfg *config.Config, onSave func(*config.Config)) *SettingsController {
	return &SettingsController{
		config: cfg,
		onSave: onSave,
	}
}

func (sc *SettingsController) Values() SettingsValues {
	return SettingsValues{
		MonitorInterval:       strconv.Itoa(sc.config.MonitorInterval),
		MaxPairs:              strconv.Itoa(sc.config.MaxPairs),
		ClipboardBackend:      sc.config.ClipboardBackend,
		RecordHistory:         sc.config.RecordHistory,
		MaxHistoryItems:       strconv.Itoa(sc.config.MaxHistoryItems),
		MaxHistoryDays:        strconv.Itoa(sc.config.MaxHistoryDays),
		CheckUpdatesOnStartup: sc.config.CheckUpdatesOnStartup,
	}
}

// Parse validates v and returns a copy of the current config with v applied.
func (sc *SettingsController) Parse(v SettingsValues) (*config.Config, error) {
	interval, err := positiveInt("monitor interval", v.MonitorInterval)
	if err != nil {
		return nil, err
	}
	maxPairs, err := positiveInt("number of pairs", v.MaxPairs)
	if err != nil {
		return nil, err
	}
	maxItems, err := positiveInt("maximum history entries", v.MaxHistoryItems)
	if err != nil {
		return nil, err
	}
	maxDays, err := positiveInt("history age", v.MaxHistoryDays)
	if err != nil {
		return nil, err
	}

	switch v.ClipboardBackend {
	case clipboard.BackendSystem, clipboard.BackendAtotto:
	default:
		return nil, errors.Errorf("unknown clipboard backend %q", v.ClipboardBackend)
	}

	newConfig := &config.Config{}
	*newConfig = *sc.config

	newConfig.MonitorInterval = interval
	newConfig.MaxPairs = maxPairs
	newConfig.ClipboardBackend = v.ClipboardBackend
	newConfig.RecordHistory = v.RecordHistory
	newConfig.MaxHistoryItems = maxItems
	newConfig.MaxHistoryDays = maxDays
	newConfig.CheckUpdatesOnStartup = v.CheckUpdatesOnStartup

	return newConfig, nil
}

func (sc *SettingsController) Save(v SettingsValues) error {
	newConfig, err := sc.Parse(v)
	if err != nil {
		return err
	}
	sc.config = newConfig
	sc.onSave(newConfig)
	return nil
}

// Reset restores defaults but keeps the remembered table path.
func (sc *SettingsController) Reset() {
	defaults := config.Default()
	defaults.LastTablePath = sc.config.LastTablePath
	sc.config = defaults
	sc.onSave(sc.config)
}

func positiveInt(field, text string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, errors.Errorf("%s must be a number", field)
	}
	if n <= 0 {
		return 0, errors.Errorf("%s must be greater than zero", field)
	}
	return n, nil
}
