package config

import (
	"sync"
)

// Store holds the live configuration shared by the UI thread and
// background goroutines. Readers get copies; writers persist to path.
type Store struct {
	mu   sync.RWMutex
	path string
	cfg  Config
}

func NewStore(path string, cfg *Config) *Store {
	if cfg == nil {
		cfg = Default()
	}
	return &Store{path: path, cfg: *cfg}
}

func (s *Store) Path() string {
	return s.path
}

// Snapshot returns a copy of the current configuration.
func (s *Store) Snapshot() *Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cfg := s.cfg
	return &cfg
}

// Update applies fn to a copy of the configuration, stores it and saves it.
// The new value is kept in memory even when saving fails.
func (s *Store) Update(fn func(*Config)) (*Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg := s.cfg
	fn(&cfg)
	s.cfg = cfg

	saved := cfg
	return &saved, cfg.Save(s.path)
}

// Replace swaps in cfg and saves it.
func (s *Store) Replace(cfg *Config) error {
	_, err := s.Update(func(c *Config) {
		*c = *cfg
	})
	return err
}
