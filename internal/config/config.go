package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config represents the global ~/.parley/config.toml.
type Config struct {
	DefaultProfile string `toml:"default_profile"`
	ReplyDelayMS   int    `toml:"reply_delay_ms"`
	Workers        int    `toml:"workers"`
	QueueDepth     int    `toml:"queue_depth"`
	BubblesEnabled bool   `toml:"bubbles_enabled"`
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	return &Config{
		ReplyDelayMS:   2000,
		Workers:        4,
		QueueDepth:     64,
		BubblesEnabled: true,
	}
}

// Load reads config from the given path. Returns an error if the file is
// missing; absent or zero fields fall back to defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	_, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

// Save writes config to the given path, creating parent dirs as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	encErr := toml.NewEncoder(f).Encode(cfg)
	if closeErr := f.Close(); closeErr != nil && encErr == nil {
		return closeErr
	}
	return encErr
}

// ReplyDelay returns the simulated typing delay.
func (c *Config) ReplyDelay() time.Duration {
	return time.Duration(c.ReplyDelayMS) * time.Millisecond
}

func (c *Config) applyDefaults() {
	d := Default()
	if c.ReplyDelayMS <= 0 {
		c.ReplyDelayMS = d.ReplyDelayMS
	}
	if c.Workers <= 0 {
		c.Workers = d.Workers
	}
	if c.QueueDepth <= 0 {
		c.QueueDepth = d.QueueDepth
	}
}
