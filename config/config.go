// Package config loads fraycore settings from a YAML file. Command-line
// flags are applied on top by the caller.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application settings.
type Config struct {
	Seed      int64  `yaml:"seed"`      // 0 derives a seed from the clock
	Encounter string `yaml:"encounter"` // empty picks the first encounter by id
	SaveDir   string `yaml:"save_dir"`
	LogFile   string `yaml:"log_file"` // empty disables logging
	LogLevel  string `yaml:"log_level"`
	Plain     bool   `yaml:"plain"`
	Trace     bool   `yaml:"trace"`
}

// Default returns the settings used when no file is given.
func Default() Config {
	return Config{
		SaveDir:  ".",
		LogLevel: "info",
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
// Unknown keys are rejected so typos do not silently fall back.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.SaveDir == "" {
		cfg.SaveDir = "."
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.Seed < 0 {
		return cfg, fmt.Errorf("config %s: seed must not be negative", path)
	}
	return cfg, nil
}

// BattleSeed returns the configured seed, or one derived from now when
// the seed is 0.
func (c Config) BattleSeed(now func() time.Time) int64 {
	if c.Seed != 0 {
		return c.Seed
	}
	return now().UnixNano()
}
