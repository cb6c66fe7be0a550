// Package config loads the server configuration from a YAML file with
// sane defaults for local development.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML values like "2h" parse.
type Duration time.Duration

func (d Duration) Std() time.Duration { return time.Duration(d) }

// UnmarshalYAML implements custom YAML unmarshaling for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	if s == "" {
		*d = 0
		return nil
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(dur)
	return nil
}

type Config struct {
	Listen      string   `yaml:"listen"`
	DatabaseDSN string   `yaml:"database_dsn"`
	RedisAddr   string   `yaml:"redis_addr"`
	RedisPrefix string   `yaml:"redis_prefix"`
	SessionTTL  Duration `yaml:"session_ttl"`
	LogLevel    string   `yaml:"log_level"`
}

// Default returns the configuration used when no file is given: an
// in-memory sqlite database and a local redis, suitable for development.
func Default() Config {
	return Config{
		Listen:      ":8080",
		DatabaseDSN: "file::memory:?cache=shared",
		RedisAddr:   "localhost:6379",
		RedisPrefix: "acct",
		SessionTTL:  Duration(24 * time.Hour),
		LogLevel:    "info",
	}
}

// Load reads the YAML file at path over the defaults. An empty path
// returns the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if c.Listen == "" {
		return fmt.Errorf("listen address must not be empty")
	}
	if c.DatabaseDSN == "" {
		return fmt.Errorf("database_dsn must not be empty")
	}
	if c.RedisAddr == "" {
		return fmt.Errorf("redis_addr must not be empty")
	}
	if c.SessionTTL < 0 {
		return fmt.Errorf("session_ttl must not be negative")
	}
	return nil
}
