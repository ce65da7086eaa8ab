// Package config holds hookboard's runtime configuration and its YAML file
// form.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults applied to anything a config file leaves empty.
const (
	DefaultAddr            = ":8080"
	DefaultLogLevel        = "info"
	DefaultDB              = "sqlite:hookboard.db"
	DefaultTSHostname      = "hookboard"
	DefaultMetricsInterval = time.Minute
)

// Config holds all application configuration
type Config struct {
	Addr            string        `yaml:"addr"`
	LogLevel        string        `yaml:"log_level"`
	DB              string        `yaml:"db"`
	TSAuthKey       string        `yaml:"ts_authkey"`
	TSHostname      string        `yaml:"ts_hostname"`
	MetricsInterval time.Duration `yaml:"metrics_interval"`
}

// Default returns a Config with every field at its default.
func Default() Config {
	return Config{
		Addr:            DefaultAddr,
		LogLevel:        DefaultLogLevel,
		DB:              DefaultDB,
		TSHostname:      DefaultTSHostname,
		MetricsInterval: DefaultMetricsInterval,
	}
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	def := Default()
	if c.Addr == "" {
		c.Addr = def.Addr
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	if c.DB == "" {
		c.DB = def.DB
	}
	if c.TSHostname == "" {
		c.TSHostname = def.TSHostname
	}
	if c.MetricsInterval == 0 {
		c.MetricsInterval = def.MetricsInterval
	}
}

// Validate checks the values a server cannot start without.
func (c *Config) Validate() error {
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	if c.DB == "" {
		return fmt.Errorf("database URI is required")
	}
	if c.MetricsInterval <= 0 {
		return fmt.Errorf("metrics interval must be positive, got %s", c.MetricsInterval)
	}
	if c.TSAuthKey == "" && c.Addr == "" {
		return fmt.Errorf("listen address is required")
	}
	return nil
}

// ParseLogLevel maps a level name to its slog level.
func ParseLogLevel(s string) (slog.Level, error) {
	switch s {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid log level: %s", s)
	}
}
