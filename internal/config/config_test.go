package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
addr: ":9090"
log_level: "debug"
db: "postgres://localhost:5432/hooks"
ts_authkey: "tskey-test"
ts_hostname: "test-host"
metrics_interval: 30s
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "postgres://localhost:5432/hooks", cfg.DB)
	assert.Equal(t, "tskey-test", cfg.TSAuthKey)
	assert.Equal(t, "test-host", cfg.TSHostname)
	assert.Equal(t, 30*time.Second, cfg.MetricsInterval)
}

func TestLoadFromFile_Defaults(t *testing.T) {
	path := writeConfig(t, `
db: "redis://localhost:6379/0"
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, DefaultAddr, cfg.Addr)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, "redis://localhost:6379/0", cfg.DB)
	assert.Empty(t, cfg.TSAuthKey)
	assert.Equal(t, DefaultTSHostname, cfg.TSHostname)
	assert.Equal(t, DefaultMetricsInterval, cfg.MetricsInterval)
}

func TestLoadFromFile_FileNotFound(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	assert.Error(t, err)
}

func TestLoadFromFile_InvalidYAML(t *testing.T) {
	path := writeConfig(t, `
addr: ":8080"
invalid yaml content
`)

	_, err := LoadFromFile(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"bad log level", func(c *Config) { c.LogLevel = "verbose" }, true},
		{"missing db", func(c *Config) { c.DB = "" }, true},
		{"zero interval", func(c *Config) { c.MetricsInterval = 0 }, true},
		{"no addr without tailscale", func(c *Config) { c.Addr = "" }, true},
		{"no addr with tailscale", func(c *Config) { c.Addr = ""; c.TSAuthKey = "tskey" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	for name, want := range tests {
		got, err := ParseLogLevel(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	_, err := ParseLogLevel("INFO")
	assert.Error(t, err)
}
