package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 1, cfg.Import.PlayerID)
	assert.Equal(t, "cardcollection", cfg.Import.DatabaseName)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
server:
  port: "9090"
  rate_limit: 2.5
  rate_burst: 5
database:
  path: /var/lib/checklist.db
reference:
  dir: /srv/dumps
  files:
    brands: /srv/other/brands.sql
import:
  player_id: 7
  collection: Juwan Howard trading card collection
  upsert: true
logging:
  format: json
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 2.5, cfg.Server.RateLimit)
	assert.Equal(t, "/var/lib/checklist.db", cfg.Database.Path)
	assert.Equal(t, 7, cfg.Import.PlayerID)
	assert.True(t, cfg.Import.Upsert)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "info", cfg.Logging.Level, "unset keys keep their defaults")

	files := cfg.ReferenceFiles()
	assert.Equal(t, "/srv/other/brands.sql", files.Brands)
	assert.Equal(t, filepath.Join("/srv/dumps", "card_manufacturer.sql"), files.Manufacturers)
	assert.Equal(t, filepath.Join("/srv/dumps", "variant.sql"), files.Variants)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "7000")
	t.Setenv("DB_PATH", "")
	t.Setenv("PLAYER_ID", "3")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("API_RATE_LIMIT", "0")
	t.Setenv("RESOLVE_CACHE_SIZE", "16")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "7000", cfg.Server.Port)
	assert.Equal(t, "", cfg.Database.Path, "an empty DB_PATH disables persistence")
	assert.Equal(t, 3, cfg.Import.PlayerID)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSAllowedOrigins)
	assert.Zero(t, cfg.Server.RateLimit)
	assert.Equal(t, 16, cfg.Server.ResolveCacheSize)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestEnvOverrideErrors(t *testing.T) {
	for _, key := range []string{"PLAYER_ID", "API_RATE_LIMIT", "RESOLVE_CACHE_SIZE"} {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, "abc")
			_, err := Load("")
			assert.Error(t, err)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"player id", func(c *Config) { c.Import.PlayerID = 0 }},
		{"negative rate", func(c *Config) { c.Server.RateLimit = -1 }},
		{"zero burst", func(c *Config) { c.Server.RateBurst = 0 }},
		{"negative cache", func(c *Config) { c.Server.ResolveCacheSize = -1 }},
		{"log format", func(c *Config) { c.Logging.Format = "xml" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	assert.NoError(t, DefaultConfig().Validate())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
