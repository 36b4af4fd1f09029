// Package config loads importer configuration from an optional YAML file, an
// optional .env file and environment variables, in that order of precedence
// (environment wins).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/codyseavey/card-checklist/internal/catalog"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the server and the CLI.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Reference ReferenceConfig `yaml:"reference"`
	Import    ImportConfig    `yaml:"import"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type ServerConfig struct {
	Port               string        `yaml:"port"`
	CORSAllowedOrigins []string      `yaml:"cors_allowed_origins"`
	RateLimit          float64       `yaml:"rate_limit"` // requests per second per client, 0 disables
	RateBurst          int           `yaml:"rate_burst"`
	ResolveCacheSize   int           `yaml:"resolve_cache_size"`
	ShutdownTimeout    time.Duration `yaml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	// Path of the sqlite file; empty disables persistence in the CLI.
	Path string `yaml:"path"`
}

// ReferenceConfig locates the reference table dumps. Files not set explicitly
// default to <table>.sql inside Dir.
type ReferenceConfig struct {
	Dir   string                 `yaml:"dir"`
	Files catalog.ReferenceFiles `yaml:"files"`
}

type ImportConfig struct {
	PlayerID     int    `yaml:"player_id"`
	DatabaseName string `yaml:"database_name"`
	Collection   string `yaml:"collection"`
	Upsert       bool   `yaml:"upsert"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json or console
}

// Load reads configuration from a YAML file and applies environment overrides.
// An empty path skips the file.
func Load(path string) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// loadDotEnv loads path into the environment without overriding variables that
// are already set. A missing file is not an error.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("load %s: %w", path, err)
}

// DefaultConfig returns a configuration with defaults for local use.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:               "8080",
			CORSAllowedOrigins: []string{"http://localhost:5173", "http://localhost:3000"},
			RateLimit:          10,
			RateBurst:          20,
			ResolveCacheSize:   1024,
			ShutdownTimeout:    30 * time.Second,
		},
		Database: DatabaseConfig{
			Path: "./card_checklist.db",
		},
		Reference: ReferenceConfig{
			Dir: "./reference",
		},
		Import: ImportConfig{
			PlayerID:     1,
			DatabaseName: "cardcollection",
			Collection:   "trading card collection",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}

	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		cfg.Server.CORSAllowedOrigins = splitList(v)
	}

	if v := os.Getenv("API_RATE_LIMIT"); v != "" {
		limit, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("API_RATE_LIMIT: %w", err)
		}
		cfg.Server.RateLimit = limit
	}

	if v := os.Getenv("RESOLVE_CACHE_SIZE"); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("RESOLVE_CACHE_SIZE: %w", err)
		}
		cfg.Server.ResolveCacheSize = size
	}

	if v, ok := os.LookupEnv("DB_PATH"); ok {
		cfg.Database.Path = v
	}

	if v := os.Getenv("REFERENCE_DIR"); v != "" {
		cfg.Reference.Dir = v
	}

	if v := os.Getenv("PLAYER_ID"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PLAYER_ID: %w", err)
		}
		cfg.Import.PlayerID = id
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}

	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate checks the configuration for values the importer cannot work with.
func (c *Config) Validate() error {
	if c.Import.PlayerID <= 0 {
		return errors.New("import.player_id must be positive")
	}
	if c.Server.RateLimit < 0 {
		return errors.New("server.rate_limit must not be negative")
	}
	if c.Server.RateLimit > 0 && c.Server.RateBurst < 1 {
		return errors.New("server.rate_burst must be at least 1 when rate limiting")
	}
	if c.Server.ResolveCacheSize < 0 {
		return errors.New("server.resolve_cache_size must not be negative")
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format %q must be json or console", c.Logging.Format)
	}
	return nil
}

// ReferenceFiles returns the dump path of every reference table.
func (c *Config) ReferenceFiles() catalog.ReferenceFiles {
	files := c.Reference.Files
	dir := c.Reference.Dir
	if files.Manufacturers == "" {
		files.Manufacturers = filepath.Join(dir, catalog.TableManufacturer+".sql")
	}
	if files.Brands == "" {
		files.Brands = filepath.Join(dir, catalog.TableBrand+".sql")
	}
	if files.Themes == "" {
		files.Themes = filepath.Join(dir, catalog.TableTheme+".sql")
	}
	if files.Variants == "" {
		files.Variants = filepath.Join(dir, catalog.TableVariant+".sql")
	}
	return files
}
