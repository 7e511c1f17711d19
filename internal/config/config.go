package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v6"
	"gopkg.in/yaml.v3"
)

// Config is the application configuration: defaults, overridden by a YAML
// file when present, overridden by environment variables.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Search    SearchConfig    `yaml:"search"`
	Dataset   DatasetConfig   `yaml:"dataset"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Sync      SyncConfig      `yaml:"sync"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port        string   `yaml:"port" env:"PORT"`
	CORSOrigins []string `yaml:"cors_origins" env:"CORS_ORIGINS" envSeparator:","`
}

// DatabaseConfig selects and configures the property catalog store.
// Type is "mysql", "postgres", or empty for no database (the catalog is
// then served from the JSON seed file).
type DatabaseConfig struct {
	Type     string         `yaml:"type" env:"DB_TYPE"`
	MySQL    MySQLConfig    `yaml:"mysql"`
	Postgres PostgresConfig `yaml:"postgres"`
}

// MySQLConfig contains MySQL connection settings.
type MySQLConfig struct {
	Host     string `yaml:"host" env:"DB_HOST"`
	Port     int    `yaml:"port" env:"DB_PORT"`
	User     string `yaml:"user" env:"DB_USER"`
	Password string `yaml:"password" env:"DB_PASSWORD"`
	Database string `yaml:"database" env:"DB_NAME"`
}

// PostgresConfig contains PostgreSQL connection settings.
type PostgresConfig struct {
	Host     string `yaml:"host" env:"DB_HOST"`
	Port     int    `yaml:"port" env:"DB_PORT"`
	User     string `yaml:"user" env:"DB_USER"`
	Password string `yaml:"password" env:"DB_PASSWORD"`
	Database string `yaml:"database" env:"DB_NAME"`
	SSLMode  string `yaml:"sslmode" env:"DB_SSLMODE"`
}

// SearchConfig contains search index settings.
type SearchConfig struct {
	Meilisearch MeilisearchConfig `yaml:"meilisearch"`
}

// MeilisearchConfig contains remote index connection settings. Host and
// APIKey both empty means the remote index is unconfigured: the query
// resolver then runs in local-fallback mode, and the sync CLI refuses to
// run.
type MeilisearchConfig struct {
	Host           string `yaml:"host" env:"MEILISEARCH_HOST"`
	APIKey         string `yaml:"api_key" env:"MEILISEARCH_KEY"`
	Index          string `yaml:"index" env:"MEILISEARCH_INDEX"`
	TimeoutSeconds int    `yaml:"timeout_seconds" env:"MEILISEARCH_TIMEOUT_SECONDS"`
}

// Configured reports whether the remote index mode is active. This is a
// deliberate, observable mode switch, not a silent degradation.
func (c *MeilisearchConfig) Configured() bool {
	return c.Host != "" && c.APIKey != ""
}

// IndexName returns the index uid, optionally suffixed per environment.
func (c *MeilisearchConfig) IndexName(envSuffix string) string {
	name := c.Index
	if name == "" {
		name = "locations"
	}
	if envSuffix != "" {
		name += "_" + envSuffix
	}
	return name
}

// Timeout returns the remote call timeout as a duration.
func (c *MeilisearchConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// DatasetConfig locates the canonical locations dataset and the alias
// table.
type DatasetConfig struct {
	Path    string `yaml:"path" env:"LOCATIONS_PATH"`
	Aliases string `yaml:"aliases" env:"ALIASES_PATH"`
}

// CatalogConfig locates the JSON seed file used when no database is
// configured.
type CatalogConfig struct {
	Path string `yaml:"path" env:"CATALOG_PATH"`
}

// SyncConfig contains index synchronizer settings.
type SyncConfig struct {
	BatchSize    int    `yaml:"batch_size"`
	MaxRetries   int    `yaml:"max_retries"`
	DailyEnabled bool   `yaml:"daily_enabled" env:"SYNC_DAILY_ENABLED"`
	DailyTime    string `yaml:"daily_time" env:"SYNC_DAILY_TIME"`
}

// RateLimitConfig contains settings for the public search endpoints.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requests_per_minute"`
	RequestsPerHour   int  `yaml:"requests_per_hour"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level string `yaml:"level" env:"LOG_LEVEL"`
	JSON  bool   `yaml:"json" env:"LOG_JSON"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        "8080",
			CORSOrigins: []string{"http://localhost:3000"},
		},
		Search: SearchConfig{
			Meilisearch: MeilisearchConfig{
				Index:          "locations",
				TimeoutSeconds: 30,
			},
		},
		Dataset: DatasetConfig{
			Path: "data/locations.json",
		},
		Catalog: CatalogConfig{
			Path: "data/properties.json",
		},
		Sync: SyncConfig{
			BatchSize:  5000,
			MaxRetries: 5,
			DailyTime:  "03:00",
		},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			RequestsPerMinute: 120,
			RequestsPerHour:   3600,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from a YAML file and applies environment
// overrides. A missing file is not an error; defaults apply.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}
