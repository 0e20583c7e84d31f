package config

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator"

	"github.com/dmitrijs2005/apexclient/internal/client/repositories/kvstore"
)

// Config holds runtime settings for the profile CLI.
//
// Fields:
//   - APIBaseURL: root of the remote API, e.g. https://api.example.com.
//   - StorageBackend: where the session is persisted (sqlite, file, redis, memory).
//   - StoragePath: SQLite database file or JSON file, depending on the backend.
//   - Redis*: connection settings for the redis backend.
//   - LogLevel: debug, info, warn or error.
//   - MetricsAddr: if set, serve Prometheus metrics on this address.
type Config struct {
	APIBaseURL     string `json:"api_base_url" env:"API_BASE_URL" validate:"required,url"`
	StorageBackend string `json:"storage_backend" env:"STORAGE_BACKEND" validate:"required,oneof=sqlite file redis memory"`
	StoragePath    string `json:"storage_path" env:"STORAGE_PATH"`
	RedisAddr      string `json:"redis_addr" env:"REDIS_ADDR"`
	RedisPassword  string `json:"redis_password" env:"REDIS_PASSWORD"`
	RedisDB        int    `json:"redis_db" env:"REDIS_DB" validate:"gte=0"`
	LogLevel       string `json:"log_level" env:"LOG_LEVEL" validate:"required,oneof=debug info warn error"`
	MetricsAddr    string `json:"metrics_addr" env:"METRICS_ADDR"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "https://api.example.com"
	c.StorageBackend = kvstore.BackendSQLite
	c.StoragePath = "session.db"
	c.RedisAddr = "127.0.0.1:6379"
	c.RedisDB = 0
	c.LogLevel = "info"
	c.MetricsAddr = ""
}

// Load constructs a Config, applies defaults, then overlays values from the
// JSON file (if -c/-config is given), the environment and finally args.
// Later sources take precedence over earlier ones.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseFileAndEnv(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field formats and backend-specific requirements.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) && len(ve) > 0 {
			return fmt.Errorf("invalid config: field %s failed %q", ve[0].Field(), ve[0].Tag())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	switch c.StorageBackend {
	case kvstore.BackendSQLite, kvstore.BackendFile:
		if c.StoragePath == "" {
			return fmt.Errorf("invalid config: storage path is required for %s backend", c.StorageBackend)
		}
	case kvstore.BackendRedis:
		if c.RedisAddr == "" {
			return errors.New("invalid config: redis address is required for redis backend")
		}
	}
	return nil
}

// StorageOptions maps the storage settings onto kvstore.Options.
func (c *Config) StorageOptions() kvstore.Options {
	return kvstore.Options{
		Backend: c.StorageBackend,
		Path:    c.StoragePath,
		Redis: kvstore.RedisOptions{
			Addr:     c.RedisAddr,
			Password: c.RedisPassword,
			DB:       c.RedisDB,
		},
	}
}
