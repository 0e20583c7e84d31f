// Package config handles configuration for the development API server:
// defaults, JSON file, environment and command-line flags, in that order.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator"

	"github.com/dmitrijs2005/apexclient/internal/common"
)

// Config holds runtime settings for the development API.
//
// Fields:
//   - Addr: HTTP bind address.
//   - SecretKey: HMAC secret for signing JWTs (HS256). When empty, Load generates
//     a random one, so tokens do not survive a restart.
//   - TokenTTLMinutes: access token lifetime.
//   - Admin*: when AdminEmail is set, an admin account is created at startup.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	Addr            string `json:"addr" env:"DEVAPI_ADDR" validate:"required"`
	SecretKey       string `json:"secret_key" env:"DEVAPI_SECRET_KEY"`
	TokenTTLMinutes int    `json:"token_ttl_minutes" env:"DEVAPI_TOKEN_TTL_MINUTES" validate:"gt=0"`
	AdminUsername   string `json:"admin_username" env:"DEVAPI_ADMIN_USERNAME"`
	AdminEmail      string `json:"admin_email" env:"DEVAPI_ADMIN_EMAIL" validate:"omitempty,email"`
	AdminPassword   string `json:"admin_password" env:"DEVAPI_ADMIN_PASSWORD"`
	LogLevel        string `json:"log_level" env:"LOG_LEVEL" validate:"required,oneof=debug info warn error"`
}

// LoadDefaults populates c with development defaults.
func (c *Config) LoadDefaults() {
	c.Addr = ":8080"
	c.TokenTTLMinutes = 60
	c.AdminUsername = "admin"
	c.LogLevel = "info"
}

// Load builds a Config from defaults, the optional JSON file (-c/-config),
// the environment and finally args.
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
	if cfg.SecretKey == "" {
		secret, err := common.MakeRandHexString(32)
		if err != nil {
			return nil, fmt.Errorf("generate secret key: %w", err)
		}
		cfg.SecretKey = secret
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) && len(ve) > 0 {
			return fmt.Errorf("invalid config: field %s failed %q", ve[0].Field(), ve[0].Tag())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.AdminEmail != "" && c.AdminPassword == "" {
		return errors.New("invalid config: admin password is required when admin email is set")
	}
	return nil
}

func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLMinutes) * time.Minute
}
