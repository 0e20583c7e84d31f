package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/dmitrijs2005/apexclient/internal/flagx"
)

func parseFileAndEnv(cfg *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return fmt.Errorf("read env: %w", err)
		}
		return nil
	}

	if err := cleanenv.ReadConfig(path, cfg); err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	return nil
}
