package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/dmitrijs2005/apexclient/internal/flagx"
)

// parseFileAndEnv overlays cfg with the JSON file named by -c/-config, if
// any, and then with environment variables. Keys absent from the file and
// variables that are not set leave the current values in place.
func parseFileAndEnv(cfg *Config, args []string) error {

	path := flagx.ConfigFileFlag(args)
	if path == "" {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return fmt.Errorf("read env: %w", err)
		}
		return nil
	}

	// ReadConfig parses the file, then applies the environment.
	if err := cleanenv.ReadConfig(path, cfg); err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	return nil
}
