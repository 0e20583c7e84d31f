package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/apexclient/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-a string   API base URL
//	-s string   storage backend (sqlite, file, redis, memory)
//	-p string   storage path
//	-l string   log level
//	-m string   metrics listen address
//
// args is filtered with flagx.FilterArgs so flags owned by other stages
// (-c/-config) do not break parsing.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-s", "-p", "-l", "-m"})

	fs := flag.NewFlagSet("apexclient", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "API base URL")
	fs.StringVar(&cfg.StorageBackend, "s", cfg.StorageBackend, "session storage backend")
	fs.StringVar(&cfg.StoragePath, "p", cfg.StoragePath, "session storage path")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.MetricsAddr, "m", cfg.MetricsAddr, "metrics listen address")

	return fs.Parse(args)
}
