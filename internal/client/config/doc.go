// Package config loads runtime configuration for the profile CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file selected with -c or -config (JSON; cleanenv also
//     accepts YAML, TOML and .env by extension).
//  3. Environment variables.
//  4. Command-line flags, which override everything above.
//
// Supported flags
//
//	-a string   API base URL
//	-s string   storage backend: sqlite, file, redis, memory
//	-p string   storage path (SQLite file or JSON file)
//	-l string   log level: debug, info, warn, error
//	-m string   metrics listen address (empty disables)
//
// Environment
//
//	API_BASE_URL, STORAGE_BACKEND, STORAGE_PATH, REDIS_ADDR, REDIS_PASSWORD,
//	REDIS_DB, LOG_LEVEL, METRICS_ADDR
//
// # JSON schema
//
//	{
//	  "api_base_url": "https://api.example.com",
//	  "storage_backend": "sqlite",
//	  "storage_path": "session.db",
//	  "redis_addr": "127.0.0.1:6379",
//	  "redis_password": "",
//	  "redis_db": 0,
//	  "log_level": "info",
//	  "metrics_addr": ""
//	}
package config
