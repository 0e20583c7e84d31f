package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/apexclient/internal/client/repositories/kvstore"
)

// clearEnv unsets every variable Config reads, restoring them after the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"API_BASE_URL", "STORAGE_BACKEND", "STORAGE_PATH", "REDIS_ADDR",
		"REDIS_PASSWORD", "REDIS_DB", "LOG_LEVEL", "METRICS_ADDR",
	} {
		if v, ok := os.LookupEnv(k); ok {
			require.NoError(t, os.Unsetenv(k))
			t.Cleanup(func() { _ = os.Setenv(k, v) })
		}
	}
}

func writeTempJSON(t *testing.T, data map[string]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.json")
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func defaults() *Config {
	c := &Config{}
	c.LoadDefaults()
	return c
}

func TestLoadDefaults(t *testing.T) {
	c := defaults()

	assert.Equal(t, "https://api.example.com", c.APIBaseURL)
	assert.Equal(t, kvstore.BackendSQLite, c.StorageBackend)
	assert.Equal(t, "session.db", c.StoragePath)
	assert.Equal(t, "info", c.LogLevel)
	assert.Empty(t, c.MetricsAddr)
	require.NoError(t, c.Validate())
}

func TestLoad_NoSources(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(defaults(), cfg))
}

func TestLoad_Flags(t *testing.T) {
	clearEnv(t)

	cfg, err := Load([]string{"-a", "http://localhost:8080", "-s", "file", "-p", "/tmp/s.json", "-l=debug", "-m", ":9100"})
	require.NoError(t, err)

	want := defaults()
	want.APIBaseURL = "http://localhost:8080"
	want.StorageBackend = "file"
	want.StoragePath = "/tmp/s.json"
	want.LogLevel = "debug"
	want.MetricsAddr = ":9100"
	assert.Empty(t, cmp.Diff(want, cfg))
}

func TestLoad_Precedence(t *testing.T) {
	clearEnv(t)

	path := writeTempJSON(t, map[string]any{
		"api_base_url":    "http://from-file:1",
		"storage_backend": "redis",
		"redis_addr":      "redis:6379",
		"redis_db":        2,
		"log_level":       "warn",
	})
	t.Setenv("API_BASE_URL", "http://from-env:2")
	t.Setenv("LOG_LEVEL", "error")

	cfg, err := Load([]string{"-c", path, "-l", "debug"})
	require.NoError(t, err)

	want := defaults()
	want.APIBaseURL = "http://from-env:2" // env over file
	want.StorageBackend = "redis"         // file over default
	want.RedisAddr = "redis:6379"
	want.RedisDB = 2
	want.LogLevel = "debug" // flag over env
	assert.Empty(t, cmp.Diff(want, cfg))
}

func TestLoad_EnvOnly(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORAGE_BACKEND", "memory")
	t.Setenv("METRICS_ADDR", "127.0.0.1:9100")

	cfg, err := Load([]string{"--config="})
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.StorageBackend)
	assert.Equal(t, "127.0.0.1:9100", cfg.MetricsAddr)
	assert.Equal(t, "https://api.example.com", cfg.APIBaseURL)
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)

	tests := []struct {
		name string
		args []string
	}{
		{"missing config file", []string{"-config", filepath.Join(t.TempDir(), "nope.json")}},
		{"bad url", []string{"-a", "not a url"}},
		{"unknown backend", []string{"-s", "etcd"}},
		{"bad log level", []string{"-l", "loud"}},
		{"empty sqlite path", []string{"-p", ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.args)
			require.Error(t, err)
		})
	}
}

func TestValidate_RedisNeedsAddr(t *testing.T) {
	c := defaults()
	c.StorageBackend = kvstore.BackendRedis
	c.RedisAddr = ""
	require.Error(t, c.Validate())

	c.RedisAddr = "localhost:6379"
	require.NoError(t, c.Validate())
}

func TestStorageOptions(t *testing.T) {
	c := defaults()
	c.StorageBackend = kvstore.BackendRedis
	c.RedisPassword = "pw"
	c.RedisDB = 3

	want := kvstore.Options{
		Backend: kvstore.BackendRedis,
		Path:    "session.db",
		Redis:   kvstore.RedisOptions{Addr: "127.0.0.1:6379", Password: "pw", DB: 3},
	}
	assert.Empty(t, cmp.Diff(want, c.StorageOptions()))
}
