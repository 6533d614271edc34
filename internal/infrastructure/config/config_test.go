package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable Load consults so host settings don't leak in
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"SERVER_PORT", "PORT", "SERVER_HOST", "STORAGE_DRIVER", "DATA_FILE",
		"SQLITE_PATH", "DB_HOST", "DB_NAME", "LOG_LEVEL", "CORS_ALLOWED_ORIGIN",
		"RATE_LIMIT_REQUESTS", "RATE_LIMIT_WINDOW", "ENABLE_METRICS", "APP_ENVIRONMENT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 5001, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:5001", cfg.Server.GetAddr())
	assert.Equal(t, StorageJSON, cfg.Storage.Driver)
	assert.Equal(t, "shoppingList.json", cfg.Storage.Path)
	assert.Equal(t, "https://shopping-list-client-1wyzsyyxg-mchoi2000s-projects.vercel.app", cfg.Security.CORSAllowedOrigin)
	assert.Equal(t, time.Minute, cfg.Security.RateLimitWindow)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "development", cfg.App.Environment)
	assert.False(t, cfg.App.IsProduction())
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8080")
	t.Setenv("DATA_FILE", "/var/lib/shoplist/items.json")
	t.Setenv("CORS_ALLOWED_ORIGIN", "http://localhost:3000")
	t.Setenv("RATE_LIMIT_WINDOW", "30s")
	t.Setenv("ENABLE_METRICS", "false")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "/var/lib/shoplist/items.json", cfg.Storage.Path)
	assert.Equal(t, "http://localhost:3000", cfg.Security.CORSAllowedOrigin)
	assert.Equal(t, 30*time.Second, cfg.Security.RateLimitWindow)
	assert.False(t, cfg.Metrics.Enabled)
}

func TestLoadServerPortWinsOverPort(t *testing.T) {
	clearEnv(t)
	t.Setenv("SERVER_PORT", "7000")
	t.Setenv("PORT", "8080")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Server.Port)
}

func TestLoadConfigFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "shoplist.yaml")
	content := "storage:\n  driver: sqlite\nsqlite:\n  path: /tmp/items.db\n  busy_timeout: 2s\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, StorageSQLite, cfg.Storage.Driver)
	assert.Equal(t, "/tmp/items.db?_pragma=busy_timeout(2000)&_pragma=foreign_keys(1)", cfg.SQLite.GetDSN())
}

func TestLoadMissingConfigFile(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidateConfig(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:   ServerConfig{Port: 5001},
			Storage:  StorageConfig{Driver: StorageJSON, Path: "shoppingList.json"},
			Database: DatabaseConfig{Host: "localhost", Name: "shoplist"},
			SQLite:   SQLiteConfig{Path: "shoppingList.db"},
			Security: SecurityConfig{CORSAllowedOrigin: "http://localhost", RateLimitRequests: 10},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"memory driver", func(c *Config) { c.Storage.Driver = StorageMemory }, ""},
		{"port zero", func(c *Config) { c.Server.Port = 0 }, "server port"},
		{"port too large", func(c *Config) { c.Server.Port = 70000 }, "server port"},
		{"unknown driver", func(c *Config) { c.Storage.Driver = "mongo" }, "unknown storage driver"},
		{"json without path", func(c *Config) { c.Storage.Path = "" }, "storage path"},
		{"sqlite without path", func(c *Config) {
			c.Storage.Driver = StorageSQLite
			c.SQLite.Path = ""
		}, "sqlite path"},
		{"postgres without host", func(c *Config) {
			c.Storage.Driver = StoragePostgres
			c.Database.Host = ""
		}, "database host"},
		{"no cors origin", func(c *Config) { c.Security.CORSAllowedOrigin = "" }, "cors"},
		{"no rate limit", func(c *Config) { c.Security.RateLimitRequests = 0 }, "rate limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := validateConfig(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDatabaseDSN(t *testing.T) {
	cfg := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Name: "shoplist", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=shoplist sslmode=disable", cfg.GetDSN())
}
