package appconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig_Layers(t *testing.T) {
	path := writeFile(t, `
port: 9090
storage:
  driver: postgres
  postgresDSN: postgres://file
auth:
  jwtSecret: from-file
invite:
  maxAttempts: 3
`)
	t.Setenv("HUSH_STORAGE_POSTGRES_DSN", "postgres://env")
	t.Setenv("HUSH_VALKEY_ADDR", "localhost:6379")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "/api/v1", cfg.BasePath)
	assert.Equal(t, "postgres", cfg.Storage.Driver)
	assert.Equal(t, "postgres://env", cfg.Storage.PostgresDSN)
	assert.Equal(t, "from-file", cfg.Auth.JWTSecret)
	assert.Equal(t, "localhost:6379", cfg.Valkey.Addr)
	assert.Equal(t, 3, cfg.Invite.MaxAttempts)
	assert.Equal(t, "0.0.0.0:9090", cfg.Addr())
}

func TestLoadConfig_EnvOnly(t *testing.T) {
	t.Setenv("HUSH_AUTH_JWT_SECRET", "env-secret")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, "env-secret", cfg.Auth.JWTSecret)
	assert.Equal(t, 5, cfg.Invite.MaxAttempts)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := Default()
		cfg.Auth.JWTSecret = "s"
		return cfg
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing secret", func(c *Config) { c.Auth.JWTSecret = "" }},
		{"unknown driver", func(c *Config) { c.Storage.Driver = "sqlite" }},
		{"postgres without dsn", func(c *Config) { c.Storage.Driver = "postgres" }},
		{"mongo without uri", func(c *Config) { c.Storage.Driver = "mongo" }},
		{"bad port", func(c *Config) { c.Port = 0 }},
		{"relative base path", func(c *Config) { c.BasePath = "api" }},
		{"no attempts", func(c *Config) { c.Invite.MaxAttempts = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
