package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_WithDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "memory", cfg.Store.Type)
	assert.Equal(t, "disable", cfg.Store.Postgres.SSLMode)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, 600*time.Second, cfg.Cache.TTL)
	assert.Equal(t, "https://graph.facebook.com", cfg.Facebook.BaseURL)
	assert.Equal(t, "v18.0", cfg.Facebook.APIVersion)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 9090
store:
  type: postgres
  postgres:
    host: db.internal
    port: 5433
    database: relay
    user: relay
    password: hunter2
cache:
  enabled: true
  addr: redis.internal:6379
  ttl: 300s
webhook:
  secret: topsecret
admin:
  username: ops
  password: opspass
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Store.Type)
	assert.Equal(t, "db.internal", cfg.Store.Postgres.Host)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, 300*time.Second, cfg.Cache.TTL)
	assert.Equal(t, "topsecret", cfg.Webhook.Secret)
	assert.Equal(t, "ops", cfg.Admin.Username)
}

func TestLoad_MissingExplicitFileIsError(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	assert.Error(t, err)
}

func TestPostgresConfig_ConnString(t *testing.T) {
	cfg := PostgresConfig{
		Host:     "localhost",
		Port:     5432,
		Database: "pixelbridge",
		User:     "relay",
		Password: "pw",
		SSLMode:  "disable",
	}

	assert.Equal(t,
		"postgres://relay:pw@localhost:5432/pixelbridge?sslmode=disable",
		cfg.ConnString(),
	)
}
