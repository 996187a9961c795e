package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
  host: 127.0.0.1
database:
  host: db.internal
  port: 5432
  user: tapp
  password: secret
  dbname: tapp_club
  sslmode: require
  min_conns: 2
  max_conns: 20
auth:
  jwt_secret: hush
agent:
  api_key: agent-key
  requests_per_minute: 10
log:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, int32(2), cfg.Database.MinConns)
	assert.Equal(t, int32(20), cfg.Database.MaxConns)
	assert.Equal(t, "hush", cfg.Auth.JWTSecret)
	assert.Equal(t, "agent-key", cfg.Agent.APIKey)
	assert.Equal(t, 10, cfg.Agent.RequestsPerMinute)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
database:
  host: localhost
  port: 5432
  user: tapp
  password: secret
  dbname: tapp_club
  sslmode: disable
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, int32(1), cfg.Database.MinConns)
	assert.Equal(t, int32(10), cfg.Database.MaxConns)
	assert.Equal(t, "gemini-2.5-flash", cfg.Agent.Model)
	assert.Equal(t, "https://generativelanguage.googleapis.com/v1beta", cfg.Agent.Endpoint)
	assert.Equal(t, 30, cfg.Agent.RequestsPerMinute)

	// Optional subsystems stay off until configured.
	assert.Empty(t, cfg.Auth.JWTSecret)
	assert.Empty(t, cfg.AWS.S3Bucket)
	assert.Empty(t, cfg.APNS.KeyFile)
	assert.Empty(t, cfg.Agent.APIKey)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := writeConfig(t, "server: [not a map")

	_, err := Load(path)
	assert.Error(t, err)
}

func TestDSN(t *testing.T) {
	db := DatabaseConfig{
		Host:     "db.internal",
		Port:     5432,
		User:     "tapp",
		Password: "secret",
		DBName:   "tapp_club",
		SSLMode:  "require",
	}

	assert.Equal(t,
		"host=db.internal port=5432 user=tapp password=secret dbname=tapp_club sslmode=require",
		db.DSN())
}
