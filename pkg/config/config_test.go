package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
mongodb:
  uri: mongodb://localhost:27017
  database: testdb
auth:
  jwt_secret: secret
  token_ttl: 24h
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "testdb", cfg.MongoDB.Database)
	assert.Equal(t, "secret", cfg.Auth.JWTSecret)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)

	// defaults fill the rest
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "localhands-api", cfg.Server.Name)
	assert.Equal(t, int64(30), cfg.Etcd.LeaseTTL)
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt_secret")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
