package config

// Covered cases:
//  1. a minimal config file loads with the documented defaults filled in
//  2. environment variables override file values
//  3. missing required secrets fail loudly
//  4. TTL day counts translate into durations

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalYAML = `
mongo:
  uri: mongodb://localhost:27017
jwt:
  access_secret: access-secret
  refresh_secret: refresh-secret
  access_ttl_days: 30
security:
  api_key_secret: api-secret
  api_key_reference: deadbeef
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.App.Port)
	assert.Equal(t, "users", cfg.Mongo.Collection)
	assert.Equal(t, 10, cfg.Security.BcryptCost)
	assert.Equal(t, 5, cfg.Security.VerifySendPerHour)
	assert.Equal(t, 30*24*time.Hour, cfg.AccessTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.RefreshTTL)
	assert.Equal(t, 15*time.Second, cfg.ReadTimeout)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("APP_MONGO_URI", "mongodb://override:27017")
	t.Setenv("APP_JWT_ACCESS_TTL_DAYS", "1")

	cfg, err := Load(writeConfig(t, minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, "mongodb://override:27017", cfg.Mongo.URI)
	assert.Equal(t, 24*time.Hour, cfg.AccessTTL)
}

func TestLoadMissingSecrets(t *testing.T) {
	_, err := Load(writeConfig(t, "mongo:\n  uri: mongodb://localhost:27017\n"))
	require.Error(t, err)
}
