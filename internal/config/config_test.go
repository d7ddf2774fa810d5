package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	content := `
api:
  environment: "test"
  port: "8080"
  jwt_signing_key: "secret"
  dealer_email: "dealer@example.com"
gin:
  mode: "test"
postgres:
  host: "localhost"
  port: "5432"
redis:
  addr: "localhost:6379"
  db: 1
rewards:
  redemption_code_ttl_minutes: 45
`

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	conf, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "8080", conf.API.Port)
	require.Equal(t, "dealer@example.com", conf.API.DealerEmail)
	require.Equal(t, "test", conf.Gin.Mode)
	require.Equal(t, "localhost", conf.Postgres.Host)
	require.Equal(t, 1, conf.Redis.DB)
	require.Equal(t, 45, conf.Rewards.RedemptionCodeTTLMinutes)
}

func TestLoadEnvOverrides(t *testing.T) {
	content := `
api:
  port: "8080"
postgres:
  host: "localhost"
  password: "from-file"
`

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("API_PORT", "9090")
	t.Setenv("POSTGRES_PASSWORD", "from-env")

	conf, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "9090", conf.API.Port)
	require.Equal(t, "from-env", conf.Postgres.Password)
	require.Equal(t, "localhost", conf.Postgres.Host)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.Error(t, err)
}
