package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoad_Defaults(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "dev", c.App.Env)
	assert.Equal(t, ":8080", c.Server.Addr)
	assert.Equal(t, "sqlite", c.Storage.Driver)
	assert.Equal(t, 300*time.Second, c.OAuth.CodeTTL)
	assert.Equal(t, 30, c.OAuth.CodeLength)
	assert.False(t, c.OAuth.VerifyExchangeRedirect)
	assert.Equal(t, time.Minute, c.Sweeper.Interval)
	assert.Zero(t, c.WebService.CatalogCacheTTL, "no catalog cache by default")
	assert.Equal(t, "memory", c.Rate.Backend)
}

func TestLoad_YAMLAndEnvOverride(t *testing.T) {
	p := writeYAML(t, `
server:
  addr: ":9000"
  base_url: "https://moodle.example/"
oauth:
  code_ttl: 2m
  verify_exchange_redirect: true
storage:
  driver: postgres
  dsn: postgres://localhost/grantbridge
`)
	t.Setenv("GRANTBRIDGE_SERVER_ADDR", ":9100")
	t.Setenv("GRANTBRIDGE_OAUTH_CODE_LENGTH", "40")

	c, err := Load(p)
	require.NoError(t, err)

	assert.Equal(t, ":9100", c.Server.Addr)
	assert.Equal(t, "https://moodle.example", c.Server.BaseURL)
	assert.Equal(t, 2*time.Minute, c.OAuth.CodeTTL)
	assert.Equal(t, 40, c.OAuth.CodeLength)
	assert.True(t, c.OAuth.VerifyExchangeRedirect)
	assert.Equal(t, "postgres", c.Storage.Driver)
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]string{
		"short code":     "oauth:\n  code_length: 12\n",
		"unknown driver": "storage:\n  driver: mongo\n",
		"pg without dsn": "storage:\n  driver: postgres\n",
		"prod no secret": "app:\n  env: prod\n",
		"redis no addr":  "rate:\n  enabled: true\n  backend: redis\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeYAML(t, body))
			require.Error(t, err)
		})
	}
}
