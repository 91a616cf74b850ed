package serverconfig

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(nil, env(nil))
	require.NoError(t, err)

	want := &Config{}
	want.LoadDefaults()
	assert.Equal(t, want, cfg)
}

func TestLoadPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"addr": ":9000",
		"store_driver": "sqlite",
		"database_dsn": "file:from-json.db",
		"reset_token_ttl": "30m",
		"shutdown_timeout": 5000000000,
		"single_use_reset": true,
		"log_level": "debug"
	}`), 0o600))

	cfg, err := Load(
		[]string{"-c", path, "-addr", ":7000"},
		env(map[string]string{
			"GOACCOUNT_ADDR":         ":8000",
			"GOACCOUNT_DATABASE_DSN": "file:from-env.db",
			"GOACCOUNT_TRUST_PROXY":  "true",
		}),
	)
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.Addr, "flag beats env and file")
	assert.Equal(t, "file:from-env.db", cfg.DatabaseDSN, "env beats file")
	assert.Equal(t, StoreSQLite, cfg.StoreDriver, "file beats defaults")
	assert.Equal(t, 30*time.Minute, cfg.ResetTokenTTL)
	assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout)
	assert.True(t, cfg.SingleUseReset)
	assert.True(t, cfg.TrustProxy)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "http://localhost:8080", cfg.BaseURL, "absent JSON fields keep defaults")
}

func TestConfigPathFromEnvAndEqualsForm(t *testing.T) {
	assert.Equal(t, "a.json", configPath([]string{"--config=a.json"}, env(nil)))
	assert.Equal(t, "b.json", configPath([]string{"-addr", ":1"}, env(map[string]string{"GOACCOUNT_CONFIG": "b.json"})))
	assert.Equal(t, "", configPath([]string{"-c"}, env(nil)))
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"reset_token_ttl": true}`), 0o600))

	cases := []struct {
		name string
		args []string
		env  map[string]string
	}{
		{name: "missing file", args: []string{"-c", filepath.Join(dir, "nope.json")}},
		{name: "bad json duration", args: []string{"-c", bad}},
		{name: "unknown flag", args: []string{"-nope"}},
		{name: "stray argument", args: []string{"extra"}},
		{name: "bad env bool", env: map[string]string{"GOACCOUNT_TRUST_PROXY": "maybe"}},
		{name: "unknown store", args: []string{"-store", "mongo"}},
		{name: "sqlite without dsn", args: []string{"-store", "sqlite"}},
		{name: "short hs256 secret", args: []string{"-signing-method", "hs256", "-secret-key", "short"}},
		{name: "private key without public", args: []string{"-private-key-file", "k.pem"}},
		{name: "tiny reset ttl", args: []string{"-reset-token-ttl", "1s"}},
		{name: "bad log level", args: []string{"-log-level", "loud"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(tc.args, env(tc.env))
			assert.Error(t, err)
		})
	}
}

func TestValidHS256(t *testing.T) {
	cfg, err := Load([]string{"-signing-method", "hs256", "-secret-key", "0123456789abcdef0123456789abcdef"}, env(nil))
	require.NoError(t, err)
	assert.NotContains(t, cfg.String(), "0123456789abcdef")
	assert.Contains(t, cfg.String(), "<redacted>")
}

func TestUsageListsFlagsAndEnv(t *testing.T) {
	var buf bytes.Buffer
	Usage(&buf)
	assert.Contains(t, buf.String(), "-store")
	assert.Contains(t, buf.String(), "GOACCOUNT_REDIS_ADDR -> -redis-addr")
}
