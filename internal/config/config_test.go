package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Empty(t, cfg.Vey.APIKey)
	assert.Equal(t, "https://api.vey.example", cfg.Vey.APIEndpoint)
	assert.Equal(t, 30, cfg.Vey.TimeoutSecs)
	assert.Equal(t, 30*time.Second, cfg.Vey.Timeout())
	assert.InDelta(t, 0, cfg.Vey.RateLimit, 0.001)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "chi", cfg.Server.Framework)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
vey:
  api_key: file-key
  api_endpoint: https://vey.internal
  rate_limit: 10
log:
  level: debug
  format: console
server:
  port: 9090
  framework: echo
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "file-key", cfg.Vey.APIKey)
	assert.Equal(t, "https://vey.internal", cfg.Vey.APIEndpoint)
	assert.InDelta(t, 10, cfg.Vey.RateLimit, 0.001)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "echo", cfg.Server.Framework)
	// Defaults still apply for unset values
	assert.Equal(t, 30, cfg.Vey.TimeoutSecs)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
vey:
  api_key: file-key
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("VEY_VEY_API_KEY", "env-key")
	t.Setenv("VEY_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "env-key", cfg.Vey.APIKey)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	chdirTemp(t)

	t.Setenv("VEY_SERVER_PORT", "3000")
	t.Setenv("VEY_VEY_TIMEOUT_SECS", "5")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Vey.Timeout())
}

func TestLoadMalformedFile(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("vey: [unclosed"), 0644))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config: read file")
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

// validDefaults returns a Config with all defaults populated for validation tests.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.Vey.APIKey = "test-key"
	cfg.Vey.APIEndpoint = "https://api.vey.example"
	cfg.Vey.TimeoutSecs = 30
	cfg.Server.Port = 8080
	cfg.Server.Framework = "chi"
	return cfg
}

func TestValidateClient_AllPresent(t *testing.T) {
	assert.NoError(t, validDefaults().Validate("client"))
}

func TestValidateClient_MissingKey(t *testing.T) {
	cfg := validDefaults()
	cfg.Vey.APIKey = ""
	cfg.Vey.RateLimit = -1

	err := cfg.Validate("client")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vey.api_key is required")
	assert.Contains(t, err.Error(), "vey.rate_limit must be >= 0")
}

func TestValidateServe(t *testing.T) {
	cfg := validDefaults()
	assert.NoError(t, cfg.Validate("serve"))

	cfg.Server.Framework = "echo"
	assert.NoError(t, cfg.Validate("serve"))

	cfg.Server.Framework = "gin"
	err := cfg.Validate("serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.framework")

	cfg.Server.Framework = "chi"
	cfg.Server.Port = 0
	err = cfg.Validate("serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.port must be > 0")
}

func TestValidateUnknownMode(t *testing.T) {
	err := validDefaults().Validate("unknown")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}

func TestClientOptions(t *testing.T) {
	opts := validDefaults().Vey.ClientOptions()
	assert.Len(t, opts, 3)
}
