package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_YAML(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := writeFile(t, dir, "parley.yaml", `
base_url: http://answers.internal/api
timeout: 3s
locale: es
copy:
  dismissed: "Vale."
joke_markers: ["¿otro?"]
log:
  level: debug
  format: json
server:
  port: 9090
  allowed_origins: [https://app.example.com]
cache:
  backend: redis
  ttl: 1m
  redis:
    addr: redis:6379
    db: 2
metrics:
  enabled: true
stub:
  answers:
    hello: Hi there
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://answers.internal/api", cfg.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, []string{"https://app.example.com"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, CacheRedis, cfg.Cache.Backend)
	assert.Equal(t, time.Minute, cfg.Cache.TTL)
	assert.Equal(t, "redis:6379", cfg.Cache.Redis.Addr)
	assert.Equal(t, 2, cfg.Cache.Redis.DB)
	assert.Equal(t, "parley:answer:", cfg.Cache.Redis.Prefix, "unset keys keep their default")
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, map[string]string{"hello": "Hi there"}, cfg.Stub.Answers)

	cp := cfg.DialogCopy()
	assert.Equal(t, "Vale.", cp.Dismissed)
	assert.Equal(t, []string{"¿otro?"}, cp.JokeMarkers)
	assert.NotEqual(t, "Nothing was found on the web.", cp.WebNothingFound, "Spanish preset")
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := writeFile(t, dir, "parley.yaml", "timeout: 3s\nserver:\n  port: 9090\n")
	writeFile(t, dir, ".env", "PARLEY_LOG_LEVEL=warn\n")
	t.Cleanup(func() { _ = os.Unsetenv("PARLEY_LOG_LEVEL") })

	t.Setenv("PARLEY_TIMEOUT", "750ms")
	t.Setenv("PARLEY_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("PARLEY_CACHE_BACKEND", "memory")
	t.Setenv("PARLEY_METRICS_ENABLED", "true")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 750*time.Millisecond, cfg.Timeout)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, CacheMemory, cfg.Cache.Backend)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "warn", cfg.Log.Level, ".env is loaded")
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"UnknownKey", "colour: blue\n"},
		{"BadDuration", "timeout: soon\n"},
		{"ZeroTimeout", "timeout: 0s\n"},
		{"Locale", "locale: fr\n"},
		{"LogLevel", "log:\n  level: loud\n"},
		{"LogFormat", "log:\n  format: xml\n"},
		{"Port", "server:\n  port: 70000\n"},
		{"Backend", "cache:\n  backend: disk\n"},
		{"RedisAddr", "cache:\n  backend: redis\n  redis:\n    addr: \"\"\n"},
		{"Malformed", "base_url: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			t.Chdir(dir)
			_, err := Load(writeFile(t, dir, "parley.yaml", tt.yaml))
			assert.Error(t, err)
		})
	}

	t.Run("MissingFile", func(t *testing.T) {
		t.Chdir(t.TempDir())
		_, err := Load("does-not-exist.yaml")
		assert.Error(t, err)
	})
}
