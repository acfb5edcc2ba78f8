package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(vars map[string]string) func(string) (string, bool) {
	return func(name string) (string, bool) {
		v, ok := vars[name]
		return v, ok
	}
}

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "triagebot.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load("", env(nil))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 30*time.Minute, cfg.Session.TTL)
	assert.Equal(t, StoreMemory, cfg.Session.Store)
}

func TestLoad_YAMLThenEnvironment(t *testing.T) {
	path := writeYAML(t, `
log_level: debug
session:
  store: redis
  redis_addr: localhost:6379
  ttl: 45m
audit:
  redact: [ra, curso]
http:
  addr: ":9090"
`)
	cfg, err := load(path, env(map[string]string{
		"TRIAGEBOT_SESSION_TTL":           "10m",
		"TRIAGEBOT_REDIS_DB":              "2",
		"TRIAGEBOT_CATALOG_WATCH":         "true",
		"TRIAGEBOT_HTTP_METRICS":          "false",
		"TRIAGEBOT_COMPLETION_MAX_TOKENS": "800",
	}))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, StoreRedis, cfg.Session.Store)
	assert.Equal(t, 10*time.Minute, cfg.Session.TTL, "environment wins over the file")
	assert.Equal(t, 2, cfg.Session.RedisDB)
	assert.Equal(t, 30*time.Second, cfg.Session.LockTTL, "untouched defaults survive")
	assert.True(t, cfg.Catalog.Watch)
	assert.False(t, cfg.HTTP.Metrics)
	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, int64(800), cfg.Completion.MaxTokens)
	assert.Equal(t, []string{"ra", "curso"}, cfg.Audit.Redact)
}

func TestLoad_RedactFromEnvironment(t *testing.T) {
	cfg, err := load("", env(map[string]string{"TRIAGEBOT_AUDIT_REDACT": "ra, ^ia_ ,"}))
	require.NoError(t, err)
	assert.Equal(t, []string{"ra", "^ia_"}, cfg.Audit.Redact)
}

func TestLoad_ProviderKey(t *testing.T) {
	vars := map[string]string{
		"TRIAGEBOT_COMPLETION_PROVIDER": "anthropic",
		"ANTHROPIC_API_KEY":             "sk-ant",
		"OPENAI_API_KEY":                "sk-openai",
	}
	cfg, err := load("", env(vars))
	require.NoError(t, err)
	assert.Equal(t, "sk-ant", cfg.Completion.APIKey)

	vars["TRIAGEBOT_COMPLETION_API_KEY"] = "explicit"
	cfg, err = load("", env(vars))
	require.NoError(t, err)
	assert.Equal(t, "explicit", cfg.Completion.APIKey)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		env  map[string]string
		want string
	}{
		{"unknown key", "sesion:\n  store: memory\n", nil, "invalid configuration"},
		{"bad duration", "", map[string]string{"TRIAGEBOT_SESSION_TTL": "soon"}, "invalid configuration"},
		{"unknown store", "", map[string]string{"TRIAGEBOT_SESSION_STORE": "mongo"}, "unknown session store"},
		{"redis without address", "session:\n  store: redis\n", nil, "redis_addr is required"},
		{"broken yaml", "session: [", nil, "failed to parse"},
		{"bad redact pattern", "", map[string]string{"TRIAGEBOT_AUDIT_REDACT": "ra("}, "audit.redact"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := ""
			if tt.yaml != "" {
				path = writeYAML(t, tt.yaml)
			}
			_, err := load(path, env(tt.env))
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := load(filepath.Join(t.TempDir(), "nope.yaml"), env(nil))
	assert.ErrorContains(t, err, "failed to read config")
}
