// Package config assembles the runtime configuration: built-in defaults,
// then an optional YAML file, then a .env file, then the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every variable read by Load, except the provider API keys.
const EnvPrefix = "TRIAGEBOT_"

// Store backends.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
	StoreFile   = "file"
)

// Config is the full process configuration.
type Config struct {
	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`

	Session    SessionConfig    `mapstructure:"session" yaml:"session"`
	Catalog    CatalogConfig    `mapstructure:"catalog" yaml:"catalog"`
	Completion CompletionConfig `mapstructure:"completion" yaml:"completion"`
	Audit      AuditConfig      `mapstructure:"audit" yaml:"audit"`
	HTTP       HTTPConfig       `mapstructure:"http" yaml:"http"`
}

// SessionConfig selects and tunes the session store.
type SessionConfig struct {
	Store         string        `mapstructure:"store" yaml:"store"`
	TTL           time.Duration `mapstructure:"ttl" yaml:"ttl"`
	SweepInterval time.Duration `mapstructure:"sweep_interval" yaml:"sweep_interval"`
	Dir           string        `mapstructure:"dir" yaml:"dir"`
	RedisAddr     string        `mapstructure:"redis_addr" yaml:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password" yaml:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db" yaml:"redis_db"`
	LockTTL       time.Duration `mapstructure:"lock_ttl" yaml:"lock_ttl"`
	EncryptionKey string        `mapstructure:"encryption_key" yaml:"encryption_key"`
	MaxInputBytes int           `mapstructure:"max_input_bytes" yaml:"max_input_bytes"`
}

// CatalogConfig points at the course catalog. An empty Path uses the
// embedded catalog.
type CatalogConfig struct {
	Path     string        `mapstructure:"path" yaml:"path"`
	Watch    bool          `mapstructure:"watch" yaml:"watch"`
	Debounce time.Duration `mapstructure:"debounce" yaml:"debounce"`
}

// CompletionConfig selects the text-completion backend.
type CompletionConfig struct {
	Provider    string        `mapstructure:"provider" yaml:"provider"`
	Model       string        `mapstructure:"model" yaml:"model"`
	APIKey      string        `mapstructure:"api_key" yaml:"api_key"`
	BaseURL     string        `mapstructure:"base_url" yaml:"base_url"`
	Temperature float64       `mapstructure:"temperature" yaml:"temperature"`
	MaxTokens   int64         `mapstructure:"max_tokens" yaml:"max_tokens"`
	Timeout     time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// AuditConfig selects where finished conversations are recorded.
type AuditConfig struct {
	Dir        string   `mapstructure:"dir" yaml:"dir"`
	SQLitePath string   `mapstructure:"sqlite_path" yaml:"sqlite_path"`
	Redact     []string `mapstructure:"redact" yaml:"redact"`
}

// HTTPConfig tunes the HTTP transport.
type HTTPConfig struct {
	Addr         string `mapstructure:"addr" yaml:"addr"`
	MaxBodyBytes int64  `mapstructure:"max_body_bytes" yaml:"max_body_bytes"`
	Metrics      bool   `mapstructure:"metrics" yaml:"metrics"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LogLevel:  "info",
		LogFormat: "text",
		Session: SessionConfig{
			Store:   StoreMemory,
			TTL:     30 * time.Minute,
			Dir:     ".triagebot/sessions",
			LockTTL: 30 * time.Second,
		},
		Catalog: CatalogConfig{
			Debounce: 250 * time.Millisecond,
		},
		Completion: CompletionConfig{
			Provider:    "openai",
			Temperature: 0.4,
			MaxTokens:   500,
			Timeout:     30 * time.Second,
		},
		Audit: AuditConfig{
			Dir: "atendimentos",
		},
		HTTP: HTTPConfig{
			Addr:         ":8080",
			MaxBodyBytes: 64 << 10,
			Metrics:      true,
		},
	}
}

// envKeys maps environment variables to their configuration paths.
var envKeys = map[string]string{
	"LOG_LEVEL":              "log_level",
	"LOG_FORMAT":             "log_format",
	"SESSION_STORE":          "session.store",
	"SESSION_TTL":            "session.ttl",
	"SESSION_SWEEP_INTERVAL": "session.sweep_interval",
	"SESSION_DIR":            "session.dir",
	"REDIS_ADDR":             "session.redis_addr",
	"REDIS_PASSWORD":         "session.redis_password",
	"REDIS_DB":               "session.redis_db",
	"LOCK_TTL":               "session.lock_ttl",
	"ENCRYPTION_KEY":         "session.encryption_key",
	"MAX_INPUT_BYTES":        "session.max_input_bytes",
	"CATALOG_PATH":           "catalog.path",
	"CATALOG_WATCH":          "catalog.watch",
	"COMPLETION_PROVIDER":    "completion.provider",
	"COMPLETION_MODEL":       "completion.model",
	"COMPLETION_API_KEY":     "completion.api_key",
	"COMPLETION_BASE_URL":    "completion.base_url",
	"COMPLETION_TEMPERATURE": "completion.temperature",
	"COMPLETION_MAX_TOKENS":  "completion.max_tokens",
	"COMPLETION_TIMEOUT":     "completion.timeout",
	"AUDIT_DIR":              "audit.dir",
	"AUDIT_SQLITE_PATH":      "audit.sqlite_path",
	"AUDIT_REDACT":           "audit.redact",
	"HTTP_ADDR":              "http.addr",
	"HTTP_MAX_BODY_BYTES":    "http.max_body_bytes",
	"HTTP_METRICS":           "http.metrics",
}

// providerKeys are the conventional API key variables of each provider.
var providerKeys = map[string]string{
	"openai":    "OPENAI_API_KEY",
	"anthropic": "ANTHROPIC_API_KEY",
	"gemini":    "GEMINI_API_KEY",
}

// Load builds the configuration. path names an optional YAML file; a
// missing .env file is not an error.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}
	return load(path, os.LookupEnv)
}

func load(path string, lookup func(string) (string, bool)) (Config, error) {
	raw := map[string]any{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return Config{}, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	for name, key := range envKeys {
		if v, ok := lookup(EnvPrefix + name); ok {
			var value any = v
			if key == "audit.redact" {
				value = splitList(v)
			}
			set(raw, key, value)
		}
	}

	cfg := Default()
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           &cfg,
	})
	if err != nil {
		return Config{}, err
	}
	if err := dec.Decode(raw); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}

	if cfg.Completion.APIKey == "" {
		if name, ok := providerKeys[strings.ToLower(cfg.Completion.Provider)]; ok {
			cfg.Completion.APIKey, _ = lookup(name)
		}
	}
	return cfg, cfg.Validate()
}

// Validate reports settings that cannot work together.
func (c Config) Validate() error {
	var errs []error
	switch c.Session.Store {
	case StoreMemory, StoreFile:
	case StoreRedis:
		if c.Session.RedisAddr == "" {
			errs = append(errs, errors.New("session.redis_addr is required for the redis store"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown session store %q", c.Session.Store))
	}
	if c.Session.TTL <= 0 {
		errs = append(errs, errors.New("session.ttl must be positive"))
	}
	if c.Session.SweepInterval < 0 {
		errs = append(errs, errors.New("session.sweep_interval must not be negative"))
	}
	for _, p := range c.Audit.Redact {
		if _, err := regexp.Compile(p); err != nil {
			errs = append(errs, fmt.Errorf("audit.redact: %w", err))
		}
	}
	return errors.Join(errs...)
}

// set stores value under a dotted key, creating intermediate maps.
func set(m map[string]any, key string, value any) {
	parts := strings.Split(key, ".")
	for _, p := range parts[:len(parts)-1] {
		next, ok := m[p].(map[string]any)
		if !ok {
			next = map[string]any{}
			m[p] = next
		}
		m = next
	}
	m[parts[len(parts)-1]] = value
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
