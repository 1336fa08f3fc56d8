package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/parley/internal/logging"
	"github.com/aretw0/parley/pkg/domain"
)

// EnvPrefix is the prefix of every environment variable read by Load.
const EnvPrefix = "PARLEY_"

// Cache backends.
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Config is the resolved application configuration.
type Config struct {
	BaseURL     string        `mapstructure:"base_url"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Locale      string        `mapstructure:"locale"`
	Copy        domain.Copy   `mapstructure:"copy"`
	JokeMarkers []string      `mapstructure:"joke_markers"`
	Log         LogConfig     `mapstructure:"log"`
	Server      ServerConfig  `mapstructure:"server"`
	Cache       CacheConfig   `mapstructure:"cache"`
	Metrics     MetricsConfig `mapstructure:"metrics"`
	Stub        StubConfig    `mapstructure:"stub"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type CacheConfig struct {
	Backend string        `mapstructure:"backend"`
	TTL     time.Duration `mapstructure:"ttl"`
	Redis   RedisConfig   `mapstructure:"redis"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// StubConfig seeds the knowledge base served by the stub command.
type StubConfig struct {
	Port    int               `mapstructure:"port"`
	Answers map[string]string `mapstructure:"answers"`
	Web     map[string]string `mapstructure:"web"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		BaseURL: "http://localhost:8081/api",
		Timeout: 5 * time.Second,
		Locale:  "en",
		Log:     LogConfig{Level: "info", Format: "text"},
		Server:  ServerConfig{Port: 8080, AllowedOrigins: []string{"*"}},
		Cache: CacheConfig{
			Backend: CacheNone,
			TTL:     10 * time.Minute,
			Redis:   RedisConfig{Addr: "localhost:6379", Prefix: "parley:answer:"},
		},
		Stub: StubConfig{Port: 8081},
	}
}

// envKeys maps environment variables to their config path.
var envKeys = map[string]string{
	"BASE_URL":        "base_url",
	"TIMEOUT":         "timeout",
	"LOCALE":          "locale",
	"JOKE_MARKERS":    "joke_markers",
	"LOG_LEVEL":       "log.level",
	"LOG_FORMAT":      "log.format",
	"PORT":            "server.port",
	"ALLOWED_ORIGINS": "server.allowed_origins",
	"CACHE_BACKEND":   "cache.backend",
	"CACHE_TTL":       "cache.ttl",
	"REDIS_ADDR":      "cache.redis.addr",
	"REDIS_PASSWORD":  "cache.redis.password",
	"REDIS_DB":        "cache.redis.db",
	"REDIS_PREFIX":    "cache.redis.prefix",
	"METRICS_ENABLED": "metrics.enabled",
	"STUB_PORT":       "stub.port",
}

// Load resolves the configuration from defaults, the YAML file at path
// (optional), a .env file in the working directory and PARLEY_* variables,
// in increasing order of precedence.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	raw := map[string]any{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
		if raw == nil {
			raw = map[string]any{}
		}
	}

	for suffix, key := range envKeys {
		if v, ok := os.LookupEnv(EnvPrefix + suffix); ok {
			setPath(raw, key, v)
		}
	}

	cfg := Default()
	if err := decode(raw, &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decode(raw map[string]any, out *Config) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(raw); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	return nil
}

// setPath stores v under a dotted key, creating intermediate maps.
func setPath(m map[string]any, key string, v any) {
	parts := strings.Split(key, ".")
	for _, p := range parts[:len(parts)-1] {
		next, ok := m[p].(map[string]any)
		if !ok {
			next = map[string]any{}
			m[p] = next
		}
		m = next
	}
	m[parts[len(parts)-1]] = v
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	switch strings.ToLower(c.Locale) {
	case "en", "es":
	default:
		return fmt.Errorf("unsupported locale %q (want en or es)", c.Locale)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	switch c.Cache.Backend {
	case CacheNone, CacheMemory, CacheRedis:
	default:
		return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}
	if c.Cache.Backend == CacheRedis && c.Cache.Redis.Addr == "" {
		return errors.New("cache.redis.addr is required for the redis backend")
	}
	return nil
}

// DialogCopy returns the locale preset with the configured overrides applied.
func (c Config) DialogCopy() domain.Copy {
	cp := domain.CopyForLocale(c.Locale).Merge(c.Copy)
	if len(c.JokeMarkers) > 0 {
		cp.JokeMarkers = append([]string(nil), c.JokeMarkers...)
	}
	return cp
}
