package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

var ErrInvalid = errors.New("invalid config")

// APIKeyEnvVars lists the environment variables consulted for the LLM key, in order.
// The VITE_ name is what the bundled web client is built with.
var APIKeyEnvVars = []string{"LLM_API_KEY", "OPENAI_API_KEY", "VITE_OPENAI_API_KEY"}

type ServerConfig struct {
	Port            string   `toml:"port"`
	ShutdownTimeout Duration `toml:"shutdown_timeout"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type LLMConfig struct {
	Provider    string   `toml:"provider"`
	Model       string   `toml:"model"`
	APIKey      string   `toml:"api_key"`
	BaseURL     string   `toml:"base_url"`
	Temperature float32  `toml:"temperature"`
	MaxTokens   int      `toml:"max_tokens"`
	Timeout     Duration `toml:"timeout"`
}

type PostgresConfig struct {
	DSN      string `toml:"dsn"`
	MaxConns int32  `toml:"max_conns"`
}

type MemgraphConfig struct {
	URI      string `toml:"uri"`
	User     string `toml:"user"`
	Password string `toml:"password"`
}

type StoreConfig struct {
	Backend  string         `toml:"backend"`
	Postgres PostgresConfig `toml:"postgres"`
	Memgraph MemgraphConfig `toml:"memgraph"`
}

type CacheConfig struct {
	TTL      Duration `toml:"ttl"`
	Capacity int      `toml:"capacity"`
}

type RetryConfig struct {
	Retries int      `toml:"retries"`
	Delay   Duration `toml:"delay"`
}

// PromptsConfig holds fmt templates for each prompt builder.
// Empty fields fall back to the built-in defaults.
type PromptsConfig struct {
	System       string `toml:"system"`
	Mood         string `toml:"mood"`
	HealthRisk   string `toml:"health_risk"`
	FollowUp     string `toml:"follow_up"`
	DailySummary string `toml:"daily_summary"`
	WeeklyRecap  string `toml:"weekly_recap"`
	Answer       string `toml:"answer"`
}

type Config struct {
	Server  ServerConfig  `toml:"server"`
	Log     LogConfig     `toml:"log"`
	LLM     LLMConfig     `toml:"llm"`
	Store   StoreConfig   `toml:"store"`
	Cache   CacheConfig   `toml:"cache"`
	Retry   RetryConfig   `toml:"retry"`
	Prompts PromptsConfig `toml:"prompts"`
}

// Duration lets TOML files carry values like "5m" or "1s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8080",
			ShutdownTimeout: Duration{10 * time.Second},
		},
		Log: LogConfig{Level: "info", Format: "text"},
		LLM: LLMConfig{
			Provider:    "openai",
			Model:       "gpt-4o-mini",
			Temperature: 0.7,
			MaxTokens:   500,
			Timeout:     Duration{30 * time.Second},
		},
		Store: StoreConfig{
			Backend:  "postgres",
			Postgres: PostgresConfig{MaxConns: 10},
			Memgraph: MemgraphConfig{URI: "bolt://localhost:7687"},
		},
		Cache: CacheConfig{TTL: Duration{5 * time.Minute}, Capacity: 100},
		Retry: RetryConfig{Retries: 2, Delay: Duration{time.Second}},
		Prompts: DefaultPrompts(),
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}
	cfg.Prompts = cfg.Prompts.WithDefaults()

	return cfg, nil
}

// LoadFromEnv reads .env (if any), the TOML file named by CONFIG_PATH, and
// applies environment overrides. A missing config file is not an error.
func LoadFromEnv() (*Config, error) {
	_ = godotenv.Load()

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config/config.toml"
	}

	cfg, err := Load(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		cfg = Default()
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	str("PORT", &c.Server.Port)
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)
	str("LLM_PROVIDER", &c.LLM.Provider)
	str("LLM_MODEL", &c.LLM.Model)
	str("LLM_BASE_URL", &c.LLM.BaseURL)
	str("STORE_BACKEND", &c.Store.Backend)
	str("DATABASE_DSN", &c.Store.Postgres.DSN)
	str("MEMGRAPH_URI", &c.Store.Memgraph.URI)
	str("MEMGRAPH_USER", &c.Store.Memgraph.User)
	str("MEMGRAPH_PASSWORD", &c.Store.Memgraph.Password)

	if key := ResolveAPIKey(lookup); key != "" {
		c.LLM.APIKey = key
	}

	if v, ok := lookup("CACHE_TTL"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: CACHE_TTL: %v", ErrInvalid, err)
		}
		c.Cache.TTL = Duration{d}
	}
	if v, ok := lookup("RETRY_COUNT"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: RETRY_COUNT: %v", ErrInvalid, err)
		}
		c.Retry.Retries = n
	}
	return nil
}

// ResolveAPIKey returns the first non-empty key among APIKeyEnvVars.
func ResolveAPIKey(lookup func(string) (string, bool)) string {
	for _, name := range APIKeyEnvVars {
		if v, ok := lookup(name); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func (c *Config) Validate() error {
	switch strings.ToLower(c.Store.Backend) {
	case "postgres", "memgraph":
	default:
		return fmt.Errorf("%w: unknown store backend %q", ErrInvalid, c.Store.Backend)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: unknown log level %q", ErrInvalid, c.Log.Level)
	}
	if c.Cache.Capacity <= 0 {
		return fmt.Errorf("%w: cache capacity must be positive", ErrInvalid)
	}
	if c.Cache.TTL.Duration <= 0 {
		return fmt.Errorf("%w: cache ttl must be positive", ErrInvalid)
	}
	if c.Retry.Retries < 0 {
		return fmt.Errorf("%w: retry count must not be negative", ErrInvalid)
	}
	if c.Retry.Delay.Duration < 0 {
		return fmt.Errorf("%w: retry delay must not be negative", ErrInvalid)
	}
	return nil
}
