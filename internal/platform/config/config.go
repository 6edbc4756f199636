package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	liststr "daviz/pkg/platform/strings"
)

// Account store backends.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string        `yaml:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	LogFormat       string        `yaml:"log_format"`
	LogLevel        string        `yaml:"log_level"`
}

// Registry selects where accounts live and which program id namespaces them.
type Registry struct {
	ProgramID string `yaml:"program_id"`
	Backend   string `yaml:"backend"`
}

type Auth struct {
	Audience string        `yaml:"audience"`
	Leeway   time.Duration `yaml:"leeway"`
}

type PostgresConfig struct {
	DSN             string        `yaml:"dsn"`
	MaxConns        int32         `yaml:"max_conns"`
	MinConns        int32         `yaml:"min_conns"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"`
}

type RedisConfig struct {
	URL          string        `yaml:"url"`
	PoolSize     int           `yaml:"pool_size"`
	MinIdleConns int           `yaml:"min_idle_conns"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// Audit configures where audit events go. With no brokers events are logged.
type Audit struct {
	KafkaBrokers []string `yaml:"kafka_brokers"`
	Topic        string   `yaml:"topic"`
	BufferSize   int      `yaml:"buffer_size"`
}

// RateLimit sets per-client budgets per minute. Zero disables a class.
type RateLimit struct {
	ReadPerMinute  int `yaml:"read_per_minute"`
	WritePerMinute int `yaml:"write_per_minute"`
}

type Config struct {
	Server    Server         `yaml:"server"`
	Registry  Registry       `yaml:"registry"`
	Auth      Auth           `yaml:"auth"`
	Postgres  PostgresConfig `yaml:"postgres"`
	Redis     RedisConfig    `yaml:"redis"`
	Audit     Audit          `yaml:"audit"`
	RateLimit RateLimit      `yaml:"rate_limit"`
}

// Defaults returns a configuration that runs fully in memory.
func Defaults() Config {
	return Config{
		Server: Server{
			Addr:            ":8080",
			ShutdownTimeout: 10 * time.Second,
			RequestTimeout:  30 * time.Second,
			LogFormat:       "json",
			LogLevel:        "info",
		},
		Registry: Registry{
			ProgramID: "B1EzQtkQo1o3dthdo1XHfc3R8qa4zLwxEwp8ATAW2sDS",
			Backend:   BackendMemory,
		},
		Auth: Auth{Audience: "daviz", Leeway: 30 * time.Second},
		Postgres: PostgresConfig{
			MaxConns:        10,
			MinConns:        1,
			MaxConnLifetime: 30 * time.Minute,
		},
		Redis: RedisConfig{
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Audit:     Audit{Topic: "daviz.audit", BufferSize: 1024},
		RateLimit: RateLimit{ReadPerMinute: 300, WritePerMinute: 60},
	}
}

// Load builds the configuration from defaults, then the YAML file named by
// DAVIZ_CONFIG if set, then environment variables.
func Load() (Config, error) {
	cfg := Defaults()
	if path := os.Getenv("DAVIZ_CONFIG"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// FromEnv builds a Config from defaults and environment variables only.
func FromEnv() Config {
	cfg := Defaults()
	applyEnv(&cfg)
	return cfg
}

func (c Config) Validate() error {
	switch c.Registry.Backend {
	case BackendMemory:
	case BackendPostgres:
		if c.Postgres.DSN == "" {
			return fmt.Errorf("registry backend postgres requires DATABASE_URL")
		}
	case BackendRedis:
		if c.Redis.URL == "" {
			return fmt.Errorf("registry backend redis requires REDIS_URL")
		}
	default:
		return fmt.Errorf("unknown registry backend %q", c.Registry.Backend)
	}
	return nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.Server.Addr, "DAVIZ_ADDR")
	setString(&cfg.Server.LogFormat, "LOG_FORMAT")
	setString(&cfg.Server.LogLevel, "LOG_LEVEL")
	setDuration(&cfg.Server.ShutdownTimeout, "SHUTDOWN_TIMEOUT")
	setDuration(&cfg.Server.RequestTimeout, "REQUEST_TIMEOUT")
	setString(&cfg.Registry.ProgramID, "DAVIZ_PROGRAM_ID")
	setString(&cfg.Registry.Backend, "DAVIZ_STORE")
	setString(&cfg.Auth.Audience, "DAVIZ_TOKEN_AUDIENCE")
	setDuration(&cfg.Auth.Leeway, "DAVIZ_TOKEN_LEEWAY")
	setString(&cfg.Postgres.DSN, "DATABASE_URL")
	setString(&cfg.Redis.URL, "REDIS_URL")
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		cfg.Audit.KafkaBrokers = liststr.SplitList(v)
	}
	setString(&cfg.Audit.Topic, "AUDIT_TOPIC")
	if v, err := strconv.Atoi(os.Getenv("AUDIT_BUFFER_SIZE")); err == nil && v > 0 {
		cfg.Audit.BufferSize = v
	}
	setInt(&cfg.RateLimit.ReadPerMinute, "RATE_LIMIT_READ_PER_MINUTE")
	setInt(&cfg.RateLimit.WritePerMinute, "RATE_LIMIT_WRITE_PER_MINUTE")
}

func setInt(dst *int, key string) {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil && v >= 0 {
		*dst = v
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key string) {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		*dst = d
	}
}
