package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	strutil "scaffold/pkg/platform/strings"
)

// Store drivers.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

// Config is the process configuration. Defaults are overlaid by the TOML file
// named in CONFIG_FILE, then by individual environment variables.
type Config struct {
	Server   Server         `toml:"server"`
	Log      Log            `toml:"log"`
	JWT      JWT            `toml:"jwt"`
	Store    Store          `toml:"store"`
	Postgres PostgresConfig `toml:"postgres"`
	Redis    RedisConfig    `toml:"redis"`
	Kafka    KafkaConfig    `toml:"kafka"`
	// Modules selects which modules are loaded (path.Match patterns). Empty loads all.
	Modules []string `toml:"modules"`
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string        `toml:"addr"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout"`
	AllowedOrigins  []string      `toml:"allowed_origins"`
}

type Log struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type JWT struct {
	SigningKey string        `toml:"signing_key"`
	Issuer     string        `toml:"issuer"`
	Audience   string        `toml:"audience"`
	TokenTTL   time.Duration `toml:"token_ttl"`
}

// Store selects the repository implementation bound for domain abstractions.
type Store struct {
	Driver string `toml:"driver"`
}

type PostgresConfig struct {
	DSN          string        `toml:"dsn"`
	Driver       string        `toml:"driver"` // "pgx" or "postgres" (lib/pq)
	MaxOpenConns int           `toml:"max_open_conns"`
	MaxIdleConns int           `toml:"max_idle_conns"`
	ConnMaxLife  time.Duration `toml:"conn_max_lifetime"`
}

type RedisConfig struct {
	URL          string        `toml:"url"`
	PoolSize     int           `toml:"pool_size"`
	MinIdleConns int           `toml:"min_idle_conns"`
	DialTimeout  time.Duration `toml:"dial_timeout"`
	ReadTimeout  time.Duration `toml:"read_timeout"`
	WriteTimeout time.Duration `toml:"write_timeout"`
}

type KafkaConfig struct {
	Brokers    []string `toml:"brokers"`
	Topic      string   `toml:"topic"`
	ClientID   string   `toml:"client_id"`
	Partitions int32    `toml:"partitions"`
	// Events lists the event names forwarded to Kafka.
	Events []string `toml:"events"`
}

// Enabled reports whether Kafka brokers are configured.
func (k KafkaConfig) Enabled() bool { return len(k.Brokers) > 0 }

// Default returns the development defaults.
func Default() Config {
	return Config{
		Server: Server{
			Addr:            ":8080",
			ShutdownTimeout: 10 * time.Second,
		},
		Log: Log{Level: "info", Format: "json"},
		JWT: JWT{
			// Use a default for development - should be overridden in production
			SigningKey: "dev-secret-key-change-in-production",
			Issuer:     "scaffold",
			Audience:   "scaffold-api",
			TokenTTL:   15 * time.Minute,
		},
		Store: Store{Driver: StoreMemory},
		Postgres: PostgresConfig{
			Driver:       "pgx",
			MaxOpenConns: 10,
			MaxIdleConns: 5,
			ConnMaxLife:  30 * time.Minute,
		},
		Redis: RedisConfig{
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Kafka: KafkaConfig{
			Topic:      "domain-events",
			ClientID:   "scaffold",
			Partitions: 1,
			Events:     []string{"core.thing.thing_created"},
		},
	}
}

// FromEnv builds the config from CONFIG_FILE and environment variables so main stays lean.
func FromEnv() (Config, error) {
	return load(os.Getenv)
}

func load(getenv func(string) string) (Config, error) {
	cfg := Default()

	if path := getenv("CONFIG_FILE"); path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	str := func(key string, dst *string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	list := func(key string, dst *[]string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = strutil.SplitList(v)
		}
	}

	str("SCAFFOLD_ADDR", &cfg.Server.Addr)
	list("ALLOWED_ORIGINS", &cfg.Server.AllowedOrigins)
	str("LOG_LEVEL", &cfg.Log.Level)
	str("LOG_FORMAT", &cfg.Log.Format)
	str("JWT_SIGNING_KEY", &cfg.JWT.SigningKey)
	str("JWT_ISSUER", &cfg.JWT.Issuer)
	str("JWT_AUDIENCE", &cfg.JWT.Audience)
	str("STORE_DRIVER", &cfg.Store.Driver)
	str("POSTGRES_DSN", &cfg.Postgres.DSN)
	str("POSTGRES_DRIVER", &cfg.Postgres.Driver)
	str("REDIS_URL", &cfg.Redis.URL)
	list("KAFKA_BROKERS", &cfg.Kafka.Brokers)
	str("KAFKA_TOPIC", &cfg.Kafka.Topic)
	list("KAFKA_EVENTS", &cfg.Kafka.Events)
	list("MODULES", &cfg.Modules)

	if v := getenv("SHUTDOWN_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("parse SHUTDOWN_TIMEOUT: %w", err)
		}
		cfg.Server.ShutdownTimeout = d
	}
	if v := getenv("REDIS_POOL_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("parse REDIS_POOL_SIZE: %w", err)
		}
		cfg.Redis.PoolSize = n
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (c Config) Validate() error {
	var errs []error
	switch c.Store.Driver {
	case StoreMemory:
	case StorePostgres:
		if c.Postgres.DSN == "" {
			errs = append(errs, errors.New("store driver postgres requires POSTGRES_DSN"))
		}
	case StoreRedis:
		if c.Redis.URL == "" {
			errs = append(errs, errors.New("store driver redis requires REDIS_URL"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store driver %q", c.Store.Driver))
	}
	if c.Postgres.Driver != "pgx" && c.Postgres.Driver != "postgres" {
		errs = append(errs, fmt.Errorf("unknown postgres driver %q", c.Postgres.Driver))
	}
	if c.JWT.SigningKey == "" {
		errs = append(errs, errors.New("jwt signing key is required"))
	}
	if c.Kafka.Enabled() && c.Kafka.Topic == "" {
		errs = append(errs, errors.New("kafka topic is required when brokers are set"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
