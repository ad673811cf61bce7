// Package config loads service configuration from an optional YAML file
// and WAYFARER_-prefixed environment variables. Load returns a plain
// struct; there is no package-level configuration state.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/xraph/wayfarer"
	"github.com/xraph/wayfarer/openai"
)

// Drivers recognized by Store.Driver.
const (
	DriverMemory   = "memory"
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverSQLite   = "sqlite"
)

// Server configures the HTTP listener.
type Server struct {
	Host            string
	Port            int
	Mode            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Addr returns the host:port listen address.
func (s *Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Postgres configures the PostgreSQL store backend.
type Postgres struct {
	DSN string
}

// Mongo configures the MongoDB store backend.
type Mongo struct {
	URI      string
	Database string
}

// Redis configures the Redis store backend.
type Redis struct {
	Addr     string
	Password string
	DB       int
}

// SQLite configures the SQLite store backend.
type SQLite struct {
	Path string
}

// Store selects and configures the persistence backend.
type Store struct {
	Driver   string
	Postgres *Postgres
	Mongo    *Mongo
	Redis    *Redis
	SQLite   *SQLite
}

// OpenAI configures the chat-completion client.
type OpenAI struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int
}

// Worker configures background generation.
type Worker struct {
	Workers           int
	QueueCapacity     int
	GenerationTimeout time.Duration
}

// Log configures structured logging.
type Log struct {
	Level  string
	Format string
}

// SlogLevel maps the configured level onto slog.Level. Unknown levels
// fall back to info.
func (l *Log) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Config is the root service configuration.
type Config struct {
	Server *Server
	Store  *Store
	OpenAI *OpenAI
	Worker *Worker
	Log    *Log
}

// EngineConfig converts the worker section to the engine's Config.
func (c *Config) EngineConfig() wayfarer.Config {
	return wayfarer.Config{
		Workers:           c.Worker.Workers,
		QueueCapacity:     c.Worker.QueueCapacity,
		GenerationTimeout: c.Worker.GenerationTimeout,
		ShutdownTimeout:   c.Server.ShutdownTimeout,
	}
}

// Load reads configuration from the given file path plus the environment.
// An empty path searches for config.yaml in the working directory; a
// missing file is not an error, defaults and environment apply. A path
// given explicitly must exist.
//
// Environment variables use the WAYFARER_ prefix with underscores for
// nesting (WAYFARER_SERVER_PORT, WAYFARER_STORE_DRIVER, ...). The
// unprefixed OPENAI_API_KEY, OPENAI_MODEL, and OPENAI_TEMPERATURE names
// are honored as fallbacks.
func Load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("WAYFARER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindCompatEnv(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("config: read config file: %w", err)
			}
		}
	}

	cfg := &Config{
		Server: getServerConfig(v),
		Store:  getStoreConfig(v),
		OpenAI: getOpenAIConfig(v),
		Worker: getWorkerConfig(v),
		Log:    getLogConfig(v),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks driver selection, server mode, and worker sizing.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverMemory, DriverMongo, DriverPostgres, DriverRedis, DriverSQLite:
	default:
		return fmt.Errorf("config: unknown store driver %q", c.Store.Driver)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: unknown server mode %q", c.Server.Mode)
	}
	if c.Worker.Workers < 1 {
		return fmt.Errorf("config: workers must be positive, got %d", c.Worker.Workers)
	}
	if c.Worker.QueueCapacity < 1 {
		return fmt.Errorf("config: queue capacity must be positive, got %d", c.Worker.QueueCapacity)
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)

	v.SetDefault("store.driver", DriverMemory)
	v.SetDefault("store.postgres.dsn", "postgres://localhost:5432/wayfarer")
	v.SetDefault("store.mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("store.mongo.database", "wayfarer")
	v.SetDefault("store.redis.addr", "localhost:6379")
	v.SetDefault("store.redis.password", "")
	v.SetDefault("store.redis.db", 0)
	v.SetDefault("store.sqlite.path", "wayfarer.db")

	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.base_url", openai.DefaultBaseURL)
	v.SetDefault("openai.model", openai.DefaultModel)
	v.SetDefault("openai.temperature", openai.DefaultTemperature)
	v.SetDefault("openai.max_tokens", openai.DefaultMaxTokens)

	def := wayfarer.DefaultConfig()
	v.SetDefault("worker.workers", def.Workers)
	v.SetDefault("worker.queue_capacity", def.QueueCapacity)
	v.SetDefault("worker.generation_timeout", def.GenerationTimeout)
	v.SetDefault("server.shutdown_timeout", def.ShutdownTimeout)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// bindCompatEnv keeps the unprefixed OpenAI environment names working
// alongside the prefixed ones. Prefixed names win.
func bindCompatEnv(v *viper.Viper) {
	//nolint:errcheck // BindEnv fails only with zero arguments
	_ = v.BindEnv("openai.api_key", "WAYFARER_OPENAI_API_KEY", "OPENAI_API_KEY")
	//nolint:errcheck // BindEnv fails only with zero arguments
	_ = v.BindEnv("openai.model", "WAYFARER_OPENAI_MODEL", "OPENAI_MODEL")
	//nolint:errcheck // BindEnv fails only with zero arguments
	_ = v.BindEnv("openai.temperature", "WAYFARER_OPENAI_TEMPERATURE", "OPENAI_TEMPERATURE")
}

func getServerConfig(v *viper.Viper) *Server {
	return &Server{
		Host:            v.GetString("server.host"),
		Port:            v.GetInt("server.port"),
		Mode:            v.GetString("server.mode"),
		ReadTimeout:     v.GetDuration("server.read_timeout"),
		WriteTimeout:    v.GetDuration("server.write_timeout"),
		ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
	}
}

func getStoreConfig(v *viper.Viper) *Store {
	return &Store{
		Driver: v.GetString("store.driver"),
		Postgres: &Postgres{
			DSN: v.GetString("store.postgres.dsn"),
		},
		Mongo: &Mongo{
			URI:      v.GetString("store.mongo.uri"),
			Database: v.GetString("store.mongo.database"),
		},
		Redis: &Redis{
			Addr:     v.GetString("store.redis.addr"),
			Password: v.GetString("store.redis.password"),
			DB:       v.GetInt("store.redis.db"),
		},
		SQLite: &SQLite{
			Path: v.GetString("store.sqlite.path"),
		},
	}
}

func getOpenAIConfig(v *viper.Viper) *OpenAI {
	return &OpenAI{
		APIKey:      v.GetString("openai.api_key"),
		BaseURL:     v.GetString("openai.base_url"),
		Model:       v.GetString("openai.model"),
		Temperature: v.GetFloat64("openai.temperature"),
		MaxTokens:   v.GetInt("openai.max_tokens"),
	}
}

func getWorkerConfig(v *viper.Viper) *Worker {
	return &Worker{
		Workers:           v.GetInt("worker.workers"),
		QueueCapacity:     v.GetInt("worker.queue_capacity"),
		GenerationTimeout: v.GetDuration("worker.generation_timeout"),
	}
}

func getLogConfig(v *viper.Viper) *Log {
	return &Log{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
}
