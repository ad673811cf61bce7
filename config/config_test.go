package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xraph/wayfarer/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Addr() != "0.0.0.0:8080" {
		t.Errorf("server addr = %q, want %q", cfg.Server.Addr(), "0.0.0.0:8080")
	}
	if cfg.Store.Driver != config.DriverMemory {
		t.Errorf("store driver = %q, want %q", cfg.Store.Driver, config.DriverMemory)
	}
	if cfg.Store.SQLite.Path != "wayfarer.db" {
		t.Errorf("sqlite path = %q, want %q", cfg.Store.SQLite.Path, "wayfarer.db")
	}
	if cfg.OpenAI.Model != "gpt-4o" {
		t.Errorf("openai model = %q, want %q", cfg.OpenAI.Model, "gpt-4o")
	}
	if cfg.OpenAI.Temperature != 0.7 {
		t.Errorf("openai temperature = %v, want 0.7", cfg.OpenAI.Temperature)
	}
	if cfg.OpenAI.MaxTokens != 2000 {
		t.Errorf("openai max tokens = %d, want 2000", cfg.OpenAI.MaxTokens)
	}
	if cfg.Worker.Workers != 4 {
		t.Errorf("workers = %d, want 4", cfg.Worker.Workers)
	}
	if cfg.Worker.GenerationTimeout != 2*time.Minute {
		t.Errorf("generation timeout = %v, want 2m", cfg.Worker.GenerationTimeout)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "text" {
		t.Errorf("log config = %s/%s, want info/text", cfg.Log.Level, cfg.Log.Format)
	}
}

func TestLoadFile(t *testing.T) {
	yaml := strings.TrimSpace(`
server:
  port: 9999
  mode: debug
store:
  driver: postgres
  postgres:
    dsn: postgres://db:5432/trips
openai:
  api_key: sk-from-file
  model: gpt-4o-mini
  temperature: 0.2
  max_tokens: 512
worker:
  workers: 8
  queue_capacity: 128
  generation_timeout: 90s
log:
  level: debug
  format: json
`)
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 9999 || cfg.Server.Mode != "debug" {
		t.Errorf("server = %d/%s, want 9999/debug", cfg.Server.Port, cfg.Server.Mode)
	}
	if cfg.Store.Driver != config.DriverPostgres {
		t.Errorf("driver = %q, want %q", cfg.Store.Driver, config.DriverPostgres)
	}
	if cfg.Store.Postgres.DSN != "postgres://db:5432/trips" {
		t.Errorf("postgres dsn = %q", cfg.Store.Postgres.DSN)
	}
	if cfg.OpenAI.APIKey != "sk-from-file" || cfg.OpenAI.Model != "gpt-4o-mini" {
		t.Errorf("openai = %q/%q", cfg.OpenAI.APIKey, cfg.OpenAI.Model)
	}
	if cfg.OpenAI.Temperature != 0.2 || cfg.OpenAI.MaxTokens != 512 {
		t.Errorf("openai tuning = %v/%d, want 0.2/512", cfg.OpenAI.Temperature, cfg.OpenAI.MaxTokens)
	}
	if cfg.Worker.Workers != 8 || cfg.Worker.QueueCapacity != 128 {
		t.Errorf("worker = %d/%d, want 8/128", cfg.Worker.Workers, cfg.Worker.QueueCapacity)
	}
	if cfg.Worker.GenerationTimeout != 90*time.Second {
		t.Errorf("generation timeout = %v, want 90s", cfg.Worker.GenerationTimeout)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("log format = %q, want json", cfg.Log.Format)
	}

	// Sections absent from the file keep their defaults.
	if cfg.Store.Mongo.URI != "mongodb://localhost:27017" {
		t.Errorf("mongo uri = %q, want default", cfg.Store.Mongo.URI)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("Load with a missing explicit file succeeded, want error")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("WAYFARER_STORE_DRIVER", "redis")
	t.Setenv("WAYFARER_SERVER_PORT", "9090")
	t.Setenv("WAYFARER_STORE_REDIS_ADDR", "redis-1:6379")
	t.Setenv("WAYFARER_WORKER_WORKERS", "2")

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Store.Driver != config.DriverRedis {
		t.Errorf("driver = %q, want %q", cfg.Store.Driver, config.DriverRedis)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Store.Redis.Addr != "redis-1:6379" {
		t.Errorf("redis addr = %q, want redis-1:6379", cfg.Store.Redis.Addr)
	}
	if cfg.Worker.Workers != 2 {
		t.Errorf("workers = %d, want 2", cfg.Worker.Workers)
	}
}

func TestLoadSQLiteDriver(t *testing.T) {
	t.Setenv("WAYFARER_STORE_DRIVER", "sqlite")
	t.Setenv("WAYFARER_STORE_SQLITE_PATH", "/var/lib/wayfarer/trips.db")

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Store.Driver != config.DriverSQLite {
		t.Errorf("driver = %q, want %q", cfg.Store.Driver, config.DriverSQLite)
	}
	if cfg.Store.SQLite.Path != "/var/lib/wayfarer/trips.db" {
		t.Errorf("sqlite path = %q, want /var/lib/wayfarer/trips.db", cfg.Store.SQLite.Path)
	}
}

func TestLoadCompatEnvNames(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-legacy")
	t.Setenv("OPENAI_MODEL", "gpt-4-turbo")
	t.Setenv("OPENAI_TEMPERATURE", "0.3")

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.OpenAI.APIKey != "sk-legacy" {
		t.Errorf("api key = %q, want legacy env value", cfg.OpenAI.APIKey)
	}
	if cfg.OpenAI.Model != "gpt-4-turbo" {
		t.Errorf("model = %q, want legacy env value", cfg.OpenAI.Model)
	}
	if cfg.OpenAI.Temperature != 0.3 {
		t.Errorf("temperature = %v, want 0.3", cfg.OpenAI.Temperature)
	}
}

func TestLoadPrefixedEnvBeatsCompat(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-legacy")
	t.Setenv("WAYFARER_OPENAI_API_KEY", "sk-prefixed")

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.OpenAI.APIKey != "sk-prefixed" {
		t.Errorf("api key = %q, want prefixed env value", cfg.OpenAI.APIKey)
	}
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("WAYFARER_STORE_DRIVER", "cassandra")

	_, err := config.Load("")
	if err == nil {
		t.Fatal("Load with unknown driver succeeded, want error")
	}
	if !strings.Contains(err.Error(), "cassandra") {
		t.Errorf("error = %v, want it to name the driver", err)
	}
}

func TestLoadRejectsNonPositiveWorkers(t *testing.T) {
	t.Setenv("WAYFARER_WORKER_WORKERS", "0")

	if _, err := config.Load(""); err == nil {
		t.Fatal("Load with zero workers succeeded, want error")
	}
}

func TestLoadRejectsUnknownServerMode(t *testing.T) {
	t.Setenv("WAYFARER_SERVER_MODE", "production")

	if _, err := config.Load(""); err == nil {
		t.Fatal("Load with unknown server mode succeeded, want error")
	}
}

func TestEngineConfig(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	ec := cfg.EngineConfig()
	if ec.Workers != cfg.Worker.Workers {
		t.Errorf("engine workers = %d, want %d", ec.Workers, cfg.Worker.Workers)
	}
	if ec.GenerationTimeout != cfg.Worker.GenerationTimeout {
		t.Errorf("engine generation timeout = %v, want %v", ec.GenerationTimeout, cfg.Worker.GenerationTimeout)
	}
	if ec.ShutdownTimeout != cfg.Server.ShutdownTimeout {
		t.Errorf("engine shutdown timeout = %v, want %v", ec.ShutdownTimeout, cfg.Server.ShutdownTimeout)
	}
}

func TestSlogLevel(t *testing.T) {
	cases := []struct {
		level string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"verbose", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tc := range cases {
		l := &config.Log{Level: tc.level}
		if got := l.SlogLevel(); got != tc.want {
			t.Errorf("SlogLevel(%q) = %v, want %v", tc.level, got, tc.want)
		}
	}
}
