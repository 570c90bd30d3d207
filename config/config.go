// Package config loads the application configuration from the environment.
package config

import (
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

const envPrefix = "QUICKTASKS_"

type Config struct {
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`
	SeedDemo        bool          `env:"SEED_DEMO" envDefault:"false"`
	HTTP            HTTP          `envPrefix:"HTTP_"`
	Storage         Storage       `envPrefix:"STORAGE_"`
}

type HTTP struct {
	Port        int    `env:"PORT" envDefault:"3000"`
	CORSOrigins string `env:"CORS_ORIGINS" envDefault:"*"`
	AccessLog   bool   `env:"ACCESS_LOG" envDefault:"true"`
}

// Framework log levels.
const (
	LogLevelInfo  = "info"
	LogLevelError = "error"
)

// Storage backends.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

type Storage struct {
	Backend   string `env:"BACKEND" envDefault:"memory"`
	QueueSize int    `env:"QUEUE_SIZE" envDefault:"256"`
	SQLite    SQLite `envPrefix:"SQLITE_"`
	Redis     Redis  `envPrefix:"REDIS_"`
}

type SQLite struct {
	Path  string `env:"PATH" envDefault:"quicktasks.db"`
	Debug bool   `env:"DEBUG" envDefault:"false"`
}

type Redis struct {
	Addr   string `env:"ADDR" envDefault:"localhost:6379"`
	Prefix string `env:"PREFIX" envDefault:"quicktasks:"`
}

// Load reads an optional .env file and parses the environment.
func Load(dotenvFiles ...string) (*Config, error) {
	if len(dotenvFiles) == 0 {
		dotenvFiles = []string{".env"}
	}
	for _, f := range dotenvFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return nil, errors.Wrapf(err, "could not load %s", f)
		}
	}

	return Parse()
}

// Parse builds the configuration from the current environment.
func Parse() (*Config, error) {
	conf, err := env.ParseAsWithOptions[Config](env.Options{
		Prefix: envPrefix,
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	if err := conf.Validate(); err != nil {
		return nil, errors.WithStack(err)
	}

	return &conf, nil
}

// Validate rejects values the application cannot run with.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendMemory, BackendSQLite, BackendRedis:
	default:
		return errors.Errorf("unknown storage backend %q", c.Storage.Backend)
	}

	switch c.LogLevel {
	case LogLevelInfo, LogLevelError:
	default:
		return errors.Errorf("unknown log level %q", c.LogLevel)
	}

	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return errors.Errorf("invalid http port %d", c.HTTP.Port)
	}

	if c.Storage.QueueSize <= 0 {
		return errors.Errorf("storage queue size must be positive, got %d", c.Storage.QueueSize)
	}

	return nil
}
