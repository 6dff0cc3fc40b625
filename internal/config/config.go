// Package config loads server configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Storage backends.
const (
	BackendSQLite = "sqlite"
	BackendMongo  = "mongo"
)

// Config contains server configuration parameters.
type Config struct {
	LogLevel string  `env:"LOG_LEVEL" envDefault:"info"`
	HTTP     HTTP    `envPrefix:"HTTP_"`
	Storage  Storage `envPrefix:"STORAGE_"`
	Redis    Redis   `envPrefix:"REDIS_"`
	JWT      JWT     `envPrefix:"JWT_"`
	Family   Family  `envPrefix:"FAMILY_"`
}

// HTTP contains HTTP server parameters.
type HTTP struct {
	Addr            string        `env:"ADDR" envDefault:":8080"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// StaticPath serves a front end build when set.
	StaticPath string `env:"STATIC_PATH"`

	// PublicBaseURL prefixes family invite links.
	PublicBaseURL string `env:"PUBLIC_BASE_URL" envDefault:"http://localhost:8080"`

	AllowedOrigin string `env:"ALLOWED_ORIGIN" envDefault:"*"`
}

// Storage selects and configures the document store.
type Storage struct {
	Backend       string `env:"BACKEND" envDefault:"sqlite"`
	DBPath        string `env:"DB_PATH" envDefault:"./data/pricediary.db"`
	MongoURI      string `env:"MONGO_URI" envDefault:"mongodb://localhost:27017"`
	MongoDatabase string `env:"MONGO_DATABASE" envDefault:"pricediary"`
}

// Redis configures the preferences store. An empty Addr keeps preferences in memory.
type Redis struct {
	Addr     string `env:"ADDR"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
}

// JWT contains session token parameters.
type JWT struct {
	Secret string        `env:"SECRET" envDefault:"devsecret"`
	TTL    time.Duration `env:"TTL" envDefault:"24h"`
}

// Family contains aggregation parameters.
type Family struct {
	FanoutLimit int `env:"FANOUT_LIMIT" envDefault:"8"`
}

// Load reads the given dotenv files (".env" when none are named) into the
// environment, without overriding variables already set, and parses the
// configuration. Missing dotenv files are ignored.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Backend {
	case BackendSQLite, BackendMongo:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Family.FanoutLimit < 1 {
		return fmt.Errorf("family fan-out limit must be positive, got %d", c.Family.FanoutLimit)
	}
	if c.JWT.TTL <= 0 {
		return fmt.Errorf("jwt ttl must be positive, got %s", c.JWT.TTL)
	}
	return nil
}
