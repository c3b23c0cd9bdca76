package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const (
	EnvProduction  = "production"
	EnvDevelopment = "development"

	// MinSecretLength is the shortest JWT_SECRET accepted.
	MinSecretLength = 32

	devMongoURI = "mongodb://localhost:27017"
)

var (
	ErrMissingSecret   = errors.New("config: JWT_SECRET is required")
	ErrShortSecret     = fmt.Errorf("config: JWT_SECRET must be at least %d bytes", MinSecretLength)
	ErrMissingMongoURI = errors.New("config: MONGODB_URI is required in production")
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"NODE_ENV,  default=development"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`
	JWTSecret string `env:"JWT_SECRET"`

	Auth  AuthConfig
	Mongo MongoConfig
	Redis RedisConfig
}

type AuthConfig struct {
	TokenTTL         time.Duration `env:"TOKEN_TTL,          default=24h"`
	CookieName       string        `env:"AUTH_COOKIE_NAME,   default=token"`
	LoginMaxAttempts int           `env:"LOGIN_MAX_ATTEMPTS, default=5"`
	LoginLockout     time.Duration `env:"LOGIN_LOCKOUT,      default=15m"`
}

type MongoConfig struct {
	URI            string        `env:"MONGODB_URI"`
	Database       string        `env:"MONGODB_DB,              default=taskdesk"`
	ConnectTimeout time.Duration `env:"MONGODB_CONNECT_TIMEOUT, default=10s"`
}

// RedisConfig configures login throttling. An empty Addr disables it.
type RedisConfig struct {
	Addr string `env:"REDIS_ADDR"`
	DB   int    `env:"REDIS_DB, default=0"`
}

// IsProduction reports whether NODE_ENV selects production behaviour.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// Load reads configuration from the process environment.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.JWTSecret == "":
		return ErrMissingSecret
	case len(c.JWTSecret) < MinSecretLength:
		return ErrShortSecret
	}

	if c.Mongo.URI == "" {
		if c.IsProduction() {
			return ErrMissingMongoURI
		}
		c.Mongo.URI = devMongoURI
	}
	return nil
}
