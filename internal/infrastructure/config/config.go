package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,     default=8080"`
	Env      string `env:"ENV,      default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// Store selects the user-store backend: "mongo" or "memory".
	Store string `env:"STORE, default=mongo"`

	// BcryptCost tunes the password hashing work factor. Zero means the
	// bcrypt library default.
	BcryptCost int `env:"BCRYPT_COST, default=0"`

	Auth  AuthConfig
	Mongo MongoConfig
	Redis RedisConfig
	Audit AuditConfig
}

// AuthConfig selects the request-guard variant and the paths it skips.
type AuthConfig struct {
	// Mode is one of "none", "basic", "session".
	Mode string `env:"AUTH_MODE, default=session"`
	// ExcludedPaths lists paths the guard never protects; a trailing *
	// matches any suffix.
	ExcludedPaths []string `env:"AUTH_EXCLUDED_PATHS, default=/,/users,/sessions,/reset_password,/health*,/metrics,/swagger*"`
	// SessionCookie is the cookie carrying the session token.
	SessionCookie string `env:"SESSION_COOKIE, default=session_id"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=identity_service"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

type AuditConfig struct {
	// Workers is the number of dispatcher shards delivering audit events.
	Workers int `env:"AUDIT_WORKERS, default=4"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
