// Package config provides application configuration.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all server configuration, read from the environment.
type Config struct {
	Port         string `env:"PORT" envDefault:"5175"`
	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`
	DBPath       string `env:"DB_PATH" envDefault:"./data/app.db"`
	ClientOrigin string `env:"CLIENT_ORIGIN" envDefault:"http://localhost:5173"`
	AppEnv       string `env:"APP_ENV" envDefault:"development"`

	JWTSecret      string `env:"JWT_SECRET" envDefault:"dev_secret_change_me"`
	JWTExpiresDays int    `env:"JWT_EXPIRES_DAYS" envDefault:"14"`
	CookieName     string `env:"COOKIE_NAME" envDefault:"numguess_token"`

	DailySalt string `env:"DAILY_SALT" envDefault:"local_dev_salt"`

	// Empty RedisAddr keeps sessions in process memory.
	RedisAddr     string        `env:"REDIS_ADDR"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"24h"`

	// Guesses per minute per client IP.
	GuessRateLimit int `env:"GUESS_RATE_LIMIT" envDefault:"120"`
}

// Load reads a .env file when present, then parses the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return Parse()
}

// Parse reads configuration from environment variables only.
func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks that required fields are usable.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT cannot be empty")
	}
	if c.DBPath == "" {
		return errors.New("DB_PATH cannot be empty")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET cannot be empty")
	}
	if c.IsProduction() && c.JWTSecret == "dev_secret_change_me" {
		return errors.New("JWT_SECRET must be set in production")
	}
	if c.JWTExpiresDays <= 0 {
		return errors.New("JWT_EXPIRES_DAYS must be > 0")
	}
	if c.SessionTTL < 0 {
		return errors.New("SESSION_TTL cannot be negative")
	}
	if c.GuessRateLimit <= 0 {
		return errors.New("GUESS_RATE_LIMIT must be > 0")
	}
	return nil
}

// IsProduction reports whether cookies should be Secure/SameSite=None.
func (c *Config) IsProduction() bool { return c.AppEnv == "production" }

// JWTTTL is the lifetime of issued auth tokens.
func (c *Config) JWTTTL() time.Duration {
	return time.Duration(c.JWTExpiresDays) * 24 * time.Hour
}
