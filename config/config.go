package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// Config holds every setting the service reads from the environment.
type Config struct {
	SecretKey     string `env:"SECRET_KEY,required,notEmpty"`
	DatabaseURL   string `env:"DATABASE_URL" envDefault:"./cafe.db"`
	Port          string `env:"PORT" envDefault:"5001"`
	SessionSecure bool   `env:"SESSION_SECURE" envDefault:"false"`

	BcryptCost  int `env:"BCRYPT_COST" envDefault:"10"`
	HashWorkers int `env:"HASH_WORKERS" envDefault:"0"`

	// Empty disables the listing cache.
	CacheType     string `env:"CACHE_TYPE"`
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// Contact notifications are only sent when both are set.
	MailAddress     string `env:"MAIL_ADDRESS"`
	MailAppPassword string `env:"MAIL_APP_PW"`
	SMTPAddr        string `env:"SMTP_ADDR" envDefault:"smtp.gmail.com:587"`
}

// Load reads a .env file when one exists, then parses the environment.
func Load() (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("load .env: %w", err)
		}
	}

	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.HashWorkers <= 0 {
		cfg.HashWorkers = runtime.NumCPU()
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.BcryptCost < bcrypt.DefaultCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("BCRYPT_COST must be between %d and %d, got %d", bcrypt.DefaultCost, bcrypt.MaxCost, c.BcryptCost)
	}
	if c.CacheType != "" && c.CacheType != "redis" {
		return fmt.Errorf("unsupported CACHE_TYPE %q", c.CacheType)
	}
	if (c.MailAddress == "") != (c.MailAppPassword == "") {
		return errors.New("MAIL_ADDRESS and MAIL_APP_PW must be set together")
	}
	return nil
}

// MailEnabled reports whether contact messages should be mailed.
func (c *Config) MailEnabled() bool {
	return c.MailAddress != "" && c.MailAppPassword != ""
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%s", c.Port)
}
