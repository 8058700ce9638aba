package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"SiteLedger"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	// Store selects the persistence backend: "postgres" for the API server,
	// "sqlite" for the embedded local mode used by the TUI.
	Store struct {
		Driver     string `envconfig:"STORE_DRIVER" default:"postgres"`
		SQLitePath string `envconfig:"SQLITE_PATH" default:"siteledger.db"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"siteledger"`
	}

	Auth struct {
		JWTSecret string `envconfig:"JWT_SECRET" default:"change-me-in-production"`
	}

	Seed struct {
		AdminPassword string `envconfig:"ADMIN_PASSWORD" default:"admin123"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

func Load() (*Config, error) {
	// Missing .env files are fine; the environment wins either way.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}
