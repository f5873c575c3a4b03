package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

const (
	defaultDBPath = "./glassquote.db"
	defaultAddr   = ":8080"
	defaultEnv    = "dev"
)

// Config holds application configuration sourced from environment variables.
type Config struct {
	Env            string
	Addr           string
	DBPath         string
	AdminEmail     string
	AdminPassword  string
	SessionSecret  string
	RemoteBaseURL  string
	MetricsEnabled bool
}

// Load reads environment variables and returns a populated Config.
func Load() Config {
	// Best-effort: load local dev environment variables.
	// Production should use real env injection.
	_ = godotenv.Load()

	cfg := Config{
		Env:            os.Getenv("APP_ENV"),
		Addr:           os.Getenv("ADDR"),
		DBPath:         os.Getenv("DB_PATH"),
		AdminEmail:     os.Getenv("ADMIN_EMAIL"),
		AdminPassword:  os.Getenv("ADMIN_PASSWORD"),
		SessionSecret:  os.Getenv("SESSION_SECRET"),
		RemoteBaseURL:  os.Getenv("REMOTE_CATALOG_URL"),
		MetricsEnabled: os.Getenv("METRICS_ENABLED") != "0",
	}

	if cfg.Env == "" {
		cfg.Env = defaultEnv
	}
	if cfg.Addr == "" {
		cfg.Addr = defaultAddr
	}
	if cfg.DBPath == "" {
		cfg.DBPath = defaultDBPath
	}

	if cfg.AdminEmail == "" {
		log.Print("warning: ADMIN_EMAIL is not set")
	}
	if cfg.AdminPassword == "" {
		log.Print("warning: ADMIN_PASSWORD is not set")
	}
	if cfg.SessionSecret == "" {
		log.Print("warning: SESSION_SECRET is not set")
	}

	return cfg
}

// IsDev reports whether the app runs in the local development environment.
func (c Config) IsDev() bool {
	return c.Env == "dev"
}
