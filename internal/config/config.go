package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	SiteURL       string
	SessionSecret string

	DBDriver    string // "postgres" or "sqlite"
	DatabaseURL string
	DBMaxConns  int32

	TemplatesDir string
	StaticDir    string
	MediaDir     string

	SMTP SMTPConfig
}

type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// Enabled is true only when every SMTP setting is present.
func (s SMTPConfig) Enabled() bool {
	return s.Host != "" && s.Port != "" && s.Username != "" && s.Password != "" && s.From != ""
}

// Load reads .env (if any) and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, finding env vars from system")
	}

	maxConns, err := strconv.Atoi(getenv("DB_MAX_CONNS", "10"))
	if err != nil || maxConns <= 0 {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS %q", os.Getenv("DB_MAX_CONNS"))
	}

	cfg := &Config{
		Port:          getenv("PORT", "8080"),
		SiteURL:       getenv("SITE_URL", "http://localhost:8080"),
		SessionSecret: getenv("SESSION_SECRET", "secret_key_change_me"),
		DBDriver:      getenv("DB_DRIVER", "postgres"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		DBMaxConns:    int32(maxConns),
		TemplatesDir:  getenv("TEMPLATES_DIR", "./web/templates"),
		StaticDir:     getenv("STATIC_DIR", "./web/static"),
		MediaDir:      getenv("MEDIA_DIR", "./media"),
		SMTP: SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     os.Getenv("SMTP_PORT"),
			Username: os.Getenv("SMTP_USER"),
			Password: os.Getenv("SMTP_PASS"),
			From:     os.Getenv("SMTP_FROM"),
		},
	}

	switch cfg.DBDriver {
	case "postgres":
		if cfg.DatabaseURL == "" {
			// Fallback for local dev if not set
			cfg.DatabaseURL = "host=localhost user=postgres password=postgres dbname=blogicum port=5432 sslmode=disable TimeZone=UTC"
		}
	case "sqlite":
		if cfg.DatabaseURL == "" {
			cfg.DatabaseURL = "file:blogicum.db?_foreign_keys=on"
		}
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	if cfg.SessionSecret == "secret_key_change_me" {
		log.Println("⚠️ SESSION_SECRET not set, using the development default")
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
