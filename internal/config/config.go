package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the application configuration. Loaded once at startup and
// injected into every component; nothing reads the environment after Load.
type Config struct {
	DatabaseURL string
	Port        string

	JWTSecret      string
	SessionTTL     time.Duration
	AdminEmail     string
	OTPExpiry      time.Duration

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	SMTPTimeout  time.Duration

	S3Bucket      string
	S3Region      string
	S3AccessKeyID string
	S3SecretKey   string
	S3EndpointURL string

	LogLevel  string
	LogFormat string
	DevMode   bool
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:        "8080",
		SessionTTL:  24 * time.Hour,
		OTPExpiry:   10 * time.Minute,
		SMTPPort:    587,
		SMTPTimeout: 15 * time.Second,
		S3Region:    "us-east-1",
		LogLevel:    "info",
		LogFormat:   "text",
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}
	cfg.DatabaseURL = databaseURL

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}
	cfg.JWTSecret = jwtSecret

	// Optional: with no admin configured, every identity is non-admin.
	cfg.AdminEmail = os.Getenv("ADMIN_EMAIL")

	if port := os.Getenv("PORT"); port != "" {
		cfg.Port = port
	}

	cfg.SMTPHost = os.Getenv("EMAIL_HOST")
	if cfg.SMTPHost == "" {
		return nil, fmt.Errorf("EMAIL_HOST environment variable is required")
	}
	if p := os.Getenv("EMAIL_PORT"); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid EMAIL_PORT %q: %w", p, err)
		}
		cfg.SMTPPort = port
	}
	cfg.SMTPUsername = os.Getenv("EMAIL_USER")
	cfg.SMTPPassword = os.Getenv("EMAIL_PASS")
	cfg.SMTPFrom = os.Getenv("EMAIL_FROM")
	if cfg.SMTPFrom == "" {
		cfg.SMTPFrom = cfg.SMTPUsername
	}

	cfg.S3Bucket = os.Getenv("S3_BUCKET")
	if r := os.Getenv("S3_REGION"); r != "" {
		cfg.S3Region = r
	}
	cfg.S3AccessKeyID = os.Getenv("S3_ACCESS_KEY_ID")
	cfg.S3SecretKey = os.Getenv("S3_SECRET_ACCESS_KEY")
	cfg.S3EndpointURL = os.Getenv("S3_ENDPOINT_URL")

	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		cfg.LogLevel = lvl
	}
	if format := os.Getenv("LOG_FORMAT"); format != "" {
		cfg.LogFormat = format
	}
	cfg.DevMode = os.Getenv("DEV_MODE") == "true"

	return cfg, nil
}
