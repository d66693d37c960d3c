// Package config provides configuration for the application
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Logging  LoggingConfig
	CORS     CORSConfig
	Session  SessionConfig
	Uploads  UploadsConfig
	Admin    AdminConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

// ServerConfig holds server settings
type ServerConfig struct {
	Port int
	// TrustForwardedFor makes the first X-Forwarded-For entry the caller's origin ip.
	// Only safe behind a single trusted reverse proxy.
	TrustForwardedFor bool
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level string
}

// CORSConfig holds CORS settings
type CORSConfig struct {
	AllowedOrigins []string
}

// SessionConfig holds token signing and expiry settings
type SessionConfig struct {
	Secret        string
	TokenTTL      time.Duration
	InactivityTTL time.Duration
}

// UploadsConfig holds local blob storage settings
type UploadsConfig struct {
	Dir       string
	URLPrefix string
}

// AdminConfig holds the optional bootstrap admin account
type AdminConfig struct {
	Username string
	Email    string
	Password string
}

// Enabled reports whether a bootstrap admin is configured
func (a AdminConfig) Enabled() bool {
	return a.Username != "" && a.Email != "" && a.Password != ""
}

const (
	defaultTokenTTL      = 30 * time.Minute
	defaultInactivityTTL = 30 * time.Minute
)

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	_ = godotenv.Load()

	cfg := &Config{}

	// Database configuration
	dbHost := os.Getenv("DB_HOST")
	if dbHost == "" {
		return nil, fmt.Errorf("DB_HOST is required")
	}
	cfg.Database.Host = dbHost

	dbPortStr := os.Getenv("DB_PORT")
	if dbPortStr == "" {
		return nil, fmt.Errorf("DB_PORT is required")
	}
	dbPort, err := strconv.Atoi(dbPortStr)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	cfg.Database.Port = dbPort

	dbUser := os.Getenv("DB_USER")
	if dbUser == "" {
		return nil, fmt.Errorf("DB_USER is required")
	}
	cfg.Database.User = dbUser

	dbPassword := os.Getenv("DB_PASSWORD")
	if dbPassword == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required")
	}
	cfg.Database.Password = dbPassword

	dbName := os.Getenv("DB_NAME")
	if dbName == "" {
		return nil, fmt.Errorf("DB_NAME is required")
	}
	cfg.Database.DBName = dbName

	// Server configuration
	serverPortStr := os.Getenv("SERVER_PORT")
	if serverPortStr == "" {
		serverPortStr = "8080" // default port
	}
	serverPort, err := strconv.Atoi(serverPortStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}
	cfg.Server.Port = serverPort

	trustStr := os.Getenv("TRUST_FORWARDED_FOR")
	if trustStr == "" {
		trustStr = "true"
	}
	trust, err := strconv.ParseBool(trustStr)
	if err != nil {
		return nil, fmt.Errorf("invalid TRUST_FORWARDED_FOR: %w", err)
	}
	cfg.Server.TrustForwardedFor = trust

	// Logging configuration
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info" // default level
	}
	cfg.Logging.Level = logLevel

	cfg.CORS.AllowedOrigins = parseOrigins(os.Getenv("CORS_ALLOWED_ORIGINS"))

	// Session configuration
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	cfg.Session.Secret = secret

	cfg.Session.TokenTTL, err = durationOrDefault("TOKEN_TTL", defaultTokenTTL)
	if err != nil {
		return nil, err
	}
	cfg.Session.InactivityTTL, err = durationOrDefault("INACTIVITY_TTL", defaultInactivityTTL)
	if err != nil {
		return nil, err
	}

	// Uploads configuration
	cfg.Uploads.Dir = os.Getenv("UPLOADS_DIR")
	if cfg.Uploads.Dir == "" {
		cfg.Uploads.Dir = "uploads"
	}
	cfg.Uploads.URLPrefix = os.Getenv("UPLOADS_URL_PREFIX")
	if cfg.Uploads.URLPrefix == "" {
		cfg.Uploads.URLPrefix = "/uploads"
	}
	cfg.Uploads.URLPrefix = "/" + strings.Trim(cfg.Uploads.URLPrefix, "/")

	// Bootstrap admin (optional, all or nothing)
	cfg.Admin.Username = os.Getenv("ADMIN_USERNAME")
	cfg.Admin.Email = os.Getenv("ADMIN_EMAIL")
	cfg.Admin.Password = os.Getenv("ADMIN_PASSWORD")
	if !cfg.Admin.Enabled() && (cfg.Admin.Username != "" || cfg.Admin.Email != "" || cfg.Admin.Password != "") {
		return nil, fmt.Errorf("ADMIN_USERNAME, ADMIN_EMAIL and ADMIN_PASSWORD must be set together")
	}

	return cfg, nil
}

// parseOrigins parses comma-separated origins, defaulting to allow all
func parseOrigins(raw string) []string {
	if raw == "" {
		// Default to allow all origins if not specified (for development)
		return []string{"*"}
	}
	origins := make([]string, 0)
	for _, origin := range strings.Split(raw, ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

func durationOrDefault(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", key)
	}
	return d, nil
}

// DSN returns the database connection string
func (c *Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
	)
}
