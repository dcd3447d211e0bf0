package config

import (
	"os"
	"strconv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Environment
	Env string // "development", "production", etc.

	// Server
	ServerAddr string
	BaseURL    string

	// Database
	DatabaseURL string

	// Session storage; in-memory when empty, shared Redis otherwise so
	// admin sessions survive across instances.
	RedisURL string

	// OIDC (admin console login)
	OIDCIssuer       string
	OIDCClientID     string
	OIDCClientSecret string
	OIDCRedirectURL  string

	// Session
	SessionSecret string // Used for cookie encryption (min 32 chars)

	// SMTP (notification dispatch)
	SMTPHost     string
	SMTPPort     int
	SMTPFrom     string
	SMTPFromName string
	SMTPUsername string
	SMTPPassword string
	SMTPTLS      string // "none", "tls", "starttls"

	// Site
	OwnerEmail    string // Inbox for contact and consultation notifications
	CVDownloadURL string // Link included in approval emails
	BookingURL    string // External booking platform for consultations
	CORSOrigins   string // Comma-separated allowed origins
	SiteTitle     string

	// Rate-limit policies keyed by action type, see policy.go.
	RateLimits RateLimitPolicies
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	cfg := &Config{
		Env:         getEnv("ENV", "development"),
		ServerAddr:  getEnv("SERVER_ADDR", ":3000"),
		BaseURL:     getEnv("BASE_URL", "http://localhost:3000"),
		DatabaseURL: getEnv("DATABASE_URL", "postgres://localhost:5432/cvgate?sslmode=disable"),
		RedisURL:    getEnv("REDIS_URL", ""),

		OIDCIssuer:       getEnv("OIDC_ISSUER", ""),
		OIDCClientID:     getEnv("OIDC_CLIENT_ID", ""),
		OIDCClientSecret: getEnv("OIDC_CLIENT_SECRET", ""),
		OIDCRedirectURL:  getEnv("OIDC_REDIRECT_URL", "http://localhost:3000/auth/callback"),

		SessionSecret: getEnv("SESSION_SECRET", "change-me-in-production-min-32-chars"),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnvInt("SMTP_PORT", 587),
		SMTPFrom:     getEnv("SMTP_FROM", ""),
		SMTPFromName: getEnv("SMTP_FROM_NAME", ""),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SMTPTLS:      getEnv("SMTP_TLS", "starttls"),

		OwnerEmail:    getEnv("OWNER_EMAIL", ""),
		CVDownloadURL: getEnv("CV_DOWNLOAD_URL", ""),
		BookingURL:    getEnv("BOOKING_URL", ""),
		CORSOrigins:   getEnv("CORS_ORIGINS", ""),
		SiteTitle:     getEnv("SITE_TITLE", "CV Gate"),
	}

	cfg.RateLimits = LoadRateLimitPolicies()
	return cfg
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

// IsDev returns true if the environment is set to development.
func (c *Config) IsDev() bool {
	return c.Env == "development" || c.Env == "dev"
}

// IsEmailEnabled returns true if SMTP is configured.
func (c *Config) IsEmailEnabled() bool {
	return c.SMTPHost != "" && c.SMTPFrom != ""
}
