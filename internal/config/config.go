package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	ServerPort string

	// Primary backend: sqlite, postgres or mysql
	DatabaseType string
	DatabaseURL  string
	DatabasePath string

	// Local fallback cache (always sqlite)
	CachePath string

	// Read-only bulk export consulted when both backends are empty
	BulkFeedURL string

	// Teacher dashboard
	DashboardSecret   string
	DashboardDuration time.Duration

	// Report email (SES); empty FromEmail disables sending
	AWSRegion  string
	FromEmail  string
	FromName   string
	AppBaseURL string

	// Optional Google sign-in for teachers
	GoogleClientID     string
	GoogleClientSecret string
	OAuthRedirectURL   string
}

// Load reads configuration from environment variables with sensible defaults
func Load() *Config {
	// A missing .env file is fine; the environment wins either way.
	_ = godotenv.Load()

	return &Config{
		ServerPort:         getEnv("PORT", "8080"),
		DatabaseType:       getEnv("DB_TYPE", "sqlite"),
		DatabaseURL:        getEnv("DB_URL", ""),
		DatabasePath:       getEnv("DB_PATH", "./khamboran.db"),
		CachePath:          getEnv("CACHE_PATH", "./khamboran-cache.db"),
		BulkFeedURL:        getEnv("BULK_FEED_URL", ""),
		DashboardSecret:    getEnv("DASHBOARD_SECRET", "khamboran-dev-secret"),
		DashboardDuration:  12 * time.Hour,
		AWSRegion:          getEnv("AWS_REGION", "ap-southeast-1"),
		FromEmail:          getEnv("SES_FROM_EMAIL", ""),
		FromName:           getEnv("SES_FROM_NAME", "Khamboran"),
		AppBaseURL:         getEnv("APP_BASE_URL", "http://localhost:8080"),
		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		OAuthRedirectURL:   getEnv("OAUTH_REDIRECT_URL", ""),
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
