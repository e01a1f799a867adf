package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// envFile is loaded if present; a missing file is not an error.
var envFile = ".env"

// parseEnv overlays Config with EVENTO_* environment variables. Values from
// envFile never override variables already set in the process environment.
func parseEnv(cfg *Config) {
	_ = godotenv.Load(envFile)

	cfg.APIBaseURL = getEnv("EVENTO_API_URL", cfg.APIBaseURL)
	cfg.DatabasePath = getEnv("EVENTO_DB_PATH", cfg.DatabasePath)
	cfg.UserAgent = getEnv("EVENTO_USER_AGENT", cfg.UserAgent)
	cfg.IdentityEndpoint = getEnv("EVENTO_IDENTITY_ENDPOINT", cfg.IdentityEndpoint)
	cfg.SecureTokenEndpoint = getEnv("EVENTO_SECURE_TOKEN_ENDPOINT", cfg.SecureTokenEndpoint)
	cfg.IdentityAPIKey = getEnv("EVENTO_IDENTITY_API_KEY", cfg.IdentityAPIKey)
	cfg.GoogleClientID = getEnv("EVENTO_GOOGLE_CLIENT_ID", cfg.GoogleClientID)
	cfg.GoogleClientSecret = getEnv("EVENTO_GOOGLE_CLIENT_SECRET", cfg.GoogleClientSecret)
	cfg.OAuthListenAddr = getEnv("EVENTO_OAUTH_LISTEN_ADDR", cfg.OAuthListenAddr)
	cfg.LogLevel = getEnv("EVENTO_LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnv("EVENTO_LOG_FORMAT", cfg.LogFormat)

	cfg.RequestTimeout = getEnvDuration("EVENTO_REQUEST_TIMEOUT", cfg.RequestTimeout)
	cfg.OnlineCheckInterval = getEnvDuration("EVENTO_ONLINE_CHECK_INTERVAL", cfg.OnlineCheckInterval)
}

// getEnvDuration keeps defaultValue when the variable is unset, malformed or
// not positive.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
