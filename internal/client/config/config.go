package config

import (
	"os"
	"time"
)

// Config holds runtime settings for the Evento CLI.
//
// Fields:
//   - APIBaseURL: base address of the Evento REST API.
//   - RequestTimeout: per-request timeout of the shared HTTP client.
//   - DatabasePath: SQLite file holding the token and the cookie store.
//   - UserAgent: user agent announced to the backend and used for the
//     device descriptor. Empty means the built-in default.
//   - IdentityEndpoint / SecureTokenEndpoint / IdentityAPIKey: identity
//     backend (Identity Toolkit REST) settings.
//   - GoogleClientID / GoogleClientSecret / OAuthListenAddr: federated
//     sign-in with a loopback redirect.
//   - OnlineCheckInterval: how often the CLI pings the API to track
//     connectivity.
//   - LogLevel / LogFormat: slog level and handler ("text" or "json").
type Config struct {
	APIBaseURL          string
	RequestTimeout      time.Duration
	DatabasePath        string
	UserAgent           string
	IdentityEndpoint    string
	SecureTokenEndpoint string
	IdentityAPIKey      string
	GoogleClientID      string
	GoogleClientSecret  string
	OAuthListenAddr     string
	OnlineCheckInterval time.Duration
	LogLevel            string
	LogFormat           string
}

// LoadDefaults populates c with development defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://localhost:5000"
	c.RequestTimeout = 10 * time.Second
	c.DatabasePath = "evento.db"
	c.IdentityEndpoint = "https://identitytoolkit.googleapis.com/v1"
	c.SecureTokenEndpoint = "https://securetoken.googleapis.com/v1"
	c.OAuthListenAddr = "127.0.0.1:8765"
	c.OnlineCheckInterval = 30 * time.Second
	c.LogLevel = "info"
	c.LogFormat = "text"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// the environment (and an optional .env file), a JSON file and finally
// command-line flags. Later sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg, os.Args[1:])
	parseFlags(cfg, os.Args[1:])
	return cfg
}
