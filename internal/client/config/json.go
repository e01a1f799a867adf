package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/evento/internal/flagx"
	"github.com/dmitrijs2005/evento/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Empty fields
// leave the corresponding Config value untouched.
type JsonConfig struct {
	APIBaseURL          string         `json:"api_base_url"`
	RequestTimeout      timex.Duration `json:"request_timeout"`
	DatabasePath        string         `json:"database_path"`
	UserAgent           string         `json:"user_agent"`
	IdentityEndpoint    string         `json:"identity_endpoint"`
	SecureTokenEndpoint string         `json:"secure_token_endpoint"`
	IdentityAPIKey      string         `json:"identity_api_key"`
	GoogleClientID      string         `json:"google_client_id"`
	GoogleClientSecret  string         `json:"google_client_secret"`
	OAuthListenAddr     string         `json:"oauth_listen_addr"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`
	LogLevel            string         `json:"log_level"`
	LogFormat           string         `json:"log_format"`
}

// parseJson overlays Config with values from the file named by -c/-config.
// Without the flag nothing happens. Read or decode failures panic; this
// only runs at startup.
func parseJson(cfg *Config, args []string) {
	path := flagx.ConfigPath(args)
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	setString(&cfg.APIBaseURL, jc.APIBaseURL)
	setString(&cfg.DatabasePath, jc.DatabasePath)
	setString(&cfg.UserAgent, jc.UserAgent)
	setString(&cfg.IdentityEndpoint, jc.IdentityEndpoint)
	setString(&cfg.SecureTokenEndpoint, jc.SecureTokenEndpoint)
	setString(&cfg.IdentityAPIKey, jc.IdentityAPIKey)
	setString(&cfg.GoogleClientID, jc.GoogleClientID)
	setString(&cfg.GoogleClientSecret, jc.GoogleClientSecret)
	setString(&cfg.OAuthListenAddr, jc.OAuthListenAddr)
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.LogFormat, jc.LogFormat)
	if jc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.OnlineCheckInterval.Duration > 0 {
		cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
