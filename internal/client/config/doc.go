// Package config loads runtime configuration for the Evento CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Environment variables, optionally seeded from a .env file in the
//     working directory (see parseEnv).
//  3. Optional JSON file selected with -c or -config (see parseJson).
//  4. Command-line flags (see parseFlags).
//
// Supported flags
//
//	-a string   base URL of the Evento API
//	-t int      request timeout (seconds)
//	-d string   path of the local SQLite database
//	-l string   log level (debug, info, warn, error)
//
// Environment
//
//	EVENTO_API_URL, EVENTO_REQUEST_TIMEOUT, EVENTO_DB_PATH, EVENTO_USER_AGENT,
//	EVENTO_IDENTITY_ENDPOINT, EVENTO_SECURE_TOKEN_ENDPOINT, EVENTO_IDENTITY_API_KEY,
//	EVENTO_GOOGLE_CLIENT_ID, EVENTO_GOOGLE_CLIENT_SECRET, EVENTO_OAUTH_LISTEN_ADDR,
//	EVENTO_LOG_LEVEL, EVENTO_LOG_FORMAT
//
// # JSON schema
//
// Durations use timex.Duration, so "10s" and integer nanoseconds both work:
//
//	{
//	  "api_base_url": "https://api.evento.example",
//	  "request_timeout": "10s",
//	  "database_path": "evento.db"
//	}
//
// The remember-me encryption secret is deliberately absent: it is a
// build-time value (see package buildinfo).
package config
