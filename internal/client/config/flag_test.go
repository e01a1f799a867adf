package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{
			name: "all flags",
			args: []string{"-a", "https://api.evento.test", "-t", "30", "-d", "/tmp/e.db", "-l", "debug", "-i", "5"},
			expected: &Config{
				APIBaseURL:          "https://api.evento.test",
				RequestTimeout:      30 * time.Second,
				DatabasePath:        "/tmp/e.db",
				OnlineCheckInterval: 5 * time.Second,
				LogLevel:            "debug",
			},
		},
		{
			name:     "timeout untouched without -t",
			args:     []string{"-a", "https://api.evento.test", "-x", "ignored"},
			expected: &Config{APIBaseURL: "https://api.evento.test", RequestTimeout: 1500 * time.Millisecond},
		},
		{name: "incorrect timeout", args: []string{"-t", "abc"}, expectPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := &Config{RequestTimeout: 1500 * time.Millisecond}

			if tt.expectPanic {
				require.Panics(t, func() { parseFlags(config, tt.args) })
				return
			}

			require.NotPanics(t, func() { parseFlags(config, tt.args) })
			assert.Empty(t, cmp.Diff(config, tt.expected))
		})
	}
}
