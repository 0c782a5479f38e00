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
		expected  *Config
		name      string
		args      []string
		expectErr bool
	}{
		{
			name: "all flags",
			args: []string{"-a", "http://api:9090", "-t", "secret", "-b", "memory", "-p", "/tmp/x", "-s", "seed.yaml", "-i", "10", "-r", "3", "-l", "debug", "-m", ":9100"},
			expected: &Config{
				RemoteBaseURL:       "http://api:9090",
				AuthToken:           "secret",
				CacheBackend:        "memory",
				CachePath:           "/tmp/x",
				SeedFile:            "seed.yaml",
				OnlineCheckInterval: 10 * time.Second,
				RetryMaxAttempts:    3,
				LogLevel:            "debug",
				MetricsAddr:         ":9100",
			},
		},
		{
			name:     "unrelated flags are ignored",
			args:     []string{"repl", "--verbose", "-a", "http://api:1"},
			expected: &Config{RemoteBaseURL: "http://api:1"},
		},
		{name: "incorrect check interval", args: []string{"-i", "abc"}, expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			err := parseFlags(cfg, tt.args)
			if tt.expectErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(tt.expected, cfg))
		})
	}
}

func TestParseFlags_KeepsSubSecondIntervalWhenFlagAbsent(t *testing.T) {
	cfg := &Config{OnlineCheckInterval: 500 * time.Millisecond}
	require.NoError(t, parseFlags(cfg, []string{"-l", "warn"}))
	assert.Equal(t, 500*time.Millisecond, cfg.OnlineCheckInterval)
}
