package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/parentlink/internal/flagx"
	"github.com/dmitrijs2005/parentlink/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Pointer fields
// tell "absent" apart from zero values so a partial file only overrides what
// it names.
type JsonConfig struct {
	RemoteBaseURL       *string         `json:"remote_base_url"`
	AuthToken           *string         `json:"auth_token"`
	RequestTimeout      *timex.Duration `json:"request_timeout"`
	CacheBackend        *string         `json:"cache_backend"`
	CachePath           *string         `json:"cache_path"`
	SealCache           *bool           `json:"seal_cache"`
	SeedFile            *string         `json:"seed_file"`
	OnlineCheckInterval *timex.Duration `json:"online_check_interval"`
	RetryMaxAttempts    *int            `json:"retry_max_attempts"`
	RetryBaseDelay      *timex.Duration `json:"retry_base_delay"`
	LogLevel            *string         `json:"log_level"`
	LogFormat           *string         `json:"log_format"`
	MetricsAddr         *string         `json:"metrics_addr"`
}

// parseJSON overlays cfg with the file named by -c/-config, if any.
func parseJSON(cfg *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return err
	}

	setString(&cfg.RemoteBaseURL, jc.RemoteBaseURL)
	setString(&cfg.AuthToken, jc.AuthToken)
	setString(&cfg.CacheBackend, jc.CacheBackend)
	setString(&cfg.CachePath, jc.CachePath)
	setString(&cfg.SeedFile, jc.SeedFile)
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.LogFormat, jc.LogFormat)
	setString(&cfg.MetricsAddr, jc.MetricsAddr)

	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.OnlineCheckInterval != nil {
		cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	}
	if jc.RetryBaseDelay != nil {
		cfg.RetryBaseDelay = jc.RetryBaseDelay.Duration
	}
	if jc.RetryMaxAttempts != nil {
		cfg.RetryMaxAttempts = *jc.RetryMaxAttempts
	}
	if jc.SealCache != nil {
		cfg.SealCache = *jc.SealCache
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
