package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/parentlink/internal/common"
)

var envPrefix = strings.ToUpper(common.AppName) + "_"

// parseEnv overlays cfg with PARENTLINK_* variables. Durations use
// time.ParseDuration syntax.
func parseEnv(cfg *Config, lookup func(string) (string, bool)) error {
	if lookup == nil {
		return nil
	}

	strs := map[string]*string{
		"REMOTE_BASE_URL": &cfg.RemoteBaseURL,
		"AUTH_TOKEN":      &cfg.AuthToken,
		"CACHE_BACKEND":   &cfg.CacheBackend,
		"CACHE_PATH":      &cfg.CachePath,
		"SEED_FILE":       &cfg.SeedFile,
		"LOG_LEVEL":       &cfg.LogLevel,
		"LOG_FORMAT":      &cfg.LogFormat,
		"METRICS_ADDR":    &cfg.MetricsAddr,
	}
	for name, dst := range strs {
		if v, ok := lookup(envPrefix + name); ok {
			*dst = v
		}
	}

	durs := map[string]*time.Duration{
		"REQUEST_TIMEOUT":       &cfg.RequestTimeout,
		"ONLINE_CHECK_INTERVAL": &cfg.OnlineCheckInterval,
		"RETRY_BASE_DELAY":      &cfg.RetryBaseDelay,
	}
	for name, dst := range durs {
		v, ok := lookup(envPrefix + name)
		if !ok {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", envPrefix, name, err)
		}
		*dst = d
	}

	if v, ok := lookup(envPrefix + "RETRY_MAX_ATTEMPTS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sRETRY_MAX_ATTEMPTS: %w", envPrefix, err)
		}
		cfg.RetryMaxAttempts = n
	}
	if v, ok := lookup(envPrefix + "SEAL_CACHE"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sSEAL_CACHE: %w", envPrefix, err)
		}
		cfg.SealCache = b
	}
	return nil
}
