package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/parentlink/internal/flagx"
)

var knownFlags = []string{"-a", "-t", "-b", "-p", "-s", "-i", "-r", "-l", "-m"}

// parseFlags populates cfg from command-line flags. Only the flags listed
// in knownFlags are looked at; anything else in args is ignored.
func parseFlags(cfg *Config, args []string) error {
	filtered := flagx.FilterArgs(args, knownFlags)

	fs := flag.NewFlagSet("parentlink", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.RemoteBaseURL, "a", cfg.RemoteBaseURL, "base URL of the remote API")
	fs.StringVar(&cfg.AuthToken, "t", cfg.AuthToken, "bearer token")
	fs.StringVar(&cfg.CacheBackend, "b", cfg.CacheBackend, "cache backend (sqlite|badger|memory)")
	fs.StringVar(&cfg.CachePath, "p", cfg.CachePath, "cache path")
	fs.StringVar(&cfg.SeedFile, "s", cfg.SeedFile, "YAML seed fixture file")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	fs.IntVar(&cfg.RetryMaxAttempts, "r", cfg.RetryMaxAttempts, "remote retry attempts")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.MetricsAddr, "m", cfg.MetricsAddr, "metrics listen address")

	if err := fs.Parse(filtered); err != nil {
		return err
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "i" {
			cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
		}
	})
	return nil
}
