// Package config loads runtime configuration for the parentlink sync layer
// and the syncctl operator CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. PARENTLINK_* environment variables.
//  4. Command-line flags, which override everything above.
//
// Supported flags
//
//	-a string   base URL of the remote API
//	-t string   bearer token sent with every remote call
//	-b string   cache backend: sqlite, badger or memory
//	-p string   cache path (file for sqlite, directory for badger)
//	-s string   YAML seed fixture file
//	-i int      online status check interval (seconds)
//	-r int      remote retry attempts, 0 disables retries
//	-l string   log level: debug, info, warn or error
//	-m string   address of the /metrics listener, empty disables it
//
// # JSON schema
//
// Durations use timex.Duration, so they can be strings like "3s" or integer
// nanoseconds:
//
//	{
//	  "remote_base_url": "https://api.example.org/v1",
//	  "request_timeout": "10s",
//	  "cache_backend": "sqlite",
//	  "online_check_interval": "3s",
//	  "retry_max_attempts": 3,
//	  "retry_base_delay": "250ms"
//	}
package config
