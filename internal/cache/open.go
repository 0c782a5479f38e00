package cache

import (
	"context"
	"fmt"
	"io"

	"github.com/dmitrijs2005/parentlink/internal/config"
)

// Backend is a Cache that owns resources.
type Backend interface {
	Cache
	io.Closer
}

// Open builds the backend named by cfg.CacheBackend. When passphrase is
// non-nil the backend is wrapped in a SealedCache.
func Open(ctx context.Context, cfg *config.Config, passphrase []byte) (Cache, io.Closer, error) {
	var (
		b   Backend
		err error
	)

	switch cfg.CacheBackend {
	case config.CacheBackendSQLite:
		b, err = OpenSQLite(ctx, cfg.CachePath)
	case config.CacheBackendBadger:
		b, err = OpenBadger(cfg.CachePath)
	case config.CacheBackendMemory:
		b = NewMemoryCache()
	default:
		return nil, nil, fmt.Errorf("unknown cache backend %q", cfg.CacheBackend)
	}
	if err != nil {
		return nil, nil, err
	}

	if passphrase == nil {
		return b, b, nil
	}

	sealed, err := NewSealedCache(ctx, b, passphrase)
	if err != nil {
		_ = b.Close()
		return nil, nil, err
	}
	return sealed, b, nil
}
