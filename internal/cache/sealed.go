package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/parentlink/internal/cryptox"
)

const (
	saltKey     = "seal:salt"
	verifierKey = "seal:verifier"
)

// ErrWrongPassphrase is returned by NewSealedCache when the passphrase does
// not match the one the cache was sealed with.
var ErrWrongPassphrase = errors.New("wrong cache passphrase")

// SealedCache encrypts every value before handing it to the inner cache.
// The salt and a key verifier are stored in the inner cache in clear.
type SealedCache struct {
	inner Cache
	key   []byte
}

// NewSealedCache derives the key for passphrase. The first call on an empty
// inner cache picks a salt and stores the verifier.
func NewSealedCache(ctx context.Context, inner Cache, passphrase []byte) (*SealedCache, error) {
	salt, err := inner.Get(ctx, saltKey)
	if err != nil {
		return nil, err
	}

	if salt == nil {
		if salt, err = cryptox.NewSalt(); err != nil {
			return nil, err
		}
		key := cryptox.DeriveMasterKey(passphrase, salt)
		if err := inner.Set(ctx, saltKey, salt); err != nil {
			return nil, err
		}
		if err := inner.Set(ctx, verifierKey, cryptox.MakeVerifier(key)); err != nil {
			return nil, err
		}
		return &SealedCache{inner: inner, key: key}, nil
	}

	key := cryptox.DeriveMasterKey(passphrase, salt)
	verifier, err := inner.Get(ctx, verifierKey)
	if err != nil {
		return nil, err
	}
	if !cryptox.CheckVerifier(key, verifier) {
		return nil, ErrWrongPassphrase
	}
	return &SealedCache{inner: inner, key: key}, nil
}

func (s *SealedCache) Get(ctx context.Context, key string) ([]byte, error) {
	sealed, err := s.inner.Get(ctx, key)
	if err != nil || sealed == nil {
		return nil, err
	}

	plain, err := cryptox.Open(sealed, s.key)
	if err != nil {
		return nil, fmt.Errorf("unseal %s: %w", key, err)
	}
	if plain == nil {
		plain = []byte{}
	}
	return plain, nil
}

func (s *SealedCache) Set(ctx context.Context, key string, value []byte) error {
	sealed, err := cryptox.Seal(value, s.key)
	if err != nil {
		return fmt.Errorf("seal %s: %w", key, err)
	}
	return s.inner.Set(ctx, key, sealed)
}
