package store

import (
	"context"
)

// persistLocked serializes the collection and writes it on another
// goroutine. Writes are versioned by the logical clock; a write that lost
// the race against a newer one is skipped, so the cache always ends up
// holding the latest state.
func (s *Store[T]) persistLocked() {
	version := s.clock
	data, err := encodeSnapshot(s.items, s.origin)
	if err != nil {
		s.log.Error(context.Background(), "snapshot encode failed", "op", "persist", "error", err)
		return
	}

	s.writes.Add(1)
	go func() {
		defer s.writes.Done()
		s.write(version, data)
	}()
}

func (s *Store[T]) write(version uint64, data []byte) {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	if version <= s.persisted {
		return
	}

	ctx := context.Background()
	err := s.cache.Set(ctx, s.name.CacheKey(), data)
	if s.onWrite != nil {
		s.onWrite(err)
	}
	if err != nil {
		s.log.Error(ctx, "cache write failed", "op", "persist", "version", version, "error", err)
		return
	}
	s.persisted = version
}
