package store

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/parentlink/internal/common"
	"github.com/dmitrijs2005/parentlink/internal/models"
)

// Load reads the cached snapshot. When the key is absent or does not parse
// the collection starts from seed. Failures are logged, never returned.
// Records that were pending when the snapshot was written come back as
// failed: their create can no longer be confirmed.
func (s *Store[T]) Load(ctx context.Context, seed []T) {
	data, err := s.cache.Get(ctx, s.name.CacheKey())
	if err != nil {
		s.log.Warn(ctx, "cache read failed, using seed", "op", "load", "error", err)
		data = nil
	}

	var (
		items  []T
		origin map[string]Origin
		source = "seed"
	)
	if data != nil {
		items, origin, err = decodeSnapshot[T](data)
		if err != nil {
			s.log.Warn(ctx, "cache snapshot unreadable, using seed", "op", "load", "error", err)
		} else {
			source = "cache"
		}
	}
	if source == "seed" {
		items, origin = dedupe(seed), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	// creates issued before the load finished stay on top of it
	var local []T
	for _, it := range s.items {
		if s.originLocked(it.EntityID()) == OriginPending {
			local = append(local, it)
		}
	}
	pending := s.origin

	s.origin = make(map[string]Origin)
	for id, o := range origin {
		if o == OriginPending {
			o = OriginFailed
		}
		s.origin[id] = o
	}
	s.items = s.withLocal(items, local)
	for _, it := range local {
		s.origin[it.EntityID()] = pending[it.EntityID()]
	}
	s.state = StateCacheLoaded
	s.clock++
	if len(local) > 0 {
		s.persistLocked()
	}
	s.signalLocked()

	s.log.Debug(ctx, "collection loaded", "op", "load", "source", source, "count", len(items))
}

// Insert adds a locally created record as pending.
func (s *Store[T]) Insert(rec T) error {
	id := rec.EntityID()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return common.ErrClosed
	}
	if s.indexLocked(id) >= 0 {
		return fmt.Errorf("insert %s: duplicate id %q", s.name, id)
	}

	if s.prepend {
		s.items = append([]T{rec}, s.items...)
	} else {
		s.items = append(s.items, rec)
	}
	s.origin[id] = OriginPending
	seq := s.changedLocked()
	if len(s.active) > 0 {
		s.insertedAt[id] = seq
	}
	return nil
}

// SetStatus changes the status of id and returns the record's origin so the
// caller knows whether the remote can be told now. On a pending record the
// status is kept as an intent and handed back by Confirm.
func (s *Store[T]) SetStatus(id string, status models.Status) (Origin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", common.ErrClosed
	}

	i := s.indexLocked(id)
	if i < 0 {
		return "", fmt.Errorf("%s %q: %w", s.name, id, common.ErrorNotFound)
	}

	s.items[i] = s.items[i].WithStatus(status)
	o := s.originLocked(id)
	if o == OriginPending {
		st := status
		s.intentLocked(id).status = &st
	}
	seq := s.changedLocked()
	if len(s.active) > 0 {
		s.statusAt[id] = statusMark{status: status, seq: seq}
	}
	return o, nil
}

// Remove deletes id locally and returns the origin it had. Removing a
// pending record is remembered so Confirm can ask for the remote delete.
func (s *Store[T]) Remove(id string) (Origin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", common.ErrClosed
	}

	i := s.indexLocked(id)
	if i < 0 {
		return "", fmt.Errorf("%s %q: %w", s.name, id, common.ErrorNotFound)
	}

	o := s.originLocked(id)
	s.items = append(s.items[:i:i], s.items[i+1:]...)
	delete(s.origin, id)
	delete(s.statusAt, id)
	if o == OriginPending {
		s.intentLocked(id).remove = true
	}
	seq := s.changedLocked()
	if len(s.active) > 0 {
		s.removedAt[id] = seq
	}
	return o, nil
}

// Confirmation is what a confirmed create still owes the remote.
type Confirmation[T any] struct {
	Record T
	// Status is set when the status changed while the create was in flight.
	Status *models.Status
	// Remove is set when the record was deleted while the create was in
	// flight. The record is not reinserted.
	Remove bool
}

// Confirm swaps the pending record tempID for the server's version at the
// same position. ok is false when there is nothing to confirm: the store is
// closed or tempID is unknown.
func (s *Store[T]) Confirm(tempID string, server T) (c Confirmation[T], ok bool) {
	serverID := server.EntityID()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return c, false
	}

	in := s.deferred[tempID]
	delete(s.deferred, tempID)

	if in != nil && in.remove {
		if j := s.indexLocked(serverID); j >= 0 {
			s.items = append(s.items[:j:j], s.items[j+1:]...)
			delete(s.origin, serverID)
		}
		seq := s.changedLocked()
		if len(s.active) > 0 {
			s.removedAt[serverID] = seq
		}
		return Confirmation[T]{Record: server, Remove: true}, true
	}

	i := s.indexLocked(tempID)
	if i < 0 || s.originLocked(tempID) != OriginPending {
		return c, false
	}

	rec := server
	if in != nil && in.status != nil {
		rec = rec.WithStatus(*in.status)
		c.Status = in.status
	}
	c.Record = rec

	s.items[i] = rec
	delete(s.origin, tempID)
	delete(s.origin, serverID)

	// a reconcile may have brought the server id in first
	for j := range s.items {
		if j != i && s.items[j].EntityID() == serverID {
			s.items = append(s.items[:j:j], s.items[j+1:]...)
			break
		}
	}

	seq := s.changedLocked()
	if len(s.active) > 0 {
		s.confirmedAt[serverID] = seq
		if c.Status != nil {
			s.statusAt[serverID] = statusMark{status: *c.Status, seq: seq}
		}
	}
	return c, true
}

// Fail marks the pending record tempID as failed. Intents recorded for it
// stay local.
func (s *Store[T]) Fail(tempID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}

	delete(s.deferred, tempID)
	if s.indexLocked(tempID) < 0 || s.originLocked(tempID) != OriginPending {
		return false
	}
	s.origin[tempID] = OriginFailed
	s.changedLocked()
	return true
}

// Retry flips a failed record back to pending so its create can be sent
// again.
func (s *Store[T]) Retry(id string) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero T
	if s.closed {
		return zero, common.ErrClosed
	}
	i := s.indexLocked(id)
	if i < 0 {
		return zero, fmt.Errorf("%s %q: %w", s.name, id, common.ErrorNotFound)
	}
	if s.originLocked(id) != OriginFailed {
		return zero, fmt.Errorf("%s %q is %s, not failed", s.name, id, s.originLocked(id))
	}
	s.origin[id] = OriginPending
	seq := s.changedLocked()
	if len(s.active) > 0 {
		s.insertedAt[id] = seq
	}
	return s.items[i], nil
}

func (s *Store[T]) intentLocked(id string) *intent {
	in, ok := s.deferred[id]
	if !ok {
		in = &intent{}
		s.deferred[id] = in
	}
	return in
}

// changedLocked advances the logical clock, queues a cache write and wakes
// the listeners. It returns the new clock value.
func (s *Store[T]) changedLocked() uint64 {
	s.clock++
	s.persistLocked()
	s.signalLocked()
	return s.clock
}

func dedupe[T Entity[T]](items []T) []T {
	seen := make(map[string]struct{}, len(items))
	out := make([]T, 0, len(items))
	for _, it := range items {
		id := it.EntityID()
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, it)
	}
	return out
}
