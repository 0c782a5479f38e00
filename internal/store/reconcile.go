package store

import (
	"context"
)

// BeginReconcile marks the start of a remote list call. The returned token
// goes to FinishReconcile or AbortReconcile. Local changes made after this
// point are replayed on top of the list result.
func (s *Store[T]) BeginReconcile() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := s.clock
	s.active[start]++
	return start
}

// AbortReconcile releases a reconcile whose list call failed. The
// collection is left as it was.
func (s *Store[T]) AbortReconcile(start uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.releaseLocked(start)
}

// FinishReconcile replaces the collection with snapshot, the remote list
// requested at start, and then re-applies local changes the list could not
// have seen:
//
//   - records still pending are kept, at the front for feeds;
//   - records confirmed after start are kept even if missing from snapshot;
//   - creates issued after start that already failed are kept as failed;
//   - records removed after start stay removed;
//   - statuses set after start win over the snapshot.
//
// Creates that had failed before start are dropped: the remote is
// authoritative once it answers a list it could have seen them in.
// It returns false when the store was closed meanwhile.
func (s *Store[T]) FinishReconcile(ctx context.Context, start uint64, snapshot []T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.releaseLocked(start)

	if s.closed {
		return false
	}

	merged := make([]T, 0, len(snapshot)+len(s.items))
	inSnapshot := make(map[string]struct{}, len(snapshot))
	for _, rec := range snapshot {
		id := rec.EntityID()
		if _, dup := inSnapshot[id]; dup {
			continue
		}
		inSnapshot[id] = struct{}{}
		if seq, ok := s.removedAt[id]; ok && seq > start {
			continue
		}
		if m, ok := s.statusAt[id]; ok && m.seq > start {
			rec = rec.WithStatus(m.status)
		}
		merged = append(merged, rec)
	}

	var (
		local   []T
		dropped int
		origin  = make(map[string]Origin)
	)
	for _, it := range s.items {
		id := it.EntityID()
		if _, ok := inSnapshot[id]; ok {
			continue
		}
		switch o := s.originLocked(id); {
		case o == OriginPending:
			local = append(local, it)
			origin[id] = o
		case o == OriginFailed && s.insertedAt[id] > start:
			local = append(local, it)
			origin[id] = o
		case s.confirmedAt[id] > start:
			local = append(local, it)
		default:
			dropped++
		}
	}

	s.items = s.withLocal(merged, local)
	s.origin = origin
	s.state = StateRemoteReconciled
	s.changedLocked()

	s.log.Debug(ctx, "collection reconciled", "op", "reconcile",
		"remote", len(snapshot), "kept_local", len(local), "dropped", dropped)
	return true
}

// withLocal puts local records around base following the insert order of
// the collection.
func (s *Store[T]) withLocal(base, local []T) []T {
	if len(local) == 0 {
		return base
	}
	present := make(map[string]struct{}, len(base))
	for _, it := range base {
		present[it.EntityID()] = struct{}{}
	}
	extra := make([]T, 0, len(local))
	for _, it := range local {
		if _, ok := present[it.EntityID()]; !ok {
			extra = append(extra, it)
		}
	}
	if s.prepend {
		return append(extra, base...)
	}
	return append(base, extra...)
}

// releaseLocked forgets start and drops change marks no running reconcile
// can need any more.
func (s *Store[T]) releaseLocked(start uint64) {
	if n := s.active[start]; n > 1 {
		s.active[start] = n - 1
	} else {
		delete(s.active, start)
	}

	if len(s.active) == 0 {
		clear(s.statusAt)
		clear(s.removedAt)
		clear(s.confirmedAt)
		clear(s.insertedAt)
		return
	}

	oldest := ^uint64(0)
	for st := range s.active {
		oldest = min(oldest, st)
	}
	for id, m := range s.statusAt {
		if m.seq <= oldest {
			delete(s.statusAt, id)
		}
	}
	for id, seq := range s.removedAt {
		if seq <= oldest {
			delete(s.removedAt, id)
		}
	}
	for id, seq := range s.confirmedAt {
		if seq <= oldest {
			delete(s.confirmedAt, id)
		}
	}
	for id, seq := range s.insertedAt {
		if seq <= oldest {
			delete(s.insertedAt, id)
		}
	}
}
