package store

import (
	"context"
	"fmt"
	"slices"
)

// Subscribe registers fn to receive a copy of the collection after every
// change. Calls happen on the store's dispatcher goroutine, one at a time;
// bursts of changes are coalesced into one call with the latest state.
func (s *Store[T]) Subscribe(fn func([]T)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return func() {}
	}

	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Store[T]) signalLocked() {
	if s.closed {
		return
	}
	select {
	case s.signal <- struct{}{}:
	default:
	}
}

func (s *Store[T]) dispatch() {
	defer close(s.done)

	var last uint64
	for range s.signal {
		s.mu.Lock()
		if s.closed || s.clock == last {
			s.mu.Unlock()
			continue
		}
		last = s.clock
		items := cloneItems(s.items)
		ids := make([]int, 0, len(s.subs))
		for id := range s.subs {
			ids = append(ids, id)
		}
		s.mu.Unlock()
		slices.Sort(ids)

		for _, id := range ids {
			s.mu.Lock()
			fn, ok := s.subs[id]
			s.mu.Unlock()
			if !ok {
				continue
			}
			s.call(fn, cloneItems(items))
		}
	}
}

// call shields the dispatcher from a panicking listener.
func (s *Store[T]) call(fn func([]T), items []T) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error(context.Background(), "listener panicked", "op", "notify", "error", fmt.Sprint(r))
		}
	}()
	fn(items)
}
