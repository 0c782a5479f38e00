// Package store holds one collection in memory and keeps it in step with
// the durable cache.
//
// A Store is the single owner of its slice. Every mutation runs under the
// store mutex and completes before any remote or cache call starts; cache
// writes and listener notifications happen on other goroutines afterwards.
// Readers get copies.
//
// Records carry a local origin next to them:
//
//	confirmed  the remote knows the record under its current id
//	pending    created locally, the remote create is in flight
//	failed     the remote create failed; the record stays until a reconcile
//
// A reconcile is an explicit merge of the remote list with whatever changed
// locally after the list was requested, see FinishReconcile.
package store

import (
	"sync"

	"github.com/dmitrijs2005/parentlink/internal/cache"
	"github.com/dmitrijs2005/parentlink/internal/logging"
	"github.com/dmitrijs2005/parentlink/internal/models"
)

// Entity is the envelope the store needs from a record.
type Entity[T any] interface {
	EntityID() string
	WithStatus(models.Status) T
}

// Origin tags where a record stands with the remote.
type Origin string

const (
	OriginConfirmed Origin = "confirmed"
	OriginPending   Origin = "pending"
	OriginFailed    Origin = "failed"
)

// State is the lifecycle of a collection.
type State int

const (
	StateUninitialized State = iota
	StateCacheLoaded
	StateRemoteReconciled
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "UNINITIALIZED"
	case StateCacheLoaded:
		return "CACHE_LOADED"
	case StateRemoteReconciled:
		return "REMOTE_RECONCILED"
	default:
		return "UNKNOWN"
	}
}

// intent is a mutation requested while the record's create was in flight.
type intent struct {
	status *models.Status
	remove bool
}

type statusMark struct {
	status models.Status
	seq    uint64
}

// Store is one collection. The zero value is not usable; call New.
type Store[T Entity[T]] struct {
	name    models.Collection
	cache   cache.Cache
	log     logging.Logger
	prepend bool
	onWrite func(error)

	mu     sync.Mutex
	items  []T
	origin map[string]Origin
	state  State
	closed bool
	clock  uint64

	deferred map[string]*intent

	// changes made while at least one reconcile is in flight, keyed by id
	active      map[uint64]int
	statusAt    map[string]statusMark
	removedAt   map[string]uint64
	confirmedAt map[string]uint64
	insertedAt  map[string]uint64

	subs    map[int]func([]T)
	nextSub int
	signal  chan struct{}
	done    chan struct{}

	persistMu sync.Mutex
	persisted uint64
	writes    sync.WaitGroup
}

// Option configures a Store.
type Option func(*options)

type options struct {
	log     logging.Logger
	prepend bool
	onWrite func(error)
}

// WithLogger sets the store logger. The default discards everything.
func WithLogger(l logging.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithPrepend inserts new records at the front, as feeds display them.
func WithPrepend() Option {
	return func(o *options) { o.prepend = true }
}

// WithWriteHook is called after every cache write attempt.
func WithWriteHook(fn func(err error)) Option {
	return func(o *options) { o.onWrite = fn }
}

// New returns an empty, uninitialized store persisting to c under
// name.CacheKey().
func New[T Entity[T]](name models.Collection, c cache.Cache, opts ...Option) *Store[T] {
	o := options{log: logging.Nop()}
	for _, opt := range opts {
		opt(&o)
	}

	s := &Store[T]{
		name:        name,
		cache:       c,
		log:         o.log.With("collection", string(name)),
		prepend:     o.prepend,
		onWrite:     o.onWrite,
		items:       []T{},
		origin:      make(map[string]Origin),
		deferred:    make(map[string]*intent),
		active:      make(map[uint64]int),
		statusAt:    make(map[string]statusMark),
		removedAt:   make(map[string]uint64),
		confirmedAt: make(map[string]uint64),
		insertedAt:  make(map[string]uint64),
		subs:        make(map[int]func([]T)),
		signal:      make(chan struct{}, 1),
		done:        make(chan struct{}),
	}
	go s.dispatch()
	return s
}

// Name is the collection the store holds.
func (s *Store[T]) Name() models.Collection { return s.name }

// Snapshot returns a copy of the collection in display order.
func (s *Store[T]) Snapshot() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneItems(s.items)
}

// Get returns the record with id and its origin.
func (s *Store[T]) Get(id string) (T, Origin, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		var zero T
		return zero, "", false
	}
	return s.items[i], s.originLocked(id), true
}

// State returns the current lifecycle state.
func (s *Store[T]) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Counts reports how many records are pending and failed.
func (s *Store[T]) Counts() (pending, failed int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.origin {
		switch o {
		case OriginPending:
			pending++
		case OriginFailed:
			failed++
		}
	}
	return pending, failed
}

// Close stops notifications and makes later mutations fail with
// common.ErrClosed. Results of remote calls still in flight are discarded.
// Close waits for queued cache writes.
func (s *Store[T]) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.subs = make(map[int]func([]T))
	close(s.signal)
	s.mu.Unlock()

	<-s.done
	s.writes.Wait()
}

// Closed reports whether Close was called.
func (s *Store[T]) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Wait blocks until every cache write queued so far has finished.
func (s *Store[T]) Wait() {
	s.writes.Wait()
}

func (s *Store[T]) indexLocked(id string) int {
	for i, it := range s.items {
		if it.EntityID() == id {
			return i
		}
	}
	return -1
}

func (s *Store[T]) originLocked(id string) Origin {
	if o, ok := s.origin[id]; ok {
		return o
	}
	return OriginConfirmed
}

func cloneItems[T any](items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	return out
}
