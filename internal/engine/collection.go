package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/parentlink/internal/cache"
	"github.com/dmitrijs2005/parentlink/internal/logging"
	"github.com/dmitrijs2005/parentlink/internal/models"
	"github.com/dmitrijs2005/parentlink/internal/store"
)

// Remote is the authoritative source of one collection.
type Remote[T any] interface {
	List(ctx context.Context) ([]T, error)
	Create(ctx context.Context, record T) (T, error)
	UpdateStatus(ctx context.Context, id string, status models.Status) error
	Delete(ctx context.Context, id string) error
}

// Collection binds a store to its remote and seed, and runs the
// load/reconcile lifecycle.
type Collection[T store.Entity[T]] struct {
	name    models.Collection
	store   *store.Store[T]
	remote  Remote[T]
	seed    []T
	log     logging.Logger
	metrics *Metrics

	inflight sync.WaitGroup
}

// NewCollection builds the collection. Feeds insert new records at the
// front.
func NewCollection[T store.Entity[T]](name models.Collection, c cache.Cache, remote Remote[T], seed []T, log logging.Logger, m *Metrics) *Collection[T] {
	if log == nil {
		log = logging.Nop()
	}
	opts := []store.Option{
		store.WithLogger(log),
		store.WithWriteHook(func(err error) { m.observeWrite(string(name), err) }),
	}
	if prepends(name) {
		opts = append(opts, store.WithPrepend())
	}

	col := &Collection[T]{
		name:    name,
		store:   store.New[T](name, c, opts...),
		remote:  remote,
		seed:    seed,
		log:     log.With("collection", string(name)),
		metrics: m,
	}
	if m != nil {
		col.store.Subscribe(func(items []T) {
			pending, failed := col.store.Counts()
			m.setRecords(string(name), len(items), pending, failed)
		})
	}
	return col
}

// prepends reports whether name is displayed newest first. Proposals are
// listed in the order they were made.
func prepends(name models.Collection) bool {
	return name != models.CollectionProposals
}

// Accessors used by the services layer and the CLI.
func (c *Collection[T]) Name() models.Collection { return c.name }
func (c *Collection[T]) Store() *store.Store[T] { return c.store }
func (c *Collection[T]) Remote() Remote[T] { return c.remote }
func (c *Collection[T]) Logger() logging.Logger { return c.log }
func (c *Collection[T]) Metrics() *Metrics { return c.metrics }
func (c *Collection[T]) State() store.State { return c.store.State() }
func (c *Collection[T]) Snapshot() []T { return c.store.Snapshot() }
func (c *Collection[T]) Counts() (pending, failed int) { return c.store.Counts() }
func (c *Collection[T]) Len() int { return len(c.store.Snapshot()) }

// Load is step one of hydration: cache, or seed when the cache has nothing
// usable.
func (c *Collection[T]) Load(ctx context.Context) {
	c.store.Load(ctx, c.seed)
}

// Hydrate loads and then reconciles with the remote. A failing remote
// leaves the loaded state in place and is only logged.
func (c *Collection[T]) Hydrate(ctx context.Context) {
	c.Load(ctx)
	if err := c.Refresh(ctx); err != nil {
		c.log.Warn(ctx, "initial reconcile failed, keeping cached state", "op", "hydrate", "error", err)
	}
}

// Refresh lists the remote and merges the answer into the collection. The
// remote error is returned as is.
func (c *Collection[T]) Refresh(ctx context.Context) error {
	begin := time.Now()
	start := c.store.BeginReconcile()

	items, err := c.remote.List(ctx)
	c.metrics.ObserveRemote(string(c.name), "list", err)
	if err != nil {
		c.store.AbortReconcile(start)
		return fmt.Errorf("refresh %s: %w", c.name, err)
	}

	if !c.store.FinishReconcile(ctx, start, items) {
		c.log.Debug(ctx, "store closed, list result discarded", "op", "refresh")
		return nil
	}
	c.metrics.observeReconcile(string(c.name), time.Since(begin))
	return nil
}

// Go runs fn in the background with a context that outlives the caller's.
// Callers use it for remote calls whose results re-enter the store.
func (c *Collection[T]) Go(ctx context.Context, fn func(ctx context.Context)) {
	if c.store.Closed() {
		return
	}
	bg := context.WithoutCancel(ctx)
	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()
		fn(bg)
	}()
}

// Wait blocks until background remote calls and cache writes are done.
func (c *Collection[T]) Wait() {
	c.inflight.Wait()
	c.store.Wait()
}

func (c *Collection[T]) Close() {
	c.store.Close()
}
