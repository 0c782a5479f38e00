// Package engine runs the five collections of the app: it hydrates them
// from the durable cache, reconciles them against the remote and exposes
// them to the mutation façade.
package engine

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/parentlink/internal/cache"
	"github.com/dmitrijs2005/parentlink/internal/common"
	"github.com/dmitrijs2005/parentlink/internal/gateway"
	"github.com/dmitrijs2005/parentlink/internal/logging"
	"github.com/dmitrijs2005/parentlink/internal/models"
	"github.com/dmitrijs2005/parentlink/internal/seed"
	"github.com/dmitrijs2005/parentlink/internal/store"
)

// Remotes holds one remote per collection.
type Remotes struct {
	Messages     Remote[models.Message]
	UrgentMemos  Remote[models.UrgentMemo]
	Proposals    Remote[models.Proposal]
	Posts        Remote[models.Post]
	ArrivalPings Remote[models.ArrivalPing]
}

// HTTPRemotes binds every collection to client.
func HTTPRemotes(client *gateway.Client) Remotes {
	return Remotes{
		Messages:     gateway.NewCollection[models.Message](client, models.CollectionMessages),
		UrgentMemos:  gateway.NewCollection[models.UrgentMemo](client, models.CollectionUrgentMemos),
		Proposals:    gateway.NewCollection[models.Proposal](client, models.CollectionProposals),
		Posts:        gateway.NewCollection[models.Post](client, models.CollectionPosts),
		ArrivalPings: gateway.NewCollection[models.ArrivalPing](client, models.CollectionArrivalPings),
	}
}

// Syncable is the type-erased view of a collection used by operators.
type Syncable interface {
	Name() models.Collection
	Load(ctx context.Context)
	Refresh(ctx context.Context) error
	State() store.State
	Counts() (pending, failed int)
	Len() int
	Go(ctx context.Context, fn func(ctx context.Context))
	Wait()
	Close()
}

// Status is a point-in-time summary of one collection.
type Status struct {
	Name    models.Collection
	State   store.State
	Records int
	Pending int
	Failed  int
}

// Engine owns one Collection per entity type over a shared cache.
type Engine struct {
	Messages     *Collection[models.Message]
	UrgentMemos  *Collection[models.UrgentMemo]
	Proposals    *Collection[models.Proposal]
	Posts        *Collection[models.Post]
	ArrivalPings *Collection[models.ArrivalPing]

	log logging.Logger
}

// New wires the collections to c and remotes. m may be nil.
func New(c cache.Cache, remotes Remotes, seeds seed.Set, log logging.Logger, m *Metrics) *Engine {
	if log == nil {
		log = logging.Nop()
	}
	return &Engine{
		Messages:     NewCollection(models.CollectionMessages, c, remotes.Messages, seeds.Messages, log, m),
		UrgentMemos:  NewCollection(models.CollectionUrgentMemos, c, remotes.UrgentMemos, seeds.UrgentMemos, log, m),
		Proposals:    NewCollection(models.CollectionProposals, c, remotes.Proposals, seeds.Proposals, log, m),
		Posts:        NewCollection(models.CollectionPosts, c, remotes.Posts, seeds.Posts, log, m),
		ArrivalPings: NewCollection(models.CollectionArrivalPings, c, remotes.ArrivalPings, seeds.ArrivalPings, log, m),
		log:          log,
	}
}

// Collections lists every collection in hydrate order.
func (e *Engine) Collections() []Syncable {
	return []Syncable{e.Messages, e.UrgentMemos, e.Proposals, e.Posts, e.ArrivalPings}
}

// Collection finds a collection by name.
func (e *Engine) Collection(name models.Collection) (Syncable, error) {
	for _, c := range e.Collections() {
		if c.Name() == name {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", common.ErrUnknownCollection, name)
}

// LoadAll runs the cache step of every collection concurrently.
func (e *Engine) LoadAll(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, c := range e.Collections() {
		g.Go(func() error {
			c.Load(gctx)
			return nil
		})
	}
	return g.Wait()
}

// HydrateAll loads every collection and then reconciles all of them,
// waiting for the remote. Remote failures are logged; the loaded state
// stays.
func (e *Engine) HydrateAll(ctx context.Context) error {
	if err := e.LoadAll(ctx); err != nil {
		return err
	}
	if err := e.RefreshAll(ctx); err != nil {
		e.log.Warn(ctx, "initial reconcile incomplete, keeping cached state", "op", "hydrate", "error", err)
	}
	return ctx.Err()
}

// Start loads every collection and reconciles in the background, so the
// caller sees cached data right away.
func (e *Engine) Start(ctx context.Context) error {
	if err := e.LoadAll(ctx); err != nil {
		return err
	}
	for _, c := range e.Collections() {
		c.Go(ctx, func(ctx context.Context) {
			if err := c.Refresh(ctx); err != nil {
				e.log.Warn(ctx, "initial reconcile failed, keeping cached state",
					"collection", string(c.Name()), "op", "hydrate", "error", err)
			}
		})
	}
	return nil
}

// RefreshAll reconciles every collection concurrently. All failures are
// returned joined.
func (e *Engine) RefreshAll(ctx context.Context) error {
	cols := e.Collections()
	errs := make([]error, len(cols))

	var g errgroup.Group
	for i, c := range cols {
		g.Go(func() error {
			errs[i] = c.Refresh(ctx)
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

// Refresh reconciles one collection by name.
func (e *Engine) Refresh(ctx context.Context, name models.Collection) error {
	c, err := e.Collection(name)
	if err != nil {
		return err
	}
	return c.Refresh(ctx)
}

// Status reports state and counts of every collection in hydrate order.
func (e *Engine) Status() []Status {
	cols := e.Collections()
	out := make([]Status, 0, len(cols))
	for _, c := range cols {
		pending, failed := c.Counts()
		out = append(out, Status{
			Name:    c.Name(),
			State:   c.State(),
			Records: c.Len(),
			Pending: pending,
			Failed:  failed,
		})
	}
	return out
}

// Wait blocks until every background remote call and cache write is done.
func (e *Engine) Wait() {
	for _, c := range e.Collections() {
		c.Wait()
	}
}

// Close stops every collection. Remote calls still running finish on their
// own and their results are dropped.
func (e *Engine) Close() {
	for _, c := range e.Collections() {
		c.Close()
	}
}
