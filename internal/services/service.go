// Package services is the mutation façade the UI talks to. Every call
// applies its change to the in-memory collection before returning and
// then tells the remote in the background. Remote failures are logged and
// never undo the local change.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"github.com/dmitrijs2005/parentlink/internal/common"
	"github.com/dmitrijs2005/parentlink/internal/engine"
	"github.com/dmitrijs2005/parentlink/internal/gateway"
	"github.com/dmitrijs2005/parentlink/internal/models"
	"github.com/dmitrijs2005/parentlink/internal/store"
	"github.com/dmitrijs2005/parentlink/internal/timex"
)

// Record is an entity the façade can mutate.
type Record[T any] interface {
	store.Entity[T]
	Allows(models.Status) bool
}

// Draft is the caller-supplied part of a new record.
type Draft[T any] interface {
	Validate() error
	Build(id, createdAt string) T
}

// Service is the façade of one collection.
type Service[T Record[T], D Draft[T]] interface {
	// Create inserts the record built from draft and returns it with its
	// temporary id. The remote create runs in the background.
	Create(draft D) (T, error)
	// SetStatus fails only for an unknown id or a status the entity does
	// not support.
	SetStatus(id string, status models.Status) error
	Remove(id string) error
	// Retry sends the create of a failed record again.
	Retry(id string) error
	Refresh(ctx context.Context) error
	Snapshot() []T
	Subscribe(fn func([]T)) (unsubscribe func())
}

// Option configures a Service.
type Option func(*options)

type options struct {
	retry  RetryPolicy
	now    func() time.Time
	tempID func() string
	key    func() string
}

// WithRetry sets the backoff used for remote writes.
func WithRetry(p RetryPolicy) Option {
	return func(o *options) { o.retry = p }
}

// WithClock replaces time.Now for createdAt stamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithTempIDs replaces the random part of temporary ids.
func WithTempIDs(fn func() string) Option {
	return func(o *options) { o.tempID = fn }
}

func newOptions(opts []Option) options {
	o := options{
		now:    time.Now,
		tempID: func() string { return strings.ToLower(ulid.Make().String()) },
		key:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

type service[T Record[T], D Draft[T]] struct {
	col  *engine.Collection[T]
	opts options
}

// NewService returns the mutation façade over col.
func NewService[T Record[T], D Draft[T]](col *engine.Collection[T], opts ...Option) Service[T, D] {
	return &service[T, D]{col: col, opts: newOptions(opts)}
}

func (s *service[T, D]) Create(draft D) (T, error) {
	var zero T
	if err := draft.Validate(); err != nil {
		return zero, err
	}

	tempID := s.col.Name().TempPrefix() + s.opts.tempID()
	rec := draft.Build(tempID, timex.ISO8601(s.opts.now()))

	if err := s.col.Store().Insert(rec); err != nil {
		return zero, err
	}

	s.sendCreate(tempID, rec)
	return rec, nil
}

func (s *service[T, D]) Retry(id string) error {
	rec, err := s.col.Store().Retry(id)
	if err != nil {
		return err
	}
	s.sendCreate(id, rec)
	return nil
}

// sendCreate posts rec and settles the pending record with the answer. One
// idempotency key covers every attempt.
func (s *service[T, D]) sendCreate(tempID string, rec T) {
	key := s.opts.key()

	s.col.Go(context.Background(), func(ctx context.Context) {
		log := s.col.Logger()

		var created T
		err := s.call(ctx, "create", func(ctx context.Context) error {
			var err error
			created, err = s.col.Remote().Create(gateway.WithIdempotencyKey(ctx, key), rec)
			return err
		})
		if err != nil {
			log.Warn(ctx, "remote create failed, record kept locally", "op", "create", "id", tempID, "error", err)
			s.col.Store().Fail(tempID)
			return
		}

		c, ok := s.col.Store().Confirm(tempID, created)
		if !ok {
			log.Debug(ctx, "create confirmed after the record went away", "op", "create", "id", tempID)
			return
		}
		serverID := created.EntityID()
		log.Debug(ctx, "create confirmed", "op", "create", "id", tempID, "server_id", serverID)

		switch {
		case c.Remove:
			s.sendDelete(ctx, serverID)
		case c.Status != nil:
			s.sendStatus(ctx, serverID, *c.Status)
		}
	})
}

func (s *service[T, D]) SetStatus(id string, status models.Status) error {
	var zero T
	if !zero.Allows(status) {
		return fmt.Errorf("%w: %q for %s", common.ErrInvalidStatus, status, s.col.Name())
	}

	origin, err := s.col.Store().SetStatus(id, status)
	if err != nil {
		return err
	}
	if origin != store.OriginConfirmed {
		return nil
	}

	s.col.Go(context.Background(), func(ctx context.Context) {
		s.sendStatus(ctx, id, status)
	})
	return nil
}

func (s *service[T, D]) Remove(id string) error {
	origin, err := s.col.Store().Remove(id)
	if err != nil {
		return err
	}
	if origin != store.OriginConfirmed {
		return nil
	}

	s.col.Go(context.Background(), func(ctx context.Context) {
		s.sendDelete(ctx, id)
	})
	return nil
}

func (s *service[T, D]) sendStatus(ctx context.Context, id string, status models.Status) {
	err := s.call(ctx, "update_status", func(ctx context.Context) error {
		return s.col.Remote().UpdateStatus(ctx, id, status)
	})
	if err != nil {
		s.col.Logger().Warn(ctx, "remote status update failed, local status kept",
			"op", "update_status", "id", id, "status", string(status), "error", err)
	}
}

func (s *service[T, D]) sendDelete(ctx context.Context, id string) {
	err := s.call(ctx, "delete", func(ctx context.Context) error {
		return s.col.Remote().Delete(ctx, id)
	})
	switch {
	case errors.Is(err, gateway.ErrNotFound):
		s.col.Logger().Debug(ctx, "remote record already gone", "op", "delete", "id", id)
	case err != nil:
		s.col.Logger().Warn(ctx, "remote delete failed, record stays deleted locally", "op", "delete", "id", id, "error", err)
	}
}

// call runs one remote operation under the retry policy and counts every
// attempt.
func (s *service[T, D]) call(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	name := string(s.col.Name())
	return s.opts.retry.run(ctx, func(ctx context.Context) error {
		err := fn(ctx)
		s.col.Metrics().ObserveRemote(name, op, err)
		return err
	})
}

func (s *service[T, D]) Refresh(ctx context.Context) error {
	return s.col.Refresh(ctx)
}

func (s *service[T, D]) Snapshot() []T {
	return s.col.Snapshot()
}

func (s *service[T, D]) Subscribe(fn func([]T)) func() {
	return s.col.Store().Subscribe(fn)
}
