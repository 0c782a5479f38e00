// Package enginetest provides an in-process remote for engine and façade
// tests. Calls can be held at a gate to model a slow network.
package enginetest

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/parentlink/internal/gateway"
	"github.com/dmitrijs2005/parentlink/internal/models"
)

// Entity is what the fake needs to assign server ids.
type Entity interface {
	EntityID() string
}

// StatusCall records one UpdateStatus.
type StatusCall struct {
	ID     string
	Status models.Status
}

// Remote is a scriptable engine.Remote.
type Remote[T Entity] struct {
	mu sync.Mutex

	items   []T
	listErr error

	// CreateFunc turns the posted record into the stored one. Nil fails
	// every create with CreateErr, or echoes the record if CreateErr is nil.
	createFunc func(n int, rec T) (T, error)
	createErrs []error

	statusErr error
	deleteErr error

	listGate   chan struct{}
	createGate chan struct{}

	lists   int
	creates []T
	keys    []string
	status  []StatusCall
	deletes []string
}

// NewRemote returns a Remote listing items.
func NewRemote[T Entity](items ...T) *Remote[T] {
	return &Remote[T]{items: items}
}

// SetItems replaces what List answers.
func (r *Remote[T]) SetItems(items ...T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = items
}

func (r *Remote[T]) SetListErr(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listErr = err
}

// OnCreate sets how creates are answered. n counts create attempts from 1.
func (r *Remote[T]) OnCreate(fn func(n int, rec T) (T, error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.createFunc = fn
}

// FailCreates makes the next creates fail with errs, one per attempt.
func (r *Remote[T]) FailCreates(errs ...error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.createErrs = append(r.createErrs, errs...)
}

func (r *Remote[T]) SetStatusErr(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statusErr = err
}

func (r *Remote[T]) SetDeleteErr(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleteErr = err
}

// HoldLists blocks List until the returned release is called.
func (r *Remote[T]) HoldLists() (release func()) {
	return r.hold(&r.listGate)
}

// HoldCreates blocks Create until the returned release is called.
func (r *Remote[T]) HoldCreates() (release func()) {
	return r.hold(&r.createGate)
}

func (r *Remote[T]) hold(gate *chan struct{}) func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	ch := make(chan struct{})
	*gate = ch
	var once sync.Once
	return func() { once.Do(func() { close(ch) }) }
}

func wait(ctx context.Context, gate chan struct{}) error {
	if gate == nil {
		return nil
	}
	select {
	case <-gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Remote[T]) List(ctx context.Context) ([]T, error) {
	r.mu.Lock()
	r.lists++
	gate := r.listGate
	r.mu.Unlock()

	if err := wait(ctx, gate); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	return append([]T{}, r.items...), nil
}

func (r *Remote[T]) Create(ctx context.Context, rec T) (T, error) {
	r.mu.Lock()
	r.creates = append(r.creates, rec)
	r.keys = append(r.keys, gateway.IdempotencyKey(ctx))
	n := len(r.creates)
	gate := r.createGate
	r.mu.Unlock()

	var zero T
	if err := wait(ctx, gate); err != nil {
		return zero, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.createErrs) > 0 {
		err := r.createErrs[0]
		r.createErrs = r.createErrs[1:]
		return zero, err
	}
	if r.createFunc == nil {
		return zero, fmt.Errorf("no create behaviour for %s", rec.EntityID())
	}
	out, err := r.createFunc(n, rec)
	if err == nil {
		r.items = append(r.items, out)
	}
	return out, err
}

func (r *Remote[T]) UpdateStatus(_ context.Context, id string, status models.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status = append(r.status, StatusCall{ID: id, Status: status})
	return r.statusErr
}

func (r *Remote[T]) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deletes = append(r.deletes, id)
	return r.deleteErr
}

func (r *Remote[T]) Lists() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lists
}

// Creates returns every record posted, one per attempt.
func (r *Remote[T]) Creates() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]T{}, r.creates...)
}

// Keys returns the idempotency key of every create attempt.
func (r *Remote[T]) Keys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string{}, r.keys...)
}

func (r *Remote[T]) StatusCalls() []StatusCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]StatusCall{}, r.status...)
}

func (r *Remote[T]) Deletes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string{}, r.deletes...)
}
