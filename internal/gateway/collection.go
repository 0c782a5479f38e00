package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/dmitrijs2005/parentlink/internal/models"
)

// Record is what a collection endpoint carries.
type Record interface {
	EntityID() string
}

// Collection is the remote side of one collection. It satisfies the
// store's Remote interface.
type Collection[T Record] struct {
	client *Client
	name   models.Collection
}

// NewCollection binds name to client.
func NewCollection[T Record](client *Client, name models.Collection) *Collection[T] {
	return &Collection[T]{client: client, name: name}
}

func (c *Collection[T]) path(id string) string {
	if id == "" {
		return "/" + string(c.name)
	}
	return "/" + string(c.name) + "/" + url.PathEscape(id)
}

// List returns the authoritative snapshot. Anything but a JSON array of
// records carrying an id is ErrMalformedResponse.
func (c *Collection[T]) List(ctx context.Context) ([]T, error) {
	var raw json.RawMessage
	if err := c.client.do(ctx, http.MethodGet, c.path(""), nil, &raw); err != nil {
		return nil, fmt.Errorf("list %s: %w", c.name, err)
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("list %s: %w: payload is not an array", c.name, ErrMalformedResponse)
	}

	out := []T{}
	if err := json.Unmarshal(trimmed, &out); err != nil {
		return nil, fmt.Errorf("list %s: %w: %v", c.name, ErrMalformedResponse, err)
	}
	for i, rec := range out {
		if rec.EntityID() == "" {
			return nil, fmt.Errorf("list %s: %w: element %d has no id", c.name, ErrMalformedResponse, i)
		}
	}
	return out, nil
}

// Create posts record and returns the stored version. A response without
// an id is ErrMalformedResponse.
func (c *Collection[T]) Create(ctx context.Context, record T) (T, error) {
	var out T
	if err := c.client.do(ctx, http.MethodPost, c.path(""), record, &out); err != nil {
		return out, fmt.Errorf("create %s: %w", c.name, err)
	}
	if out.EntityID() == "" {
		var zero T
		return zero, fmt.Errorf("create %s: %w: missing id", c.name, ErrMalformedResponse)
	}
	return out, nil
}

// UpdateStatus patches the status of id.
func (c *Collection[T]) UpdateStatus(ctx context.Context, id string, status models.Status) error {
	body := map[string]models.Status{"status": status}
	if err := c.client.do(ctx, http.MethodPatch, c.path(id), body, nil); err != nil {
		return fmt.Errorf("update %s/%s: %w", c.name, id, err)
	}
	return nil
}

// Delete removes id on the remote.
func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	if err := c.client.do(ctx, http.MethodDelete, c.path(id), nil, nil); err != nil {
		return fmt.Errorf("delete %s/%s: %w", c.name, id, err)
	}
	return nil
}
