// Package gateway talks to the authoritative backend over HTTP/JSON.
//
// Every collection is exposed under its name:
//
//	GET    /{collection}        list, JSON array of records
//	POST   /{collection}        create, returns the stored record
//	PATCH  /{collection}/{id}   {"status": "..."}
//	DELETE /{collection}/{id}
//
// GET /ping answers {"status":"OK"} and drives the online watcher.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/parentlink/internal/common"
)

// Client is the shared HTTP transport of all collections.
type Client struct {
	httpClient *http.Client
	baseURL    string
	tokens     TokenSource
	userID     string
}

type errorBody struct {
	Error string `json:"error"`
}

type idempotencyKey struct{}

// WithIdempotencyKey attaches key to ctx; the request built from ctx sends
// it in the Idempotency-Key header.
func WithIdempotencyKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, idempotencyKey{}, key)
}

// IdempotencyKey returns the key attached by WithIdempotencyKey, or "".
func IdempotencyKey(ctx context.Context) string {
	key, _ := ctx.Value(idempotencyKey{}).(string)
	return key
}

// NewClient builds a client. tokens may be nil. When tokens is a *JWTToken
// its subject is sent as X-User-ID.
func NewClient(httpClient *http.Client, baseURL string, tokens TokenSource) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if tokens == nil {
		tokens = StaticToken("")
	}
	c := &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		tokens:     tokens,
	}
	if jt, ok := tokens.(*JWTToken); ok {
		c.userID = jt.Subject()
	}
	return c
}

// Ping reports whether the backend answers.
func (c *Client) Ping(ctx context.Context) error {
	var out struct {
		Status string `json:"status"`
	}
	if err := c.do(ctx, http.MethodGet, "/ping", nil, &out); err != nil {
		return err
	}
	if out.Status != "OK" {
		return ErrUnavailable
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return err
	}
	if token != "" {
		if !strings.HasPrefix(strings.ToLower(token), "bearer ") {
			token = "Bearer " + token
		}
		req.Header.Set(common.AuthorizationHeaderName, token)
	}
	if c.userID != "" {
		req.Header.Set(common.UserIDHeaderName, c.userID)
	}
	if key := IdempotencyKey(ctx); key != "" {
		req.Header.Set(common.IdempotencyKeyHeaderName, key)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return mapTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
		return nil
	}

	var eb errorBody
	_ = json.NewDecoder(resp.Body).Decode(&eb)
	return mapStatus(resp.StatusCode, eb.Error)
}

func mapStatus(code int, msg string) error {
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return ErrUnauthorized
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusRequestTimeout || code == http.StatusTooManyRequests || code >= 500:
		return fmt.Errorf("%w: status %d", ErrUnavailable, code)
	default:
		return &StatusError{Code: code, Message: strings.TrimSpace(msg)}
	}
}

// mapTransportError keeps context cancellation visible to the caller and
// folds everything else, timeouts included, into ErrUnavailable.
func mapTransportError(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
