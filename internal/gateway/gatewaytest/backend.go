// Package gatewaytest is an in-memory stand-in for the remote API. It backs
// the gateway tests and the "syncctl fake-remote" development server.
package gatewaytest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/parentlink/internal/common"
	"github.com/dmitrijs2005/parentlink/internal/timex"
)

const pingKey = "ping"

// Backend keeps every collection as an ordered list of JSON objects.
type Backend struct {
	mu          sync.Mutex
	records     map[string][]map[string]any
	idempotent  map[string]map[string]any
	failures    map[string]int
	delays      map[string]time.Duration
	calls       map[string]int
	lastHeaders http.Header
	offline     bool
	seq         int

	token  string
	nextID func(collection string, seq int) string
	now    func() time.Time
}

// Option configures a Backend.
type Option func(*Backend)

// WithToken makes every route but /ping require "Bearer <token>".
func WithToken(token string) Option {
	return func(b *Backend) { b.token = token }
}

// WithIDs overrides server id generation. seq starts at 1 and counts
// creates across all collections.
func WithIDs(fn func(collection string, seq int) string) Option {
	return func(b *Backend) { b.nextID = fn }
}

// New returns an empty Backend.
func New(opts ...Option) *Backend {
	b := &Backend{
		records:    make(map[string][]map[string]any),
		idempotent: make(map[string]map[string]any),
		failures:   make(map[string]int),
		delays:     make(map[string]time.Duration),
		calls:      make(map[string]int),
		nextID: func(collection string, seq int) string {
			return fmt.Sprintf("srv_%s_%d", collection, seq)
		},
		now: time.Now,
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

func opKey(method, collection string) string {
	return method + " " + collection
}

// Seed appends records to collection. Records may be any JSON-encodable
// value with an "id" field.
func (b *Backend) Seed(collection string, records ...any) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, r := range records {
		raw, err := json.Marshal(r)
		if err != nil {
			return err
		}
		var m map[string]any
		if err := json.Unmarshal(raw, &m); err != nil {
			return err
		}
		b.records[collection] = append(b.records[collection], m)
	}
	return nil
}

// Records returns a copy of collection in server order.
func (b *Backend) Records(collection string) []map[string]any {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]map[string]any, 0, len(b.records[collection]))
	for _, r := range b.records[collection] {
		out = append(out, cloneRecord(r))
	}
	return out
}

// Fail makes method on collection answer code until Recover. Use
// collection "ping" for the health route.
func (b *Backend) Fail(method, collection string, code int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[opKey(method, collection)] = code
}

// Recover clears a failure set by Fail.
func (b *Backend) Recover(method, collection string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.failures, opKey(method, collection))
}

// Delay holds method on collection for d before answering.
func (b *Backend) Delay(method, collection string, d time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.delays[opKey(method, collection)] = d
}

// SetOffline makes every route, /ping included, answer 503.
func (b *Backend) SetOffline(offline bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.offline = offline
}

// Calls counts requests that reached method on collection.
func (b *Backend) Calls(method, collection string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[opKey(method, collection)]
}

// LastHeaders returns the headers of the most recent request.
func (b *Backend) LastHeaders() http.Header {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastHeaders.Clone()
}

// Router builds the gin engine serving the API.
func (b *Backend) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{
			common.AuthorizationHeaderName,
			common.UserIDHeaderName,
			common.IdempotencyKeyHeaderName,
			"Content-Type",
		},
	}))

	r.GET("/ping", b.intercept(pingKey), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	api := r.Group("/")
	api.Use(b.auth())
	{
		api.GET("/:collection", b.interceptParam(), b.list)
		api.POST("/:collection", b.interceptParam(), b.create)
		api.PATCH("/:collection/:id", b.interceptParam(), b.updateStatus)
		api.DELETE("/:collection/:id", b.interceptParam(), b.delete)
	}
	return r
}

func (b *Backend) auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if b.token == "" {
			c.Next()
			return
		}
		h := strings.TrimSpace(c.GetHeader(common.AuthorizationHeaderName))
		if !strings.HasPrefix(strings.ToLower(h), "bearer ") || strings.TrimSpace(h[7:]) != b.token {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}

func (b *Backend) interceptParam() gin.HandlerFunc {
	return func(c *gin.Context) {
		b.intercept(c.Param("collection"))(c)
	}
}

// intercept counts the call, then applies offline mode, injected failures
// and delays.
func (b *Backend) intercept(collection string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := opKey(c.Request.Method, collection)

		b.mu.Lock()
		b.calls[key]++
		b.lastHeaders = c.Request.Header.Clone()
		offline := b.offline
		code, failing := b.failures[key]
		delay := b.delays[key]
		b.mu.Unlock()

		if offline {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "offline"})
			return
		}
		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-c.Request.Context().Done():
				c.Abort()
				return
			}
		}
		if failing {
			c.AbortWithStatusJSON(code, gin.H{"error": http.StatusText(code)})
			return
		}
		c.Next()
	}
}

func (b *Backend) list(c *gin.Context) {
	col := c.Param("collection")

	b.mu.Lock()
	out := make([]map[string]any, 0, len(b.records[col]))
	for _, r := range b.records[col] {
		out = append(out, cloneRecord(r))
	}
	b.mu.Unlock()

	c.JSON(http.StatusOK, out)
}

func (b *Backend) create(c *gin.Context) {
	col := c.Param("collection")

	var rec map[string]any
	if err := c.ShouldBindJSON(&rec); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	key := c.GetHeader(common.IdempotencyKeyHeaderName)

	b.mu.Lock()
	defer b.mu.Unlock()

	if key != "" {
		if prev, ok := b.idempotent[key]; ok {
			c.JSON(http.StatusCreated, cloneRecord(prev))
			return
		}
	}

	b.seq++
	rec["id"] = b.nextID(col, b.seq)
	if s, _ := rec["createdAt"].(string); s == "" {
		rec["createdAt"] = timex.ISO8601(b.now())
	}
	b.records[col] = append(b.records[col], rec)
	if key != "" {
		b.idempotent[key] = rec
	}

	c.JSON(http.StatusCreated, cloneRecord(rec))
}

func (b *Backend) updateStatus(c *gin.Context) {
	col, id := c.Param("collection"), c.Param("id")

	var body struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.Status == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status required"})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, r := range b.records[col] {
		if r["id"] == id {
			r["status"] = body.Status
			c.JSON(http.StatusOK, cloneRecord(r))
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
}

func (b *Backend) delete(c *gin.Context) {
	col, id := c.Param("collection"), c.Param("id")

	b.mu.Lock()
	defer b.mu.Unlock()

	rs := b.records[col]
	for i, r := range rs {
		if r["id"] == id {
			b.records[col] = append(rs[:i:i], rs[i+1:]...)
			c.Status(http.StatusNoContent)
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
}

func cloneRecord(r map[string]any) map[string]any {
	out := make(map[string]any, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
