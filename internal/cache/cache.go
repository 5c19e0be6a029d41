// Package cache holds completed research results keyed by normalized
// company name.
package cache

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/simplelru"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/model"
)

// DefaultCapacity is the number of entries kept when none is configured.
const DefaultCapacity = 100

// Entry is one cached research result.
type Entry struct {
	Key        string
	Facts      model.CompanyFacts
	Draft      *model.EmailDraft
	CEOEmail   string
	Known      bool
	InsertedAt time.Time
}

// clone returns a copy that shares no pointers with e.
func (e Entry) clone() Entry {
	if e.Draft != nil {
		d := *e.Draft
		e.Draft = &d
	}
	return e
}

// Cache stores research results.
type Cache interface {
	Get(key string) (Entry, bool)
	Put(key string, entry Entry)
}

// LRU is a bounded, least-recently-used Cache safe for concurrent use.
// Every operation, reads included, holds one mutex because a hit reorders
// the recency list.
type LRU struct {
	mu    sync.Mutex
	lru   *simplelru.LRU[string, Entry]
	ttl   time.Duration
	nowFn func() time.Time
}

// Option configures an LRU.
type Option func(*LRU)

// WithTTL expires entries older than ttl on read. Zero disables expiry.
func WithTTL(ttl time.Duration) Option {
	return func(c *LRU) { c.ttl = ttl }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(c *LRU) { c.nowFn = now }
}

// NewLRU creates an LRU holding at most capacity entries.
func NewLRU(capacity int, opts ...Option) (*LRU, error) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	c := &LRU{nowFn: time.Now}
	for _, o := range opts {
		o(c)
	}
	l, err := simplelru.NewLRU[string, Entry](capacity, func(key string, _ Entry) {
		zap.L().Debug("cache: evicted", zap.String("key", key))
	})
	if err != nil {
		return nil, eris.Wrap(err, "cache: create lru")
	}
	c.lru = l
	return c, nil
}

// Get returns a copy of the entry for key and marks it most recently used.
func (c *LRU) Get(key string) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.lru.Get(key)
	if !ok {
		return Entry{}, false
	}
	if c.ttl > 0 && c.nowFn().Sub(e.InsertedAt) > c.ttl {
		c.lru.Remove(key)
		return Entry{}, false
	}
	return e.clone(), true
}

// Put inserts or replaces the entry for key, evicting the least recently
// used entry when full. A zero InsertedAt is stamped with the current time.
func (c *LRU) Put(key string, entry Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry = entry.clone()
	entry.Key = key
	if entry.InsertedAt.IsZero() {
		entry.InsertedAt = c.nowFn()
	}
	c.lru.Add(key, entry)
}

// Len returns the number of cached entries.
func (c *LRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Keys returns cached keys from oldest to newest.
func (c *LRU) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Keys()
}
