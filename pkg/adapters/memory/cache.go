package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/ports"
)

// Cache implements ports.AnswerCache in memory.
// Safe for concurrent use.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
	now     func() time.Time
}

type cacheEntry struct {
	result  domain.AskResult
	expires time.Time
}

var _ ports.AnswerCache = (*Cache)(nil)

// CacheOption configures the in-memory cache.
type CacheOption func(*Cache)

// WithCacheTTL sets the entry lifetime. Zero keeps entries until invalidated.
func WithCacheTTL(ttl time.Duration) CacheOption {
	return func(c *Cache) {
		c.ttl = ttl
	}
}

// WithCacheClock overrides the time source used for expiry.
func WithCacheClock(now func() time.Time) CacheOption {
	return func(c *Cache) {
		c.now = now
	}
}

// NewCache creates an empty in-memory cache.
func NewCache(opts ...CacheOption) *Cache {
	c := &Cache{
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns a copy of the stored result.
func (c *Cache) Get(ctx context.Context, question string) (domain.AskResult, bool, error) {
	c.mu.RLock()
	e, ok := c.entries[question]
	c.mu.RUnlock()

	if !ok {
		return domain.AskResult{}, false, nil
	}
	if !e.expires.IsZero() && !c.now().Before(e.expires) {
		c.mu.Lock()
		delete(c.entries, question)
		c.mu.Unlock()
		return domain.AskResult{}, false, nil
	}
	res := e.result
	res.Options = slices.Clone(res.Options)
	return res, true, nil
}

// Put stores a copy of the result.
func (c *Cache) Put(ctx context.Context, question string, result domain.AskResult) error {
	result.Options = slices.Clone(result.Options)
	e := cacheEntry{result: result}
	if c.ttl > 0 {
		e.expires = c.now().Add(c.ttl)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[question] = e
	return nil
}

// Invalidate removes the entry.
func (c *Cache) Invalidate(ctx context.Context, question string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, question)
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
