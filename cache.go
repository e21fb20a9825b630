package soopify

import (
	"context"
	"sync"
	"time"
)

// featuredLister is the part of Store the cache reads through.
type featuredLister interface {
	ListFeatured(ctx context.Context, limit int) ([]BlogPost, error)
}

// InsightCache is an in-memory TTL cache of the public featured strip.
type InsightCache struct {
	mu      sync.RWMutex
	posts   []BlogPost
	fetched time.Time
	ttl     time.Duration
	limit   int
	store   featuredLister
}

// NewInsightCache creates an InsightCache holding up to limit posts.
func NewInsightCache(s featuredLister, limit int, ttl time.Duration) *InsightCache {
	return &InsightCache{store: s, limit: limit, ttl: ttl}
}

func (c *InsightCache) valid() bool {
	return c.posts != nil && time.Since(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *InsightCache) Invalidate() {
	c.mu.Lock()
	c.posts = nil
	c.mu.Unlock()
}

// Featured returns the cached featured posts, reloading them when stale.
// It tries a read lock first; only takes a write lock if a reload is needed.
func (c *InsightCache) Featured(ctx context.Context) ([]BlogPost, error) {
	c.mu.RLock()
	if c.valid() {
		posts := c.posts
		c.mu.RUnlock()
		return posts, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.valid() {
		return c.posts, nil
	}
	posts, err := c.store.ListFeatured(ctx, c.limit)
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []BlogPost{}
	}
	c.posts = posts
	c.fetched = time.Now()
	return posts, nil
}
