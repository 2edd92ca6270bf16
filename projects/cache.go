package projects

import (
	"context"
	"sync"
	"time"
)

// Cache is an in-memory TTL cache in front of another Repository.
type Cache struct {
	mu       sync.RWMutex
	projects []Project
	fetched  time.Time
	ttl      time.Duration
	source   Repository
}

// NewCache creates a Cache backed by source.
func NewCache(source Repository, ttl time.Duration) *Cache {
	return &Cache{source: source, ttl: ttl}
}

func (c *Cache) valid() bool {
	return c.projects != nil && time.Since(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.projects = nil
	c.mu.Unlock()
}

// ensureLoaded returns the cached list, reloading it under the write lock
// only when it has expired.
func (c *Cache) ensureLoaded(ctx context.Context) ([]Project, error) {
	c.mu.RLock()
	if c.valid() {
		list := c.projects
		c.mu.RUnlock()
		return list, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.valid() {
		return c.projects, nil
	}
	list, err := c.source.List(ctx)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []Project{}
	}
	c.projects = list
	c.fetched = time.Now()
	return c.projects, nil
}

// List returns all projects from the cache.
func (c *Cache) List(ctx context.Context) ([]Project, error) {
	list, err := c.ensureLoaded(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Project, len(list))
	copy(out, list)
	return out, nil
}

// Get returns a single project by slug from the cache.
func (c *Cache) Get(ctx context.Context, slug string) (Project, error) {
	list, err := c.ensureLoaded(ctx)
	if err != nil {
		return Project{}, err
	}
	for _, p := range list {
		if p.Slug == slug {
			return p, nil
		}
	}
	return Project{}, ErrNotFound
}
