// Package cache keeps recently scraped threads in memory.
package cache

import (
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"forum-harvester/internal/domain"
)

// MemoryCache is an in-memory thread cache with TTL support.
type MemoryCache struct {
	threads sync.Map
	ttl     time.Duration

	done      chan struct{}
	closeOnce sync.Once
}

// cacheEntry holds a cached thread with expiration metadata.
type cacheEntry struct {
	thread    *domain.ThreadExport
	expiresAt time.Time
	scrapedAt time.Time
}

// NewMemoryCache creates a new in-memory cache with the specified TTL.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	c := &MemoryCache{ttl: ttl, done: make(chan struct{})}
	go c.cleanup()
	return c
}

// NormalizedKey returns the cache key for a thread scrape:
// {host}/threads/{id}?pages={n|all}. Hosts lose their "www." prefix and URLs
// without a thread id keep their path.
func NormalizedKey(threadURL string, maxPages int) string {
	pages := "all"
	if maxPages > 0 {
		pages = fmt.Sprint(maxPages)
	}

	u, err := url.Parse(strings.TrimSpace(threadURL))
	if err != nil || u.Host == "" {
		return fmt.Sprintf("%s?pages=%s", strings.TrimSpace(threadURL), pages)
	}
	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")

	if id := domain.ThreadID(threadURL); id != "" {
		return fmt.Sprintf("%s/threads/%s?pages=%s", host, id, pages)
	}
	return fmt.Sprintf("%s%s?pages=%s", host, strings.TrimRight(u.Path, "/"), pages)
}

// Get retrieves a thread from the cache.
// Returns the thread and true if found and not expired, otherwise nil and false.
func (c *MemoryCache) Get(threadURL string, maxPages int) (*domain.ThreadExport, bool) {
	key := NormalizedKey(threadURL, maxPages)
	value, ok := c.threads.Load(key)
	if !ok {
		return nil, false
	}

	entry := value.(*cacheEntry)
	if time.Now().After(entry.expiresAt) {
		c.threads.Delete(key)
		return nil, false
	}

	return entry.thread, true
}

// Set stores a thread in the cache with the configured TTL.
func (c *MemoryCache) Set(threadURL string, maxPages int, thread *domain.ThreadExport) {
	now := time.Now()
	c.threads.Store(NormalizedKey(threadURL, maxPages), &cacheEntry{
		thread:    thread,
		expiresAt: now.Add(c.ttl),
		scrapedAt: now,
	})
}

// ScrapedAt reports when the cached entry for the key was stored.
func (c *MemoryCache) ScrapedAt(threadURL string, maxPages int) (time.Time, bool) {
	value, ok := c.threads.Load(NormalizedKey(threadURL, maxPages))
	if !ok {
		return time.Time{}, false
	}
	return value.(*cacheEntry).scrapedAt, true
}

// Close stops the cleanup loop.
func (c *MemoryCache) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// cleanup periodically removes expired entries from the cache.
func (c *MemoryCache) cleanup() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
		}
		now := time.Now()
		c.threads.Range(func(key, value any) bool {
			if now.After(value.(*cacheEntry).expiresAt) {
				c.threads.Delete(key)
			}
			return true
		})
	}
}
