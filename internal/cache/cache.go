// Package cache holds recently generated answers so identical prompt+context
// pairs within the TTL are served without spending upstream quota. Memory
// only: document persistence belongs to the UI collaborator.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/planwright/planwright/internal/router"
)

// Entry is one cached generation result with its expiry.
type Entry struct {
	Result    router.Result
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired returns true if the entry has passed its expiration time.
func (e *Entry) Expired() bool {
	return time.Now().After(e.ExpiresAt)
}

// Cache is an in-memory LRU of generation results with per-entry TTL.
type Cache struct {
	memory  *lru.Cache[string, *Entry]
	ttl     time.Duration
	enabled bool
}

// New creates a Cache. maxEntries bounds the LRU; ttlSeconds is the
// time-to-live for each entry; enabled controls whether lookups and stores
// are active at all.
func New(maxEntries, ttlSeconds int, enabled bool) (*Cache, error) {
	if maxEntries <= 0 {
		maxEntries = 500
	}

	memory, err := lru.New[string, *Entry](maxEntries)
	if err != nil {
		return nil, fmt.Errorf("cache: creating LRU: %w", err)
	}

	return &Cache{
		memory:  memory,
		ttl:     time.Duration(ttlSeconds) * time.Second,
		enabled: enabled,
	}, nil
}

// Enabled reports whether the cache is active.
func (c *Cache) Enabled() bool {
	return c.enabled
}

// Get returns the cached result for the prompt+context pair, if present and
// fresh. Expired entries are evicted on access.
func (c *Cache) Get(prompt, context string) (router.Result, bool) {
	if !c.enabled {
		return router.Result{}, false
	}

	key := Key(prompt, context)
	entry, ok := c.memory.Get(key)
	if !ok {
		return router.Result{}, false
	}
	if entry.Expired() {
		c.memory.Remove(key)
		return router.Result{}, false
	}
	return entry.Result, true
}

// Put stores a generation result. Fallback answers are never cached: they
// describe a transient configuration problem, not the prompt's answer.
func (c *Cache) Put(prompt, context string, res router.Result) {
	if !c.enabled || res.FellBack {
		return
	}

	now := time.Now()
	c.memory.Add(Key(prompt, context), &Entry{
		Result:    res,
		CreatedAt: now,
		ExpiresAt: now.Add(c.ttl),
	})
}

// Len returns the number of entries currently held, expired or not.
func (c *Cache) Len() int {
	return c.memory.Len()
}

// Key derives the cache key for a prompt+context pair. The two fields are
// length-prefixed before hashing so ("ab","c") and ("a","bc") cannot collide.
func Key(prompt, context string) string {
	h := sha256.New()
	fmt.Fprintf(h, "%d:%s|%d:%s", len(prompt), prompt, len(context), context)
	return hex.EncodeToString(h.Sum(nil))
}
