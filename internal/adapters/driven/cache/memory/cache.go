// Package memory provides an in-process driven.Cache backed by an
// expiring LRU.
package memory

import (
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/custodia-labs/docsync/internal/core/ports/driven"
)

// Verify interface compliance.
var _ driven.Cache = (*Cache)(nil)

const (
	// DefaultSize is the maximum number of entries.
	DefaultSize = 512

	// DefaultTTL is how long an entry lives.
	DefaultTTL = 5 * time.Minute
)

// Cache is a size- and time-bounded key/value cache.
type Cache struct {
	lru *expirable.LRU[string, any]
}

// New creates a cache. Non-positive arguments fall back to the defaults.
func New(size int, ttl time.Duration) *Cache {
	if size <= 0 {
		size = DefaultSize
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{lru: expirable.NewLRU[string, any](size, nil, ttl)}
}

// Get returns the cached value for key.
func (c *Cache) Get(key string) (any, bool) {
	return c.lru.Get(key)
}

// Set stores value under key.
func (c *Cache) Set(key string, value any) {
	c.lru.Add(key, value)
}

// InvalidatePrefix drops every key starting with prefix and returns how
// many were removed.
func (c *Cache) InvalidatePrefix(prefix string) int {
	n := 0
	for _, k := range c.lru.Keys() {
		if strings.HasPrefix(k, prefix) && c.lru.Remove(k) {
			n++
		}
	}
	return n
}

// Len returns the number of live entries.
func (c *Cache) Len() int {
	return c.lru.Len()
}
