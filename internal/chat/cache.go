package chat

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
)

const DefaultCacheTTL = 5 * time.Minute

type cacheEntry struct {
	text      string
	createdAt time.Time
}

// ResponseCache memoises model answers per user and message.
//
// Keys use xxhash64 of the normalised message. The hash is not
// cryptographic: two different messages of the same user can collide and
// share an answer. That only degrades answer quality for that user, never
// another user's data, since the user ID is part of the key.
type ResponseCache struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.RWMutex
	entries map[string]cacheEntry
}

// NewResponseCache creates a cache whose entries live for ttl.
func NewResponseCache(ttl time.Duration) *ResponseCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &ResponseCache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

// cacheKey combines the user ID with the hash of the normalised message.
func cacheKey(userID, message string) string {
	return userID + ":" + strconv.FormatUint(xxhash.Sum64String(normalizeMessage(message)), 16)
}

// normalizeMessage lower-cases, trims and collapses whitespace.
func normalizeMessage(message string) string {
	return strings.Join(strings.Fields(strings.ToLower(message)), " ")
}

// Get returns the cached answer. Stale entries are a miss even if the reaper
// has not evicted them yet.
func (c *ResponseCache) Get(userID, message string) (string, bool) {
	key := cacheKey(userID, message)

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || c.now().Sub(entry.createdAt) >= c.ttl {
		return "", false
	}
	return entry.text, true
}

// Put stores or overwrites the answer for the message.
func (c *ResponseCache) Put(userID, message, text string) {
	key := cacheKey(userID, message)

	c.mu.Lock()
	c.entries[key] = cacheEntry{text: text, createdAt: c.now()}
	c.mu.Unlock()
}

// Sweep evicts every entry older than the TTL and returns how many it removed.
func (c *ResponseCache) Sweep(now time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, entry := range c.entries {
		if now.Sub(entry.createdAt) >= c.ttl {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of entries, stale ones included.
func (c *ResponseCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *ResponseCache) Name() string { return "response_cache" }
