// Package modelcache implements the Dynamic Model & Artifact Cache (C5): a
// two-tier in-memory LRU+TTL cache with write-through on-disk JSON
// persistence. The LRU/TTL mechanics generalize the teacher's
// pkg/skills/search_cache.go doubly-linked-list cache (minus its
// trigram-similarity matching, which is specific to fuzzy skill search, not
// exact-key model/tool-result lookups).
package modelcache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vtcode/vtcode/pkg/vterr"
)

// Stats reports cumulative cache activity, updated on every access.
type Stats struct {
	Hits       int64
	Misses     int64
	Evictions  int64
	TotalBytes int64
}

type entry struct {
	key       string
	value     json.RawMessage
	storedAt  time.Time
	prev, next *entry
}

// Cache is the in-memory LRU+TTL store with optional write-through
// persistence to a JSON snapshot file.
type Cache struct {
	mu         sync.Mutex
	entries    map[string]*entry
	head, tail *entry // head = most recently used
	maxEntries int
	ttl        time.Duration

	snapshotPath string
	dirty        bool

	stats Stats
}

// New constructs a Cache with the given capacity, TTL, and optional
// snapshotPath (empty disables persistence).
func New(maxEntries int, ttl time.Duration, snapshotPath string) *Cache {
	c := &Cache{
		entries:      make(map[string]*entry),
		maxEntries:   maxEntries,
		ttl:          ttl,
		snapshotPath: snapshotPath,
	}
	if snapshotPath != "" {
		_ = c.loadSnapshot()
	}
	return c
}

// Get returns the raw value and true when key is present and not expired.
// Satisfies tools.ResultCache's Get shape for reuse as the executor's result
// cache, since Result round-trips through JSON at the call sites that use it
// that way.
func (c *Cache) Get(key string) (json.RawMessage, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		c.stats.Misses++
		return nil, false
	}
	if c.ttl > 0 && time.Since(e.storedAt) > c.ttl {
		c.removeLocked(e)
		c.stats.Misses++
		return nil, false
	}
	c.moveToHeadLocked(e)
	c.stats.Hits++
	return e.value, true
}

// Age returns how long ago key was last stored, or false if absent.
func (c *Cache) Age(key string) (time.Duration, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return 0, false
	}
	return time.Since(e.storedAt), true
}

// Put stores value under key, evicting the least-recently-used entry if at
// capacity, and marks the store dirty for the next Flush.
func (c *Cache) Put(key string, value json.RawMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		c.stats.TotalBytes -= estimateJSONSize(e.value)
		e.value = value
		e.storedAt = time.Now()
		c.moveToHeadLocked(e)
		c.stats.TotalBytes += estimateJSONSize(value)
		c.dirty = true
		return
	}

	if c.maxEntries > 0 && len(c.entries) >= c.maxEntries {
		c.evictLRULocked()
	}

	e := &entry{key: key, value: value, storedAt: time.Now()}
	c.entries[key] = e
	c.addToHeadLocked(e)
	c.stats.TotalBytes += estimateJSONSize(value)
	c.dirty = true
}

// FetchFunc produces a fresh value for a cache miss.
type FetchFunc func() (json.RawMessage, error)

// FetchWithCache implements spec.md's C5 algorithm: a fresh hit returns with
// no warning; a stale/missing entry calls fetch, returning the fresh value on
// success or falling back to any existing cached value (with a warning) on
// failure; a failure with nothing cached propagates the error.
func (c *Cache) FetchWithCache(key string, fetch FetchFunc) (json.RawMessage, string, error) {
	// Keep the fallback value before Get, which removes an expired entry.
	stale, hasStale := c.staleGet(key)
	if v, ok := c.Get(key); ok {
		return v, "", nil
	}

	fresh, err := fetch()
	if err == nil {
		c.Put(key, fresh)
		if c.snapshotPath != "" {
			if flushErr := c.Flush(); flushErr != nil {
				return fresh, fmt.Sprintf("cache persist failed: %v", flushErr), nil
			}
		}
		return fresh, "", nil
	}

	if hasStale {
		warning := fmt.Sprintf("using stale cache entry for %q: %v", key, err)
		return stale, warning, nil
	}
	return nil, "", vterr.Wrap(vterr.KindCachePersistFailed, "cache fetch failed with no fallback", err)
}

// staleGet returns an entry regardless of TTL, for the fetch-failure
// fallback path only.
func (c *Cache) staleGet(key string) (json.RawMessage, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	return e.value, true
}

func (c *Cache) moveToHeadLocked(e *entry) {
	if c.head == e {
		return
	}
	c.removeFromListLocked(e)
	c.addToHeadLocked(e)
}

func (c *Cache) addToHeadLocked(e *entry) {
	e.prev = nil
	e.next = c.head
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *Cache) removeFromListLocked(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
	e.prev, e.next = nil, nil
}

func (c *Cache) removeLocked(e *entry) {
	c.removeFromListLocked(e)
	delete(c.entries, e.key)
	c.stats.TotalBytes -= estimateJSONSize(e.value)
}

func (c *Cache) evictLRULocked() {
	if c.tail == nil {
		return
	}
	victim := c.tail
	c.removeLocked(victim)
	c.stats.Evictions++
}

// Stats returns a snapshot of cumulative cache activity.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// estimateJSONSize attributes bytes to an entry as the length of its encoded
// JSON value; it does not walk or re-encode the value.
func estimateJSONSize(v json.RawMessage) int64 {
	return int64(len(v))
}

type snapshotFile struct {
	Entries map[string]snapshotEntry `json:"entries"`
}

type snapshotEntry struct {
	Value    json.RawMessage `json:"value"`
	StoredAt int64           `json:"stored_at"`
}

// Flush writes the current cache contents to snapshotPath if dirty, via a
// "write-with-context" helper that attaches the cache's path to any error.
func (c *Cache) Flush() error {
	c.mu.Lock()
	if !c.dirty || c.snapshotPath == "" {
		c.mu.Unlock()
		return nil
	}
	snap := snapshotFile{Entries: make(map[string]snapshotEntry, len(c.entries))}
	for k, e := range c.entries {
		snap.Entries[k] = snapshotEntry{Value: e.value, StoredAt: e.storedAt.Unix()}
	}
	c.dirty = false
	c.mu.Unlock()

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return c.withContext(err)
	}
	if err := os.MkdirAll(filepath.Dir(c.snapshotPath), 0o755); err != nil {
		return c.withContext(err)
	}
	if err := os.WriteFile(c.snapshotPath, data, 0o644); err != nil {
		return c.withContext(err)
	}
	return nil
}

func (c *Cache) withContext(err error) error {
	return vterr.Wrap(vterr.KindCachePersistFailed, fmt.Sprintf("cache %q", c.snapshotPath), err)
}

func (c *Cache) loadSnapshot() error {
	data, err := os.ReadFile(c.snapshotPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return c.withContext(err)
	}
	var snap snapshotFile
	if err := json.Unmarshal(data, &snap); err != nil {
		return c.withContext(err)
	}
	for k, se := range snap.Entries {
		e := &entry{key: k, value: se.Value, storedAt: time.Unix(se.StoredAt, 0)}
		c.entries[k] = e
		c.addToHeadLocked(e)
		c.stats.TotalBytes += estimateJSONSize(se.Value)
	}
	return nil
}
