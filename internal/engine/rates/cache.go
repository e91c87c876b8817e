package rates

import (
	"container/list"
	"sync"
	"time"
)

// Snapshot is one fetched rate set for a base currency
type Snapshot struct {
	BaseCurrency string
	Rates        map[string]float64
	FetchedAt    time.Time
}

// snapshotCache keeps one snapshot per base currency with TTL expiry and LRU
// eviction. It is owned by a single Normalizer instance; there is no
// package-level state.
type snapshotCache struct {
	mu         sync.Mutex
	ttl        time.Duration
	maxEntries int
	entries    map[string]*list.Element
	order      *list.List // Front is most recently used
}

func newSnapshotCache(ttl time.Duration, maxEntries int) *snapshotCache {
	return &snapshotCache{
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[string]*list.Element),
		order:      list.New(),
	}
}

// Get returns the snapshot for the base currency if present and within its
// validity window. Expired entries are removed on access.
func (c *snapshotCache) Get(base string, now time.Time) (*Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[base]
	if !ok {
		return nil, false
	}

	snap := elem.Value.(*Snapshot)
	if now.Sub(snap.FetchedAt) > c.ttl {
		c.order.Remove(elem)
		delete(c.entries, base)
		return nil, false
	}

	c.order.MoveToFront(elem)
	return snap, true
}

// Put stores a snapshot, evicting the least recently used entry when full
func (c *snapshotCache) Put(snap *Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[snap.BaseCurrency]; ok {
		elem.Value = snap
		c.order.MoveToFront(elem)
		return
	}

	if c.order.Len() >= c.maxEntries {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.entries, oldest.Value.(*Snapshot).BaseCurrency)
		}
	}

	c.entries[snap.BaseCurrency] = c.order.PushFront(snap)
}

// Len reports the number of cached snapshots, expired or not
func (c *snapshotCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
