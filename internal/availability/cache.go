// Package availability owns the per-date busy-slot state: a timestamped
// cache of store fetches, a session overlay of just-booked slots, and
// the prefetch logic that fills the cache ahead of date switches.
package availability

import (
	"sync"
	"time"

	"github.com/TejjP/zyero-lead-accelerator/internal/timeslot"
)

// StalenessThreshold is how old a cache entry may get before a read
// triggers a background refresh.
const StalenessThreshold = 60 * time.Second

// Entry is the cached busy list for one date.
type Entry struct {
	DateKey   timeslot.DateKey
	BusySlots []string
	FetchedAt time.Time
}

// Cache is an in-memory per-date store of busy lists. Entries are never
// evicted; the set of dates touched in a session is small.
type Cache struct {
	mu      sync.RWMutex
	entries map[timeslot.DateKey]Entry
	now     func() time.Time
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{
		entries: make(map[timeslot.DateKey]Entry),
		now:     time.Now,
	}
}

// Get returns the entry for a date, if present.
func (c *Cache) Get(date timeslot.DateKey) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[date]
	return e, ok
}

// Put replaces the busy list for a date and stamps FetchedAt.
func (c *Cache) Put(date timeslot.DateKey, busySlots []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[date] = Entry{
		DateKey:   date,
		BusySlots: append([]string(nil), busySlots...),
		FetchedAt: c.now(),
	}
}

// Append adds a slot to an existing entry without touching FetchedAt,
// so a locally observed booking shows up before the next refresh.
func (c *Cache) Append(date timeslot.DateKey, slot string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[date]
	if !ok {
		return
	}
	if !timeslot.Contains(e.BusySlots, slot) {
		e.BusySlots = append(e.BusySlots, slot)
		c.entries[date] = e
	}
}

// IsStale reports whether the entry is absent or older than threshold.
func (c *Cache) IsStale(date timeslot.DateKey, threshold time.Duration) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[date]
	if !ok {
		return true
	}
	return c.now().Sub(e.FetchedAt) > threshold
}
