package availability

import (
	"sync"

	"github.com/TejjP/zyero-lead-accelerator/internal/timeslot"
)

// Overlay records slots booked in the current session before the store
// confirms them. Entries are never removed for the session lifetime:
// even after the store reflects the booking, dropping the overlay would
// risk a flash of "available" for a slot the user just took.
type Overlay struct {
	mu    sync.RWMutex
	slots map[timeslot.DateKey][]string
}

// NewOverlay creates an empty overlay.
func NewOverlay() *Overlay {
	return &Overlay{slots: make(map[timeslot.DateKey][]string)}
}

// RecordLocalBooking marks a slot as taken by this session.
func (o *Overlay) RecordLocalBooking(date timeslot.DateKey, slot string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !timeslot.Contains(o.slots[date], slot) {
		o.slots[date] = append(o.slots[date], slot)
	}
}

// LocalSlots returns the session's recorded slots for a date.
func (o *Overlay) LocalSlots(date timeslot.DateKey) []string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return append([]string(nil), o.slots[date]...)
}

// Merge unions the session slots for a date into a busy list, using
// normalized comparison to avoid duplicates.
func (o *Overlay) Merge(date timeslot.DateKey, busy []string) []string {
	merged := append([]string(nil), busy...)
	for _, s := range o.LocalSlots(date) {
		if !timeslot.Contains(merged, s) {
			merged = append(merged, s)
		}
	}
	return merged
}
