package availability

import (
	"testing"
	"time"

	"github.com/TejjP/zyero-lead-accelerator/internal/timeslot"
)

func TestCachePutGet(t *testing.T) {
	c := NewCache()
	date := timeslot.DateKey("2026-06-10")

	if _, ok := c.Get(date); ok {
		t.Fatal("empty cache returned an entry")
	}

	busy := []string{"10:00 AM", "02:00 PM"}
	c.Put(date, busy)

	e, ok := c.Get(date)
	if !ok {
		t.Fatal("entry missing after Put")
	}
	if len(e.BusySlots) != 2 {
		t.Fatalf("BusySlots = %v", e.BusySlots)
	}
	if e.FetchedAt.IsZero() {
		t.Error("FetchedAt not stamped")
	}

	// The stored slice is a copy, not an alias of the caller's.
	busy[0] = "mutated"
	e, _ = c.Get(date)
	if e.BusySlots[0] != "10:00 AM" {
		t.Error("cache aliases the caller's slice")
	}
}

func TestCacheStaleness(t *testing.T) {
	c := NewCache()
	date := timeslot.DateKey("2026-06-10")

	base := time.Date(2026, 6, 10, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return base }
	c.Put(date, []string{"10:00 AM"})

	if c.IsStale(timeslot.DateKey("2026-06-11"), StalenessThreshold) != true {
		t.Error("absent entry should be stale")
	}

	c.now = func() time.Time { return base.Add(59 * time.Second) }
	if c.IsStale(date, StalenessThreshold) {
		t.Error("entry stale at 59s, threshold 60s")
	}

	c.now = func() time.Time { return base.Add(61 * time.Second) }
	if !c.IsStale(date, StalenessThreshold) {
		t.Error("entry fresh at 61s, threshold 60s")
	}
}

func TestCacheAppend(t *testing.T) {
	c := NewCache()
	date := timeslot.DateKey("2026-06-10")

	// Append to an absent entry is a no-op, not an implicit create.
	c.Append(date, "11:00 AM")
	if _, ok := c.Get(date); ok {
		t.Fatal("Append created an entry")
	}

	base := time.Date(2026, 6, 10, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return base }
	c.Put(date, []string{"10:00 AM"})

	c.now = func() time.Time { return base.Add(time.Minute) }
	c.Append(date, "11:00 AM")

	e, _ := c.Get(date)
	if len(e.BusySlots) != 2 {
		t.Fatalf("BusySlots = %v", e.BusySlots)
	}
	if !e.FetchedAt.Equal(base) {
		t.Error("Append moved FetchedAt")
	}

	// Duplicate appends compare on normalized keys.
	c.Append(date, "11:00 am")
	e, _ = c.Get(date)
	if len(e.BusySlots) != 2 {
		t.Errorf("duplicate append grew the list: %v", e.BusySlots)
	}
}

func TestOverlayRecordAndMerge(t *testing.T) {
	o := NewOverlay()
	date := timeslot.DateKey("2026-06-10")

	if got := o.LocalSlots(date); len(got) != 0 {
		t.Fatalf("fresh overlay has slots: %v", got)
	}

	o.RecordLocalBooking(date, "11:00 AM")
	o.RecordLocalBooking(date, "11:00 am")

	if got := o.LocalSlots(date); len(got) != 1 {
		t.Fatalf("duplicate recording grew the overlay: %v", got)
	}

	merged := o.Merge(date, []string{"10:00 AM", "11:00 AM"})
	if len(merged) != 2 {
		t.Errorf("merge duplicated a slot present in both: %v", merged)
	}

	merged = o.Merge(date, []string{"10:00 AM"})
	if len(merged) != 2 || !timeslot.Contains(merged, "11:00 AM") {
		t.Errorf("merge lost the overlay slot: %v", merged)
	}

	// Overlay entries survive for other dates being untouched.
	other := timeslot.DateKey("2026-06-11")
	if got := o.Merge(other, []string{"10:00 AM"}); len(got) != 1 {
		t.Errorf("overlay leaked across dates: %v", got)
	}
}
