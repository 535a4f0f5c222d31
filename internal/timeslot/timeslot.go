// Package timeslot defines the fixed daily slot grid and the canonical
// forms used to compare slot and date values across sources.
package timeslot

import (
	"fmt"
	"strings"
	"time"
)

// Slots is the enumerated list of daily time slots offered for calls.
// The midday gap between 12:00 PM and 02:00 PM is intentional.
var Slots = []string{
	"10:00 AM",
	"11:00 AM",
	"12:00 PM",
	"02:00 PM",
	"03:00 PM",
	"04:00 PM",
	"05:00 PM",
}

// ClosedWeekday is the weekly day with no availability.
const ClosedWeekday = time.Sunday

// Normalize canonicalizes a slot display string so that values from
// different sources compare equal despite case, whitespace and a single
// leading zero. It is idempotent and total: any string maps to some key.
func Normalize(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.TrimPrefix(s, "0")
	return strings.Join(strings.Fields(s), "")
}

// Equal reports whether two slot strings are the same slot.
func Equal(a, b string) bool {
	return Normalize(a) == Normalize(b)
}

// IsKnown reports whether the string matches one of the enumerated slots.
func IsKnown(slot string) bool {
	for _, s := range Slots {
		if Equal(s, slot) {
			return true
		}
	}
	return false
}

// Contains reports whether a busy list contains the slot, comparing on
// normalized keys.
func Contains(busy []string, slot string) bool {
	key := Normalize(slot)
	for _, b := range busy {
		if Normalize(b) == key {
			return true
		}
	}
	return false
}

// DateKey is a calendar date at day granularity, serialized YYYY-MM-DD.
// Lookups and comparisons always use this string form, never a raw time
// value, so timezone shifts cannot split one day into two keys.
type DateKey string

const dateLayout = "2006-01-02"

// NewDateKey truncates t to day granularity in its own location.
func NewDateKey(t time.Time) DateKey {
	return DateKey(t.Format(dateLayout))
}

// ParseDateKey validates a YYYY-MM-DD string.
func ParseDateKey(s string) (DateKey, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return "", fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return NewDateKey(t), nil
}

// Time returns the midnight UTC instant for the key.
func (d DateKey) Time() time.Time {
	t, _ := time.Parse(dateLayout, string(d))
	return t
}

// AddDays returns the key d days forward.
func (d DateKey) AddDays(days int) DateKey {
	return NewDateKey(d.Time().AddDate(0, 0, days))
}

// Weekday returns the day of week for the key.
func (d DateKey) Weekday() time.Weekday {
	return d.Time().Weekday()
}

// Before reports whether d falls before other. Lexicographic comparison
// is correct for the YYYY-MM-DD form.
func (d DateKey) Before(other DateKey) bool {
	return string(d) < string(other)
}

func (d DateKey) String() string { return string(d) }

// FormatHuman renders a confirmation-friendly form such as
// "June 10th at 11:00 AM".
func FormatHuman(d DateKey, slot string) string {
	t := d.Time()
	return fmt.Sprintf("%s %s at %s", t.Month().String(), ordinal(t.Day()), slot)
}

func ordinal(day int) string {
	suffix := "th"
	if day%100 < 11 || day%100 > 13 {
		switch day % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%d%s", day, suffix)
}
