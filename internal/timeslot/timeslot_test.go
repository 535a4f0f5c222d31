package timeslot

import (
	"testing"
	"time"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"canonical", "10:00 AM", "10:00am"},
		{"lowercase", "10:00 am", "10:00am"},
		{"leading zero stripped", "02:00 PM", "2:00pm"},
		{"no leading zero", "2:00 PM", "2:00pm"},
		{"surrounding whitespace", "  11:00 AM  ", "11:00am"},
		{"inner whitespace collapsed", "11:00    AM", "11:00am"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	for _, s := range Slots {
		once := Normalize(s)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent for %q: %q != %q", s, once, twice)
		}
	}
}

func TestEqual(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"02:00 PM", "2:00 PM", true},
		{"10:00 AM", "10:00 am", true},
		{" 11:00 AM", "11:00 AM ", true},
		{"10:00 AM", "11:00 AM", false},
		{"10:00 AM", "10:00 PM", false},
	}
	for _, tt := range tests {
		if got := Equal(tt.a, tt.b); got != tt.want {
			t.Errorf("Equal(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestIsKnown(t *testing.T) {
	for _, s := range Slots {
		if !IsKnown(s) {
			t.Errorf("IsKnown(%q) = false for enumerated slot", s)
		}
	}
	if IsKnown("01:00 PM") {
		t.Error("IsKnown accepted the midday gap slot")
	}
	if IsKnown("09:00 AM") {
		t.Error("IsKnown accepted a slot before opening")
	}
}

func TestContains(t *testing.T) {
	busy := []string{"10:00 AM", "2:00 pm"}
	if !Contains(busy, "02:00 PM") {
		t.Error("Contains missed a differently formatted busy slot")
	}
	if Contains(busy, "11:00 AM") {
		t.Error("Contains reported a free slot as busy")
	}
}

func TestParseDateKey(t *testing.T) {
	d, err := ParseDateKey("2026-06-10")
	if err != nil {
		t.Fatalf("ParseDateKey: %v", err)
	}
	if d.String() != "2026-06-10" {
		t.Errorf("String() = %q", d.String())
	}
	if d.Weekday() != time.Wednesday {
		t.Errorf("Weekday() = %v, want Wednesday", d.Weekday())
	}

	for _, bad := range []string{"", "2026-6-10", "10/06/2026", "2026-13-01", "tomorrow"} {
		if _, err := ParseDateKey(bad); err == nil {
			t.Errorf("ParseDateKey(%q) accepted invalid input", bad)
		}
	}
}

func TestDateKeyAddDays(t *testing.T) {
	d := DateKey("2026-06-30")
	if got := d.AddDays(1); got != DateKey("2026-07-01") {
		t.Errorf("AddDays(1) = %s, want 2026-07-01", got)
	}
	if got := d.AddDays(0); got != d {
		t.Errorf("AddDays(0) = %s, want %s", got, d)
	}
}

func TestDateKeyBefore(t *testing.T) {
	a := DateKey("2026-06-09")
	b := DateKey("2026-06-10")
	if !a.Before(b) || b.Before(a) || a.Before(a) {
		t.Error("Before ordering is wrong")
	}
}

func TestFormatHuman(t *testing.T) {
	tests := []struct {
		date DateKey
		slot string
		want string
	}{
		{"2026-06-10", "11:00 AM", "June 10th at 11:00 AM"},
		{"2026-06-01", "10:00 AM", "June 1st at 10:00 AM"},
		{"2026-06-02", "10:00 AM", "June 2nd at 10:00 AM"},
		{"2026-06-03", "10:00 AM", "June 3rd at 10:00 AM"},
		{"2026-06-11", "10:00 AM", "June 11th at 10:00 AM"},
		{"2026-06-12", "10:00 AM", "June 12th at 10:00 AM"},
		{"2026-06-13", "10:00 AM", "June 13th at 10:00 AM"},
		{"2026-06-21", "10:00 AM", "June 21st at 10:00 AM"},
		{"2026-06-22", "10:00 AM", "June 22nd at 10:00 AM"},
		{"2026-06-23", "10:00 AM", "June 23rd at 10:00 AM"},
	}
	for _, tt := range tests {
		if got := FormatHuman(tt.date, tt.slot); got != tt.want {
			t.Errorf("FormatHuman(%s, %s) = %q, want %q", tt.date, tt.slot, got, tt.want)
		}
	}
}
