package engine

import (
	"testing"
	"time"
)

var saoPaulo = mustLoad("America/Sao_Paulo")

func mustLoad(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

func TestParseDeadline(t *testing.T) {
	now := time.Date(2026, time.August, 26, 10, 0, 0, 0, saoPaulo)

	got, err := ParseDeadline("08/26 17:30", now, saoPaulo)
	if err != nil {
		t.Fatalf("ParseDeadline: %v", err)
	}
	want := time.Date(2026, time.August, 26, 17, 30, 0, 0, saoPaulo)
	if !got.Equal(want) {
		t.Errorf("ParseDeadline = %v, want %v", got, want)
	}
}

func TestParseDeadline_TrimsWhitespace(t *testing.T) {
	now := time.Date(2026, time.August, 26, 10, 0, 0, 0, saoPaulo)
	if _, err := ParseDeadline("  08/27 02:00 ", now, saoPaulo); err != nil {
		t.Errorf("ParseDeadline with padding: %v", err)
	}
}

func TestParseDeadline_Malformed(t *testing.T) {
	now := time.Date(2026, time.August, 26, 10, 0, 0, 0, saoPaulo)
	for _, raw := range []string{"", "garbage", "26/08 17:30:00", "08-26 17:30"} {
		if _, err := ParseDeadline(raw, now, saoPaulo); err == nil {
			t.Errorf("ParseDeadline(%q): expected error", raw)
		}
	}
}

func TestParseDeadline_YearBoundary(t *testing.T) {
	// The current year is attached unconditionally, so a January CPT
	// evaluated on December 31st lands a year early. Reproduced as-is.
	now := time.Date(2026, time.December, 31, 23, 0, 0, 0, saoPaulo)
	got, err := ParseDeadline("01/01 04:00", now, saoPaulo)
	if err != nil {
		t.Fatalf("ParseDeadline: %v", err)
	}
	if got.Year() != 2026 {
		t.Errorf("year = %d, want 2026 (current year attached unconditionally)", got.Year())
	}
}

func TestInWindow(t *testing.T) {
	deadline := time.Date(2026, time.August, 26, 17, 0, 0, 0, saoPaulo)
	const lead = 2.0 // hours → window opens at 15:00

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"well before window", deadline.Add(-6 * time.Hour), false},
		{"one second before open", deadline.Add(-2*time.Hour - time.Second), false},
		{"exactly at window open", deadline.Add(-2 * time.Hour), true}, // boundary inclusive
		{"inside window", deadline.Add(-30 * time.Minute), true},
		{"at the deadline", deadline, true},
		{"past the deadline", deadline.Add(time.Hour), true}, // stays enabled
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := InWindow(deadline, lead, tc.now); got != tc.want {
				t.Errorf("InWindow(now=%v) = %v, want %v", tc.now, got, tc.want)
			}
		})
	}
}

func TestInWindow_FractionalLead(t *testing.T) {
	deadline := time.Date(2026, time.August, 26, 17, 0, 0, 0, saoPaulo)

	// 2.25h lead → window opens at 14:45.
	if InWindow(deadline, 2.25, deadline.Add(-2*time.Hour-16*time.Minute)) {
		t.Error("14:44 should be outside a 2.25h window")
	}
	if !InWindow(deadline, 2.25, deadline.Add(-2*time.Hour-15*time.Minute)) {
		t.Error("14:45 should open the 2.25h window")
	}
}

func TestInWindow_ZeroLead(t *testing.T) {
	deadline := time.Date(2026, time.August, 26, 17, 0, 0, 0, saoPaulo)
	if InWindow(deadline, 0, deadline.Add(-time.Minute)) {
		t.Error("zero lead: window must not open before the deadline itself")
	}
	if !InWindow(deadline, 0, deadline) {
		t.Error("zero lead: window opens exactly at the deadline")
	}
}
