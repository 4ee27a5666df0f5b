package engine

import (
	"fmt"
	"strings"
	"time"
)

// deadlineLayout is the CPT header format on the risk dashboard: "MM/DD HH:MM".
const deadlineLayout = "01/02 15:04"

// displayLayout is how parsed deadlines are rendered for operators.
const displayLayout = "02/01/2006 15:04"

// ParseDeadline parses a raw CPT column header, attaching the current year
// and the given zone. Source headers carry no year, so a deadline evaluated
// near December 31st for a January CPT lands in the wrong year; that
// ambiguity is accepted as-is.
func ParseDeadline(raw string, now time.Time, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(deadlineLayout, strings.TrimSpace(raw), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("engine: parse deadline %q: %w", raw, err)
	}
	return time.Date(now.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, loc), nil
}

// InWindow reports whether now has entered the evaluation window for a
// deadline, i.e. now >= deadline − leadHours. Before that instant the
// deadline is too far out to act on and classification is suppressed.
// The boundary itself is inside the window. Evaluation stays enabled once
// the window opens; a deadline already in the past is still evaluated.
func InWindow(deadline time.Time, leadHours float64, now time.Time) bool {
	start := deadline.Add(-time.Duration(leadHours * float64(time.Hour)))
	return !now.Before(start)
}
