package engine

import (
	"strconv"
	"strings"

	"github.com/flowcentral/flowcentral/internal/catalog"
)

// Classify maps a utilization value onto a band.
//
//	value >= band.Upper → active
//	value <= band.Lower → inactive
//	otherwise           → attention
//
// Boundary values belong to the extreme verdicts, never to attention.
func Classify(value float64, band catalog.Band) Verdict {
	switch {
	case value >= band.Upper:
		return VerdictActive
	case value <= band.Lower:
		return VerdictInactive
	default:
		return VerdictAttention
	}
}

// ParseUtilization extracts a numeric percentage from a raw table cell.
// Accepts an optional trailing percent sign and surrounding whitespace.
// Returns ok=false for empty cells, the "∞" utilization marker, and anything
// else non-numeric. Such cells are treated as missing data, not errors.
func ParseUtilization(s string) (float64, bool) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if s == "" || s == "∞" || strings.EqualFold(s, "nan") {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ParsePercent is the strict variant used for buffer readings: the same
// trimming as ParseUtilization but a hard error on anything non-numeric, so
// callers can route the failure to an explicit "no data" verdict.
func ParsePercent(s string) (float64, error) {
	trimmed := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	return strconv.ParseFloat(trimmed, 64)
}
