package engine

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/flowcentral/flowcentral/internal/catalog"
)

// Table is one facility's CPT utilization row together with its header:
// Deadlines[i] is the raw CPT label for column i and Values[i] the raw
// utilization cell. Extra header columns without a value are ignored.
type Table struct {
	Deadlines []string
	Values    []string
}

// Scan evaluates every column of tbl against the facility's three SLA
// profiles and returns the rows that warrant operator attention, in column
// order (no re-sorting by severity).
//
// Per column, each category is evaluated independently: the category's lead
// time gates the SLA window, and only in-window categories are classified
// against their band; out-of-window categories are forced to out_of_window.
// Composite precedence:
//
//  1. any category active → an active row naming all active categories;
//  2. else any category attention and none out_of_window → an attention row
//     citing the value and the default band;
//  3. else the column produces no row.
//
// A column header that fails to parse keeps its raw text as the display
// label; its window checks fail closed, so all categories are suppressed.
func Scan(facility string, tbl Table, profile catalog.FacilityProfile, group Group, loc *time.Location, now time.Time) []ClassificationResult {
	var results []ClassificationResult

	for i, rawValue := range tbl.Values {
		value, ok := ParseUtilization(rawValue)
		if !ok {
			continue
		}
		if i >= len(tbl.Deadlines) {
			break
		}
		rawDeadline := strings.TrimSpace(tbl.Deadlines[i])

		label := rawDeadline
		deadline, err := ParseDeadline(rawDeadline, now, loc)
		parsed := err == nil
		if parsed {
			label = deadline.Format(displayLayout)
		}

		verdicts := make(map[catalog.Category]Verdict, len(catalog.Categories))
		var active []string
		attention := false
		suppressed := false

		for _, cat := range catalog.Categories {
			sla := profile.SLA(cat)

			v := VerdictOutOfWindow
			if parsed && InWindow(deadline, sla.LeadTimeHours, now) {
				v = Classify(value, sla.Band)
			}
			verdicts[cat] = v

			switch v {
			case VerdictActive:
				active = append(active, cat.Label())
			case VerdictAttention:
				attention = true
			case VerdictOutOfWindow:
				suppressed = true
			}
		}

		res := ClassificationResult{
			Facility: facility,
			Deadline: label,
			Value:    value,
			Verdicts: verdicts,
			Group:    group,
		}
		if parsed {
			res.DeadlineAt = deadline
		}

		switch {
		case len(active) > 0:
			res.Composite = VerdictActive
			res.Message = fmt.Sprintf("TRB active | CPT: %s | categories: %s | value: %s%%",
				label, strings.Join(active, " / "), formatValue(value))
		case attention && !suppressed:
			res.Composite = VerdictAttention
			res.Message = fmt.Sprintf("attention | CPT: %s | value: %s%% | default band: %s",
				label, formatValue(value), profile.Default.Band)
		default:
			// Columns that are merely inactive, or attention with a
			// concurrent suppressed category, produce no visible row.
			continue
		}

		results = append(results, res)
	}

	return results
}

// formatValue renders a utilization value without trailing zeros.
func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
