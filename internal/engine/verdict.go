package engine

import (
	"time"

	"github.com/flowcentral/flowcentral/internal/catalog"
)

// Verdict is the qualitative status of one observation against one band.
type Verdict string

const (
	// VerdictActive means the value sits at or above the band's upper bound
	// inside the SLA window. The highest-priority outcome.
	VerdictActive Verdict = "active"

	// VerdictAttention means the value sits strictly between the band bounds
	// inside the SLA window.
	VerdictAttention Verdict = "attention"

	// VerdictInactive means the value sits at or below the band's lower bound.
	VerdictInactive Verdict = "inactive"

	// VerdictOutOfWindow means evaluation was suppressed because the deadline's
	// lead time has not yet been reached (or the deadline could not be parsed).
	VerdictOutOfWindow Verdict = "out_of_window"
)

// Group tags which shipment grouping an observation belongs to. It is
// attached per the caller's invocation, never inferred from the data.
type Group string

const (
	GroupSingles Group = "singles"
	GroupMultis  Group = "multis"
)

// ClassificationResult is one emitted row of the CPT risk scan. Produced
// fresh per scan and handed straight to the presentation layer.
type ClassificationResult struct {
	Facility string `json:"facility"`

	// Deadline is the display label: "DD/MM/YYYY HH:MM" when the column
	// header parsed, otherwise the raw header text.
	Deadline string `json:"deadline"`

	// DeadlineAt is the parsed deadline; zero when parsing failed.
	DeadlineAt time.Time `json:"deadline_at,omitempty"`

	// Value is the utilization percentage observed in the column.
	Value float64 `json:"value"`

	// Verdicts holds the independent per-category outcome.
	Verdicts map[catalog.Category]Verdict `json:"verdicts"`

	// Composite is the aggregate precedence outcome: active if any category
	// is active, else attention. Columns that aggregate to neither are not
	// emitted at all.
	Composite Verdict `json:"composite"`

	// Message is the operator-facing composite line.
	Message string `json:"message"`

	Group Group `json:"group"`
}

// Key identifies the row across scan cycles (used for alert dedup/resolve).
func (r ClassificationResult) Key() string {
	return r.Facility + ":" + r.Deadline + ":" + string(r.Group)
}

// CapacityCheck is one stateless comparator outcome: WIP vs a reference band,
// processing rate vs a reference, or buffer utilization vs its band.
// Verdict is a presentation-facing summary, not a typed enum.
type CapacityCheck struct {
	// Metric names the comparison, e.g. "wip_default", "rate_override",
	// "buffer".
	Metric string `json:"metric"`

	// Observed and Reference are informational; both are zero when the
	// comparison degraded to a "no data" verdict.
	Observed  float64 `json:"observed"`
	Reference float64 `json:"reference"`

	Verdict string `json:"verdict"`
}
