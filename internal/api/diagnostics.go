package api

import (
	"fmt"
	"strings"

	"github.com/flowcentral/flowcentral/internal/engine"
	"github.com/flowcentral/flowcentral/internal/store"
)

// DiagnosticHint is one human-readable insight about a facility's health.
// The UI displays these as chips on the facility card; clicking one shows
// Detail, written in plain English for the on-shift operator.
type DiagnosticHint struct {
	// Key is a stable machine-readable identifier (used for dedup/ordering).
	Key string `json:"key"`
	// Level is "ok" | "info" | "warning" | "critical"
	Level string `json:"level"`
	// Title is a short label shown on the chip.
	Title string `json:"title"`
	// Detail is the full explanation shown on click/hover.
	Detail string `json:"detail"`
}

// computeDiagnostics derives diagnostic hints from one facility status.
// Critical hints come first, then warnings, then info.
func computeDiagnostics(s *store.FacilityStatus) []DiagnosticHint {
	var hints []DiagnosticHint

	// Total fetch failure: nothing else to diagnose.
	if len(s.Errors) > 0 && len(s.Risks) == 0 && len(s.Capacity) == 0 {
		hints = append(hints, DiagnosticHint{
			Key:   "fetch_failed",
			Level: "critical",
			Title: "Can't reach sources",
			Detail: fmt.Sprintf(
				"Every observation for this facility failed this cycle: %s. "+
					"Check that the dashboard endpoints are reachable and the session "+
					"cookies or credentials are still valid. Until a fetch succeeds, risk "+
					"and capacity data for this facility are unavailable.",
				strings.Join(s.Errors, "; "),
			),
		})
		return hints
	}

	if n := s.ActiveRiskCount(); n > 0 {
		var deadlines []string
		for _, r := range s.Risks {
			if r.Composite == engine.VerdictActive {
				deadlines = append(deadlines, r.Deadline)
			}
		}
		hints = append(hints, DiagnosticHint{
			Key:   "cpt_active",
			Level: "critical",
			Title: fmt.Sprintf("%d CPT at risk", n),
			Detail: fmt.Sprintf(
				"Utilization has crossed the active threshold for %d deadline(s): %s. "+
					"These shipments are inside their SLA window and at risk of missing "+
					"the cutoff. Escalate to the outbound lead and check pick/pack staffing "+
					"for the affected waves.",
				n, strings.Join(deadlines, ", "),
			),
		})
	}

	attention := 0
	for _, r := range s.Risks {
		if r.Composite == engine.VerdictAttention {
			attention++
		}
	}
	if attention > 0 {
		hints = append(hints, DiagnosticHint{
			Key:   "cpt_attention",
			Level: "warning",
			Title: fmt.Sprintf("%d CPT trending up", attention),
			Detail: fmt.Sprintf(
				"%d deadline(s) sit between the lower and upper threshold. Not yet "+
					"actionable, but if utilization keeps climbing they will go active. "+
					"Watch the next few cycles.",
				attention,
			),
		})
	}

	hints = append(hints, capacityHints(s.Capacity)...)

	if len(s.Errors) > 0 {
		hints = append(hints, DiagnosticHint{
			Key:   "partial_data",
			Level: "warning",
			Title: fmt.Sprintf("%d source(s) failing", len(s.Errors)),
			Detail: fmt.Sprintf(
				"Some observations could not be fetched this cycle: %s. The checks "+
					"shown are computed from what did arrive.",
				strings.Join(s.Errors, "; "),
			),
		})
	}

	if len(hints) == 0 {
		hints = append(hints, DiagnosticHint{
			Key:   "healthy",
			Level: "ok",
			Title: "All clear",
			Detail: "No deadline at risk, capacity inside its bands, and every " +
				"source answered. A sudden drop in WIP or processing rate can still " +
				"signal an upstream problem, so keep the trend in view.",
		})
	}

	return hints
}

// capacityHints converts out-of-band capacity checks into hints. In-band
// checks stay silent; "no data" checks surface as info.
func capacityHints(checks []engine.CapacityCheck) []DiagnosticHint {
	var hints []DiagnosticHint
	for _, c := range checks {
		v := c.Verdict
		switch {
		case strings.Contains(v, "below") || strings.Contains(v, "above"):
			hints = append(hints, DiagnosticHint{
				Key:    "capacity_" + c.Metric,
				Level:  "warning",
				Title:  c.Metric + " out of band",
				Detail: v,
			})
		case strings.HasPrefix(v, "no ") || strings.Contains(v, "not found"):
			hints = append(hints, DiagnosticHint{
				Key:    "capacity_" + c.Metric,
				Level:  "info",
				Title:  c.Metric + " unavailable",
				Detail: v,
			})
		}
	}
	return hints
}
