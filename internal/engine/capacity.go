package engine

import (
	"fmt"
	"strings"

	"github.com/flowcentral/flowcentral/internal/catalog"
)

// RateTolerancePct is the accepted deviation between the observed processing
// rate and a throughput reference, in percent.
const RateTolerancePct = 5.0

// Reference names for the two planning benchmarks WIP and processing rate
// are compared against.
const (
	RefDefault  = "DEFAULT"
	RefOverride = "OVERRIDE"
)

// RateReference is one throughput benchmark for ValidateProcessing.
type RateReference struct {
	Name  string
	Value float64
}

// ValidateWIP compares the observed WIP count against the plan and override
// throughput references, each scaled by the facility's multiplier pair into
// an acceptable band. The two bands are evaluated independently: WIP can be
// inside the plan band and outside the override band at the same time.
//
// A reference of zero or less skips that comparison and reports that no
// value is defined; a facility missing from the catalog is surfaced as an
// explicit verdict rather than a silent default.
func ValidateWIP(cat *catalog.Catalog, facility string, wip, plan, override int) []CapacityCheck {
	profile, ok := cat.Profile(facility)
	if !ok {
		return []CapacityCheck{{
			Metric:  "wip",
			Verdict: fmt.Sprintf("facility %s not found in threshold catalog", facility),
		}}
	}

	return []CapacityCheck{
		wipAgainst(RefDefault, wip, plan, profile),
		wipAgainst(RefOverride, wip, override, profile),
	}
}

// wipAgainst evaluates WIP against one reference band.
func wipAgainst(name string, wip, reference int, profile catalog.FacilityProfile) CapacityCheck {
	metric := "wip_" + strings.ToLower(name)
	if reference <= 0 {
		return CapacityCheck{
			Metric:  metric,
			Verdict: fmt.Sprintf("no %s value defined", name),
		}
	}

	check := CapacityCheck{
		Metric:    metric,
		Observed:  float64(wip),
		Reference: float64(reference),
	}

	min := float64(reference) * profile.WIPMin
	max := float64(reference) * profile.WIPMax
	w := float64(wip)

	switch {
	case w < min:
		check.Verdict = fmt.Sprintf("WIP %.1f%% below %s minimum (band [%.0f, %.0f])",
			(1-w/min)*100, name, min, max)
	case w > max:
		check.Verdict = fmt.Sprintf("WIP %.1f%% above %s maximum (band [%.0f, %.0f])",
			(w/max-1)*100, name, min, max)
	default:
		check.Verdict = fmt.Sprintf("WIP within %s band [%.0f, %.0f]", name, min, max)
	}
	return check
}

// ValidateProcessing compares the observed processing rate against each
// reference independently: within ±RateTolerancePct the rate is accepted,
// otherwise the deviation and its direction are reported. A non-positive
// reference is reported as having no valid value and is never divided by.
func ValidateProcessing(rate float64, refs ...RateReference) []CapacityCheck {
	checks := make([]CapacityCheck, 0, len(refs))
	for _, ref := range refs {
		metric := "rate_" + strings.ToLower(ref.Name)
		if ref.Value <= 0 {
			checks = append(checks, CapacityCheck{
				Metric:  metric,
				Verdict: fmt.Sprintf("no valid %s reference", ref.Name),
			})
			continue
		}

		check := CapacityCheck{
			Metric:    metric,
			Observed:  rate,
			Reference: ref.Value,
		}

		diff := rate - ref.Value
		pct := abs(diff) / ref.Value * 100
		switch {
		case abs(diff) <= RateTolerancePct/100*ref.Value:
			check.Verdict = fmt.Sprintf("processing rate within ±%.0f%% of %s reference",
				RateTolerancePct, ref.Name)
		case diff < 0:
			check.Verdict = fmt.Sprintf("processing rate %.1f%% below %s reference", pct, ref.Name)
		default:
			check.Verdict = fmt.Sprintf("processing rate %.1f%% above %s reference", pct, ref.Name)
		}
		checks = append(checks, check)
	}
	return checks
}

// ValidateBuffer compares a raw buffer utilization reading (e.g. "85%")
// against the facility's buffer band. An unreadable observation degrades to
// an informational "no data" verdict.
func ValidateBuffer(observed string, band catalog.Band) CapacityCheck {
	value, err := ParsePercent(observed)
	if err != nil {
		return CapacityCheck{
			Metric:  "buffer",
			Verdict: fmt.Sprintf("no buffer data (unreadable value %q)", observed),
		}
	}
	if band.Lower == 0 && band.Upper == 0 {
		return CapacityCheck{
			Metric:   "buffer",
			Observed: value,
			Verdict:  "no buffer band defined",
		}
	}

	check := CapacityCheck{
		Metric:    "buffer",
		Observed:  value,
		Reference: band.Upper,
	}

	switch {
	case band.Lower > 0 && value < band.Lower:
		check.Reference = band.Lower
		check.Verdict = fmt.Sprintf("buffer %.1f%% below minimum (band %s%%)",
			(1-value/band.Lower)*100, band)
	case band.Upper > 0 && value > band.Upper:
		check.Verdict = fmt.Sprintf("buffer %.1f%% above maximum (band %s%%)",
			(value/band.Upper-1)*100, band)
	default:
		check.Verdict = fmt.Sprintf("buffer within band %s%%", band)
	}
	return check
}

// FormatChecks joins verdicts into the multi-line status string the
// presentation layer renders.
func FormatChecks(checks []CapacityCheck) string {
	lines := make([]string, 0, len(checks))
	for _, c := range checks {
		lines = append(lines, c.Verdict)
	}
	return strings.Join(lines, "\n")
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
