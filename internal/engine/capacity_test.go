package engine

import (
	"strings"
	"testing"

	"github.com/flowcentral/flowcentral/internal/catalog"
)

func TestValidateWIP_WithinBand(t *testing.T) {
	// GRU5 multipliers (1.8, 2.2); plan 500 → band [900, 1100].
	checks := ValidateWIP(catalog.Builtin(), "GRU5", 1000, 500, 0)
	if len(checks) != 2 {
		t.Fatalf("got %d checks, want 2", len(checks))
	}

	plan := checks[0]
	if plan.Metric != "wip_default" {
		t.Errorf("Metric = %q, want wip_default", plan.Metric)
	}
	if !strings.Contains(plan.Verdict, "within DEFAULT band") {
		t.Errorf("plan verdict = %q, want within-band message", plan.Verdict)
	}
	if strings.Contains(plan.Verdict, "%") {
		t.Errorf("plan verdict = %q: no deviation percentage for in-band WIP", plan.Verdict)
	}

	override := checks[1]
	if !strings.Contains(override.Verdict, "no OVERRIDE value defined") {
		t.Errorf("override verdict = %q, want no-value message", override.Verdict)
	}
}

func TestValidateWIP_Deviation(t *testing.T) {
	cat := catalog.Builtin()

	tests := []struct {
		name string
		wip  int
		want string
	}{
		// band [900, 1100]
		{"below minimum", 810, "10.0% below DEFAULT minimum"},
		{"above maximum", 1210, "10.0% above DEFAULT maximum"},
		{"at minimum", 900, "within DEFAULT band"},
		{"at maximum", 1100, "within DEFAULT band"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			checks := ValidateWIP(cat, "GRU5", tc.wip, 500, 0)
			if !strings.Contains(checks[0].Verdict, tc.want) {
				t.Errorf("verdict = %q, want substring %q", checks[0].Verdict, tc.want)
			}
		})
	}
}

func TestValidateWIP_IndependentBands(t *testing.T) {
	// WIP inside the plan band but above the override band.
	// plan 500 → [900, 1100]; override 400 → [720, 880]; WIP 1000.
	checks := ValidateWIP(catalog.Builtin(), "GRU5", 1000, 500, 400)

	if !strings.Contains(checks[0].Verdict, "within DEFAULT band") {
		t.Errorf("plan verdict = %q, want within", checks[0].Verdict)
	}
	if !strings.Contains(checks[1].Verdict, "above OVERRIDE maximum") {
		t.Errorf("override verdict = %q, want above maximum", checks[1].Verdict)
	}
}

func TestValidateWIP_FacilityNotFound(t *testing.T) {
	checks := ValidateWIP(catalog.Builtin(), "ZZZ9", 1000, 500, 0)
	if len(checks) != 1 {
		t.Fatalf("got %d checks, want 1", len(checks))
	}
	if !strings.Contains(checks[0].Verdict, "not found in threshold catalog") {
		t.Errorf("verdict = %q, want explicit catalog miss", checks[0].Verdict)
	}
}

func TestValidateWIP_ZeroReferences(t *testing.T) {
	checks := ValidateWIP(catalog.Builtin(), "GRU5", 1000, 0, -5)
	for _, c := range checks {
		if !strings.Contains(c.Verdict, "value defined") {
			t.Errorf("verdict = %q, want no-value message (never divide by zero)", c.Verdict)
		}
		if c.Reference != 0 {
			t.Errorf("Reference = %v, want 0 for degraded check", c.Reference)
		}
	}
}

func TestValidateWIP_Monotonic(t *testing.T) {
	// Increasing WIP against fixed references must walk below → within →
	// above without skipping or reverting.
	cat := catalog.Builtin()
	rank := func(verdict string) int {
		switch {
		case strings.Contains(verdict, "below"):
			return 0
		case strings.Contains(verdict, "within"):
			return 1
		case strings.Contains(verdict, "above"):
			return 2
		}
		t.Fatalf("unexpected verdict %q", verdict)
		return -1
	}

	prev := -1
	for wip := 0; wip <= 2000; wip += 50 {
		checks := ValidateWIP(cat, "GRU5", wip, 500, 0)
		r := rank(checks[0].Verdict)
		if r < prev {
			t.Fatalf("verdict rank regressed at wip=%d: %d after %d", wip, r, prev)
		}
		prev = r
	}
	if prev != 2 {
		t.Errorf("final rank = %d, want 2 (above maximum)", prev)
	}
}

func TestValidateProcessing(t *testing.T) {
	tests := []struct {
		name string
		rate float64
		ref  RateReference
		want string
	}{
		{"within tolerance", 103, RateReference{RefDefault, 100}, "within ±5%"},
		{"at tolerance boundary", 105, RateReference{RefDefault, 100}, "within ±5%"},
		{"above reference", 120, RateReference{RefDefault, 100}, "20.0% above DEFAULT"},
		{"below reference", 80, RateReference{RefDefault, 100}, "20.0% below DEFAULT"},
		{"zero reference", 120, RateReference{RefOverride, 0}, "no valid OVERRIDE reference"},
		{"negative reference", 120, RateReference{RefOverride, -10}, "no valid OVERRIDE reference"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			checks := ValidateProcessing(tc.rate, tc.ref)
			if len(checks) != 1 {
				t.Fatalf("got %d checks, want 1", len(checks))
			}
			if !strings.Contains(checks[0].Verdict, tc.want) {
				t.Errorf("verdict = %q, want substring %q", checks[0].Verdict, tc.want)
			}
		})
	}
}

func TestValidateProcessing_MultipleReferences(t *testing.T) {
	// Each reference evaluated independently; one bad input never suppresses
	// the other comparison.
	checks := ValidateProcessing(120,
		RateReference{RefDefault, 100},
		RateReference{RefOverride, 0},
	)
	if len(checks) != 2 {
		t.Fatalf("got %d checks, want 2", len(checks))
	}
	if !strings.Contains(checks[0].Verdict, "above DEFAULT") {
		t.Errorf("default verdict = %q", checks[0].Verdict)
	}
	if !strings.Contains(checks[1].Verdict, "no valid OVERRIDE") {
		t.Errorf("override verdict = %q", checks[1].Verdict)
	}
}

func TestValidateBuffer(t *testing.T) {
	band := catalog.Band{Lower: 80, Upper: 90}

	tests := []struct {
		name     string
		observed string
		want     string
	}{
		{"within band", "85%", "within band 80-90%"},
		{"at lower bound", "80", "within band"},
		{"at upper bound", "90%", "within band"},
		{"below minimum", "72%", "10.0% below minimum"},
		{"above maximum", "99", "10.0% above maximum"},
		{"padded input", "  85% ", "within band"},
		{"unreadable", "∞", "no buffer data"},
		{"empty", "", "no buffer data"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			check := ValidateBuffer(tc.observed, band)
			if !strings.Contains(check.Verdict, tc.want) {
				t.Errorf("ValidateBuffer(%q) = %q, want substring %q", tc.observed, check.Verdict, tc.want)
			}
		})
	}
}

func TestValidateBuffer_NoBandDefined(t *testing.T) {
	check := ValidateBuffer("85%", catalog.Band{})
	if !strings.Contains(check.Verdict, "no buffer band defined") {
		t.Errorf("verdict = %q, want no-band message", check.Verdict)
	}
}

func TestFormatChecks(t *testing.T) {
	out := FormatChecks([]CapacityCheck{
		{Verdict: "line one"},
		{Verdict: "line two"},
	})
	if out != "line one\nline two" {
		t.Errorf("FormatChecks = %q", out)
	}
}
