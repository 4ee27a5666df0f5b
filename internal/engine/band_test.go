package engine

import (
	"testing"

	"github.com/flowcentral/flowcentral/internal/catalog"
)

func TestClassify(t *testing.T) {
	band := catalog.Band{Lower: 90, Upper: 95}

	tests := []struct {
		name  string
		value float64
		want  Verdict
	}{
		{"well below lower", 40, VerdictInactive},
		{"exactly lower bound", 90, VerdictInactive}, // boundary belongs to inactive
		{"just above lower", 90.01, VerdictAttention},
		{"mid band", 92.5, VerdictAttention},
		{"just below upper", 94.99, VerdictAttention},
		{"exactly upper bound", 95, VerdictActive}, // boundary belongs to active
		{"above upper", 96, VerdictActive},
		{"far above upper", 200, VerdictActive},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.value, band); got != tc.want {
				t.Errorf("Classify(%v, %v) = %q, want %q", tc.value, band, got, tc.want)
			}
		})
	}
}

func TestClassify_DegenerateBand(t *testing.T) {
	// Lower == Upper: every value is either active or inactive, never attention.
	band := catalog.Band{Lower: 90, Upper: 90}

	if got := Classify(90, band); got != VerdictActive {
		t.Errorf("Classify(90) on 90-90 = %q, want active (upper bound wins)", got)
	}
	if got := Classify(89.9, band); got != VerdictInactive {
		t.Errorf("Classify(89.9) on 90-90 = %q, want inactive", got)
	}
}

func TestParseUtilization(t *testing.T) {
	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{"96", 96, true},
		{"96%", 96, true},
		{"9 6%", 0, false},
		{"  87.5%  ", 87.5, true},
		{"0", 0, true},
		{"∞", 0, false},
		{"", 0, false},
		{"   ", 0, false},
		{"NaN", 0, false},
		{"n/a", 0, false},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, ok := ParseUtilization(tc.in)
			if ok != tc.wantOK {
				t.Fatalf("ParseUtilization(%q) ok = %v, want %v", tc.in, ok, tc.wantOK)
			}
			if ok && got != tc.want {
				t.Errorf("ParseUtilization(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestParsePercent(t *testing.T) {
	if v, err := ParsePercent(" 85% "); err != nil || v != 85 {
		t.Errorf("ParsePercent(\" 85%% \") = %v, %v; want 85, nil", v, err)
	}
	if _, err := ParsePercent("∞"); err == nil {
		t.Error("ParsePercent(∞): expected error")
	}
	if _, err := ParsePercent(""); err == nil {
		t.Error("ParsePercent(\"\"): expected error")
	}
}
