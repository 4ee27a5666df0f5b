// Package engine implements the threshold/SLA classification engine.
//
// band.go provides Classify, the three-way band verdict (value at/above the
// upper bound is active, at/below the lower bound inactive, in between
// attention; boundaries belong to the extremes).
//
// window.go decides whether a CPT deadline is inside its evaluation window:
// a category is only evaluated once "now" has crossed deadline minus the
// category's lead time. Malformed deadlines fail closed to out_of_window.
//
// scanner.go walks a row of per-deadline utilization percentages and emits
// one ClassificationResult per column that warrants operator attention.
//
// capacity.go provides the stateless WIP, processing-rate, and buffer
// comparators.
//
// Every entry point is a pure function of its inputs plus an explicit
// now time.Time, so tests control the clock without sleeping. Bad observation
// data never produces an error, it degrades to a narrower verdict.
package engine
