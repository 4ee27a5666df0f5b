// Package catalog holds the per-facility threshold configuration: utilization
// bands and SLA lead times for the three alert categories (default, priority,
// expedite), WIP multiplier pairs, and rebin buffer bands.
//
// A Catalog is built once, either from the shipped table (Builtin) or from a
// YAML file (Load), and is immutable afterwards. Profile lookups return
// copies, so callers can never mutate shared configuration.
package catalog
