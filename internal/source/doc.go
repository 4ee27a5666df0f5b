// Package source fetches raw facility observations from upstream operational
// dashboards.
//
// Each facility exposes several independent pages: the CPT risk view
// (utilization-by-deadline tables), the WIP rollup, the planned/override
// throughput page, the process-path rollup and the sortation buffer status.
// A facility can alternatively expose a single Prometheus-text-format
// exporter endpoint carrying the same numbers; when configured, the exporter
// is preferred over page scraping.
//
// Every fetch degrades independently. A failed or unparsable page records an
// error string on the Observations and leaves the corresponding field nil;
// it never aborts the rest of the cycle.
package source
