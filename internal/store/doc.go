// Package store holds the latest classification results per facility in
// memory, with TTL-based eviction of facilities that have stopped reporting.
// It is the single source the REST API, WebSocket hub, and alert engine read
// from.
package store
