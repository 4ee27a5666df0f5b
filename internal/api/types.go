package api

import "github.com/flowcentral/flowcentral/internal/engine"

// HealthResponse is the payload for GET /api/v1/health.
type HealthResponse struct {
	State          string `json:"state"` // active | attention | clear | unknown
	FacilityCount  int    `json:"facility_count"`
	ActiveCount    int    `json:"active_count"`
	AttentionCount int    `json:"attention_count"`
	ClearCount     int    `json:"clear_count"`
	AlertCount     int    `json:"alert_count"`
}

// FacilityResponse is one facility entry in GET /api/v1/facilities or
// GET /api/v1/facilities/{id}.
type FacilityResponse struct {
	Facility    string                        `json:"facility"`
	State       string                        `json:"state"` // active | attention | clear
	Risks       []engine.ClassificationResult `json:"risks"`
	Capacity    []engine.CapacityCheck        `json:"capacity"`
	Errors      []string                      `json:"errors,omitempty"`
	Diagnostics []DiagnosticHint              `json:"diagnostics"`
	FetchedAt   string                        `json:"fetched_at"` // RFC3339
	LastSeen    string                        `json:"last_seen"`  // RFC3339
}

// CapacityResponse is one facility's checks in GET /api/v1/capacity.
// Summary is the joined verdict text, one line per check, as the UI's
// status panel renders it.
type CapacityResponse struct {
	Facility string                 `json:"facility"`
	Checks   []engine.CapacityCheck `json:"checks"`
	Summary  string                 `json:"summary"`
}

// SnapshotResponse is the payload for GET /api/v1/snapshot and the body of
// every WebSocket broadcast.
type SnapshotResponse struct {
	Facilities  []FacilityResponse `json:"facilities"`
	GeneratedAt string             `json:"generated_at"` // RFC3339
}

// errorResponse is a generic JSON error body.
type errorResponse struct {
	Error string `json:"error"`
}
