package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/flowcentral/flowcentral/internal/alerts"
	"github.com/flowcentral/flowcentral/internal/engine"
	"github.com/flowcentral/flowcentral/internal/store"
)

// Handler is the HTTP handler for all /api/v1/* endpoints.
// It reads facility state from the status store and returns JSON responses.
type Handler struct {
	store  *store.Store
	alerts *alerts.Engine
	mux    *http.ServeMux
}

// New creates a Handler wired to the given store and alert engine and
// registers all routes.
func New(st *store.Store, al *alerts.Engine) http.Handler {
	h := &Handler{store: st, alerts: al, mux: http.NewServeMux()}

	h.mux.HandleFunc("/api/v1/health", h.health)
	h.mux.HandleFunc("/api/v1/facilities", h.listFacilities)
	h.mux.HandleFunc("/api/v1/facilities/", h.getFacility) // subtree, extracts {id}
	h.mux.HandleFunc("/api/v1/risks", h.risks)
	h.mux.HandleFunc("/api/v1/capacity", h.capacity)
	h.mux.HandleFunc("/api/v1/alerts", h.listAlerts)
	h.mux.HandleFunc("/api/v1/snapshot", h.snapshot)

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// --- route handlers ---------------------------------------------------------

// health returns GET /api/v1/health: the overall state plus per-state counts.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	entries := h.store.List()
	resp := HealthResponse{FacilityCount: len(entries)}
	if h.alerts != nil {
		resp.AlertCount = len(h.alerts.Active())
	}

	if len(entries) == 0 {
		resp.State = "unknown"
		jsonResp(w, http.StatusOK, resp)
		return
	}

	for _, e := range entries {
		switch facilityState(e.Status) {
		case "active":
			resp.ActiveCount++
		case "attention":
			resp.AttentionCount++
		default:
			resp.ClearCount++
		}
	}

	switch {
	case resp.ActiveCount > 0:
		resp.State = "active"
	case resp.AttentionCount > 0:
		resp.State = "attention"
	default:
		resp.State = "clear"
	}
	jsonResp(w, http.StatusOK, resp)
}

// listFacilities returns GET /api/v1/facilities: all live facilities.
func (h *Handler) listFacilities(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	entries := h.store.List()
	out := make([]FacilityResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toFacilityResponse(e))
	}
	jsonResp(w, http.StatusOK, out)
}

// getFacility returns GET /api/v1/facilities/{id}: a single live facility.
func (h *Handler) getFacility(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/v1/facilities/")
	if id == "" {
		h.listFacilities(w, r)
		return
	}

	e, ok := h.store.Get(id)
	if !ok {
		jsonErr(w, http.StatusNotFound, "facility not found")
		return
	}
	// Stale entries are treated as not found.
	if time.Since(e.UpdatedAt) > h.store.TTL() {
		jsonErr(w, http.StatusNotFound, "facility not found")
		return
	}

	jsonResp(w, http.StatusOK, toFacilityResponse(e))
}

// risks returns GET /api/v1/risks: every risk row across live facilities.
func (h *Handler) risks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	entries := h.store.List()
	out := make([]engine.ClassificationResult, 0)
	for _, e := range entries {
		out = append(out, e.Status.Risks...)
	}
	jsonResp(w, http.StatusOK, out)
}

// capacity returns GET /api/v1/capacity: capacity checks per live facility.
func (h *Handler) capacity(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	entries := h.store.List()
	out := make([]CapacityResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, CapacityResponse{
			Facility: e.Status.Facility,
			Checks:   e.Status.Capacity,
			Summary:  engine.FormatChecks(e.Status.Capacity),
		})
	}
	jsonResp(w, http.StatusOK, out)
}

// listAlerts returns GET /api/v1/alerts: firing plus recently resolved alerts.
func (h *Handler) listAlerts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if h.alerts == nil {
		jsonResp(w, http.StatusOK, []struct{}{})
		return
	}
	jsonResp(w, http.StatusOK, h.alerts.Active())
}

// snapshot returns GET /api/v1/snapshot: the full dump the WebSocket hub
// also streams.
func (h *Handler) snapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	jsonResp(w, http.StatusOK, BuildSnapshot(h.store))
}

// --- helpers ----------------------------------------------------------------

func jsonResp(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, errorResponse{Error: msg})
}

// BuildSnapshot assembles the full snapshot payload from the store. Shared
// with the WebSocket hub so both surfaces emit the same schema.
func BuildSnapshot(st *store.Store) SnapshotResponse {
	entries := st.List()
	facilities := make([]FacilityResponse, 0, len(entries))
	for _, e := range entries {
		facilities = append(facilities, toFacilityResponse(e))
	}
	return SnapshotResponse{
		Facilities:  facilities,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
	}
}

// facilityState reduces a facility's risk rows to a single state string.
func facilityState(s *store.FacilityStatus) string {
	state := "clear"
	for _, r := range s.Risks {
		switch r.Composite {
		case engine.VerdictActive:
			return "active"
		case engine.VerdictAttention:
			state = "attention"
		}
	}
	return state
}

// toFacilityResponse maps a store.Entry to its JSON representation.
func toFacilityResponse(e *store.Entry) FacilityResponse {
	s := e.Status
	risks := s.Risks
	if risks == nil {
		risks = []engine.ClassificationResult{}
	}
	capacity := s.Capacity
	if capacity == nil {
		capacity = []engine.CapacityCheck{}
	}
	return FacilityResponse{
		Facility:    s.Facility,
		State:       facilityState(s),
		Risks:       risks,
		Capacity:    capacity,
		Errors:      s.Errors,
		Diagnostics: computeDiagnostics(s),
		FetchedAt:   s.FetchedAt.UTC().Format(time.RFC3339),
		LastSeen:    e.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
