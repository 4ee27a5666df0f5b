package alerts

import (
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/flowcentral/flowcentral/internal/config"
	"github.com/flowcentral/flowcentral/internal/engine"
)

const (
	maxHistoryLen     = 200
	recentWindowHours = 1
)

// Alert represents a single alert event produced by the engine.
type Alert struct {
	ID         string     `json:"id"`
	Facility   string     `json:"facility"`
	Deadline   string     `json:"deadline"`
	Group      string     `json:"group"`
	Severity   string     `json:"severity"`
	Message    string     `json:"message"`
	FiredAt    time.Time  `json:"fired_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
	State      string     `json:"state"` // "firing" | "resolved"
}

// Engine tracks active risk rows across scans and delivers webhook
// notifications when rows appear or clear.
//
// Engine is safe for concurrent use.
type Engine struct {
	cooldown time.Duration
	webhooks []config.WebhookConfig

	mu       sync.Mutex
	active   map[string]*Alert    // key: ClassificationResult.Key()
	lastFire map[string]time.Time // last fire time per key (for cooldown)
	history  []*Alert             // recently resolved alerts
	client   *http.Client
	now      func() time.Time
}

// New creates an Engine from the alert configuration.
// An Engine with no webhooks is valid; alerts are still tracked and
// served over the API, delivery just becomes a no-op.
func New(cfg config.AlertsConfig) *Engine {
	cooldown := cfg.Cooldown
	if cooldown <= 0 {
		cooldown = config.DefaultCooldown
	}
	return &Engine{
		cooldown: cooldown,
		webhooks: cfg.Webhooks,
		active:   make(map[string]*Alert),
		lastFire: make(map[string]time.Time),
		client:   &http.Client{Timeout: 10 * time.Second},
		now:      time.Now,
	}
}

// Evaluate reconciles the latest scan of one facility against the alert
// state. Active risk rows fire (subject to per-row cooldown), and
// previously firing rows that no longer appear resolve. Webhook delivery
// runs asynchronously.
func (e *Engine) Evaluate(facility string, risks []engine.ClassificationResult) {
	now := e.now()

	seen := make(map[string]bool, len(risks))
	var toDeliver []*Alert

	e.mu.Lock()
	for _, r := range risks {
		if r.Composite != engine.VerdictActive {
			continue
		}
		key := r.Key()
		seen[key] = true

		if _, firing := e.active[key]; firing {
			continue
		}
		if now.Sub(e.lastFire[key]) <= e.cooldown {
			continue
		}

		a := &Alert{
			ID:       uuid.NewString(),
			Facility: r.Facility,
			Deadline: r.Deadline,
			Group:    string(r.Group),
			Severity: "critical",
			Message:  fmt.Sprintf("[critical] %s", r.Message),
			FiredAt:  now,
			State:    "firing",
		}
		e.active[key] = a
		e.lastFire[key] = now
		cp := *a
		toDeliver = append(toDeliver, &cp)
	}

	for key, a := range e.active {
		if a.Facility != facility || seen[key] {
			continue
		}
		resolved := now
		a.State = "resolved"
		a.ResolvedAt = &resolved
		delete(e.active, key)

		e.history = append(e.history, a)
		if len(e.history) > maxHistoryLen {
			e.history = e.history[len(e.history)-maxHistoryLen:]
		}
		cp := *a
		toDeliver = append(toDeliver, &cp)
	}
	e.mu.Unlock()

	for _, a := range toDeliver {
		if a.State == "firing" {
			slog.Warn("alert fired",
				"facility", a.Facility,
				"deadline", a.Deadline,
				"group", a.Group,
			)
		} else {
			slog.Info("alert resolved",
				"facility", a.Facility,
				"deadline", a.Deadline,
			)
		}
		go e.deliver(a)
	}
}

// Active returns copies of all currently firing alerts plus any alerts
// resolved within the past hour, sorted by the caller if needed.
func (e *Engine) Active() []*Alert {
	e.mu.Lock()
	defer e.mu.Unlock()

	cutoff := e.now().Add(-recentWindowHours * time.Hour)
	out := make([]*Alert, 0, len(e.active))

	for _, a := range e.active {
		cp := *a
		out = append(out, &cp)
	}
	for _, a := range e.history {
		if a.ResolvedAt != nil && a.ResolvedAt.After(cutoff) {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out
}
