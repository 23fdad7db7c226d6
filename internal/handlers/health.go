package handlers

import (
	"context"
	"net/http"
	"time"
)

// Pinger reports backend reachability for readiness probes.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandlers serves liveness and readiness probes.
type HealthHandlers struct {
	started time.Time
	pinger  Pinger
}

// NewHealthHandlers constructs health handlers; pinger may be nil.
func NewHealthHandlers(pinger Pinger) *HealthHandlers {
	return &HealthHandlers{started: time.Now(), pinger: pinger}
}

// Healthz reports process liveness.
func (h *HealthHandlers) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"uptime":    time.Since(h.started).String(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Readyz reports whether the storage backend is reachable.
func (h *HealthHandlers) Readyz(w http.ResponseWriter, r *http.Request) {
	if h.pinger != nil {
		if err := h.pinger.Ping(r.Context()); err != nil {
			writeJSONResponse(w, http.StatusServiceUnavailable, map[string]any{
				"status": "degraded",
				"reason": "database unreachable",
			})
			return
		}
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"status": "ready"})
}
