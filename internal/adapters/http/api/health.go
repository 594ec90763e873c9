package api

import (
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okian/prepdeck/pkg/metrics"
)

// HealthHandler handles health check requests.
type HealthHandler struct {
	metrics http.Handler
	stats   StatsProvider
}

type healthResponse struct {
	Status string `json:"status"`
}

// NewHealthHandler creates a new health handler. The stats provider decides
// liveness for JSON clients; nil means always live.
func NewHealthHandler(stats StatsProvider) *HealthHandler {
	return &HealthHandler{
		metrics: promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}),
		stats:   stats,
	}
}

// HandleHealth handles GET /healthz requests.
// Clients that accept application/json get a liveness status; everyone else
// gets the Prometheus exposition of the service registry.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if !wantsJSON(r) {
		h.metrics.ServeHTTP(w, r)
		return
	}
	if h.stats != nil {
		if started, _ := h.stats.GetStats()["started"].(bool); !started {
			writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "starting"})
			return
		}
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

func wantsJSON(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	if strings.Contains(accept, "application/openmetrics-text") || strings.Contains(accept, "text/plain") {
		return false
	}
	return strings.Contains(accept, "application/json")
}
