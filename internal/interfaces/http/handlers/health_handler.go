package handlers

import (
	"net/http"

	"pathway-engine/internal/engine"
	"pathway-engine/pkg/api"
)

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	engine *engine.Engine
}

// NewHealthHandler creates the probe endpoints.
func NewHealthHandler(eng *engine.Engine) *HealthHandler {
	return &HealthHandler{engine: eng}
}

// Health is the liveness probe; it also reports pathway graph health, the
// ratio of strong connections to total (1.0 for an empty graph).
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	api.Success(w, http.StatusOK, map[string]interface{}{
		"status":         "ok",
		"pathway_health": h.engine.Health(),
	})
}

// Ready is the readiness probe.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	api.Success(w, http.StatusOK, map[string]string{"status": "ready"})
}
