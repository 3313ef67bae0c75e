package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"pathway-engine/internal/domain"
	"pathway-engine/internal/engine"
	"pathway-engine/internal/interfaces/http/dto"
	"pathway-engine/internal/observability"
	"pathway-engine/pkg/api"
	apperrors "pathway-engine/pkg/errors"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// EngineHandler serves the routing, topology, cache and snapshot endpoints.
type EngineHandler struct {
	engine   *engine.Engine
	metrics  *observability.Collector
	validate *validator.Validate
	logger   *zap.Logger
}

// NewEngineHandler creates the handler set over an engine instance.
func NewEngineHandler(eng *engine.Engine, metrics *observability.Collector, logger *zap.Logger) *EngineHandler {
	return &EngineHandler{
		engine:   eng,
		metrics:  metrics,
		validate: validator.New(),
		logger:   logger,
	}
}

// ProcessInteraction routes one interaction through the pathway graph.
func (h *EngineHandler) ProcessInteraction(w http.ResponseWriter, r *http.Request) {
	var req dto.ProcessInteractionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	began := time.Now()
	result, err := h.engine.ProcessInteraction(r.Context(), domain.Interaction{
		Origin:  req.Origin,
		Target:  req.Target,
		Payload: req.Payload,
	})
	if err != nil {
		// Only reachable when self-healing is disabled by configuration.
		if errors.Is(err, domain.ErrNoRoute) {
			api.Error(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		h.logger.Error("interaction failed", zap.Error(err))
		api.Error(w, http.StatusInternalServerError, "an internal error occurred")
		return
	}

	h.metrics.InteractionsProcessed.Inc()
	h.metrics.RoutingDuration.Observe(time.Since(began).Seconds())

	api.Success(w, http.StatusOK, result)
}

// CreateConnection seeds or resets topology.
func (h *EngineHandler) CreateConnection(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateConnectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	h.engine.CreateConnection(req.Source, req.Targets, req.Strength)
	api.Success(w, http.StatusCreated, map[string]string{"message": "connection created"})
}

// GetConnection reads one edge.
func (h *EngineHandler) GetConnection(w http.ResponseWriter, r *http.Request) {
	source := chi.URLParam(r, "source")
	target := chi.URLParam(r, "target")

	conn, err := h.engine.Connection(source, target)
	if err != nil {
		if apperrors.IsNotFound(err) {
			api.Error(w, http.StatusNotFound, err.Error())
			return
		}
		api.Error(w, http.StatusInternalServerError, "an internal error occurred")
		return
	}

	api.Success(w, http.StatusOK, dto.ConnectionResponse{
		Source:   conn.Source,
		Target:   conn.Target,
		Strength: conn.Strength,
		LastUsed: conn.LastUsed.Format(time.RFC3339),
		UseCount: conn.UseCount,
	})
}

// Status returns the read-only state snapshot dashboards poll.
func (h *EngineHandler) Status(w http.ResponseWriter, r *http.Request) {
	api.Success(w, http.StatusOK, h.engine.Status())
}

// CachePut stores a lookup entry.
func (h *EngineHandler) CachePut(w http.ResponseWriter, r *http.Request) {
	var req dto.CachePutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	h.engine.CachePut(req.Key, req.Component)
	api.Success(w, http.StatusCreated, map[string]string{"message": "cached"})
}

// CacheGet resolves a lookup key.
func (h *EngineHandler) CacheGet(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	component, ok := h.engine.CacheGet(key)
	if !ok {
		api.Error(w, http.StatusNotFound, "cache miss")
		return
	}

	api.Success(w, http.StatusOK, dto.CacheGetResponse{Key: key, Component: component})
}

// ExportSnapshot serializes the full engine state.
func (h *EngineHandler) ExportSnapshot(w http.ResponseWriter, r *http.Request) {
	api.Success(w, http.StatusOK, h.engine.ExportSnapshot())
}

// ImportSnapshot restores engine state verbatim from a prior export.
func (h *EngineHandler) ImportSnapshot(w http.ResponseWriter, r *http.Request) {
	var snap engine.Snapshot
	if err := json.NewDecoder(r.Body).Decode(&snap); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid snapshot document")
		return
	}

	h.engine.ImportSnapshot(snap)
	h.logger.Info("snapshot imported",
		zap.Int("nodes", len(snap.Nodes)),
		zap.Int("connections", len(snap.Connections)),
	)
	api.Success(w, http.StatusOK, map[string]string{"message": "snapshot restored"})
}
