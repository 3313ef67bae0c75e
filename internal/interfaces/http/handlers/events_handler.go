package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"pathway-engine/internal/engine"

	"go.uber.org/zap"
)

// EventsHandler streams engine change notifications over Server-Sent Events.
// Each HTTP client gets its own bus subscription, so backpressure from one
// stream never affects another; a stream that falls behind simply misses
// events (the bus drops for full buffers).
type EventsHandler struct {
	engine *engine.Engine
	logger *zap.Logger
}

// NewEventsHandler creates the SSE endpoint over an engine instance.
func NewEventsHandler(eng *engine.Engine, logger *zap.Logger) *EventsHandler {
	return &EventsHandler{engine: eng, logger: logger}
}

// Stream serves the event feed until the client disconnects.
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	sub := h.engine.Subscribe()
	defer h.engine.Unsubscribe(sub.ID)

	h.logger.Debug("event stream attached", zap.String("subscription_id", sub.ID.String()))

	for {
		select {
		case <-r.Context().Done():
			return
		case event, open := <-sub.C:
			if !open {
				return
			}
			payload, err := json.Marshal(event)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Kind, payload)
			flusher.Flush()
		}
	}
}
