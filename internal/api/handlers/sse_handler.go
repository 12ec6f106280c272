package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/bizfinder/discovery/internal/domain/entities"
	"github.com/bizfinder/discovery/internal/domain/providers"
	"github.com/bizfinder/discovery/internal/infrastructure/observability"
)

const defaultHeartbeatInterval = 30 * time.Second

// SSEHandler streams business change events to browsers as Server-Sent Events
type SSEHandler struct {
	eventBus          providers.EventBus
	heartbeatInterval time.Duration
	clients           atomic.Int64
}

// NewSSEHandler creates a new SSE handler
func NewSSEHandler(eventBus providers.EventBus) *SSEHandler {
	return &SSEHandler{
		eventBus:          eventBus,
		heartbeatInterval: defaultHeartbeatInterval,
	}
}

// WithHeartbeatInterval overrides how often idle streams receive a heartbeat
func (h *SSEHandler) WithHeartbeatInterval(d time.Duration) *SSEHandler {
	if d > 0 {
		h.heartbeatInterval = d
	}
	return h
}

// StreamUpdates streams every listing change
// GET /api/stream/businesses
func (h *SSEHandler) StreamUpdates(w http.ResponseWriter, r *http.Request) {
	h.stream(w, r, "")
}

// StreamBusinessUpdates streams changes of one business
// GET /api/stream/businesses/{id}
func (h *SSEHandler) StreamBusinessUpdates(w http.ResponseWriter, r *http.Request) {
	businessID := r.PathValue("id")
	if businessID == "" {
		respondWithError(w, http.StatusBadRequest, "business ID is required")
		return
	}
	h.stream(w, r, businessID)
}

// ClientCount returns the number of open streams
func (h *SSEHandler) ClientCount() int {
	return int(h.clients.Load())
}

func (h *SSEHandler) stream(w http.ResponseWriter, r *http.Request, businessID string) {
	ctx := r.Context()
	logger := observability.LoggerFromContext(ctx)

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	var (
		eventChan <-chan *entities.BusinessEvent
		err       error
	)
	if businessID != "" {
		eventChan, err = h.eventBus.SubscribeBusiness(ctx, businessID)
	} else {
		eventChan, err = h.eventBus.Subscribe(ctx, providers.EventChannelBusinessUpdates)
	}
	if err != nil {
		logger.Error().Err(err).Msg("failed to subscribe to business updates")
		respondWithError(w, http.StatusServiceUnavailable, "event stream unavailable")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	h.clients.Add(1)
	defer h.clients.Add(-1)

	h.sendEvent(w, "connected", map[string]interface{}{
		"business_id": businessID,
		"timestamp":   time.Now().UTC(),
	})
	flusher.Flush()

	ticker := time.NewTicker(h.heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Debug().Str("business_id", businessID).Msg("client disconnected from business stream")
			return
		case <-ticker.C:
			h.sendEvent(w, "heartbeat", map[string]interface{}{"timestamp": time.Now().UTC()})
			flusher.Flush()
		case event, ok := <-eventChan:
			if !ok {
				return
			}
			if event == nil {
				continue
			}
			h.sendEvent(w, string(event.EventType), event)
			flusher.Flush()
		}
	}
}

func (h *SSEHandler) sendEvent(w http.ResponseWriter, eventType string, data interface{}) {
	payload, err := json.Marshal(data)
	if err != nil {
		observability.GetLogger().Warn().Err(err).Msg("failed to marshal event data")
		return
	}
	fmt.Fprintf(w, "event: %s\n", eventType)
	fmt.Fprintf(w, "data: %s\n\n", payload)
}
