package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/templui/sneakerbase/internal/ctxkeys"
	"github.com/templui/sneakerbase/internal/events"
)

type eventHandler struct {
	broker    *events.Broker
	heartbeat time.Duration
}

func NewEventHandler(broker *events.Broker, heartbeat time.Duration) *eventHandler {
	return &eventHandler{broker: broker, heartbeat: heartbeat}
}

// Stream pushes change notifications as server-sent events until the
// client goes away. Comment lines keep idle proxies from closing it.
func (h *eventHandler) Stream(w http.ResponseWriter, r *http.Request) {
	requestID := ctxkeys.RequestID(r.Context())
	rc := http.NewResponseController(w)

	// The stream outlives any server write timeout
	_ = rc.SetWriteDeadline(time.Time{})

	ch, unsubscribe := h.broker.Subscribe()
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	_, err := fmt.Fprint(w, ": connected\n\n")
	if err == nil {
		err = rc.Flush()
	}
	if err != nil {
		slog.Warn("event stream not supported", "error", err, "request_id", requestID)
		return
	}

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return

		case event, ok := <-ch:
			if !ok {
				return
			}

			data, err := json.Marshal(event)
			if err != nil {
				slog.Error("failed to encode event", "error", err, "type", event.Type)
				continue
			}

			_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, data)
			if err == nil {
				err = rc.Flush()
			}
			if err != nil {
				slog.Debug("event stream closed", "error", err, "request_id", requestID)
				return
			}

		case <-ticker.C:
			_, err := fmt.Fprint(w, ": ping\n\n")
			if err == nil {
				err = rc.Flush()
			}
			if err != nil {
				slog.Debug("event stream closed", "error", err, "request_id", requestID)
				return
			}
		}
	}
}
