package inbound

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/shandysiswandi/devlink/internal/pkg/goerror"
	"github.com/shandysiswandi/devlink/internal/verification/entity"
)

const heartbeatInterval = 25 * time.Second

func writeStreamError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var gerr *goerror.Error
	if errors.As(err, &gerr) {
		status = gerr.StatusCode()
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	//nolint:errcheck,gosec // best effort error body
	json.NewEncoder(w).Encode(map[string]string{"message": goerror.Message(err, "Internal server error")})
}

func eventPayload(evt entity.Event) any {
	switch evt.Type {
	case entity.EventState:
		return toStateResponse(evt.State)
	case entity.EventNotice:
		return evt.Notice
	default:
		return map[string]string{"navigate_to": evt.NavigateTo}
	}
}

// Stream pushes session events to the client using SSE until the session
// tears down or the client goes away.
func (h *HTTPEndpoint) Stream(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	stream, err := h.uc.Stream(ctx, httprouter.ParamsFromContext(ctx).ByName("id"))
	if err != nil {
		writeStreamError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	if _, err := fmt.Fprint(w, ": connected\n\n"); err != nil {
		slog.ErrorContext(ctx, "failed to send response connected", "error", err)
		return
	}
	flusher.Flush()

	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		// heartbeat ping, so proxies won't drop idle connections.
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()

		case evt, ok := <-stream:
			if !ok {
				return
			}
			payload, err := json.Marshal(eventPayload(evt))
			if err != nil {
				slog.ErrorContext(ctx, "failed to marshal data", "error", err)
				continue
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", evt.Type, payload); err != nil {
				slog.ErrorContext(ctx, "failed to send response data", "error", err)
				return
			}
			flusher.Flush()
		}
	}
}
