package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cinex/seat-reservation-engine/internal/domain"
	"github.com/go-chi/chi/v5"
)

// StreamSeatEventsHandler serves a server-sent event stream for a showing.
// The first frame is a full seat map snapshot, followed by one delta frame
// per seat transition. Deltas can duplicate what the snapshot already
// shows; clients apply them as idempotent overwrites keyed by seat ID.
func (app *Application) StreamSeatEventsHandler(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	showingID := chi.URLParam(r, "showingID")

	flusher, ok := w.(http.Flusher)
	if !ok {
		app.serverErrorResponse(w, r, fmt.Errorf("streaming is not supported by the underlying connection"))
		return
	}

	sub, err := app.notifier.Subscribe(r.Context(), showingID)
	if err != nil {
		if errors.Is(err, domain.ErrShowingNotFound) {
			app.notFoundResponse(w, r)
			return
		}
		app.serverErrorResponse(w, r, err)
		return
	}
	defer sub.Close()

	// The server-wide write timeout would sever the stream shortly after
	// the snapshot; streams live until the client disconnects.
	err = http.NewResponseController(w).SetWriteDeadline(time.Time{})
	if err != nil && !errors.Is(err, http.ErrNotSupported) {
		logger.Warn("failed to clear write deadline", "showing_id", showingID, "error", err)
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	err = writeSSE(w, "snapshot", toSeatMapResponse(sub.Snapshot, time.Now()))
	if err != nil {
		logger.Warn("failed to write snapshot frame", "showing_id", showingID, "error", err)
		return
	}
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-sub.Events:
			if !ok {
				return
			}

			err = writeSSE(w, "delta", event)
			if err != nil {
				logger.Warn("failed to write delta frame", "showing_id", showingID, "error", err)
				return
			}
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, payload)

	return err
}
