package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"grabarr/internal/domain/consts"
	"grabarr/internal/logging"
	"grabarr/internal/models"
)

// handleProgressEvents streams a session's progress record as server-sent
// events until the session reaches a terminal phase, the client disconnects,
// or the session stays unknown past the startup grace period.
func handleProgressEvents(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

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

	ticker := time.NewTicker(consts.SSETickInterval)
	defer ticker.Stop()

	// The stream may open before Start registers the session, so unknown
	// ids get a grace window anchored to stream open. Once a session has
	// been observed, its disappearance means teardown and the stream
	// closes immediately.
	opened := time.Now()
	seen := false

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			rec, found := dm.Progress(id)
			if !found {
				if seen || time.Since(opened) > consts.SSENotFoundGrace {
					logging.L.Debug().Str("id", id).Msg("closing event stream for unknown download")
					return
				}
				continue
			}
			seen = true

			if err := writeEvent(w, flusher, rec); err != nil {
				return
			}
			// The streaming phase is the hand-off to file delivery; the
			// client needs no further frames past that point.
			if rec.Phase.Terminal() || rec.Phase == models.PhaseStreaming {
				return
			}
		}
	}
}

func writeEvent(w http.ResponseWriter, flusher http.Flusher, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return err
	}
	flusher.Flush()
	return nil
}
