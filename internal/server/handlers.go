package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"grabarr/internal/domain/consts"
	"grabarr/internal/downloads"
	"grabarr/internal/logging"
	"grabarr/internal/metadata"
	"grabarr/internal/models"
	"grabarr/internal/validation"
)

// handleStartDownload runs a download to completion and streams the file
// back on the same response.
func handleStartDownload(w http.ResponseWriter, r *http.Request) {
	var req models.DownloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	runDownload(w, r, req)
}

// handleDirectDownload is the query-parameter variant, for plain link and
// new-tab downloads where no JSON body can be sent.
func handleDirectDownload(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := models.DownloadRequest{
		URL:        q.Get("url"),
		Quality:    q.Get("quality"),
		Format:     q.Get("format"),
		DownloadID: q.Get("id"),
		Title:      q.Get("title"),
	}
	if d := q.Get("duration"); d != "" {
		req.Duration, _ = strconv.ParseFloat(d, 64)
	}
	runDownload(w, r, req)
}

func runDownload(w http.ResponseWriter, r *http.Request, req models.DownloadRequest) {
	if err := validation.ValidateDownloadRequest(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.DownloadID == "" {
		req.DownloadID = "download_" + uuid.NewString()
	}

	// Bounded run so a stalled subprocess cannot hold the connection
	// forever.
	ctx, cancel := context.WithTimeout(r.Context(), consts.MaxDownloadDuration)
	defer cancel()

	res, err := dm.Start(ctx, req)
	if err != nil {
		if errors.Is(err, downloads.ErrCancelled) {
			writeError(w, http.StatusInternalServerError, "download cancelled")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	title := req.Title
	if title == "" {
		title = mf.Filename(ctx, req.URL)
	}

	size, err := streamFile(w, res, title, req.DownloadID)
	if err != nil {
		// Headers are already written, nothing to send; the delivery
		// failure still tears the session down.
		logging.L.Warn().Err(err).Str("id", req.DownloadID).Msg("file delivery interrupted")
	}

	// Deferred teardown keeps the record visible long enough for the
	// event stream to observe the terminal phase.
	id := req.DownloadID
	time.AfterFunc(consts.FileDeleteGrace, func() {
		dm.Finish(context.Background(), id, size)
	})
}

// handleCancelDownload force-terminates an in-flight download.
func handleCancelDownload(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !dm.Cancel(id) {
		writeError(w, http.StatusNotFound, "download not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// handleMetadata resolves video or playlist metadata for a URL.
func handleMetadata(w http.ResponseWriter, r *http.Request) {
	rawURL := r.URL.Query().Get("url")
	if err := validation.ValidateURL(rawURL); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	meta, err := mf.Fetch(r.Context(), rawURL)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data": metadataPayload{
			VideoMetadata:      *meta,
			AvailableQualities: metadata.AvailableQualities(meta),
		},
	})
}

// handleHistory lists recent finished downloads.
func handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		limit, _ = strconv.Atoi(l)
	}

	entries, err := hr.Recent(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read history")
		return
	}
	if entries == nil {
		entries = []models.HistoryEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

type metadataPayload struct {
	models.VideoMetadata
	AvailableQualities []models.QualityOption `json:"availableQualities"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.L.Error().Err(err).Msg("failed to encode JSON response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, models.ErrorResponse{Success: false, Error: msg})
}
