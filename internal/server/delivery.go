package server

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	"grabarr/internal/domain/consts"
	"grabarr/internal/downloads"
	"grabarr/internal/logging"
	"grabarr/internal/validation"
)

// streamFile sends the produced file as an attachment and returns the byte
// size written in the Content-Length header.
func streamFile(w http.ResponseWriter, res *downloads.StartResult, title, id string) (int64, error) {
	info, err := os.Stat(res.FilePath)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "output file missing")
		return 0, err
	}

	f, err := os.Open(res.FilePath)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to open output file")
		return 0, err
	}
	defer f.Close()

	contentType := consts.ContentTypes["."+res.Ext]
	if contentType == "" {
		contentType = consts.ContentTypeFallback
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.FormatInt(info.Size(), 10))
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", attachmentName(title, res.Ext, id)))
	w.Header().Set("X-Download-Id", id)

	n, err := io.Copy(w, f)
	if err != nil {
		return info.Size(), fmt.Errorf("copy interrupted after %d bytes: %w", n, err)
	}

	logging.L.Info().Str("id", id).Int64("bytes", n).Msg("file streamed to client")
	return info.Size(), nil
}

// attachmentName builds a safe download filename carrying the right
// extension.
func attachmentName(title, ext, id string) string {
	name := validation.SanitizeFilename(title)

	// The filename probe reports the source extension, which may differ
	// from what was produced.
	for suffix := range consts.ContentTypes {
		if strings.HasSuffix(name, suffix) {
			name = strings.TrimSuffix(name, suffix)
			break
		}
	}
	if name == "" {
		name = id
	}
	return name + "." + ext
}
