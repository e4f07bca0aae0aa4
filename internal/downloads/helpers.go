package downloads

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"grabarr/internal/logging"
)

// sweepArtifacts removes every temp file carrying the download id in its
// name. The downloader leaves partial fragments (.part, .ytdl, numbered
// format files) next to the output on failure or cancellation.
func sweepArtifacts(tempDir, id string) {
	if id == "" {
		return
	}
	entries, err := os.ReadDir(tempDir)
	if err != nil {
		logging.L.Warn().Err(err).Str("dir", tempDir).Msg("artifact sweep failed to read temp dir")
		return
	}
	for _, e := range entries {
		if e.IsDir() || !strings.Contains(e.Name(), id) {
			continue
		}
		path := filepath.Join(tempDir, e.Name())
		if err := os.Remove(path); err != nil {
			logging.L.Debug().Err(err).Str("file", path).Msg("failed to remove artifact")
		} else {
			logging.L.Debug().Str("file", path).Msg("removed artifact")
		}
	}
}

// splitRate splits a rate label like "25.04MiB/s" into its numeric value and
// unit suffix.
func splitRate(s string) (float64, string, bool) {
	s = strings.TrimSpace(s)
	i := 0
	for i < len(s) && (s[i] >= '0' && s[i] <= '9' || s[i] == '.') {
		i++
	}
	if i == 0 {
		return 0, "", false
	}
	val, err := strconv.ParseFloat(s[:i], 64)
	if err != nil {
		return 0, "", false
	}
	return val, s[i:], true
}
