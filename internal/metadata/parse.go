// Package metadata fetches and maps media metadata: a subprocess NDJSON
// probe as the primary path and a page scrape as the fallback.
package metadata

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"grabarr/internal/logging"
	"grabarr/internal/models"
)

// rawEntry is the superset of fields used from one NDJSON line. The tool
// emits one object per line; a playlist line carries _type and entries.
type rawEntry struct {
	Type          string          `json:"_type"`
	ID            string          `json:"id"`
	Title         string          `json:"title"`
	Thumbnail     string          `json:"thumbnail"`
	Thumbnails    []rawThumbnail  `json:"thumbnails"`
	Duration      float64         `json:"duration"`
	Uploader      string          `json:"uploader"`
	Channel       string          `json:"channel"`
	Description   string          `json:"description"`
	ViewCount     int64           `json:"view_count"`
	UploadDate    string          `json:"upload_date"`
	URL           string          `json:"url"`
	WebpageURL    string          `json:"webpage_url"`
	PlaylistCount int             `json:"playlist_count"`
	Entries       []rawEntry      `json:"entries"`
	Formats       []models.Format `json:"formats"`
}

type rawThumbnail struct {
	URL string `json:"url"`
}

// bestThumbnail picks the last (highest resolution) thumbnail, falling back
// to the flat thumbnail field.
func (e *rawEntry) bestThumbnail() string {
	if n := len(e.Thumbnails); n > 0 && e.Thumbnails[n-1].URL != "" {
		return e.Thumbnails[n-1].URL
	}
	return e.Thumbnail
}

func (e *rawEntry) uploaderName() string {
	if e.Uploader != "" {
		return e.Uploader
	}
	return e.Channel
}

func (e *rawEntry) isPlaylist() bool {
	return e.Type == "playlist" || len(e.Entries) > 0
}

// ParseNDJSON maps the probe's newline-delimited JSON output onto a metadata
// record. Three shapes occur in the wild: a main playlist object, a bare
// stream of video objects, or a single video object.
func ParseNDJSON(output []byte, originalURL string) (*models.VideoMetadata, error) {
	var main *rawEntry
	var collected []rawEntry

	for _, line := range strings.Split(string(output), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var entry rawEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			logging.L.Trace().Str("line", line).Msg("skipping non-JSON metadata line")
			continue
		}
		if entry.isPlaylist() {
			e := entry
			main = &e
		} else {
			collected = append(collected, entry)
		}
	}

	switch {
	case main != nil:
		return playlistRecord(main, collected, originalURL), nil
	case len(collected) > 1:
		return syntheticPlaylist(collected, originalURL), nil
	case len(collected) == 1:
		return videoRecord(&collected[0], originalURL), nil
	}
	return nil, fmt.Errorf("no valid metadata in output")
}

func playlistRecord(main *rawEntry, collected []rawEntry, originalURL string) *models.VideoMetadata {
	entries := main.Entries
	if len(entries) == 0 {
		entries = collected
	}

	count := main.PlaylistCount
	if count == 0 {
		count = len(entries)
	}

	uploader := main.uploaderName()
	if uploader == "" {
		uploader = "Unknown"
	}

	return &models.VideoMetadata{
		Type:        models.MetadataPlaylist,
		ID:          main.ID,
		Title:       main.Title,
		Thumbnail:   main.bestThumbnail(),
		Uploader:    uploader,
		Description: main.Description,
		ViewCount:   main.ViewCount,
		OriginalURL: originalURL,
		UploadedAt:  parseUploadDate(main.UploadDate),
		ItemCount:   count,
		Items:       playlistItems(entries),
	}
}

func syntheticPlaylist(collected []rawEntry, originalURL string) *models.VideoMetadata {
	first := collected[0]
	return &models.VideoMetadata{
		Type:        models.MetadataPlaylist,
		ID:          "synthetic_playlist",
		Title:       fmt.Sprintf("Playlist (%d videos)", len(collected)),
		Thumbnail:   first.bestThumbnail(),
		Uploader:    "Unknown",
		OriginalURL: originalURL,
		ItemCount:   len(collected),
		Items:       playlistItems(collected),
	}
}

func videoRecord(e *rawEntry, originalURL string) *models.VideoMetadata {
	return &models.VideoMetadata{
		Type:        models.MetadataVideo,
		ID:          e.ID,
		Title:       e.Title,
		Thumbnail:   e.bestThumbnail(),
		Uploader:    e.uploaderName(),
		Description: e.Description,
		ViewCount:   e.ViewCount,
		OriginalURL: originalURL,
		UploadedAt:  parseUploadDate(e.UploadDate),
		Duration:    e.Duration,
		Formats:     e.Formats,
	}
}

func playlistItems(entries []rawEntry) []models.PlaylistItem {
	items := make([]models.PlaylistItem, 0, len(entries))
	for _, e := range entries {
		url := e.WebpageURL
		if url == "" {
			url = e.URL
		}
		if url == "" {
			url = "https://www.youtube.com/watch?v=" + e.ID
		}
		items = append(items, models.PlaylistItem{
			ID:        e.ID,
			Title:     e.Title,
			Duration:  e.Duration,
			Uploader:  e.uploaderName(),
			URL:       url,
			Thumbnail: e.bestThumbnail(),
		})
	}
	return items
}

// parseUploadDate handles the "20240115" style dates the tool reports, plus
// anything else dateparse recognizes.
func parseUploadDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := dateparse.ParseAny(s)
	if err != nil {
		logging.L.Trace().Str("date", s).Msg("unparseable upload date")
		return nil
	}
	return &t
}

// AvailableQualities derives distinct selectable heights from a video's
// format list, each flagged with audio availability, sorted descending.
// Playlists report no uniform quality set.
func AvailableQualities(meta *models.VideoMetadata) []models.QualityOption {
	if meta == nil || meta.Type == models.MetadataPlaylist {
		return []models.QualityOption{}
	}

	hasAudio := make(map[string]bool)
	for _, f := range meta.Formats {
		if f.Resolution == "" || f.Resolution == "audio only" {
			continue
		}
		_, height, ok := strings.Cut(f.Resolution, "x")
		if !ok || height == "" {
			continue
		}
		quality := height + "p"
		hasAudio[quality] = hasAudio[quality] || (f.ACodec != "" && f.ACodec != "none")
	}

	options := make([]models.QualityOption, 0, len(hasAudio))
	for quality, audio := range hasAudio {
		options = append(options, models.QualityOption{Quality: quality, HasAudio: audio})
	}
	sort.Slice(options, func(i, j int) bool {
		a, _ := strconv.Atoi(strings.TrimSuffix(options[i].Quality, "p"))
		b, _ := strconv.Atoi(strings.TrimSuffix(options[j].Quality, "p"))
		return a > b
	})
	return options
}
