package models

import "time"

// Metadata record types.
const (
	MetadataVideo    = "video"
	MetadataPlaylist = "playlist"
)

// Format describes one downloadable media stream reported by yt-dlp.
type Format struct {
	FormatID   string  `json:"format_id"`
	Ext        string  `json:"ext"`
	Resolution string  `json:"resolution"`
	VCodec     string  `json:"vcodec"`
	ACodec     string  `json:"acodec"`
	Filesize   int64   `json:"filesize,omitempty"`
	TBR        float64 `json:"tbr,omitempty"`
}

// PlaylistItem is a lightweight entry within a playlist record.
type PlaylistItem struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Duration  float64 `json:"duration,omitempty"`
	Uploader  string  `json:"uploader,omitempty"`
	URL       string  `json:"url"`
	Thumbnail string  `json:"thumbnail,omitempty"`
}

// VideoMetadata is the tagged union of a single-video record and a playlist
// record, discriminated by Type. Playlist fields are empty for videos and
// vice versa.
type VideoMetadata struct {
	Type        string     `json:"type"`
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Thumbnail   string     `json:"thumbnail,omitempty"`
	Uploader    string     `json:"uploader,omitempty"`
	Description string     `json:"description,omitempty"`
	ViewCount   int64      `json:"view_count,omitempty"`
	OriginalURL string     `json:"original_url"`
	UploadedAt  *time.Time `json:"uploaded_at,omitempty"`

	// Video only
	Duration float64  `json:"duration,omitempty"`
	Formats  []Format `json:"formats,omitempty"`

	// Playlist only
	ItemCount int            `json:"item_count,omitempty"`
	Items     []PlaylistItem `json:"items,omitempty"`
}

// QualityOption is one selectable quality with audio availability info.
type QualityOption struct {
	Quality  string `json:"quality"`
	HasAudio bool   `json:"hasAudio"`
}
