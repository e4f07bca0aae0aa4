package models

import "time"

// Request format kinds.
const (
	FormatVideo = "video"
	FormatAudio = "audio"
)

// DownloadRequest is the client's start-download payload.
type DownloadRequest struct {
	URL        string  `json:"url"`
	Quality    string  `json:"quality"`
	Format     string  `json:"format"`
	DownloadID string  `json:"downloadId,omitempty"`
	Title      string  `json:"title,omitempty"`
	Duration   float64 `json:"duration,omitempty"` // seconds, feeds merge-phase percent
}

// ErrorResponse is the JSON error envelope returned on request failure.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// HistoryEntry records one finished download session.
type HistoryEntry struct {
	ID         int64     `json:"id"`
	DownloadID string    `json:"download_id"`
	URL        string    `json:"url"`
	Title      string    `json:"title,omitempty"`
	Format     string    `json:"format"`
	Quality    string    `json:"quality"`
	Status     string    `json:"status"`
	FileSize   int64     `json:"file_size,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
