// Package contracts defines interfaces that decouple the HTTP layer from the
// download, metadata and storage implementations.
package contracts

import (
	"context"

	"grabarr/internal/downloads"
	"grabarr/internal/models"
)

// SessionManager drives download sessions end to end.
type SessionManager interface {
	// Start blocks until the subprocess exits; on success the produced
	// file is ready to stream.
	Start(ctx context.Context, req models.DownloadRequest) (*downloads.StartResult, error)

	// Cancel force-terminates a session. False for unknown ids.
	Cancel(id string) bool

	// Progress snapshots a session's progress record.
	Progress(id string) (models.ProgressRecord, bool)

	// Finish tears down a delivered session.
	Finish(ctx context.Context, id string, fileSize int64)
}

// MetadataFetcher resolves media metadata and filenames.
type MetadataFetcher interface {
	Fetch(ctx context.Context, rawURL string) (*models.VideoMetadata, error)
	Filename(ctx context.Context, rawURL string) string
}

// HistoryReader lists finished downloads.
type HistoryReader interface {
	Recent(ctx context.Context, limit int) ([]models.HistoryEntry, error)
}
