// Package repo holds the database-backed stores.
package repo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"grabarr/internal/domain/consts"
	"grabarr/internal/models"
)

// HistoryStore records and lists finished downloads.
type HistoryStore struct {
	DB *sql.DB
}

// GetHistoryStore returns a history store instance with injected database.
func GetHistoryStore(db *sql.DB) *HistoryStore {
	return &HistoryStore{DB: db}
}

// Record inserts one terminal download into history.
func (hs *HistoryStore) Record(ctx context.Context, e models.HistoryEntry) error {
	query := squirrel.
		Insert(consts.DBHistory).
		Columns(
			consts.QHistDLID,
			consts.QHistURL,
			consts.QHistTitle,
			consts.QHistFormat,
			consts.QHistQuality,
			consts.QHistStatus,
			consts.QHistFileSize,
		).
		Values(e.DownloadID, e.URL, e.Title, e.Format, e.Quality, e.Status, e.FileSize).
		RunWith(hs.DB)

	if _, err := query.ExecContext(ctx); err != nil {
		return fmt.Errorf("failed to record history for download %q: %w", e.DownloadID, err)
	}
	return nil
}

// Recent lists the most recent history entries, newest first. A limit of 0
// applies the default.
func (hs *HistoryStore) Recent(ctx context.Context, limit int) ([]models.HistoryEntry, error) {
	if limit <= 0 {
		limit = consts.HistoryDefaultLimit
	}

	query := squirrel.
		Select(
			consts.QHistID,
			consts.QHistDLID,
			consts.QHistURL,
			consts.QHistTitle,
			consts.QHistFormat,
			consts.QHistQuality,
			consts.QHistStatus,
			consts.QHistFileSize,
			consts.QHistCreated,
		).
		From(consts.DBHistory).
		OrderBy(consts.QHistCreated + " DESC").
		Limit(uint64(limit)).
		RunWith(hs.DB)

	rows, err := query.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query download history: %w", err)
	}
	defer rows.Close()

	var entries []models.HistoryEntry
	for rows.Next() {
		var e models.HistoryEntry
		if err := rows.Scan(
			&e.ID,
			&e.DownloadID,
			&e.URL,
			&e.Title,
			&e.Format,
			&e.Quality,
			&e.Status,
			&e.FileSize,
			&e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
