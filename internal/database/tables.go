package database

import (
	"database/sql"
	"fmt"
)

// initHistoryTable initializes the download history table.
func initHistoryTable(tx *sql.Tx) error {
	query := `
    CREATE TABLE IF NOT EXISTS download_history (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        download_id TEXT NOT NULL,
        url TEXT NOT NULL,
        title TEXT,
        format TEXT,
        quality TEXT,
        status TEXT NOT NULL,
        file_size INTEGER DEFAULT 0,
        created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
    );
    CREATE INDEX IF NOT EXISTS idx_download_history_download_id ON download_history(download_id);
    CREATE INDEX IF NOT EXISTS idx_download_history_created_at ON download_history(created_at);
    `
	if _, err := tx.Exec(query); err != nil {
		return fmt.Errorf("failed to create download_history table: %w", err)
	}
	return nil
}
