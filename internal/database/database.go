// Package database opens the sqlite store and initializes its tables.
package database

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// DBControl wraps the open database handle.
type DBControl struct {
	DB *sql.DB
}

// InitDB opens (creating if needed) the sqlite database at path and ensures
// the schema exists.
func InitDB(path string) (*DBControl, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database at path %q: %w", path, err)
	}

	dc := &DBControl{DB: db}
	if err := dc.initTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize tables: %w", err)
	}
	return dc, nil
}

// Close closes the underlying handle.
func (dc *DBControl) Close() error {
	return dc.DB.Close()
}

func (dc *DBControl) initTables() error {
	tx, err := dc.DB.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := initHistoryTable(tx); err != nil {
		return err
	}

	return tx.Commit()
}
