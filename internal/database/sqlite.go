package database

import (
	"database/sql"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Init opens (creating if needed) the SQLite ledger at dbFile, making
// sure its parent directory exists.
func Init(dbFile string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbFile), 0755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", dbFile)
	if err != nil {
		return nil, err
	}
	// Pragmas are per-connection, so pin the pool to a single one.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	_, err = db.Exec(`
		PRAGMA busy_timeout = 5000;
		PRAGMA journal_mode = WAL;
		PRAGMA foreign_keys = ON;
	`)
	if err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}
