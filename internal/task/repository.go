package task

import (
	"database/sql"
	"fmt"
	"time"
)

// InitTable creates the runs, scans and downloads tables if they don't exist
func (l *Ledger) InitTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		input_dir TEXT,
		image_base_url TEXT,
		video_base_url TEXT,
		started_time DATETIME,
		finished_time DATETIME,
		unique_files INTEGER
	);

	CREATE TABLE IF NOT EXISTS scans (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		path TEXT NOT NULL,
		state TEXT NOT NULL,
		refs INTEGER,
		error TEXT,
		UNIQUE(run_id, path)
	);

	CREATE TABLE IF NOT EXISTS downloads (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		url TEXT NOT NULL,
		filename TEXT NOT NULL,
		class TEXT NOT NULL,
		state TEXT NOT NULL,
		bytes INTEGER,
		duration_ms INTEGER,
		error TEXT,
		UNIQUE(run_id, url)
	);

	CREATE INDEX IF NOT EXISTS idx_scans_run_id ON scans(run_id);
	CREATE INDEX IF NOT EXISTS idx_downloads_run_id ON downloads(run_id);
	`
	_, err := l.db.Exec(query)
	return err
}

func (l *Ledger) CreateRun(run Run) error {
	query := `INSERT INTO runs (id, input_dir, image_base_url, video_base_url, started_time, unique_files) VALUES (?, ?, ?, ?, ?, 0)`
	_, err := l.db.Exec(query, run.ID, run.InputDir, run.ImageBaseURL, run.VideoBaseURL, run.StartedTime)
	return err
}

func (l *Ledger) FinishRun(id string, uniqueFiles int, finished time.Time) error {
	query := `UPDATE runs SET unique_files = ?, finished_time = ? WHERE id = ?`
	_, err := l.db.Exec(query, uniqueFiles, finished, id)
	return err
}

func (l *Ledger) GetRun(id string) (*Run, error) {
	query := `SELECT id, input_dir, image_base_url, video_base_url, started_time, finished_time, unique_files FROM runs WHERE id = ?`
	var run Run
	var finished sql.NullTime
	err := l.db.QueryRow(query, id).Scan(&run.ID, &run.InputDir, &run.ImageBaseURL, &run.VideoBaseURL, &run.StartedTime, &finished, &run.UniqueFiles)
	if err != nil {
		return nil, err
	}
	if finished.Valid {
		run.FinishedTime = finished.Time
	}

	return &run, nil
}

// RecordScan stores the terminal state of one input file
func (l *Ledger) RecordScan(runID string, result ScanResult) error {
	if !result.State.IsFinished() {
		return fmt.Errorf("scan of %s is still %s", result.Path, result.State)
	}
	query := `INSERT OR REPLACE INTO scans (run_id, path, state, refs, error) VALUES (?, ?, ?, ?, ?)`
	_, err := l.db.Exec(query, runID, result.Path, string(result.State), result.References, errorString(result.Err))
	return err
}

// RecordDownload stores the terminal state of one reference
func (l *Ledger) RecordDownload(runID string, outcome DownloadOutcome) error {
	if !outcome.State.IsFinished() {
		return fmt.Errorf("download of %s is still %s", outcome.Reference.URL, outcome.State)
	}
	query := `INSERT OR REPLACE INTO downloads (run_id, url, filename, class, state, bytes, duration_ms, error) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := l.db.Exec(query,
		runID,
		outcome.Reference.URL,
		outcome.Reference.Filename,
		outcome.Reference.Class.String(),
		string(outcome.State),
		outcome.Bytes,
		outcome.Duration.Milliseconds(),
		errorString(outcome.Err),
	)
	return err
}

// ScanRecord is a scans row as read back from the ledger
type ScanRecord struct {
	Path       string
	State      ScanState
	References int
	Error      string
}

func (l *Ledger) ListScans(runID string) ([]ScanRecord, error) {
	query := `SELECT path, state, refs, error FROM scans WHERE run_id = ? ORDER BY path`
	rows, err := l.db.Query(query, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []ScanRecord
	for rows.Next() {
		var rec ScanRecord
		var state string
		if err := rows.Scan(&rec.Path, &state, &rec.References, &rec.Error); err != nil {
			return nil, err
		}
		rec.State = ScanState(state)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// DownloadRecord is a downloads row as read back from the ledger
type DownloadRecord struct {
	URL      string
	Filename string
	Class    string
	State    DownloadState
	Bytes    int64
	Error    string
}

func (l *Ledger) ListDownloads(runID string) ([]DownloadRecord, error) {
	query := `SELECT url, filename, class, state, bytes, error FROM downloads WHERE run_id = ? ORDER BY url`
	rows, err := l.db.Query(query, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []DownloadRecord
	for rows.Next() {
		var rec DownloadRecord
		var state string
		if err := rows.Scan(&rec.URL, &rec.Filename, &rec.Class, &state, &rec.Bytes, &rec.Error); err != nil {
			return nil, err
		}
		rec.State = DownloadState(state)
		records = append(records, rec)
	}
	return records, rows.Err()
}
