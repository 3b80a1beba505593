package task

import (
	"database/sql"
	"time"
)

// Ledger persists runs along with the outcome of every scan and download
// performed during them.
type Ledger struct {
	db *sql.DB
}

func NewLedger(db *sql.DB) (*Ledger, error) {
	l := &Ledger{db: db}
	if err := l.InitTable(); err != nil {
		return nil, err
	}
	return l, nil
}

// Summary counts the downloads of a run by state.
func (l *Ledger) Summary(runID string) (map[DownloadState]int, error) {
	query := `SELECT state, COUNT(*) FROM downloads WHERE run_id = ? GROUP BY state`
	rows, err := l.db.Query(query, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[DownloadState]int{}
	for rows.Next() {
		var state string
		var n int
		if err := rows.Scan(&state, &n); err != nil {
			return nil, err
		}
		counts[DownloadState(state)] = n
	}
	return counts, rows.Err()
}

func (l *Ledger) Close() error {
	return l.db.Close()
}

// Finish stamps the run with its unique-file count at the current time.
func (l *Ledger) Finish(run Run, uniqueFiles int) error {
	return l.FinishRun(run.ID, uniqueFiles, time.Now().UTC())
}
