package recorder

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"math"
	"sync"

	_ "modernc.org/sqlite"
)

// SQLiteRecorder journals runs to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp   INTEGER NOT NULL,
			source      TEXT,
			start_date  TEXT,
			end_date    TEXT,
			rsi_window  INTEGER,
			selected    INTEGER,
			failed      INTEGER,
			duration_ms INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ts ON runs(timestamp)`,

		`CREATE TABLE IF NOT EXISTS run_indices (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id     INTEGER NOT NULL REFERENCES runs(id),
			index_name TEXT,
			symbol     TEXT,
			row_count  INTEGER,
			last_close REAL,
			last_rsi   REAL,
			zone       TEXT,
			error      TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_run_indices_run ON run_indices(run_id)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordRun writes the run row and one row per index in a single transaction.
func (r *SQLiteRecorder) RecordRun(evt *RunEvent) error {
	if evt == nil || evt.Report == nil {
		return errors.New("nil run event")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	rep := evt.Report
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`INSERT INTO runs
		(timestamp, source, start_date, end_date, rsi_window, selected, failed, duration_ms)
		VALUES (?,?,?,?,?,?,?,?)`,
		rep.FinishedAt.Unix(), string(evt.Source),
		rep.Request.Start.Format("2006-01-02"), rep.Request.End.Format("2006-01-02"),
		rep.Request.Window, len(rep.Results), len(rep.Failed()),
		rep.FinishedAt.Sub(rep.StartedAt).Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("run id: %w", err)
	}

	for _, ir := range rep.Results {
		var (
			rows      int
			lastClose sql.NullFloat64
			lastRSI   sql.NullFloat64
			zone      sql.NullString
			errText   sql.NullString
		)
		if ir.Err != nil {
			errText = sql.NullString{String: ir.Err.Error(), Valid: true}
		}
		if s := ir.Summary; s != nil {
			rows = s.Rows
			lastClose = sql.NullFloat64{Float64: s.LastClose, Valid: true}
			// Gaps are stored as NULL.
			lastRSI = sql.NullFloat64{Float64: s.LastRSI, Valid: !math.IsNaN(s.LastRSI)}
			zone = sql.NullString{String: string(s.Zone), Valid: s.Zone != ""}
		}
		if _, err := tx.Exec(`INSERT INTO run_indices
			(run_id, index_name, symbol, row_count, last_close, last_rsi, zone, error)
			VALUES (?,?,?,?,?,?,?,?)`,
			runID, ir.Index.Name, ir.Index.Symbol, rows, lastClose, lastRSI, zone, errText,
		); err != nil {
			return fmt.Errorf("insert run index %s: %w", ir.Index.Name, err)
		}
	}
	return tx.Commit()
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
