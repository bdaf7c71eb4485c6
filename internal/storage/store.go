// Package storage persists completed runs: one execution record per run in
// SQLite, plus the per-stage markdown reports on disk. Persistence sits
// after the decision pipeline, so callers log write failures and keep the
// run result.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// ExecutionRecord is one completed run as persisted.
type ExecutionRecord struct {
	RunID           string
	Ticker          string
	TradeDate       string
	Action          string
	Signal          string
	RiskLevel       string
	RiskScore       float64
	Confidence      float64
	AgentsExecuted  int
	ExecutionTimeMs int64
	StateJSON       string
}

// RunWithMeta is an ExecutionRecord read back with its row metadata.
type RunWithMeta struct {
	ExecutionRecord
	RowID     int64
	CreatedAt string
}

type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the run-log database at dbPath.
func Open(dbPath string) (*Store, error) {
	if strings.TrimSpace(dbPath) == "" {
		return nil, fmt.Errorf("db path is required")
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_loc=Local")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA busy_timeout=3000;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set pragma %s: %w", p, err)
		}
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func initSchema(db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
    run_id TEXT PRIMARY KEY,
    ticker TEXT NOT NULL,
    trade_date TEXT NOT NULL,
    action TEXT NOT NULL DEFAULT '',
    signal TEXT NOT NULL DEFAULT '',
    risk_level TEXT,
    risk_score REAL,
    confidence REAL,
    agents_executed INTEGER NOT NULL DEFAULT 0,
    execution_time_ms INTEGER NOT NULL DEFAULT 0,
    state_json TEXT NOT NULL DEFAULT '',
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_runs_ticker_date ON runs(ticker, trade_date);
`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

// RecordRun appends one run to the log and returns its run ID, assigning a
// fresh one when the record carries none.
func (s *Store) RecordRun(ctx context.Context, rec ExecutionRecord) (string, error) {
	if strings.TrimSpace(rec.Ticker) == "" {
		return "", fmt.Errorf("run ticker is required")
	}
	if strings.TrimSpace(rec.TradeDate) == "" {
		return "", fmt.Errorf("run trade date is required")
	}
	if rec.RunID == "" {
		rec.RunID = uuid.NewString()
	}

	_, err := s.db.ExecContext(ctx, `
INSERT INTO runs (run_id, ticker, trade_date, action, signal, risk_level, risk_score, confidence, agents_executed, execution_time_ms, state_json)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, rec.RunID, rec.Ticker, rec.TradeDate, rec.Action, rec.Signal, rec.RiskLevel, rec.RiskScore, rec.Confidence, rec.AgentsExecuted, rec.ExecutionTimeMs, rec.StateJSON)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	return rec.RunID, nil
}

// RunsForTicker returns the most recent runs for one ticker, newest first.
func (s *Store) RunsForTicker(ctx context.Context, ticker string, limit int) ([]RunWithMeta, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT rowid, run_id, ticker, trade_date, action, signal,
       COALESCE(risk_level, ''), COALESCE(risk_score, 0), COALESCE(confidence, 0),
       agents_executed, execution_time_ms, state_json, created_at
FROM runs
WHERE ticker = ?
ORDER BY rowid DESC
LIMIT ?
`, strings.ToUpper(strings.TrimSpace(ticker)), limit)
	if err != nil {
		return nil, fmt.Errorf("query runs for ticker: %w", err)
	}
	defer rows.Close()
	return scanRuns(rows)
}

// RecentRuns returns the latest runs across all tickers, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]RunWithMeta, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT rowid, run_id, ticker, trade_date, action, signal,
       COALESCE(risk_level, ''), COALESCE(risk_score, 0), COALESCE(confidence, 0),
       agents_executed, execution_time_ms, state_json, created_at
FROM runs
ORDER BY rowid DESC
LIMIT ?
`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent runs: %w", err)
	}
	defer rows.Close()
	return scanRuns(rows)
}

func scanRuns(rows *sql.Rows) ([]RunWithMeta, error) {
	var out []RunWithMeta
	for rows.Next() {
		var r RunWithMeta
		if err := rows.Scan(
			&r.RowID, &r.RunID, &r.Ticker, &r.TradeDate, &r.Action, &r.Signal,
			&r.RiskLevel, &r.RiskScore, &r.Confidence,
			&r.AgentsExecuted, &r.ExecutionTimeMs, &r.StateJSON, &r.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return out, nil
}
