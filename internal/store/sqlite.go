package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/joelkehle/quote-compare/internal/analysis"
)

// SQLiteStore persists the latest analysis per RFQ. The full result is kept
// as JSON next to a few columns useful for inspection.
type SQLiteStore struct {
	db *sqlx.DB
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS analyses (
	rfq_id             TEXT PRIMARY KEY,
	run_id             TEXT NOT NULL,
	product_name       TEXT NOT NULL DEFAULT '',
	degraded_count     INTEGER NOT NULL DEFAULT 0,
	synthesis_fallback INTEGER NOT NULL DEFAULT 0,
	completed_at       TEXT NOT NULL,
	payload            TEXT NOT NULL
);
`

type analysisRow struct {
	RFQID             string `db:"rfq_id"`
	RunID             string `db:"run_id"`
	ProductName       string `db:"product_name"`
	DegradedCount     int    `db:"degraded_count"`
	SynthesisFallback bool   `db:"synthesis_fallback"`
	CompletedAt       string `db:"completed_at"`
	Payload           string `db:"payload"`
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveAnalysis(ctx context.Context, res analysis.Result) error {
	id := strings.TrimSpace(res.RFQID)
	if id == "" {
		return ErrMissingRFQID
	}
	payload, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("encode analysis: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `INSERT OR REPLACE INTO analyses (rfq_id, run_id, product_name, degraded_count, synthesis_fallback, completed_at, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, res.RunID, res.ProductName, len(res.DegradedDimensions), res.SynthesisFallback,
		res.CompletedAt.UTC().Format(time.RFC3339Nano), string(payload))
	if err != nil {
		return fmt.Errorf("save analysis %s: %w", id, err)
	}
	return nil
}

func (s *SQLiteStore) LatestAnalysis(ctx context.Context, rfqID string) (analysis.Result, error) {
	var row analysisRow
	err := s.db.GetContext(ctx, &row, `SELECT rfq_id, run_id, product_name, degraded_count, synthesis_fallback, completed_at, payload
		FROM analyses WHERE rfq_id = ?`, strings.TrimSpace(rfqID))
	if errors.Is(err, sql.ErrNoRows) {
		return analysis.Result{}, ErrNotFound
	}
	if err != nil {
		return analysis.Result{}, fmt.Errorf("load analysis %s: %w", rfqID, err)
	}
	var res analysis.Result
	if err := json.Unmarshal([]byte(row.Payload), &res); err != nil {
		return analysis.Result{}, fmt.Errorf("decode analysis %s: %w", rfqID, err)
	}
	return res, nil
}
