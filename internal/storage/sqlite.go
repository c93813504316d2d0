// Package storage persists report run history using SQLite.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cecat/soundviz/internal/model"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStorage implements the run history store using SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStorage creates a new SQLite storage instance.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("dbPath must not be empty")
	}

	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStorage{db: db, dbPath: dbPath}, nil
}

// Migrate creates the schema if it does not exist.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			created_at DATETIME NOT NULL,
			log_path TEXT NOT NULL,
			report_path TEXT,
			span_start DATETIME,
			span_end DATETIME,
			total_rows INTEGER NOT NULL,
			valid_rows INTEGER NOT NULL,
			invalid_rows INTEGER NOT NULL,
			batches INTEGER NOT NULL,
			group_counts TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at)`,
	}
	for _, query := range queries {
		if _, err := s.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute migration: %w", err)
		}
	}
	return nil
}

// SaveRun persists one run summary and returns its ID.
func (s *SQLiteStorage) SaveRun(ctx context.Context, run model.RunSummary) (int64, error) {
	groups, err := json.Marshal(run.GroupCounts)
	if err != nil {
		return 0, fmt.Errorf("failed to encode group counts: %w", err)
	}

	createdAt := run.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (created_at, log_path, report_path, span_start, span_end,
			total_rows, valid_rows, invalid_rows, batches, group_counts)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		createdAt, run.LogPath, run.ReportPath,
		nullTime(run.Span.Start), nullTime(run.Span.End),
		run.TotalRows, run.ValidRows, run.InvalidRows, run.Batches, string(groups))
	if err != nil {
		return 0, fmt.Errorf("failed to save run: %w", err)
	}
	return res.LastInsertId()
}

// ListRuns returns the most recent runs, newest first.
func (s *SQLiteStorage) ListRuns(ctx context.Context, limit int) ([]model.RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, log_path, report_path, span_start, span_end,
			total_rows, valid_rows, invalid_rows, batches, group_counts
		 FROM runs ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []model.RunSummary
	for rows.Next() {
		var (
			run        model.RunSummary
			reportPath sql.NullString
			spanStart  sql.NullTime
			spanEnd    sql.NullTime
			groups     string
		)
		if err := rows.Scan(&run.ID, &run.CreatedAt, &run.LogPath, &reportPath,
			&spanStart, &spanEnd, &run.TotalRows, &run.ValidRows,
			&run.InvalidRows, &run.Batches, &groups); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run.ReportPath = reportPath.String
		if spanStart.Valid {
			run.Span.Start = spanStart.Time
		}
		if spanEnd.Valid {
			run.Span.End = spanEnd.Time
		}
		if err := json.Unmarshal([]byte(groups), &run.GroupCounts); err != nil {
			return nil, fmt.Errorf("failed to decode group counts: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
