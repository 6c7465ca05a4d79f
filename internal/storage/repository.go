package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"pfin/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteRepository archives publish runs. It is an audit log, not a data
// source the pipeline ever reads back from.
type SQLiteRepository struct {
	db *sql.DB
}

// RunRecord is one archived publish run.
type RunRecord struct {
	ID               int64
	SpreadsheetID    string
	Worksheet        string
	LeafCount        int
	ParentCount      int
	LeafShareTotal   float64
	ParentShareTotal float64
	CreatedAt        time.Time
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// RecordRun archives a published summary table and returns the run id.
// The run header and every row are written in one transaction.
func (r *SQLiteRepository) RecordRun(ctx context.Context, spreadsheetID, worksheet string, table core.SummaryTable) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO summary_runs
			(spreadsheet_id, worksheet, leaf_count, parent_count, leaf_share_total, parent_share_total)
		VALUES (?, ?, ?, ?, ?, ?)`,
		spreadsheetID, worksheet,
		len(table.Leaf), len(table.Parent),
		shareTotal(table.Leaf), shareTotal(table.Parent))
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("run id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO summary_rows
			(run_id, kind, position, ordinal, amount, place, who, category, item, incomings, date, percentage, share)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare row insert: %w", err)
	}
	defer stmt.Close()

	insert := func(kind string, rows []core.SummaryRow) error {
		for i, row := range rows {
			_, err := stmt.ExecContext(ctx, runID, kind, i,
				row.Ordinal, row.Amount, row.Where, row.Who, row.Category,
				row.Item, row.Incomings, row.Date, row.Percentage, row.Share)
			if err != nil {
				return fmt.Errorf("insert %s row %d: %w", kind, i, err)
			}
		}
		return nil
	}
	if err := insert("leaf", table.Leaf); err != nil {
		return 0, err
	}
	if err := insert("parent", table.Parent); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}

	slog.InfoContext(ctx, "Archived summary run",
		"run_id", runID,
		"worksheet", worksheet,
		"leaf_rows", len(table.Leaf),
		"parent_rows", len(table.Parent))
	return runID, nil
}

// ListRuns returns the most recent runs for a worksheet, newest first.
func (r *SQLiteRepository) ListRuns(ctx context.Context, worksheet string, limit int) ([]RunRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, spreadsheet_id, worksheet, leaf_count, parent_count,
		       leaf_share_total, parent_share_total, created_at
		FROM summary_runs
		WHERE worksheet = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, worksheet, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var rec RunRecord
		if err := rows.Scan(&rec.ID, &rec.SpreadsheetID, &rec.Worksheet,
			&rec.LeafCount, &rec.ParentCount,
			&rec.LeafShareTotal, &rec.ParentShareTotal, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// RunRows loads the archived rows of a run, split back into partitions.
func (r *SQLiteRepository) RunRows(ctx context.Context, runID int64) (leaf, parent []core.SummaryRow, err error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT kind, ordinal, amount, place, who, category, item, incomings, date, percentage, share
		FROM summary_rows
		WHERE run_id = ?
		ORDER BY kind, position`, runID)
	if err != nil {
		return nil, nil, fmt.Errorf("query rows: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var kind string
		var row core.SummaryRow
		if err := rows.Scan(&kind, &row.Ordinal, &row.Amount, &row.Where, &row.Who,
			&row.Category, &row.Item, &row.Incomings, &row.Date,
			&row.Percentage, &row.Share); err != nil {
			return nil, nil, fmt.Errorf("scan row: %w", err)
		}
		if kind == "parent" {
			parent = append(parent, row)
		} else {
			leaf = append(leaf, row)
		}
	}
	return leaf, parent, rows.Err()
}

func shareTotal(rows []core.SummaryRow) float64 {
	var total float64
	for _, r := range rows {
		total += r.Share
	}
	return total
}
