package storage

import (
	"context"
	"path/filepath"
	"testing"

	"pfin/internal/core"
)

func testRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "pfin.db"))
	if err != nil {
		t.Fatalf("open repo: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestRecordRun_RoundTrip(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	table := core.SummaryTable{
		Leaf: []core.SummaryRow{
			{Ordinal: "1", Amount: 100, Where: "market", Who: "bob", Category: "groceries",
				Item: "milk", Incomings: "none", Date: "2021-08-05", Percentage: 50, Share: 50},
			{Ordinal: "2", Amount: 60, Where: "cinema", Who: "alice", Category: "leisure",
				Item: "tickets", Incomings: "none", Date: "2021-08-07", Percentage: 100, Share: 60},
		},
		Parent: []core.SummaryRow{
			{Ordinal: "R4", Amount: 180, Where: "utilities", Who: "both", Category: "bills",
				Item: "electricity", Incomings: "rollup", Date: "2021-08-09", Percentage: 50, Share: 90},
		},
	}

	runID, err := repo.RecordRun(ctx, "sheet-id", "202108", table)
	if err != nil {
		t.Fatalf("record run: %v", err)
	}

	runs, err := repo.ListRuns(ctx, "202108", 10)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("runs: got %d want 1", len(runs))
	}
	rec := runs[0]
	if rec.ID != runID || rec.LeafCount != 2 || rec.ParentCount != 1 {
		t.Fatalf("run record: %+v", rec)
	}
	if rec.LeafShareTotal != 110 || rec.ParentShareTotal != 90 {
		t.Fatalf("share totals: %+v", rec)
	}

	leaf, parent, err := repo.RunRows(ctx, runID)
	if err != nil {
		t.Fatalf("run rows: %v", err)
	}
	if len(leaf) != 2 || len(parent) != 1 {
		t.Fatalf("rows: leaf=%d parent=%d", len(leaf), len(parent))
	}
	if leaf[0] != table.Leaf[0] || leaf[1] != table.Leaf[1] || parent[0] != table.Parent[0] {
		t.Fatalf("rows changed in archive:\n got %+v %+v\nwant %+v %+v",
			leaf, parent, table.Leaf, table.Parent)
	}
}

func TestListRuns_FiltersByWorksheet(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	if _, err := repo.RecordRun(ctx, "s", "202108", core.SummaryTable{}); err != nil {
		t.Fatalf("record run: %v", err)
	}
	if _, err := repo.RecordRun(ctx, "s", "202109", core.SummaryTable{}); err != nil {
		t.Fatalf("record run: %v", err)
	}

	runs, err := repo.ListRuns(ctx, "202109", 10)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 1 || runs[0].Worksheet != "202109" {
		t.Fatalf("filtered runs: %+v", runs)
	}
}
