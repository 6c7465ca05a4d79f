package google

import (
	"testing"

	"pfin/internal/core"
)

func TestTableValues_LeafBeforeParent(t *testing.T) {
	table := core.SummaryTable{
		Leaf: []core.SummaryRow{
			{Ordinal: "1", Amount: 100, Percentage: 50, Share: 50},
			{Ordinal: "2", Amount: 30, Percentage: 100, Share: 30},
		},
		Parent: []core.SummaryRow{
			{Ordinal: "R3", Amount: 200, Percentage: 25, Share: 50},
		},
	}

	values := tableValues(table)
	if len(values) != 3 {
		t.Fatalf("rows: got %d want 3", len(values))
	}
	if values[0][0] != "1" || values[1][0] != "2" || values[2][0] != "R3" {
		t.Fatalf("row order: %v %v %v", values[0][0], values[1][0], values[2][0])
	}
	for i, row := range values {
		if len(row) != core.NumColumns {
			t.Fatalf("row %d width: got %d want %d", i, len(row), core.NumColumns)
		}
	}
}

func TestTableValues_EmptyTable(t *testing.T) {
	if got := tableValues(core.SummaryTable{}); len(got) != 0 {
		t.Fatalf("empty table produced %d rows", len(got))
	}
}

func TestSumFormula(t *testing.T) {
	tests := []struct {
		firstRow int
		n        int
		want     string
	}{
		{2, 10, "=SUM(K2:K11)"},
		{2, 1, "=SUM(K2:K2)"},
		{5, 3, "=SUM(K5:K7)"},
	}
	for _, tt := range tests {
		if got := sumFormula(tt.firstRow, tt.n); got != tt.want {
			t.Fatalf("sumFormula(%d, %d): got %q want %q", tt.firstRow, tt.n, got, tt.want)
		}
	}
}
