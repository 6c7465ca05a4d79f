package core

import (
	"errors"
	"reflect"
	"testing"
)

// headerGrid builds a title-trimmed grid whose second row carries the
// marker at the given 1-based column.
func headerGrid(marker string, markerCol, width int) Grid {
	header := make([]any, width)
	for i := range header {
		header[i] = ""
	}
	header[markerCol-1] = marker
	filler := make([]any, width)
	for i := range filler {
		filler[i] = ""
	}
	return Grid{filler, header}
}

func TestResolveColumnMap_AnchorAt18(t *testing.T) {
	grid := headerGrid("gdzie", 18, 26)

	cm, err := ResolveColumnMap(grid, "gdzie", HeaderRow)
	if err != nil {
		t.Fatalf("resolve err: %v", err)
	}

	if cm.Ordinal != 1 || cm.Amount != 2 || cm.Balance != 3 || cm.BankTag != 4 {
		t.Fatalf("fixed columns wrong: %+v", cm)
	}
	wantAccounts := []int{5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17}
	if !reflect.DeepEqual(cm.BankAccounts, wantAccounts) {
		t.Fatalf("bank accounts: got %v want %v", cm.BankAccounts, wantAccounts)
	}
	if cm.Where != 18 || cm.Who != 19 || cm.Category != 20 || cm.Item != 21 {
		t.Fatalf("anchor block wrong: %+v", cm)
	}
	if cm.Incomings != 22 || cm.Date != 23 || cm.Separator != 24 || cm.Percentage != 25 || cm.Share != 26 {
		t.Fatalf("trailing block wrong: %+v", cm)
	}
}

func TestResolveColumnMap_NarrowAccountBlock(t *testing.T) {
	// Anchor immediately after the fixed columns: no bank account columns.
	grid := headerGrid("gdzie", 5, 14)

	cm, err := ResolveColumnMap(grid, "gdzie", HeaderRow)
	if err != nil {
		t.Fatalf("resolve err: %v", err)
	}
	if len(cm.BankAccounts) != 0 {
		t.Fatalf("expected no bank account columns, got %v", cm.BankAccounts)
	}
	if cm.Where != 5 || cm.Share != 13 {
		t.Fatalf("unexpected map: %+v", cm)
	}
}

func TestResolveColumnMap_MarkerMissing(t *testing.T) {
	grid := headerGrid("elsewhere", 18, 26)

	_, err := ResolveColumnMap(grid, "gdzie", HeaderRow)
	if !errors.Is(err, ErrMarkerNotFound) {
		t.Fatalf("want ErrMarkerNotFound, got %v", err)
	}
}

func TestResolveColumnMap_FirstMatchWins(t *testing.T) {
	grid := headerGrid("gdzie", 10, 26)
	grid[HeaderRow-1][19] = "gdzie" // a later duplicate must be ignored

	cm, err := ResolveColumnMap(grid, "gdzie", HeaderRow)
	if err != nil {
		t.Fatalf("resolve err: %v", err)
	}
	if cm.Where != 10 {
		t.Fatalf("anchor: got %d want 10", cm.Where)
	}
}

func TestResolveColumnMap_NumberCellNeverMatches(t *testing.T) {
	grid := headerGrid("gdzie", 18, 26)
	grid[HeaderRow-1][7] = 42.0

	cm, err := ResolveColumnMap(grid, "gdzie", HeaderRow)
	if err != nil {
		t.Fatalf("resolve err: %v", err)
	}
	if cm.Where != 18 {
		t.Fatalf("anchor: got %d want 18", cm.Where)
	}
}

func TestResolveColumnMap_HeaderRowOutOfRange(t *testing.T) {
	grid := Grid{{"only", "one", "row"}}

	_, err := ResolveColumnMap(grid, "gdzie", HeaderRow)
	if !errors.Is(err, ErrMarkerNotFound) {
		t.Fatalf("want ErrMarkerNotFound, got %v", err)
	}
}
