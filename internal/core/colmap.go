package core

import "fmt"

// DefaultMarker is the header cell that anchors the trailing column block.
const DefaultMarker = "gdzie"

// HeaderRow is the 1-based row of the title-trimmed grid that carries the
// column headers.
const HeaderRow = 2

// ColumnMap names the 1-based column indices of an input worksheet.
// The leading four columns are fixed. BankAccounts is the variable-width
// block of per-account balance columns whose width changes month to month;
// everything from Where onward sits at a fixed offset from the anchor.
type ColumnMap struct {
	Ordinal      int
	Amount       int
	Balance      int
	BankTag      int
	BankAccounts []int
	Where        int
	Who          int
	Category     int
	Item         int
	Incomings    int
	Date         int
	Separator    int
	Percentage   int
	Share        int
}

// ResolveColumnMap locates marker in the given 1-based header row of grid
// and derives the column layout from its position. The grid must already
// have its title block trimmed. A missing marker means the worksheet does
// not follow the expected layout; no map is produced.
func ResolveColumnMap(grid Grid, marker string, headerRow int) (ColumnMap, error) {
	if headerRow < 1 || headerRow > len(grid) {
		return ColumnMap{}, fmt.Errorf("header row %d out of range (grid has %d rows): %w",
			headerRow, len(grid), ErrMarkerNotFound)
	}

	anchor := 0
	for i, cell := range grid[headerRow-1] {
		if s, ok := cell.(string); ok && s == marker {
			anchor = i + 1
			break
		}
	}
	if anchor == 0 {
		return ColumnMap{}, fmt.Errorf("no %q cell in header row %d: %w",
			marker, headerRow, ErrMarkerNotFound)
	}

	accounts := make([]int, 0, anchor-5)
	for col := 5; col < anchor; col++ {
		accounts = append(accounts, col)
	}

	return ColumnMap{
		Ordinal:      1,
		Amount:       2,
		Balance:      3,
		BankTag:      4,
		BankAccounts: accounts,
		Where:        anchor,
		Who:          anchor + 1,
		Category:     anchor + 2,
		Item:         anchor + 3,
		Incomings:    anchor + 4,
		Date:         anchor + 5,
		Separator:    anchor + 6,
		Percentage:   anchor + 7,
		Share:        anchor + 8,
	}, nil
}
