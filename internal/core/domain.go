package core

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrMarkerNotFound    = errors.New("marker not found in header row")
	ErrGridShapeMismatch = errors.New("unformatted and formatted grids disagree in extents")
	ErrNotNumeric        = errors.New("cell is not numeric")
)

type (
	// Grid is a full worksheet snapshot as returned by the Sheets API:
	// rows of cells, each cell a string, a float64 or nil.
	Grid [][]any

	// SummaryRow is one row of the published summary. The shape is fixed;
	// Share is always present and filled in during projection.
	SummaryRow struct {
		Ordinal    string
		Amount     float64
		Where      string
		Who        string
		Category   string
		Item       string
		Incomings  string
		Date       string // formatted-grid text, never the raw date serial
		Separator  string
		Percentage float64
		Share      float64
	}

	// SummaryTable holds the two output partitions in original row order.
	SummaryTable struct {
		Leaf   []SummaryRow
		Parent []SummaryRow
	}
)

// RowError reports a non-numeric amount or percentage in an admitted row.
// It aborts the whole batch; no partial tables are produced.
type RowError struct {
	Ordinal string
	Field   string
	Err     error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %q: bad %s cell: %v", e.Ordinal, e.Field, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// Values returns the row as a value slice in published column order
// (A=Ordinal .. K=Share).
func (r SummaryRow) Values() []any {
	return []any{
		r.Ordinal,
		r.Amount,
		r.Where,
		r.Who,
		r.Category,
		r.Item,
		r.Incomings,
		r.Date,
		r.Separator,
		r.Percentage,
		r.Share,
	}
}

// NumColumns is the fixed width of a published summary row.
const NumColumns = 11

// TitleRows is the height of the title block at the top of an input
// worksheet. It carries no data and is skipped before map resolution.
const TitleRows = 4

// TrimTitle drops the title block from a freshly fetched grid.
func TrimTitle(g Grid) Grid {
	if len(g) <= TitleRows {
		return Grid{}
	}
	return g[TitleRows:]
}

// ValidateShape ensures both snapshots cover the same rows and columns.
// Date substitution relies on positional correspondence between them.
func ValidateShape(unformatted, formatted Grid) error {
	if len(unformatted) != len(formatted) {
		return fmt.Errorf("%w: %d rows vs %d rows",
			ErrGridShapeMismatch, len(unformatted), len(formatted))
	}
	for i := range unformatted {
		if len(unformatted[i]) != len(formatted[i]) {
			return fmt.Errorf("%w: row %d has %d cells vs %d cells",
				ErrGridShapeMismatch, i+1, len(unformatted[i]), len(formatted[i]))
		}
	}
	return nil
}

// cellAt returns the cell at a 1-based column index, or nil past row end.
// Rows fetched from the API are ragged; a missing cell is an empty cell.
func cellAt(row []any, col int) any {
	if col < 1 || col > len(row) {
		return nil
	}
	return row[col-1]
}

// isEmpty reports whether a cell holds no value. Numbers are never empty.
func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && s == ""
}

// cellText renders a cell the way the sheet displays it: strings verbatim,
// numbers without a trailing ".0".
func cellText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		return fmt.Sprint(t)
	}
}

// cellNumber converts a cell to float64. Text cells are parsed after
// normalizing a decimal comma, matching how amounts arrive from the API.
func cellNumber(v any) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case int:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(t), ",", ".")
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrNotNumeric, t)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("%w: %T", ErrNotNumeric, v)
	}
}
