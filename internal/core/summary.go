package core

import "strings"

const (
	// transferCategory marks internal transfers between own accounts.
	transferCategory = "transfer"
	// settlementMark appears in the incomings description of
	// settlement/reconciliation entries.
	settlementMark = "rozliczenie"
	// parentPrefix on the ordinal marks an aggregate rollup row.
	parentPrefix = "R"
)

// admitted reports whether a raw row is relevant for the summary.
// All five predicates must hold; rejected rows are dropped entirely.
func admitted(row []any, cm ColumnMap) bool {
	if isEmpty(cellAt(row, cm.Ordinal)) {
		return false
	}
	if isEmpty(cellAt(row, cm.Amount)) {
		return false
	}
	if s, ok := cellAt(row, cm.Category).(string); ok && s == transferCategory {
		return false
	}
	if strings.Contains(cellText(cellAt(row, cm.Incomings)), settlementMark) {
		return false
	}
	if isEmpty(cellAt(row, cm.Percentage)) {
		return false
	}
	return true
}

// project reduces an admitted raw row to the fixed summary shape. The date
// comes from the formatted row at the same position, and Share is computed
// in place as Amount x Percentage / 100. A non-numeric amount or percentage
// yields a RowError carrying the row's ordinal.
func project(row, formattedRow []any, cm ColumnMap) (SummaryRow, error) {
	ordinal := cellText(cellAt(row, cm.Ordinal))

	amount, err := cellNumber(cellAt(row, cm.Amount))
	if err != nil {
		return SummaryRow{}, &RowError{Ordinal: ordinal, Field: "amount", Err: err}
	}
	percentage, err := cellNumber(cellAt(row, cm.Percentage))
	if err != nil {
		return SummaryRow{}, &RowError{Ordinal: ordinal, Field: "percentage", Err: err}
	}

	return SummaryRow{
		Ordinal:    ordinal,
		Amount:     amount,
		Where:      cellText(cellAt(row, cm.Where)),
		Who:        cellText(cellAt(row, cm.Who)),
		Category:   cellText(cellAt(row, cm.Category)),
		Item:       cellText(cellAt(row, cm.Item)),
		Incomings:  cellText(cellAt(row, cm.Incomings)),
		Date:       cellText(cellAt(formattedRow, cm.Date)),
		Separator:  cellText(cellAt(row, cm.Separator)),
		Percentage: percentage,
		Share:      amount * percentage / 100,
	}, nil
}

// FilterProject runs row admission, date substitution, projection and share
// derivation over title-trimmed grids. Pure: identical grids and map always
// yield identical output, in original row order.
func FilterProject(unformatted, formatted Grid, cm ColumnMap) ([]SummaryRow, error) {
	var out []SummaryRow
	for i, row := range unformatted {
		if !admitted(row, cm) {
			continue
		}
		sr, err := project(row, formatted[i], cm)
		if err != nil {
			return nil, err
		}
		out = append(out, sr)
	}
	return out, nil
}

// Partition splits projected rows into leaf and parent sets. A row is a
// parent iff its ordinal starts with "R". Both sets preserve input order.
// The split is computed over the full projected set, never from an
// already-filtered subset.
func Partition(rows []SummaryRow) (leaf, parent []SummaryRow) {
	for _, r := range rows {
		if strings.HasPrefix(r.Ordinal, parentPrefix) {
			parent = append(parent, r)
		} else {
			leaf = append(leaf, r)
		}
	}
	return leaf, parent
}

// BuildSummary runs the whole pipeline over title-trimmed grids: shape
// check, column map resolution, filter and projection, partitioning.
func BuildSummary(unformatted, formatted Grid, marker string) (SummaryTable, error) {
	if err := ValidateShape(unformatted, formatted); err != nil {
		return SummaryTable{}, err
	}
	cm, err := ResolveColumnMap(unformatted, marker, HeaderRow)
	if err != nil {
		return SummaryTable{}, err
	}
	rows, err := FilterProject(unformatted, formatted, cm)
	if err != nil {
		return SummaryTable{}, err
	}
	leaf, parent := Partition(rows)
	return SummaryTable{Leaf: leaf, Parent: parent}, nil
}
