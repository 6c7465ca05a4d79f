package sheets

import (
	"context"

	"pfin/internal/core"
)

// ValueRenderOption selects how the Sheets API renders cells on read.
type ValueRenderOption string

const (
	FormattedValue   ValueRenderOption = "FORMATTED_VALUE"
	UnformattedValue ValueRenderOption = "UNFORMATTED_VALUE"
	Formula          ValueRenderOption = "FORMULA"
)

// ValueInputOption selects how the Sheets API interprets cells on write.
// UserEntered makes the API evaluate formulas; Raw stores them as text.
type ValueInputOption string

const (
	Raw         ValueInputOption = "RAW"
	UserEntered ValueInputOption = "USER_ENTERED"
)

// Ports for the spreadsheet collaborators. The core never talks to the
// Sheets API directly; it sees grids on the way in and hands tables out.
type (
	// GridReader fetches the two parallel snapshots of an input worksheet:
	// unformatted values for arithmetic and formatted values for display.
	GridReader interface {
		ReadGrids(ctx context.Context, worksheet string) (unformatted, formatted core.Grid, err error)
	}

	// SummaryPublisher writes a summary table to an output worksheet,
	// applying the fixed format presets and the trailing sum formula.
	SummaryPublisher interface {
		Publish(ctx context.Context, worksheet string, table core.SummaryTable) error
	}
)
