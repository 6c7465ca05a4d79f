package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"pfin/internal/core"
	ports "pfin/internal/sheets"

	"golang.org/x/sync/errgroup"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Output layout. The summary table is 11 columns wide (A..K); the
// publisher's fixed letters must line up with core.SummaryRow.Values.
const (
	dateColumnIndex       = 7   // H, 0-based
	percentageColumnIndex = 9   // J, 0-based
	shareColumn           = "K" // result column for the running-sum formula

	defaultFirstRow = 2
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	// firstRow is the 1-based row where published tables start.
	firstRow int
}

// Ensure interface conformance
var (
	_ ports.GridReader       = (*Client)(nil)
	_ ports.SummaryPublisher = (*Client)(nil)
)

// NewFromEnv creates a Sheets client using environment variables.
// Required: GOOGLE_SPREADSHEET_ID.
// Credentials: GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE,
// or GOOGLE_APPLICATION_CREDENTIALS.
// Optional: OUTPUT_FIRST_ROW (default 2).
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	firstRow := defaultFirstRow
	if v := strings.TrimSpace(os.Getenv("OUTPUT_FIRST_ROW")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid OUTPUT_FIRST_ROW %q", v)
		}
		firstRow = n
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		firstRow:      firstRow,
	}, nil
}

// newSheetsService initializes a Sheets Service using Service Account
// credentials from the environment.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// ReadGrids fetches the unformatted and formatted snapshots of a worksheet.
// The two reads are independent, so they run concurrently.
func (c *Client) ReadGrids(ctx context.Context, worksheet string) (core.Grid, core.Grid, error) {
	if c.svc == nil {
		return nil, nil, errors.New("sheets service not initialized")
	}

	var unformatted, formatted core.Grid
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		unformatted, err = c.readGrid(ctx, worksheet, ports.UnformattedValue)
		return err
	})
	g.Go(func() error {
		var err error
		formatted, err = c.readGrid(ctx, worksheet, ports.FormattedValue)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	slog.DebugContext(ctx, "Fetched worksheet grids",
		"worksheet", worksheet,
		"rows", len(unformatted))
	return unformatted, formatted, nil
}

func (c *Client) readGrid(ctx context.Context, worksheet string, render ports.ValueRenderOption) (core.Grid, error) {
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, worksheet).
		ValueRenderOption(string(render)).
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s (%s): %w", worksheet, render, err)
	}
	return core.Grid(resp.Values), nil
}

// Publish writes the leaf rows followed by the parent rows to the output
// worksheet: insert a blank block, fill it, apply the date and percentage
// format presets, drop the one spare blank row, then place the running-sum
// formula under the share column.
func (c *Client) Publish(ctx context.Context, worksheet string, table core.SummaryTable) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	values := tableValues(table)
	if len(values) == 0 {
		slog.InfoContext(ctx, "Nothing to publish", "worksheet", worksheet)
		return nil
	}

	sheetID, err := c.sheetID(ctx, worksheet)
	if err != nil {
		return err
	}

	n := len(values)
	if err := c.insertRows(ctx, sheetID, n+1); err != nil {
		return fmt.Errorf("insert rows in %s: %w", worksheet, err)
	}

	writeRange := fmt.Sprintf("%s!A%d", worksheet, c.firstRow)
	vr := &gsheet.ValueRange{Values: values}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, writeRange, vr).
		ValueInputOption(string(ports.UserEntered)).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write %s: %w", writeRange, err)
	}

	if err := c.formatAndTrim(ctx, sheetID, n); err != nil {
		return fmt.Errorf("format %s: %w", worksheet, err)
	}

	formulaCell := fmt.Sprintf("%s!%s%d", worksheet, shareColumn, c.firstRow+n)
	formula := sumFormula(c.firstRow, n)
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, formulaCell,
		&gsheet.ValueRange{Values: [][]any{{formula}}}).
		ValueInputOption(string(ports.UserEntered)).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write formula %s: %w", formulaCell, err)
	}

	slog.InfoContext(ctx, "Published summary table",
		"worksheet", worksheet,
		"leaf_rows", len(table.Leaf),
		"parent_rows", len(table.Parent),
		"formula", formula)
	return nil
}

// insertRows opens a blank block of rows at the first output row.
func (c *Client) insertRows(ctx context.Context, sheetID int64, count int) error {
	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			InsertDimension: &gsheet.InsertDimensionRequest{
				Range: &gsheet.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "ROWS",
					StartIndex: int64(c.firstRow - 1),
					EndIndex:   int64(c.firstRow - 1 + count),
				},
			},
		}},
	}
	_, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do()
	return err
}

// formatAndTrim applies the fixed number-format presets to the date and
// percentage columns of the written range and removes the spare blank row
// left by the insertion.
func (c *Client) formatAndTrim(ctx context.Context, sheetID int64, n int) error {
	start := int64(c.firstRow - 1)
	end := start + int64(n)

	numberFormat := func(colIndex int64, nf *gsheet.NumberFormat) *gsheet.Request {
		return &gsheet.Request{
			RepeatCell: &gsheet.RepeatCellRequest{
				Range: &gsheet.GridRange{
					SheetId:          sheetID,
					StartRowIndex:    start,
					EndRowIndex:      end,
					StartColumnIndex: colIndex,
					EndColumnIndex:   colIndex + 1,
				},
				Cell: &gsheet.CellData{
					UserEnteredFormat: &gsheet.CellFormat{NumberFormat: nf},
				},
				Fields: "userEnteredFormat.numberFormat",
			},
		}
	}

	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{
			numberFormat(dateColumnIndex, &gsheet.NumberFormat{
				Type:    "DATE",
				Pattern: "yyyy-mm-dd",
			}),
			numberFormat(percentageColumnIndex, &gsheet.NumberFormat{
				Type:    "NUMBER",
				Pattern: `0.00"%"`,
			}),
			{
				DeleteDimension: &gsheet.DeleteDimensionRequest{
					Range: &gsheet.DimensionRange{
						SheetId:    sheetID,
						Dimension:  "ROWS",
						StartIndex: end,
						EndIndex:   end + 1,
					},
				},
			},
		},
	}
	_, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do()
	return err
}

// sheetID resolves a worksheet title to its numeric sheet id.
func (c *Client) sheetID(ctx context.Context, worksheet string) (int64, error) {
	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).
		Fields("sheets.properties").
		Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("get spreadsheet: %w", err)
	}
	for _, sh := range ss.Sheets {
		if sh.Properties != nil && sh.Properties.Title == worksheet {
			return sh.Properties.SheetId, nil
		}
	}
	return 0, fmt.Errorf("worksheet %q not found in spreadsheet %s", worksheet, c.spreadsheetID)
}

// tableValues flattens a summary table into the written row block:
// leaf rows first, then parent rows, both in pipeline order.
func tableValues(table core.SummaryTable) [][]any {
	values := make([][]any, 0, len(table.Leaf)+len(table.Parent))
	for _, r := range table.Leaf {
		values = append(values, r.Values())
	}
	for _, r := range table.Parent {
		values = append(values, r.Values())
	}
	return values
}

// sumFormula builds the running total over the written share cells.
func sumFormula(firstRow, n int) string {
	return fmt.Sprintf("=SUM(%s%d:%s%d)", shareColumn, firstRow, shareColumn, firstRow+n-1)
}
