package services

import (
	"context"
	"fmt"
	"log/slog"

	"pfin/internal/core"
	"pfin/internal/sheets"
	"pfin/internal/storage"
)

// SummaryService runs the whole pipeline for one worksheet: fetch both
// grids, build the summary table, publish it, archive the run.
type SummaryService struct {
	reader          sheets.GridReader
	publisher       sheets.SummaryPublisher
	archive         *storage.SQLiteRepository
	spreadsheetID   string
	outputWorksheet string
	marker          string
}

func NewSummaryService(
	reader sheets.GridReader,
	publisher sheets.SummaryPublisher,
	archive *storage.SQLiteRepository,
	spreadsheetID, outputWorksheet, marker string,
) *SummaryService {
	if marker == "" {
		marker = core.DefaultMarker
	}
	return &SummaryService{
		reader:          reader,
		publisher:       publisher,
		archive:         archive,
		spreadsheetID:   spreadsheetID,
		outputWorksheet: outputWorksheet,
		marker:          marker,
	}
}

// SummarizeAndPublish processes one input worksheet end to end and returns
// the published table. A layout, shape or row arithmetic problem aborts the
// run before anything is written.
func (s *SummaryService) SummarizeAndPublish(ctx context.Context, worksheet string) (core.SummaryTable, error) {
	unformatted, formatted, err := s.reader.ReadGrids(ctx, worksheet)
	if err != nil {
		return core.SummaryTable{}, fmt.Errorf("read worksheet %s: %w", worksheet, err)
	}

	table, err := core.BuildSummary(
		core.TrimTitle(unformatted), core.TrimTitle(formatted), s.marker)
	if err != nil {
		return core.SummaryTable{}, fmt.Errorf("summarize worksheet %s: %w", worksheet, err)
	}

	if err := s.publisher.Publish(ctx, s.outputWorksheet, table); err != nil {
		return core.SummaryTable{}, fmt.Errorf("publish to %s: %w", s.outputWorksheet, err)
	}

	// The archive is an audit log; a failed write must not undo a publish
	// that already succeeded.
	if s.archive != nil {
		if _, err := s.archive.RecordRun(ctx, s.spreadsheetID, worksheet, table); err != nil {
			slog.ErrorContext(ctx, "Failed to archive summary run",
				"worksheet", worksheet, "error", err)
		}
	}

	slog.InfoContext(ctx, "Worksheet summarized",
		"worksheet", worksheet,
		"output", s.outputWorksheet,
		"leaf_rows", len(table.Leaf),
		"parent_rows", len(table.Parent))
	return table, nil
}

// Close releases the archive connection if one is attached.
func (s *SummaryService) Close() error {
	if s.archive != nil {
		return s.archive.Close()
	}
	return nil
}
