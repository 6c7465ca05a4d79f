package worker

import (
	"context"
	"fmt"
	"log/slog"

	"pfin/internal/amqp"
	"pfin/internal/services"
)

// SummarizeWorker turns queued summarize requests into pipeline runs.
type SummarizeWorker struct {
	service *services.SummaryService
}

func NewSummarizeWorker(service *services.SummaryService) *SummarizeWorker {
	return &SummarizeWorker{service: service}
}

// HandleSummarizeRequest processes one queued request. Errors propagate to
// the consumer loop, which nacks and requeues the delivery.
func (w *SummarizeWorker) HandleSummarizeRequest(ctx context.Context, msg *amqp.SummarizeRequestMessage) error {
	slog.InfoContext(ctx, "Processing summarize request",
		"spreadsheet", msg.Spreadsheet,
		"worksheet", msg.Worksheet,
		"requested_at", msg.RequestedAt)

	table, err := w.service.SummarizeAndPublish(ctx, msg.Worksheet)
	if err != nil {
		return fmt.Errorf("summarize %s: %w", msg.Worksheet, err)
	}

	slog.InfoContext(ctx, "Summarize request completed",
		"worksheet", msg.Worksheet,
		"leaf_rows", len(table.Leaf),
		"parent_rows", len(table.Parent))
	return nil
}
