package main

import (
	"context"
	"os"
	"time"

	"pfin/internal/amqp"
	"pfin/internal/cli"
	"pfin/internal/services"
	ports "pfin/internal/sheets"
	gsheet "pfin/internal/sheets/google"
	mem "pfin/internal/sheets/memory"
	"pfin/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger("pfin-worker")
	logger.Info("Starting pfin-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	var (
		reader    ports.GridReader
		publisher ports.SummaryPublisher
	)
	switch cfg.DataBackend {
	case "sheets":
		client, err := gsheet.NewFromEnv(context.Background())
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		reader, publisher = client, client
		logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	default:
		store := mem.NewWithSample(cfg.InputWorksheet)
		reader, publisher = store, store
		logger.Info("Memory backend initialized", "worksheet", cfg.InputWorksheet)
	}

	archive := cli.InitArchive(logger, cfg)
	svc := services.NewSummaryService(reader, publisher,
		archive, cfg.GoogleSpreadsheetID, cfg.OutputWorksheet, cfg.Marker)
	defer svc.Close()

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	summarizeWorker := worker.NewSummarizeWorker(svc)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	go func() {
		err := amqpClient.ConsumeSummarizeRequests(ctx, func(msg *amqp.SummarizeRequestMessage) error {
			return summarizeWorker.HandleSummarizeRequest(ctx, msg)
		})
		if err != nil && err != context.Canceled {
			logger.Error("Message consumption failed", "error", err)
		}
	}()

	<-ctx.Done()
	<-done
	logger.Info("Worker stopped gracefully")
}
