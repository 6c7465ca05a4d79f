package main

import (
	"context"
	"flag"
	"os"
	"time"

	"pfin/internal/amqp"
	"pfin/internal/cli"
	"pfin/internal/services"
	ports "pfin/internal/sheets"
	gsheet "pfin/internal/sheets/google"
	mem "pfin/internal/sheets/memory"
)

func main() {
	worksheet := flag.String("worksheet", "", "input worksheet name (default: INPUT_WORKSHEET)")
	enqueue := flag.Bool("enqueue", false, "publish a summarize request to AMQP instead of running inline")
	flag.Parse()

	cli.LoadEnvFile()
	logger := cli.SetupLogger("pfin")
	cfg := cli.LoadAndValidateConfig(logger)

	input := cfg.InputWorksheet
	if *worksheet != "" {
		input = *worksheet
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if *enqueue {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()

		if err := amqpClient.PublishSummarizeRequest(ctx, cfg.GoogleSpreadsheetID, input); err != nil {
			logger.Error("Failed to enqueue summarize request", "error", err, "worksheet", input)
			os.Exit(1)
		}
		logger.Info("Summarize request enqueued", "worksheet", input)
		return
	}

	var (
		reader    ports.GridReader
		publisher ports.SummaryPublisher
	)
	switch cfg.DataBackend {
	case "sheets":
		client, err := gsheet.NewFromEnv(ctx)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		reader, publisher = client, client
		logger.Info("Initialized Google Sheets backend", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	default:
		store := mem.NewWithSample(input)
		reader, publisher = store, store
		logger.Info("Initialized memory backend with sample worksheet", "worksheet", input)
	}

	archive := cli.InitArchive(logger, cfg)
	svc := services.NewSummaryService(reader, publisher,
		archive, cfg.GoogleSpreadsheetID, cfg.OutputWorksheet, cfg.Marker)
	defer svc.Close()

	table, err := svc.SummarizeAndPublish(ctx, input)
	if err != nil {
		logger.Error("Summary run failed", "error", err, "worksheet", input)
		os.Exit(1)
	}

	logger.Info("Summary run finished",
		"worksheet", input,
		"output", cfg.OutputWorksheet,
		"leaf_rows", len(table.Leaf),
		"parent_rows", len(table.Parent))
}
