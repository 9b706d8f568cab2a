package main

import (
	"context"
	"errors"
	"os"
	"time"

	"headcount/internal/amqp"
	"headcount/internal/backend"
	"headcount/internal/cli"
	"headcount/internal/config"
	"headcount/internal/core"
	applog "headcount/internal/log"
	gsheet "headcount/internal/sheets/google"
	"headcount/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	boot := cli.SetupLogger(nil, applog.ComponentApp)
	cfg := cli.LoadAndValidateConfig(boot)
	logger := cli.SetupLogger(cfg, applog.ComponentSheets)

	logger.Info("Starting headcount-worker")

	if !cfg.SheetsEnabled() {
		logger.Error("Google Sheets mirror disabled - GOOGLE_SPREADSHEET_ID is required by the worker")
		os.Exit(1)
	}

	// The worker reads the store but never publishes.
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	bcfg.AMQPURL = ""
	res, err := backend.NewFactory(logger.Logger).CreateBackend(context.Background(), bcfg)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	mirror, err := gsheet.New(context.Background(), cli.SheetsConfig(cfg))
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", "error", err)
		_ = res.Cleanup()
		os.Exit(1)
	}
	logger.Info("Google Sheets client initialized",
		"spreadsheet_id", cfg.GoogleSpreadsheetID,
		"sheet", cfg.GoogleAllocationsSheet)

	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			_ = res.Cleanup()
			os.Exit(1)
		}
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				logger.Error("Failed to close AMQP client", "error", err)
			}
		}
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", "error", err)
		}
	})

	mw := worker.NewMirrorWorker(res.Store, mirror)
	startupSync(ctx, logger, cfg, mw)

	if amqpClient == nil {
		logger.Info("AMQP disabled - startup sync only, exiting")
		_ = res.Cleanup()
		return
	}

	go func() {
		err := amqpClient.ConsumeAllocationSaved(ctx, func(msg *amqp.AllocationSavedMessage) error {
			return mw.HandleAllocationSaved(ctx, msg)
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Message consumption failed", "error", err)
			os.Exit(1)
		}
	}()

	cli.WaitForShutdown(ctx, done)
	logger.Info("headcount-worker stopped")
}

// startupSync re-sends the last MIRROR_SYNC_DAYS of records to catch up on
// messages published while the worker was down.
func startupSync(ctx context.Context, logger *applog.Logger, cfg *config.Config, mw *worker.MirrorWorker) {
	if cfg.MirrorSyncDays <= 0 {
		logger.Info("Startup mirror sync disabled")
		return
	}
	end := core.Today()
	start := end.AddDays(-cfg.MirrorSyncDays)

	synced, failed, err := mw.SyncRange(ctx, start, end)
	if err != nil {
		logger.Error("Startup mirror sync failed", "error", err)
		return
	}
	logger.Info("Startup mirror sync finished",
		"start", start.ISO(),
		"end", end.ISO(),
		"synced", synced,
		"failed", failed)
}
