package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"headcount/internal/cache"
	"headcount/internal/cli"
	"headcount/internal/config"
	"headcount/internal/core"
	apphttp "headcount/internal/http"
	applog "headcount/internal/log"
	"headcount/internal/services"
)

func main() {
	cli.LoadEnvFile()

	boot := cli.SetupLogger(nil, applog.ComponentApp)
	cfg := cli.LoadAndValidateConfig(boot)
	logger := cli.SetupLogger(cfg, applog.ComponentApp)

	if err := run(logger, cfg); err != nil {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}

func run(logger *applog.Logger, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	res := cli.InitBackend(ctx, logger, cfg)
	defer func() {
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", "error", err)
		}
	}()

	reportCache := cache.NewLRUCache[core.Report](cfg.ReportCacheSize, cfg.ReportCacheTTL)
	sweeper := cache.NewManager(logger.WithComponent(applog.ComponentCache).Logger)
	sweeper.Register(reportCache)

	exporter, err := cli.NewExporter(ctx, cfg, cli.ConfiguredTargets(cfg))
	if err != nil {
		return fmt.Errorf("initialize exporter: %w", err)
	}

	srv, err := apphttp.NewServer(ctx, apphttp.Options{
		Addr:       ":" + cfg.Port,
		Service:    res.Service,
		Reports:    services.NewReportEngine(res.Store, reportCache),
		Exporter:   exporter,
		Store:      res.Store,
		Logger:     logger.WithComponent(applog.ComponentHTTP),
		CacheStats: reportCache.Stats,
	})
	if err != nil {
		return fmt.Errorf("initialize server: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting headcount server",
			"port", cfg.Port,
			"backend", cfg.DataBackend,
			"events", res.EventsEnabled,
			"s3", cfg.S3Enabled(),
			"sheets", cfg.SheetsEnabled())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return sweeper.Run(gctx, time.Minute)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
