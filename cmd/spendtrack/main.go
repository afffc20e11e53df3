package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"spendtrack/internal/cli"
	"spendtrack/internal/events"
	apphttp "spendtrack/internal/http"
	"spendtrack/internal/sheets"
	gsheet "spendtrack/internal/sheets/google"
	"spendtrack/internal/store"
	appsync "spendtrack/internal/sync"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	settingsStore := cli.OpenSettings(logger, cfg.SQLiteDBPath)
	defer settingsStore.Close()

	// Without credentials the server still runs; connection attempts report
	// the configuration problem instead.
	var opener sheets.Opener
	client, err := gsheet.NewClient(ctx, cfg.GoogleServiceAccountEmail, cfg.GooglePrivateKey)
	if err != nil {
		logger.Warn("Google Sheets client unavailable", "error", err)
		opener = sheets.Unavailable(err)
	} else {
		opener = client
		logger.Info("Google Sheets client initialized")
	}

	conns := appsync.NewConnectionManager(opener, settingsStore)
	if conns.Restore(ctx) {
		logger.Info("Restored Google Sheets connection from persisted settings")
	}

	var publisher appsync.EventPublisher
	if cfg.AMQPURL != "" {
		eventsClient, err := events.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer eventsClient.Close()
		publisher = eventsClient
		logger.Info("AMQP event publishing enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	}

	st := store.New()
	orch := appsync.NewOrchestrator(st, conns, publisher)

	sweeper := appsync.NewSweeper(orch, appsync.SweeperConfig{
		PollInterval: cfg.SweepInterval,
		BatchSize:    cfg.SweepBatchSize,
	})
	if err := sweeper.Start(ctx); err != nil {
		logger.Error("Failed to start sweeper", "error", err)
		os.Exit(1)
	}

	srv := apphttp.NewServer(":"+cfg.Port, st, orch, conns, logger)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting spendtrack server", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := sweeper.Stop(shutdownCtx); err != nil {
			logger.Error("Sweeper shutdown error", "error", err)
		}
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
