package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"spendtrack/internal/cli"
	"spendtrack/internal/events"
	applog "spendtrack/internal/log"
)

// spendtrack-worker consumes expense-synced events from RabbitMQ and writes
// them to the structured log, giving operators an audit trail of everything
// that reached the spreadsheet.
func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger().WithComponent(applog.ComponentEvents)
	cfg := cli.LoadAndValidateConfig(logger)

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	client, err := events.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting spendtrack-worker", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)

	err = client.ConsumeExpenseSynced(ctx, func(msg *events.ExpenseSyncedMessage) error {
		logger.Info("Expense synced",
			applog.FieldExpenseID, msg.ID,
			applog.FieldAmount, msg.Amount,
			applog.FieldType, msg.Type,
			applog.FieldMonth, msg.Month,
			applog.FieldYear, msg.Year)
		return nil
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Consumer stopped", "error", err)
		os.Exit(1)
	}

	logger.Info("Worker stopped gracefully")
}
