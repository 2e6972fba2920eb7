package main

import (
	"context"
	"errors"
	"os"

	"golang.org/x/sync/errgroup"

	"dompet/internal/amqp"
	"dompet/internal/cli"
	"dompet/internal/log"
	"dompet/internal/worker"
)

func main() {
	cfg, logger := cli.MustLoadConfig(log.ComponentWorker)
	logger.Info("Starting dompet-worker", log.FieldOperation, log.OpStartup)

	if !cfg.AlertsEnabled() {
		logger.Error("AMQP_URL is required to consume budget alerts")
		os.Exit(1)
	}

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer client.Close()

	alerts := worker.NewAlertWorker(nil, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return client.ConsumeBudgetAlerts(gctx, alerts.HandleBudgetAlert)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", log.FieldError, err)
	}

	stats := alerts.Stats()
	logger.Info("Worker stopped",
		log.FieldOperation, log.OpShutdown,
		"handled", stats.Handled,
		"duplicates", stats.Duplicates,
		"failed", stats.Failed)
}
