package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"dompet/internal/backend"
	"dompet/internal/cli"
	"dompet/internal/config"
	apphttp "dompet/internal/http"
	"dompet/internal/ledger"
	"dompet/internal/log"
	"dompet/internal/services"
)

func main() {
	cfg, logger := cli.MustLoadConfig(log.ComponentApp)

	ctx, stop := cli.SignalContext(logger)
	err := run(ctx, cfg, logger)
	stop()
	if err != nil {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully", log.FieldOperation, log.OpShutdown)
}

// run serves the API until ctx is cancelled or the listener fails. The
// backend is cleaned up before it returns.
func run(ctx context.Context, cfg *config.Config, logger *log.Logger) (err error) {
	loc, err := cfg.Location()
	if err != nil {
		return fmt.Errorf("invalid timezone: %w", err)
	}
	clock := func() time.Time { return time.Now().In(loc) }

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	result, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		return fmt.Errorf("initialize %s backend: %w", cfg.DataBackend, err)
	}
	defer func() {
		if cerr := result.Cleanup(); cerr != nil {
			logger.Error("Backend cleanup failed", log.FieldError, cerr)
			err = errors.Join(err, cerr)
		}
	}()

	txs, err := ledger.NewTransactionStore(ctx, result.Persister, clock, logger)
	if err != nil {
		return err
	}
	debts, err := ledger.NewDebtLedger(ctx, result.Persister, clock, logger)
	if err != nil {
		return err
	}
	budget, err := ledger.NewBudget(ctx, result.Persister, logger)
	if err != nil {
		return err
	}

	if cfg.Seed {
		seeded, err := ledger.SeedTransactions(ctx, txs)
		if err != nil {
			logger.Warn("Demo data could not be saved", log.FieldError, err)
		} else if seeded {
			logger.Info("Seeded demo transactions", log.FieldCount, txs.Len())
		}
	}

	svc := services.NewLedger(txs, debts, budget, result.Alerts, clock, logger)
	srv := apphttp.NewServer(":"+cfg.Port, svc, result.Sheets, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting dompet server",
			"port", cfg.Port,
			"backend", cfg.DataBackend,
			"alerts", cfg.AlertsEnabled(),
			"sheets", cfg.SheetsEnabled())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
