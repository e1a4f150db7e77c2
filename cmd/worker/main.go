package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"communityfund/internal/app"
	"communityfund/internal/infra"
	"communityfund/internal/ledger"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv, "worker")

	// Bolt holds an exclusive file lock and memory is per process, so those
	// drivers reconcile inside the api process.
	if cfg.StoreDriver != infra.StoreDriverPostgres {
		logger.Fatal().Str("driver", cfg.StoreDriver).Msg("worker: standalone reconciliation needs the postgres driver")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := app.OpenStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: failed to open record store")
	}
	defer closeStore()

	reconciler := ledger.NewReconciler(store, logger.With().Str("component", "reconciler").Logger(), cfg.ReconcileSettle)
	if err := reconciler.Run(ctx, cfg.ReconcileInterval); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("worker: stopped with error")
		return
	}
	logger.Info().Msg("worker: stopped")
}
