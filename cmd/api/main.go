package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"communityfund/internal/app"
	"communityfund/internal/http/handlers"
	httpapi "communityfund/internal/http/httpapi"
	"communityfund/internal/infra"
	"communityfund/internal/infra/geoip"
	"communityfund/internal/ledger"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv, "api")

	policy, err := ledger.ParseFundedPolicy(cfg.FundedPolicy)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid funded policy")
	}

	ctx := context.Background()
	store, closeStore, err := app.OpenStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open record store")
	}
	defer closeStore()

	resolver, err := geoip.Open(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	}
	defer resolver.Close()

	coordinator := ledger.NewCoordinator(store, ledger.Options{
		Policy: policy,
		Logger: logger.With().Str("component", "ledger").Logger(),
	})
	complaints := ledger.NewComplaints(store, logger.With().Str("component", "complaints").Logger())
	handlerApp := handlers.NewApp(coordinator, complaints, logger, cfg.StoreTimeout)

	router := httpapi.NewRouter(handlerApp, httpapi.Options{
		Logger:         logger,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		DefaultLocale:  cfg.DefaultLocale,
		CountryLookup:  resolver.Lookup(),
		RateLimit:      cfg.RateLimitPerMin,
	})

	server := infra.NewHTTPServer(cfg, router)

	bgCtx, stopBackground := context.WithCancel(ctx)
	defer stopBackground()
	if cfg.StoreDriver != infra.StoreDriverPostgres {
		reconciler := ledger.NewReconciler(store, logger.With().Str("component", "reconciler").Logger(), cfg.ReconcileSettle)
		go func() {
			if err := reconciler.Run(bgCtx, cfg.ReconcileInterval); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error().Err(err).Msg("in-process reconciler stopped")
			}
		}()
	}

	go func() {
		logger.Info().Str("addr", server.Addr()).Str("policy", string(policy)).Msg("API listening")
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
