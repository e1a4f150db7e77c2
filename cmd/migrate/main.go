package main

import (
	"context"
	"time"

	"github.com/joho/godotenv"

	"communityfund/internal/infra"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv, "migrate")
	if cfg.StoreDriver != infra.StoreDriverPostgres {
		logger.Info().Str("driver", cfg.StoreDriver).Msg("nothing to migrate")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := infra.OpenSQL(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("migrate: connect failed")
	}
	defer db.Close()

	applied, err := infra.Migrate(ctx, db, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("migrate: failed")
	}
	logger.Info().Int("applied", applied).Msg("migrate: done")
}
