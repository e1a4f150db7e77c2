// Package app assembles the Record Store chosen by configuration.
package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"communityfund/internal/adapter/boltstore"
	"communityfund/internal/adapter/memstore"
	"communityfund/internal/adapter/repo"
	"communityfund/internal/domain"
	"communityfund/internal/infra"
)

// OpenStore opens the configured backend. The returned close func releases
// it and is never nil.
func OpenStore(ctx context.Context, cfg *infra.Config, logger zerolog.Logger) (domain.RecordStore, func(), error) {
	switch cfg.StoreDriver {
	case infra.StoreDriverPostgres:
		pool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			return nil, func() {}, err
		}
		runner := infra.NewSQLRunner(pool, logger.With().Str("component", "sql").Logger())
		logger.Info().Str("driver", cfg.StoreDriver).Msg("record store ready")
		return repo.NewStore(runner), pool.Close, nil

	case infra.StoreDriverBolt:
		store, err := boltstore.Open(cfg.BoltPath)
		if err != nil {
			return nil, func() {}, fmt.Errorf("open bolt store %s: %w", cfg.BoltPath, err)
		}
		logger.Info().Str("driver", cfg.StoreDriver).Str("path", cfg.BoltPath).Msg("record store ready")
		return store, func() {
			if err := store.Close(); err != nil {
				logger.Error().Err(err).Msg("close bolt store")
			}
		}, nil

	case infra.StoreDriverMemory:
		logger.Warn().Msg("using in-memory record store, data is lost on exit")
		return memstore.New(), func() {}, nil
	}
	return nil, func() {}, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
}
