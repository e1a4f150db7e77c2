package repo

import (
	"context"
	"errors"

	"communityfund/internal/domain"
	"communityfund/internal/infra"
)

// Store implements domain.RecordStore on PostgreSQL through marker-tagged
// queries. Balance and total updates are single statements, so they are
// atomic without an explicit transaction.
type Store struct {
	sql infra.SQLExecutor
}

// NewStore creates a store on top of the given executor.
func NewStore(sql infra.SQLExecutor) *Store {
	return &Store{sql: sql}
}

// WithinTx runs fn in a database transaction. The executor must support
// transactions.
func (s *Store) WithinTx(ctx context.Context, fn func(tx domain.RecordStore) error) error {
	txe, ok := s.sql.(infra.TxExecutor)
	if !ok {
		return errors.New("repo: executor does not support transactions")
	}
	return txe.InTx(ctx, func(exec infra.SQLExecutor) error {
		return fn(&Store{sql: exec})
	})
}

var _ domain.RecordStore = (*Store)(nil)
