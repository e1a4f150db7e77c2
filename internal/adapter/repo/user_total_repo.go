package repo

import (
	"context"
	"fmt"

	"communityfund/internal/domain"
	"communityfund/internal/infra"
	"communityfund/internal/sqlinline"
)

// GetUserTotal fetches a user's running total.
func (s *Store) GetUserTotal(ctx context.Context, userID string) (*domain.UserTotal, error) {
	var t domain.UserTotal
	row := s.sql.QueryRow(ctx, sqlinline.QSelectUserTotal, userID)
	if err := row.Scan(&t.UserID, &t.TotalContributed, &t.CreatedAt, &t.UpdatedAt); err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// UpsertUserTotalIncrement increments or initializes the total with a single
// INSERT .. ON CONFLICT statement.
func (s *Store) UpsertUserTotalIncrement(ctx context.Context, userID string, delta int64) (*domain.CreditOutcome, error) {
	var (
		t       domain.UserTotal
		created bool
	)
	row := s.sql.QueryRow(ctx, sqlinline.QUpsertUserTotal, userID, delta)
	if err := row.Scan(&t.UserID, &t.TotalContributed, &t.CreatedAt, &t.UpdatedAt, &created); err != nil {
		if infra.IsNumericOverflow(err) {
			return nil, fmt.Errorf("%w: user total out of range", domain.ErrInvalidAmount)
		}
		return nil, err
	}
	kind := domain.CreditIncremented
	if created {
		kind = domain.CreditCreated
	}
	return &domain.CreditOutcome{Kind: kind, Total: t}, nil
}

// ListUserTotals returns every stored total ordered by user id.
func (s *Store) ListUserTotals(ctx context.Context) ([]domain.UserTotal, error) {
	rows, err := s.sql.Query(ctx, sqlinline.QListUserTotals)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.UserTotal
	for rows.Next() {
		var t domain.UserTotal
		if err := rows.Scan(&t.UserID, &t.TotalContributed, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// SwapUserTotal replaces a total only while it still equals expected. Only
// reconciliation calls this.
func (s *Store) SwapUserTotal(ctx context.Context, userID string, expected, total int64) (bool, error) {
	var written int64
	row := s.sql.QueryRow(ctx, sqlinline.QSwapUserTotal, userID, expected, total)
	if err := row.Scan(&written); err != nil {
		return false, err
	}
	return written > 0, nil
}
