package ledger

import (
	"context"
	"fmt"
	"strings"

	"communityfund/internal/domain"
)

// Totals maintains the per-user running sum of contributions.
type Totals struct {
	repo domain.UserTotalRepository
}

func NewTotals(repo domain.UserTotalRepository) *Totals {
	return &Totals{repo: repo}
}

// Credit adds amount to the user's total, creating the record on first use.
// The store performs increment-or-initialize as one atomic operation, so
// concurrent first-time credits for the same user never produce two rows.
func (t *Totals) Credit(ctx context.Context, userID string, amount int64) (*domain.CreditOutcome, error) {
	if amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrInvalidInput)
	}
	out, err := t.repo.UpsertUserTotalIncrement(ctx, userID, amount)
	if err != nil {
		return nil, domain.StorageFault(fmt.Errorf("credit user total: %w", err))
	}
	return out, nil
}

// Get returns the stored total for userID.
func (t *Totals) Get(ctx context.Context, userID string) (*domain.UserTotal, error) {
	total, err := t.repo.GetUserTotal(ctx, strings.TrimSpace(userID))
	if err != nil {
		return nil, domain.StorageFault(err)
	}
	return total, nil
}
