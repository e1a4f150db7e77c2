package ledger

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"communityfund/internal/domain"
)

// Entry describes a contribution to append to the ledger.
type Entry struct {
	ComplaintID    string
	ContributorID  *string
	Amount         int64
	Category       string
	Title          string
	IdempotencyKey string
}

// Ledger is the append-only history of contributions.
type Ledger struct {
	repo domain.ContributionRepository
}

func NewLedger(repo domain.ContributionRepository) *Ledger {
	return &Ledger{repo: repo}
}

// Append writes a new immutable contribution. It never looks at the funding
// state of the complaint.
func (l *Ledger) Append(ctx context.Context, e Entry) (*domain.Contribution, error) {
	if e.Amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	if strings.TrimSpace(e.ComplaintID) == "" {
		return nil, domain.ErrInvalidComplaintID
	}
	id, recordedAt := domain.NewContributionID()
	c := &domain.Contribution{
		ID:            id,
		ComplaintID:   e.ComplaintID,
		ContributorID: normalizeContributor(e.ContributorID),
		Amount:        e.Amount,
		Title:         e.Title,
		Category:      e.Category,
		RecordedAt:    recordedAt,
	}
	if key := strings.TrimSpace(e.IdempotencyKey); key != "" {
		c.IdempotencyKey = &key
	}
	if _, err := l.repo.InsertContribution(ctx, c); err != nil {
		return nil, domain.StorageFault(fmt.Errorf("append contribution: %w", err))
	}
	return c, nil
}

// ListByContributor returns the contributions of userID, oldest first.
func (l *Ledger) ListByContributor(ctx context.Context, userID string) iter.Seq2[domain.Contribution, error] {
	return wrapFaults(l.repo.ListContributionsByContributor(ctx, userID))
}

// ListByComplaint returns the contributions toward one complaint, oldest first.
func (l *Ledger) ListByComplaint(ctx context.Context, complaintID string) iter.Seq2[domain.Contribution, error] {
	return wrapFaults(l.repo.ListContributionsByComplaint(ctx, complaintID))
}

// ListAll returns every contribution, oldest first.
func (l *Ledger) ListAll(ctx context.Context) iter.Seq2[domain.Contribution, error] {
	return wrapFaults(l.repo.ListContributions(ctx))
}

// Collect drains a sequence into a slice, stopping at the first error.
func Collect(seq iter.Seq2[domain.Contribution, error]) ([]domain.Contribution, error) {
	var items []domain.Contribution
	for c, err := range seq {
		if err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, nil
}

func wrapFaults(seq iter.Seq2[domain.Contribution, error]) iter.Seq2[domain.Contribution, error] {
	return func(yield func(domain.Contribution, error) bool) {
		for c, err := range seq {
			if err != nil {
				yield(domain.Contribution{}, domain.StorageFault(err))
				return
			}
			if !yield(c, nil) {
				return
			}
		}
	}
}

func normalizeContributor(id *string) *string {
	if id == nil {
		return nil
	}
	v := strings.TrimSpace(*id)
	if v == "" {
		return nil
	}
	return &v
}
