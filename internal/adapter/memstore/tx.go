package memstore

import (
	"context"
	"iter"
	"strings"
	"time"

	"communityfund/internal/domain"
)

// txStore runs operations while the parent's write lock is already held and
// records how to revert each write.
type txStore struct {
	s    *Store
	undo []func()
}

func (t *txStore) rollback() {
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.undo = nil
}

func (t *txStore) CreateComplaint(ctx context.Context, c *domain.Complaint) error {
	undo, err := t.s.createComplaint(c)
	if err != nil {
		return err
	}
	t.undo = append(t.undo, undo)
	return nil
}

func (t *txStore) GetComplaint(ctx context.Context, id string) (*domain.Complaint, error) {
	return t.s.getComplaint(id)
}

func (t *txStore) FindComplaintByTitle(ctx context.Context, title string) (*domain.Complaint, error) {
	for _, c := range t.s.complaints {
		if strings.EqualFold(c.Title, title) {
			found := c
			return &found, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (t *txStore) ListComplaints(ctx context.Context) ([]domain.Complaint, error) {
	items := make([]domain.Complaint, 0, len(t.s.complaints))
	for _, c := range t.s.complaints {
		items = append(items, c)
	}
	return items, nil
}

func (t *txStore) UpdateComplaintDetails(ctx context.Context, id string, details domain.ComplaintDetails) (*domain.Complaint, error) {
	c, ok := t.s.complaints[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	prev := c
	c.ComplaintDetails = details
	c.UpdatedAt = time.Now().UTC()
	t.s.complaints[id] = c
	t.undo = append(t.undo, func() { t.s.complaints[id] = prev })
	return &c, nil
}

func (t *txStore) DeleteComplaint(ctx context.Context, id string) (bool, error) {
	c, ok := t.s.complaints[id]
	if !ok {
		return false, nil
	}
	delete(t.s.complaints, id)
	t.undo = append(t.undo, func() { t.s.complaints[id] = c })
	return true, nil
}

func (t *txStore) AtomicAdjustComplaint(ctx context.Context, id string, fundDelta, remainingDelta int64) (*domain.FundingChange, error) {
	change, undo, err := t.s.adjust(id, fundDelta, remainingDelta)
	if err != nil {
		return nil, err
	}
	t.undo = append(t.undo, undo)
	return change, nil
}

func (t *txStore) InsertContribution(ctx context.Context, c *domain.Contribution) (string, error) {
	id, err := t.s.insertContribution(c)
	if err != nil {
		return "", err
	}
	t.undo = append(t.undo, t.s.removeLastContribution)
	return id, nil
}

func (t *txStore) FindContributionByKey(ctx context.Context, key string) (*domain.Contribution, error) {
	return t.s.findByKey(key)
}

func (t *txStore) ListContributions(ctx context.Context) iter.Seq2[domain.Contribution, error] {
	return t.list(func(domain.Contribution) bool { return true })
}

func (t *txStore) ListContributionsByContributor(ctx context.Context, userID string) iter.Seq2[domain.Contribution, error] {
	return t.list(func(c domain.Contribution) bool {
		return c.ContributorID != nil && *c.ContributorID == userID
	})
}

func (t *txStore) ListContributionsByComplaint(ctx context.Context, complaintID string) iter.Seq2[domain.Contribution, error] {
	return t.list(func(c domain.Contribution) bool { return c.ComplaintID == complaintID })
}

func (t *txStore) list(keep func(domain.Contribution) bool) iter.Seq2[domain.Contribution, error] {
	return func(yield func(domain.Contribution, error) bool) {
		for _, c := range t.s.filterContributions(keep) {
			if !yield(c, nil) {
				return
			}
		}
	}
}

func (t *txStore) GetUserTotal(ctx context.Context, userID string) (*domain.UserTotal, error) {
	total, ok := t.s.totals[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &total, nil
}

func (t *txStore) UpsertUserTotalIncrement(ctx context.Context, userID string, delta int64) (*domain.CreditOutcome, error) {
	out, undo, err := t.s.upsertTotal(userID, delta)
	if err != nil {
		return nil, err
	}
	t.undo = append(t.undo, undo)
	return out, nil
}

func (t *txStore) ListUserTotals(ctx context.Context) ([]domain.UserTotal, error) {
	items := make([]domain.UserTotal, 0, len(t.s.totals))
	for _, total := range t.s.totals {
		items = append(items, total)
	}
	return items, nil
}

func (t *txStore) SwapUserTotal(ctx context.Context, userID string, expected, total int64) (bool, error) {
	swapped, undo := t.s.swapTotal(userID, expected, total)
	if swapped {
		t.undo = append(t.undo, undo)
	}
	return swapped, nil
}

func (t *txStore) WithinTx(ctx context.Context, fn func(tx domain.RecordStore) error) error {
	return fn(t)
}

var _ domain.RecordStore = (*txStore)(nil)
