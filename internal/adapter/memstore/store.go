// Package memstore is an in-process Record Store used for development and
// tests. Every write holds the store lock, so each operation is atomic.
package memstore

import (
	"cmp"
	"context"
	"iter"
	"slices"
	"strings"
	"sync"
	"time"

	"communityfund/internal/domain"
)

// Store keeps the three record families in maps guarded by one lock.
type Store struct {
	mu            sync.RWMutex
	complaints    map[string]domain.Complaint
	contributions []domain.Contribution
	byKey         map[string]int
	totals        map[string]domain.UserTotal
}

// New returns an empty store.
func New() *Store {
	return &Store{
		complaints: make(map[string]domain.Complaint),
		byKey:      make(map[string]int),
		totals:     make(map[string]domain.UserTotal),
	}
}

func (s *Store) CreateComplaint(ctx context.Context, c *domain.Complaint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.createComplaint(c)
	return err
}

func (s *Store) GetComplaint(ctx context.Context, id string) (*domain.Complaint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getComplaint(id)
}

func (s *Store) FindComplaintByTitle(ctx context.Context, title string) (*domain.Complaint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.complaints {
		if strings.EqualFold(c.Title, title) {
			found := c
			return &found, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *Store) ListComplaints(ctx context.Context) ([]domain.Complaint, error) {
	s.mu.RLock()
	items := make([]domain.Complaint, 0, len(s.complaints))
	for _, c := range s.complaints {
		items = append(items, c)
	}
	s.mu.RUnlock()
	slices.SortFunc(items, func(a, b domain.Complaint) int {
		if n := a.CreatedAt.Compare(b.CreatedAt); n != 0 {
			return n
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return items, nil
}

func (s *Store) UpdateComplaintDetails(ctx context.Context, id string, details domain.ComplaintDetails) (*domain.Complaint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.complaints[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c.ComplaintDetails = details
	c.UpdatedAt = time.Now().UTC()
	s.complaints[id] = c
	return &c, nil
}

func (s *Store) DeleteComplaint(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.complaints[id]; !ok {
		return false, nil
	}
	delete(s.complaints, id)
	return true, nil
}

func (s *Store) AtomicAdjustComplaint(ctx context.Context, id string, fundDelta, remainingDelta int64) (*domain.FundingChange, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	change, _, err := s.adjust(id, fundDelta, remainingDelta)
	return change, err
}

func (s *Store) InsertContribution(ctx context.Context, c *domain.Contribution) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertContribution(c)
}

func (s *Store) FindContributionByKey(ctx context.Context, key string) (*domain.Contribution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findByKey(key)
}

func (s *Store) ListContributions(ctx context.Context) iter.Seq2[domain.Contribution, error] {
	return s.listContributions(func(domain.Contribution) bool { return true })
}

func (s *Store) ListContributionsByContributor(ctx context.Context, userID string) iter.Seq2[domain.Contribution, error] {
	return s.listContributions(func(c domain.Contribution) bool {
		return c.ContributorID != nil && *c.ContributorID == userID
	})
}

func (s *Store) ListContributionsByComplaint(ctx context.Context, complaintID string) iter.Seq2[domain.Contribution, error] {
	return s.listContributions(func(c domain.Contribution) bool {
		return c.ComplaintID == complaintID
	})
}

func (s *Store) GetUserTotal(ctx context.Context, userID string) (*domain.UserTotal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.totals[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &t, nil
}

func (s *Store) UpsertUserTotalIncrement(ctx context.Context, userID string, delta int64) (*domain.CreditOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out, _, err := s.upsertTotal(userID, delta)
	return out, err
}

func (s *Store) ListUserTotals(ctx context.Context) ([]domain.UserTotal, error) {
	s.mu.RLock()
	items := make([]domain.UserTotal, 0, len(s.totals))
	for _, t := range s.totals {
		items = append(items, t)
	}
	s.mu.RUnlock()
	slices.SortFunc(items, func(a, b domain.UserTotal) int { return cmp.Compare(a.UserID, b.UserID) })
	return items, nil
}

func (s *Store) SwapUserTotal(ctx context.Context, userID string, expected, total int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	swapped, _ := s.swapTotal(userID, expected, total)
	return swapped, nil
}

// WithinTx holds the write lock for the duration of fn and undoes every write
// fn made when it fails.
func (s *Store) WithinTx(ctx context.Context, fn func(tx domain.RecordStore) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx := &txStore{s: s}
	if err := fn(tx); err != nil {
		tx.rollback()
		return err
	}
	return nil
}

func (s *Store) createComplaint(c *domain.Complaint) (func(), error) {
	if _, ok := s.complaints[c.ID]; ok {
		return nil, domain.ErrConflict
	}
	s.complaints[c.ID] = *c
	id := c.ID
	return func() { delete(s.complaints, id) }, nil
}

func (s *Store) getComplaint(id string) (*domain.Complaint, error) {
	c, ok := s.complaints[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

func (s *Store) adjust(id string, fundDelta, remainingDelta int64) (*domain.FundingChange, func(), error) {
	c, ok := s.complaints[id]
	if !ok {
		return nil, nil, domain.ErrNotFound
	}
	prev := c
	change, err := c.Adjust(fundDelta, remainingDelta)
	if err != nil {
		return nil, nil, err
	}
	s.complaints[id] = c
	return &change, func() { s.complaints[id] = prev }, nil
}

func (s *Store) insertContribution(c *domain.Contribution) (string, error) {
	if c.IdempotencyKey != nil {
		if _, ok := s.byKey[*c.IdempotencyKey]; ok {
			return "", domain.ErrDuplicateOperation
		}
		s.byKey[*c.IdempotencyKey] = len(s.contributions)
	}
	s.contributions = append(s.contributions, *c)
	return c.ID, nil
}

func (s *Store) removeLastContribution() {
	last := s.contributions[len(s.contributions)-1]
	if last.IdempotencyKey != nil {
		delete(s.byKey, *last.IdempotencyKey)
	}
	s.contributions = s.contributions[:len(s.contributions)-1]
}

func (s *Store) findByKey(key string) (*domain.Contribution, error) {
	idx, ok := s.byKey[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := s.contributions[idx]
	return &c, nil
}

func (s *Store) upsertTotal(userID string, delta int64) (*domain.CreditOutcome, func(), error) {
	now := time.Now().UTC()
	prev, existed := s.totals[userID]
	if !existed {
		t := domain.UserTotal{UserID: userID, TotalContributed: delta, CreatedAt: now, UpdatedAt: now}
		s.totals[userID] = t
		return &domain.CreditOutcome{Kind: domain.CreditCreated, Total: t}, func() { delete(s.totals, userID) }, nil
	}
	t := prev
	if err := t.Add(delta, now); err != nil {
		return nil, nil, err
	}
	s.totals[userID] = t
	return &domain.CreditOutcome{Kind: domain.CreditIncremented, Total: t}, func() { s.totals[userID] = prev }, nil
}

func (s *Store) swapTotal(userID string, expected, total int64) (bool, func()) {
	now := time.Now().UTC()
	prev, existed := s.totals[userID]
	if prev.TotalContributed != expected {
		return false, nil
	}
	t := prev
	if !existed {
		t = domain.UserTotal{UserID: userID, CreatedAt: now}
	}
	t.TotalContributed = total
	t.UpdatedAt = now
	s.totals[userID] = t
	if !existed {
		return true, func() { delete(s.totals, userID) }
	}
	return true, func() { s.totals[userID] = prev }
}

func (s *Store) snapshot(keep func(domain.Contribution) bool) []domain.Contribution {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filterContributions(keep)
}

func (s *Store) filterContributions(keep func(domain.Contribution) bool) []domain.Contribution {
	var items []domain.Contribution
	for _, c := range s.contributions {
		if keep(c) {
			items = append(items, c)
		}
	}
	slices.SortStableFunc(items, compareContributions)
	return items
}

func (s *Store) listContributions(keep func(domain.Contribution) bool) iter.Seq2[domain.Contribution, error] {
	return func(yield func(domain.Contribution, error) bool) {
		for _, c := range s.snapshot(keep) {
			if !yield(c, nil) {
				return
			}
		}
	}
}

func compareContributions(a, b domain.Contribution) int {
	if n := a.RecordedAt.Compare(b.RecordedAt); n != 0 {
		return n
	}
	return cmp.Compare(a.ID, b.ID)
}

var _ domain.RecordStore = (*Store)(nil)
