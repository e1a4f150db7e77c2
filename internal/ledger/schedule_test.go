package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"github.com/rs/zerolog"

	"communityfund/internal/adapter/memstore"
	"communityfund/internal/domain"
)

func TestRunPassCombinesReports(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	store := memstore.New()
	complaint := newComplaint(c, store, 100)
	_, err := newCoordinator(store, FundedAbsorb).Contribute(ctx, ContributeRequest{ComplaintID: complaint.ID, ContributorID: user("dina"), Amount: 25})
	c.Assert(err, qt.IsNil)
	drift(c, store, "dina", 25, 1)

	r := NewReconciler(store, zerolog.Nop(), 0)
	r.now = func() time.Time { return time.Now().Add(time.Hour) }
	report, err := r.RunPass(ctx)
	c.Assert(err, qt.IsNil)
	c.Check(report.Totals.Repaired, qt.Equals, 1)
	c.Check(report.Audit.Checked, qt.Equals, 1)
	c.Check(report.Audit.Mismatches, qt.HasLen, 0)
}

type countingStore struct {
	domain.RecordStore
	mu     sync.Mutex
	passes int
}

func (s *countingStore) ListComplaints(ctx context.Context) ([]domain.Complaint, error) {
	s.mu.Lock()
	s.passes++
	s.mu.Unlock()
	return s.RecordStore.ListComplaints(ctx)
}

func (s *countingStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.passes
}

func TestRunRepeatsUntilCancelled(t *testing.T) {
	c := qt.New(t)
	store := &countingStore{RecordStore: memstore.New()}
	r := NewReconciler(store, zerolog.Nop(), 0)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx, 5*time.Millisecond) }()

	deadline := time.After(2 * time.Second)
	for store.count() < 3 {
		select {
		case <-deadline:
			c.Fatalf("only %d passes ran", store.count())
		case <-time.After(time.Millisecond):
		}
	}
	cancel()
	c.Assert(<-done, qt.ErrorIs, context.Canceled)
}

func TestRunRejectsBadInterval(t *testing.T) {
	c := qt.New(t)
	err := NewReconciler(memstore.New(), zerolog.Nop(), 0).Run(context.Background(), 0)
	c.Assert(err, qt.Not(qt.IsNil))
	c.Assert(errors.Is(err, context.Canceled), qt.IsFalse)
}
