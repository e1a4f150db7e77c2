package ledger

import (
	"context"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"github.com/rs/zerolog"

	"communityfund/internal/adapter/memstore"
	"communityfund/internal/domain"
)

func drift(c *qt.C, store domain.RecordStore, userID string, from, to int64) {
	c.Helper()
	swapped, err := store.SwapUserTotal(context.Background(), userID, from, to)
	c.Assert(err, qt.IsNil)
	c.Assert(swapped, qt.IsTrue)
}

// creditBeforeSwap contributes on behalf of the swapped user just before the
// reconciler writes its repaired total.
type creditBeforeSwap struct {
	domain.RecordStore
	coord       *Coordinator
	complaintID string
	amount      int64
	fired       bool
}

func (s *creditBeforeSwap) SwapUserTotal(ctx context.Context, userID string, expected, total int64) (bool, error) {
	if !s.fired {
		s.fired = true
		if _, err := s.coord.Contribute(ctx, ContributeRequest{ComplaintID: s.complaintID, ContributorID: &userID, Amount: s.amount}); err != nil {
			return false, err
		}
	}
	return s.RecordStore.SwapUserTotal(ctx, userID, expected, total)
}

func TestReconcileUserTotalsKeepsConcurrentCredit(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	store := memstore.New()
	complaint := newComplaint(c, store, 100)
	coord := newCoordinator(store, FundedAbsorb)

	_, err := coord.Contribute(ctx, ContributeRequest{ComplaintID: complaint.ID, ContributorID: user("erin"), Amount: 10})
	c.Assert(err, qt.IsNil)
	drift(c, store, "erin", 10, 0)

	r := NewReconciler(&creditBeforeSwap{RecordStore: store, coord: coord, complaintID: complaint.ID, amount: 5}, zerolog.Nop(), time.Millisecond)
	r.now = func() time.Time { return time.Now().Add(time.Hour) }
	report, err := r.ReconcileUserTotals(ctx)
	c.Assert(err, qt.IsNil)
	c.Assert(report, qt.DeepEquals, UserTotalsReport{Checked: 1, Repaired: 0, Deferred: 1})

	erin, err := store.GetUserTotal(ctx, "erin")
	c.Assert(err, qt.IsNil)
	c.Assert(erin.TotalContributed, qt.Equals, int64(5))

	report, err = r.ReconcileUserTotals(ctx)
	c.Assert(err, qt.IsNil)
	c.Assert(report.Repaired, qt.Equals, 1)
	erin, err = store.GetUserTotal(ctx, "erin")
	c.Assert(err, qt.IsNil)
	c.Assert(erin.TotalContributed, qt.Equals, int64(15))
}

func TestReconcileUserTotalsRepairsDrift(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	store := memstore.New()
	complaint := newComplaint(c, store, 500)
	coord := newCoordinator(store, FundedAbsorb)

	for _, amount := range []int64{10, 20, 30} {
		_, err := coord.Contribute(ctx, ContributeRequest{ComplaintID: complaint.ID, ContributorID: user("alice"), Amount: amount})
		c.Assert(err, qt.IsNil)
	}
	_, err := coord.Contribute(ctx, ContributeRequest{ComplaintID: complaint.ID, ContributorID: user("bob"), Amount: 7})
	c.Assert(err, qt.IsNil)

	drift(c, store, "alice", 60, 5)
	drift(c, store, "ghost", 0, 99)

	r := NewReconciler(store, zerolog.Nop(), 0)
	r.now = func() time.Time { return time.Now().Add(time.Hour) }
	report, err := r.ReconcileUserTotals(ctx)
	c.Assert(err, qt.IsNil)
	c.Assert(report.Checked, qt.Equals, 3)
	c.Assert(report.Repaired, qt.Equals, 2)
	c.Assert(report.Deferred, qt.Equals, 0)

	alice, err := store.GetUserTotal(ctx, "alice")
	c.Assert(err, qt.IsNil)
	c.Assert(alice.TotalContributed, qt.Equals, int64(60))
	ghost, err := store.GetUserTotal(ctx, "ghost")
	c.Assert(err, qt.IsNil)
	c.Assert(ghost.TotalContributed, qt.Equals, int64(0))
	bob, err := store.GetUserTotal(ctx, "bob")
	c.Assert(err, qt.IsNil)
	c.Assert(bob.TotalContributed, qt.Equals, int64(7))
}

func TestReconcileUserTotalsDefersRecentActivity(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	store := memstore.New()
	complaint := newComplaint(c, store, 100)

	base := &faultStore{RecordStore: store, failUpsert: context.DeadlineExceeded}
	_, err := newCoordinator(base, FundedAbsorb).Contribute(ctx, ContributeRequest{ComplaintID: complaint.ID, ContributorID: user("carol"), Amount: 12})
	c.Assert(err, qt.ErrorIs, domain.ErrPartialCredit)

	r := NewReconciler(store, zerolog.Nop(), time.Hour)
	report, err := r.ReconcileUserTotals(ctx)
	c.Assert(err, qt.IsNil)
	c.Assert(report.Deferred, qt.Equals, 1)
	_, err = store.GetUserTotal(ctx, "carol")
	c.Assert(err, qt.ErrorIs, domain.ErrNotFound)

	r.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	report, err = r.ReconcileUserTotals(ctx)
	c.Assert(err, qt.IsNil)
	c.Assert(report.Repaired, qt.Equals, 1)
	carol, err := store.GetUserTotal(ctx, "carol")
	c.Assert(err, qt.IsNil)
	c.Assert(carol.TotalContributed, qt.Equals, int64(12))
}

func TestAuditComplaintsReportsMismatch(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	store := memstore.New()
	healthy := newComplaint(c, store, 100)
	drifted := newComplaint(c, store, 100)
	coord := newCoordinator(store, FundedAbsorb)

	_, err := coord.Contribute(ctx, ContributeRequest{ComplaintID: healthy.ID, Amount: 40})
	c.Assert(err, qt.IsNil)
	_, err = store.AtomicAdjustComplaint(ctx, drifted.ID, 10, -10)
	c.Assert(err, qt.IsNil)

	report, err := NewReconciler(store, zerolog.Nop(), 0).AuditComplaints(ctx)
	c.Assert(err, qt.IsNil)
	c.Assert(report.Checked, qt.Equals, 2)
	c.Assert(report.Mismatches, qt.HasLen, 1)
	c.Assert(report.Mismatches[0].ComplaintID, qt.Equals, drifted.ID)
	c.Assert(report.Mismatches[0].LedgerSum, qt.Equals, int64(0))
}
