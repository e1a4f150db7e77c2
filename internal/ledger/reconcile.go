package ledger

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"communityfund/internal/domain"
)

// DefaultSettleWindow is how long a contributor must be idle before their
// total is repaired, leaving room for credits still in flight.
const DefaultSettleWindow = time.Minute

// Reconciler rebuilds derived state from the contribution ledger.
type Reconciler struct {
	store  domain.RecordStore
	logger zerolog.Logger
	settle time.Duration
	now    func() time.Time
}

func NewReconciler(store domain.RecordStore, logger zerolog.Logger, settle time.Duration) *Reconciler {
	if settle < 0 {
		settle = 0
	}
	return &Reconciler{store: store, logger: logger, settle: settle, now: time.Now}
}

// UserTotalsReport summarizes one user total reconciliation pass.
type UserTotalsReport struct {
	Checked  int
	Repaired int
	Deferred int
}

// ComplaintMismatch describes a complaint whose balance disagrees with the
// ledger.
type ComplaintMismatch struct {
	ComplaintID   string
	FundCollected int64
	LedgerSum     int64
	Reason        string
}

// AuditReport summarizes one complaint audit pass.
type AuditReport struct {
	Checked    int
	Mismatches []ComplaintMismatch
}

type contributorSum struct {
	total int64
	last  time.Time
}

// ReconcileUserTotals recomputes every contributor's total from the ledger
// and replaces stored totals that drifted. A total that changed since it was
// read is left for the next pass.
func (r *Reconciler) ReconcileUserTotals(ctx context.Context) (UserTotalsReport, error) {
	var report UserTotalsReport

	sums := make(map[string]*contributorSum)
	for c, err := range NewLedger(r.store).ListAll(ctx) {
		if err != nil {
			return report, err
		}
		if c.Anonymous() {
			continue
		}
		s, ok := sums[*c.ContributorID]
		if !ok {
			s = &contributorSum{}
			sums[*c.ContributorID] = s
		}
		s.total += c.Amount
		if c.RecordedAt.After(s.last) {
			s.last = c.RecordedAt
		}
	}

	totals, err := r.store.ListUserTotals(ctx)
	if err != nil {
		return report, domain.StorageFault(err)
	}
	stored := make(map[string]domain.UserTotal, len(totals))
	for _, t := range totals {
		stored[t.UserID] = t
	}
	for userID := range stored {
		if _, ok := sums[userID]; !ok {
			sums[userID] = &contributorSum{}
		}
	}

	cutoff := r.now().Add(-r.settle)
	for userID, sum := range sums {
		report.Checked++
		current, ok := stored[userID]
		if ok && current.TotalContributed == sum.total {
			continue
		}
		if !ok && sum.total == 0 {
			continue
		}
		// A credit may land between the ledger scan and the totals read.
		if sum.last.After(cutoff) || current.UpdatedAt.After(cutoff) {
			report.Deferred++
			continue
		}
		swapped, err := r.store.SwapUserTotal(ctx, userID, current.TotalContributed, sum.total)
		if err != nil {
			return report, domain.StorageFault(err)
		}
		if !swapped {
			// A credit landed after the totals were read.
			report.Deferred++
			continue
		}
		report.Repaired++
		r.logger.Warn().
			Str("user_id", userID).
			Int64("stored", current.TotalContributed).
			Int64("ledger", sum.total).
			Msg("user total repaired from ledger")
	}
	return report, nil
}

// AuditComplaints compares each complaint's collected funds with the sum of
// its contributions. Complaint balances are authoritative, so mismatches are
// only reported.
func (r *Reconciler) AuditComplaints(ctx context.Context) (AuditReport, error) {
	var report AuditReport

	sums := make(map[string]int64)
	for c, err := range NewLedger(r.store).ListAll(ctx) {
		if err != nil {
			return report, err
		}
		sums[c.ComplaintID] += c.Amount
	}

	complaints, err := r.store.ListComplaints(ctx)
	if err != nil {
		return report, domain.StorageFault(err)
	}
	for _, complaint := range complaints {
		report.Checked++
		mismatch := ComplaintMismatch{
			ComplaintID:   complaint.ID,
			FundCollected: complaint.FundCollected,
			LedgerSum:     sums[complaint.ID],
		}
		if err := complaint.CheckFunding(); err != nil {
			mismatch.Reason = err.Error()
		} else if complaint.FundCollected != mismatch.LedgerSum {
			mismatch.Reason = "collected funds differ from ledger sum"
		} else {
			continue
		}
		report.Mismatches = append(report.Mismatches, mismatch)
		r.logger.Error().
			Str("complaint_id", complaint.ID).
			Int64("fund_collected", complaint.FundCollected).
			Int64("ledger_sum", mismatch.LedgerSum).
			Msg(mismatch.Reason)
	}
	return report, nil
}
