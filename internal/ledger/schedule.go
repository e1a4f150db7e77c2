package ledger

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"
)

// PassReport is the result of one reconciliation pass.
type PassReport struct {
	Totals UserTotalsReport
	Audit  AuditReport
}

// RunPass repairs user totals and audits complaint balances concurrently.
func (r *Reconciler) RunPass(ctx context.Context) (PassReport, error) {
	var report PassReport
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		report.Totals, err = r.ReconcileUserTotals(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		report.Audit, err = r.AuditComplaints(gctx)
		return err
	})
	err := g.Wait()
	return report, err
}

// Run executes a pass immediately and then every interval until ctx is done.
// A failed pass is logged and retried at the next tick.
func (r *Reconciler) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return errors.New("reconcile interval must be positive")
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	r.logger.Info().Dur("interval", interval).Dur("settle", r.settle).Msg("reconciler started")
	for {
		start := time.Now()
		report, err := r.RunPass(ctx)
		switch {
		case ctx.Err() != nil:
			return ctx.Err()
		case err != nil:
			r.logger.Error().Err(err).Msg("reconcile pass failed")
		default:
			r.logger.Info().
				Int("users_checked", report.Totals.Checked).
				Int("users_repaired", report.Totals.Repaired).
				Int("users_deferred", report.Totals.Deferred).
				Int("complaints_checked", report.Audit.Checked).
				Int("complaint_mismatches", len(report.Audit.Mismatches)).
				Dur("took", time.Since(start)).
				Msg("reconcile pass done")
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
