// Package ledger keeps every complaint's funding balance consistent with the
// contribution history and the contributors' running totals.
//
// A Contribute call moves through these stages:
//
//	Validating -> AdjustingComplaint -> RecordingContribution -> CreditingUser -> Done
//
// Only Validating can abort cleanly. Adjusting the balance and recording the
// contribution commit together in one store transaction; crediting the user
// runs afterwards and its failure is reported as domain.ErrPartialCredit
// without reverting the funding.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"communityfund/internal/domain"
)

// Stage is a step of the Contribute state machine.
type Stage int

const (
	StageValidating Stage = iota
	StageAdjustingComplaint
	StageRecordingContribution
	StageCreditingUser
	StageDone
	StageAborted
)

func (s Stage) String() string {
	switch s {
	case StageValidating:
		return "validating"
	case StageAdjustingComplaint:
		return "adjusting_complaint"
	case StageRecordingContribution:
		return "recording_contribution"
	case StageCreditingUser:
		return "crediting_user"
	case StageDone:
		return "done"
	case StageAborted:
		return "aborted"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// ContributeRequest is one contribution toward a complaint. Amount is in
// minor currency units. ContributorID may be nil for anonymous payments.
type ContributeRequest struct {
	ComplaintID    string
	ContributorID  *string
	Amount         int64
	IdempotencyKey string
}

// Outcome reports the balances after a contribution.
type Outcome struct {
	ComplaintID     string
	FundCollected   int64
	TargetRemaining int64
	Contribution    domain.Contribution
	Credit          *domain.CreditOutcome
	// Replayed is set when the idempotency key matched an earlier
	// contribution and nothing was written. Replays never report credit
	// state.
	Replayed bool
	Stage    Stage
}

// Options configures a Coordinator.
type Options struct {
	Policy FundedPolicy
	Logger zerolog.Logger
}

// Coordinator executes Contribute requests. It is safe for concurrent use and
// never retries on its own.
type Coordinator struct {
	store  domain.RecordStore
	policy FundedPolicy
	logger zerolog.Logger
}

func NewCoordinator(store domain.RecordStore, opts Options) *Coordinator {
	policy := opts.Policy
	if policy == "" {
		policy = FundedAbsorb
	}
	return &Coordinator{store: store, policy: policy, logger: opts.Logger}
}

// Ledger returns the contribution ledger backed by the coordinator's store.
func (c *Coordinator) Ledger() *Ledger {
	return NewLedger(c.store)
}

// Totals returns the user total aggregate backed by the coordinator's store.
func (c *Coordinator) Totals() *Totals {
	return NewTotals(c.store)
}

// Complaint returns the current state of a complaint.
func (c *Coordinator) Complaint(ctx context.Context, id string) (*domain.Complaint, error) {
	if !domain.ValidComplaintID(id) {
		return nil, domain.ErrInvalidComplaintID
	}
	complaint, err := c.store.GetComplaint(ctx, id)
	if err != nil {
		return nil, domain.StorageFault(err)
	}
	return complaint, nil
}

// errReplay carries an already recorded contribution out of the transaction.
type errReplay struct {
	existing *domain.Contribution
}

func (e *errReplay) Error() string { return "contribution already recorded" }

// Contribute applies one contribution. On success it returns the new
// balances. When everything but the user credit succeeded it returns the
// outcome together with an error wrapping domain.ErrPartialCredit.
func (c *Coordinator) Contribute(ctx context.Context, req ContributeRequest) (*Outcome, error) {
	req.ComplaintID = strings.TrimSpace(req.ComplaintID)
	req.ContributorID = normalizeContributor(req.ContributorID)
	req.IdempotencyKey = strings.TrimSpace(req.IdempotencyKey)

	log := c.logger.With().
		Str("complaint_id", req.ComplaintID).
		Str("contributor_id", contributorLabel(req.ContributorID)).
		Int64("amount", req.Amount).
		Logger()

	stage := StageValidating
	log.Debug().Stringer("stage", stage).Msg("contribute")

	complaint, existing, err := c.validate(ctx, req)
	if err != nil {
		log.Debug().Err(err).Stringer("stage", StageAborted).Msg("contribute rejected")
		return nil, err
	}
	if existing != nil {
		return c.replay(ctx, req, existing)
	}

	var (
		change       *domain.FundingChange
		contribution *domain.Contribution
	)
	err = c.store.WithinTx(ctx, func(tx domain.RecordStore) error {
		if req.IdempotencyKey != "" {
			found, err := tx.FindContributionByKey(ctx, req.IdempotencyKey)
			if err == nil {
				return &errReplay{existing: found}
			}
			if !errors.Is(err, domain.ErrNotFound) {
				return err
			}
		}

		stage = StageAdjustingComplaint
		log.Debug().Stringer("stage", stage).Msg("contribute")
		var err error
		change, err = tx.AtomicAdjustComplaint(ctx, req.ComplaintID, req.Amount, -req.Amount)
		if err != nil {
			return err
		}
		if c.policy == FundedReject && change.WasFullyFunded() {
			return domain.ErrComplaintFunded
		}
		if req.ContributorID != nil {
			if err := ensureCreditFits(ctx, tx, *req.ContributorID, req.Amount); err != nil {
				return err
			}
		}

		stage = StageRecordingContribution
		log.Debug().Stringer("stage", stage).Msg("contribute")
		contribution, err = NewLedger(tx).Append(ctx, Entry{
			ComplaintID:    req.ComplaintID,
			ContributorID:  req.ContributorID,
			Amount:         req.Amount,
			Category:       complaint.Category,
			Title:          complaint.Title,
			IdempotencyKey: req.IdempotencyKey,
		})
		return err
	})
	if err != nil {
		var replay *errReplay
		switch {
		case errors.As(err, &replay):
			return c.replay(ctx, req, replay.existing)
		case errors.Is(err, domain.ErrDuplicateOperation) && req.IdempotencyKey != "":
			found, findErr := c.store.FindContributionByKey(ctx, req.IdempotencyKey)
			if findErr != nil {
				return nil, domain.StorageFault(findErr)
			}
			return c.replay(ctx, req, found)
		}
		err = domain.StorageFault(err)
		if errors.Is(err, domain.ErrStorage) {
			log.Error().Err(err).Stringer("stage", stage).Msg("contribute failed, nothing committed")
		}
		return nil, err
	}

	out := &Outcome{
		ComplaintID:     req.ComplaintID,
		FundCollected:   change.Complaint.FundCollected,
		TargetRemaining: change.Complaint.TargetRemaining,
		Contribution:    *contribution,
		Stage:           StageDone,
	}

	if req.ContributorID != nil {
		stage = StageCreditingUser
		log.Debug().Stringer("stage", stage).Msg("contribute")
		credit, err := NewTotals(c.store).Credit(ctx, *req.ContributorID, req.Amount)
		if err != nil {
			out.Stage = StageCreditingUser
			log.Warn().Err(err).Str("contribution_id", contribution.ID).Msg("contribution recorded but user total not credited")
			return out, fmt.Errorf("%w: %w", domain.ErrPartialCredit, err)
		}
		out.Credit = credit
	}

	log.Info().
		Str("contribution_id", contribution.ID).
		Int64("fund_collected", out.FundCollected).
		Int64("target_remaining", out.TargetRemaining).
		Msg("contribution recorded")
	return out, nil
}

// RetryCredit re-runs only the crediting step for a contribution that ended
// in partial credit.
func (c *Coordinator) RetryCredit(ctx context.Context, contribution domain.Contribution) (*domain.CreditOutcome, error) {
	if contribution.Anonymous() {
		return nil, fmt.Errorf("%w: contribution has no contributor", domain.ErrInvalidInput)
	}
	return NewTotals(c.store).Credit(ctx, *contribution.ContributorID, contribution.Amount)
}

func (c *Coordinator) validate(ctx context.Context, req ContributeRequest) (*domain.Complaint, *domain.Contribution, error) {
	if !domain.ValidComplaintID(req.ComplaintID) {
		return nil, nil, domain.ErrInvalidComplaintID
	}
	if req.Amount <= 0 {
		return nil, nil, domain.ErrInvalidAmount
	}
	complaint, err := c.store.GetComplaint(ctx, req.ComplaintID)
	if err != nil {
		return nil, nil, domain.StorageFault(err)
	}
	if req.IdempotencyKey != "" {
		existing, err := c.store.FindContributionByKey(ctx, req.IdempotencyKey)
		switch {
		case err == nil:
			return complaint, existing, nil
		case !errors.Is(err, domain.ErrNotFound):
			return nil, nil, domain.StorageFault(err)
		}
	}
	if c.policy == FundedReject && complaint.FullyFunded() {
		return nil, nil, domain.ErrComplaintFunded
	}
	return complaint, nil, nil
}

// ensureCreditFits rejects a contribution whose credit would push the
// contributor's total past the int64 range, so nothing commits.
func ensureCreditFits(ctx context.Context, tx domain.RecordStore, userID string, amount int64) error {
	total, err := tx.GetUserTotal(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	_, err = domain.AddMinor(total.TotalContributed, amount)
	return err
}

// replay answers a repeated request with the outcome of the original one. A
// key reused with different parameters is a conflict. The replay reports the
// complaint's current balances only: Credit stays nil even when the original
// call ended in partial credit. Missing credits are restored by the
// Reconciler or by RetryCredit.
func (c *Coordinator) replay(ctx context.Context, req ContributeRequest, existing *domain.Contribution) (*Outcome, error) {
	if existing.ComplaintID != req.ComplaintID || existing.Amount != req.Amount || contributorLabel(existing.ContributorID) != contributorLabel(req.ContributorID) {
		return nil, fmt.Errorf("%w: idempotency key %q was used for a different contribution", domain.ErrDuplicateOperation, req.IdempotencyKey)
	}
	complaint, err := c.store.GetComplaint(ctx, req.ComplaintID)
	if err != nil {
		return nil, domain.StorageFault(err)
	}
	c.logger.Info().
		Str("complaint_id", req.ComplaintID).
		Str("contribution_id", existing.ID).
		Msg("contribution replayed")
	return &Outcome{
		ComplaintID:     complaint.ID,
		FundCollected:   complaint.FundCollected,
		TargetRemaining: complaint.TargetRemaining,
		Contribution:    *existing,
		Replayed:        true,
		Stage:           StageDone,
	}, nil
}

func contributorLabel(id *string) string {
	if id == nil {
		return ""
	}
	return *id
}
