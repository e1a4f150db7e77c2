package domain

import (
	"context"
	"iter"
)

// ComplaintRepository persists complaints and their funding balances.
type ComplaintRepository interface {
	CreateComplaint(ctx context.Context, c *Complaint) error
	GetComplaint(ctx context.Context, id string) (*Complaint, error)
	FindComplaintByTitle(ctx context.Context, title string) (*Complaint, error)
	ListComplaints(ctx context.Context) ([]Complaint, error)
	UpdateComplaintDetails(ctx context.Context, id string, details ComplaintDetails) (*Complaint, error)
	DeleteComplaint(ctx context.Context, id string) (bool, error)
	// AtomicAdjustComplaint adds fundDelta to FundCollected and
	// remainingDelta to TargetRemaining (floored at zero) in one write.
	AtomicAdjustComplaint(ctx context.Context, id string, fundDelta, remainingDelta int64) (*FundingChange, error)
}

// ContributionRepository is the append-only contribution ledger. The list
// methods return finite sequences ordered by RecordedAt ascending; ranging
// over a sequence again restarts it.
type ContributionRepository interface {
	InsertContribution(ctx context.Context, c *Contribution) (string, error)
	FindContributionByKey(ctx context.Context, key string) (*Contribution, error)
	ListContributions(ctx context.Context) iter.Seq2[Contribution, error]
	ListContributionsByContributor(ctx context.Context, userID string) iter.Seq2[Contribution, error]
	ListContributionsByComplaint(ctx context.Context, complaintID string) iter.Seq2[Contribution, error]
}

// UserTotalRepository stores per-user running totals.
type UserTotalRepository interface {
	GetUserTotal(ctx context.Context, userID string) (*UserTotal, error)
	// UpsertUserTotalIncrement atomically increments an existing total or
	// initializes a missing one to delta. A sum past the int64 range fails
	// with ErrInvalidAmount and writes nothing.
	UpsertUserTotalIncrement(ctx context.Context, userID string, delta int64) (*CreditOutcome, error)
	ListUserTotals(ctx context.Context) ([]UserTotal, error)
	// SwapUserTotal sets the total to total only while the stored value still
	// equals expected; a missing total counts as zero. It reports whether the
	// write happened.
	SwapUserTotal(ctx context.Context, userID string, expected, total int64) (bool, error)
}

// RecordStore groups the three record families behind one handle.
type RecordStore interface {
	ComplaintRepository
	ContributionRepository
	UserTotalRepository

	// WithinTx runs fn against a store whose writes commit together, or not
	// at all when fn returns an error.
	WithinTx(ctx context.Context, fn func(tx RecordStore) error) error
}
