package domain

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ComplaintStatus enumerates the lifecycle labels of a complaint.
type ComplaintStatus string

const (
	ComplaintStatusOpen     ComplaintStatus = "open"
	ComplaintStatusResolved ComplaintStatus = "resolved"
)

// ComplaintDetails holds the descriptive fields of a complaint. The ledger
// never writes them.
type ComplaintDetails struct {
	Title       string
	Category    string
	Location    string
	Description string
	Image       string
	AddedBy     string
	Status      ComplaintStatus
	DateCreated time.Time
}

// Complaint is a community funding request. Monetary fields are expressed in
// minor currency units.
type Complaint struct {
	ID string
	ComplaintDetails

	OriginalTarget  int64
	TargetRemaining int64
	FundCollected   int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// FundingChange is the result of an atomic balance adjustment.
type FundingChange struct {
	Complaint         Complaint
	PreviousRemaining int64
}

// WasFullyFunded reports whether the complaint had nothing left to raise
// before the adjustment was applied.
func (f FundingChange) WasFullyFunded() bool {
	return f.PreviousRemaining == 0
}

// ValidComplaintID reports whether id is a well-formed complaint identifier.
func ValidComplaintID(id string) bool {
	if strings.TrimSpace(id) == "" {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}

// NewComplaintID returns a fresh complaint identifier.
func NewComplaintID() string {
	return uuid.NewString()
}

// Validate checks the descriptive fields required on creation.
func (d ComplaintDetails) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"title", d.Title},
		{"category", d.Category},
		{"location", d.Location},
		{"description", d.Description},
		{"status", string(d.Status)},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("%w: %s is required", ErrInvalidInput, f.name)
		}
	}
	if d.DateCreated.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	return nil
}

// NewComplaint builds an unfunded complaint with the given target.
func NewComplaint(details ComplaintDetails, target int64) (*Complaint, error) {
	if details.Status == "" {
		details.Status = ComplaintStatusOpen
	}
	if err := details.Validate(); err != nil {
		return nil, err
	}
	if target <= 0 {
		return nil, fmt.Errorf("%w: target must be positive", ErrInvalidAmount)
	}
	now := time.Now().UTC()
	return &Complaint{
		ID:               NewComplaintID(),
		ComplaintDetails: details,
		OriginalTarget:   target,
		TargetRemaining:  target,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// Apply computes the balances that a contribution of amount would produce.
// Overpayment is absorbed into FundCollected; TargetRemaining floors at zero.
func (c Complaint) Apply(amount int64) (fundCollected, targetRemaining int64, err error) {
	if amount <= 0 {
		return 0, 0, ErrInvalidAmount
	}
	fundCollected, err = AddMinor(c.FundCollected, amount)
	if err != nil {
		return 0, 0, err
	}
	targetRemaining = c.TargetRemaining - amount
	if targetRemaining < 0 {
		targetRemaining = 0
	}
	return fundCollected, targetRemaining, nil
}

// Adjust applies signed deltas in place and returns the change. The remaining
// balance never goes below zero. When the collected funds would leave the
// int64 range the complaint is left untouched and ErrInvalidAmount is
// returned.
func (c *Complaint) Adjust(fundDelta, remainingDelta int64) (FundingChange, error) {
	collected, err := AddMinor(c.FundCollected, fundDelta)
	if err != nil {
		return FundingChange{}, err
	}
	remaining, err := AddMinor(c.TargetRemaining, remainingDelta)
	if err != nil {
		return FundingChange{}, err
	}
	prev := c.TargetRemaining
	c.FundCollected = collected
	c.TargetRemaining = max(remaining, 0)
	c.UpdatedAt = time.Now().UTC()
	return FundingChange{Complaint: *c, PreviousRemaining: prev}, nil
}

// AddMinor adds two minor-unit amounts, failing with ErrInvalidAmount
// instead of wrapping around.
func AddMinor(a, b int64) (int64, error) {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		return 0, fmt.Errorf("%w: %d + %d overflows", ErrInvalidAmount, a, b)
	}
	return a + b, nil
}

// FullyFunded reports whether nothing is left to raise.
func (c Complaint) FullyFunded() bool {
	return c.TargetRemaining == 0
}

// CheckFunding verifies the monetary invariant: both balances are
// non-negative and the remaining amount equals the original target minus
// what was collected, floored at zero.
func (c Complaint) CheckFunding() error {
	if c.FundCollected < 0 || c.TargetRemaining < 0 {
		return fmt.Errorf("complaint %s: negative balance (collected=%d remaining=%d)", c.ID, c.FundCollected, c.TargetRemaining)
	}
	want := c.OriginalTarget - c.FundCollected
	if want < 0 {
		want = 0
	}
	if c.TargetRemaining != want {
		return fmt.Errorf("complaint %s: remaining %d does not match target %d minus collected %d", c.ID, c.TargetRemaining, c.OriginalTarget, c.FundCollected)
	}
	return nil
}
