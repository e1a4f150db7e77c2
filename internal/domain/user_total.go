package domain

import "time"

// UserTotal is the derived running sum of a user's contributions.
type UserTotal struct {
	UserID           string
	TotalContributed int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Add increments the total by delta. On overflow the total is unchanged and
// ErrInvalidAmount is returned.
func (t *UserTotal) Add(delta int64, now time.Time) error {
	total, err := AddMinor(t.TotalContributed, delta)
	if err != nil {
		return err
	}
	t.TotalContributed = total
	t.UpdatedAt = now
	return nil
}

// CreditKind tells whether a credit created or incremented a total.
type CreditKind string

const (
	CreditCreated     CreditKind = "created"
	CreditIncremented CreditKind = "incremented"
)

// CreditOutcome is the result of an increment-or-initialize upsert.
type CreditOutcome struct {
	Kind  CreditKind
	Total UserTotal
}
