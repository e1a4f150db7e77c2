package domain

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// Contribution is one immutable payment toward a complaint. Amount is in minor
// currency units.
type Contribution struct {
	ID             string
	ComplaintID    string
	ContributorID  *string
	Amount         int64
	Title          string
	Category       string
	IdempotencyKey *string
	RecordedAt     time.Time
}

// Anonymous reports whether the contribution carries no contributor.
func (c Contribution) Anonymous() bool {
	return c.ContributorID == nil || *c.ContributorID == ""
}

// NewContributionID returns a time-ordered identifier together with the
// timestamp it encodes. Identifiers minted in the same millisecond are
// strictly increasing, so ordering by id matches ordering by RecordedAt.
func NewContributionID() (string, time.Time) {
	id := ulid.Make()
	return id.String(), ulid.Time(id.Time()).UTC()
}
