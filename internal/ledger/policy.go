package ledger

import (
	"fmt"
	"strings"
)

// FundedPolicy decides what happens to contributions toward a complaint that
// has nothing left to raise.
type FundedPolicy string

const (
	// FundedAbsorb records the contribution as overpayment.
	FundedAbsorb FundedPolicy = "absorb"
	// FundedReject refuses it with domain.ErrComplaintFunded.
	FundedReject FundedPolicy = "reject"
)

// ParseFundedPolicy parses a configured policy name. Empty means absorb.
func ParseFundedPolicy(v string) (FundedPolicy, error) {
	switch FundedPolicy(strings.ToLower(strings.TrimSpace(v))) {
	case "", FundedAbsorb:
		return FundedAbsorb, nil
	case FundedReject:
		return FundedReject, nil
	default:
		return "", fmt.Errorf("unknown funded policy %q", v)
	}
}
