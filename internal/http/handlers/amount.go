package handlers

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"communityfund/internal/domain"
)

// Amounts cross the API as decimal strings in major units ("12.50") and are
// stored as int64 minor units.
const minorDigits = 2

var maxMajor = decimal.New(math.MaxInt64, -minorDigits)

// toMinor converts a decimal amount to minor units. Zero, negative, overly
// precise and out of range amounts are rejected.
func toMinor(d decimal.Decimal) (int64, error) {
	if !d.IsPositive() {
		return 0, fmt.Errorf("%w: amount must be positive", domain.ErrInvalidAmount)
	}
	if !d.Equal(d.Truncate(minorDigits)) {
		return 0, fmt.Errorf("%w: at most %d decimal places", domain.ErrInvalidAmount, minorDigits)
	}
	if d.GreaterThan(maxMajor) {
		return 0, fmt.Errorf("%w: amount too large", domain.ErrInvalidAmount)
	}
	return d.Shift(minorDigits).IntPart(), nil
}

func formatMinor(v int64) string {
	return decimal.New(v, -minorDigits).StringFixed(minorDigits)
}
