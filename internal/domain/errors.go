package domain

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidComplaintID = errors.New("invalid complaint id")
	ErrInvalidInput       = errors.New("invalid input")
	ErrConflict           = errors.New("conflict")
	ErrStorage            = errors.New("storage error")
	ErrPartialCredit      = errors.New("partial credit")
	ErrComplaintFunded    = errors.New("complaint fully funded")
	ErrDuplicateOperation = errors.New("duplicate operation")
)

var domainErrors = []error{
	ErrNotFound,
	ErrInvalidAmount,
	ErrInvalidComplaintID,
	ErrInvalidInput,
	ErrConflict,
	ErrStorage,
	ErrPartialCredit,
	ErrComplaintFunded,
	ErrDuplicateOperation,
}

// Kind names an error class reported to callers.
type Kind string

const (
	KindInvalidAmount      Kind = "invalid_amount"
	KindInvalidComplaintID Kind = "invalid_complaint_id"
	KindInvalidInput       Kind = "invalid_input"
	KindNotFound           Kind = "not_found"
	KindConflict           Kind = "conflict"
	KindComplaintFunded    Kind = "complaint_funded"
	KindPartialCredit      Kind = "partial_credit"
	KindStorage            Kind = "storage_error"
)

// KindOf classifies err. Unknown errors are treated as storage faults.
func KindOf(err error) Kind {
	switch {
	case errors.Is(err, ErrPartialCredit):
		return KindPartialCredit
	case errors.Is(err, ErrInvalidAmount):
		return KindInvalidAmount
	case errors.Is(err, ErrInvalidComplaintID):
		return KindInvalidComplaintID
	case errors.Is(err, ErrInvalidInput):
		return KindInvalidInput
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrConflict), errors.Is(err, ErrDuplicateOperation):
		return KindConflict
	case errors.Is(err, ErrComplaintFunded):
		return KindComplaintFunded
	default:
		return KindStorage
	}
}

// StorageFault wraps an underlying store failure as ErrStorage. Domain errors
// pass through untouched.
func StorageFault(err error) error {
	if err == nil {
		return nil
	}
	for _, known := range domainErrors {
		if errors.Is(err, known) {
			return err
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: timeout: %w", ErrStorage, err)
	}
	return fmt.Errorf("%w: %w", ErrStorage, err)
}
