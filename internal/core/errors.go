package core

import "errors"

// Sentinel errors surfaced to users by the adapters. Stage services wrap
// these with fmt.Errorf("...: %w", ...) so callers can errors.Is on them.
var (
	// ErrNotFound is returned when an order, product line, bill, or record
	// referenced by ID does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidQuantity is returned before storage when a submitted delta is
	// negative, non-numeric, or empty.
	ErrInvalidQuantity = errors.New("invalid quantity")

	// ErrExceedsCapacity is returned when a submission would forward more than
	// the remaining capacity at a stage.
	ErrExceedsCapacity = errors.New("exceeds available quantity")

	// ErrNothingToForward is returned when the upstream stage has forwarded
	// nothing yet, so no forward action is possible at this stage.
	ErrNothingToForward = errors.New("nothing received from previous stage")

	// ErrDuplicatePayment is returned when a payment submission repeats a
	// reference already recorded on the bill.
	ErrDuplicatePayment = errors.New("duplicate payment submission")

	// ErrInvalidTransition is returned on an illegal status change for a
	// bill, billing record, or dispatch record.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrBillNotCompleted is returned when a billing record is requested from
	// a bill that is still pending.
	ErrBillNotCompleted = errors.New("bill is not completed")
)
