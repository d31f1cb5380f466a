// Package allocation implements the seat-period allocation engine:
// it matches a party size to one or more physically adjacent seats in
// a concrete period and claims them in a single ledger transaction.
package allocation

import "errors"

// Sentinel errors making up the allocation failure taxonomy.  Handlers
// translate these into HTTP statuses; everything else coming out of
// the engine is a store failure and is surfaced as-is.
var (
	// ErrPeriodNotFound is returned when the target concrete period
	// does not exist.
	ErrPeriodNotFound = errors.New("concrete period not found")

	// ErrUnsupportedPartySize is returned for party sizes outside the
	// fixed seat buckets (supported: 1-4 and 7-10).
	ErrUnsupportedPartySize = errors.New("unsupported party size")

	// ErrNoSuitableSeat is returned when no free, channel-eligible
	// seat or sibling pair exists in the target period.
	ErrNoSuitableSeat = errors.New("no suitable seat available")

	// ErrConcurrentConflict is returned when a concurrent transaction
	// claimed one of the chosen rows first.  Callers may retry; a
	// fresh read will pick a different candidate or fail with
	// ErrNoSuitableSeat.
	ErrConcurrentConflict = errors.New("seat was claimed concurrently")

	// ErrReservationNotFound is returned by Release when the
	// reservation does not exist.
	ErrReservationNotFound = errors.New("reservation not found")

	// ErrAlreadyReleased is returned by Release when the reservation
	// was cancelled before.
	ErrAlreadyReleased = errors.New("reservation already released")
)
