// Package queue defines message payloads exchanged over the message
// broker and the background audit consumer.
package queue

// Queue names. One durable queue per event kind.
const (
	AllocatedQueue = "reservation.allocated"
	ReleasedQueue  = "reservation.released"
)

// ReservationAllocatedEvent is published when the allocation engine
// commits a booking.  It carries enough information for downstream
// consumers to log, notify, or feed analytics without querying the
// primary database.
type ReservationAllocatedEvent struct {
	ReservationID    uint64   `json:"reservation_id"`
	ConfirmationCode string   `json:"confirmation_code"`
	PartySize        uint32   `json:"party_size"`
	BookingType      string   `json:"booking_type"`
	ConcretePeriodID uint64   `json:"concrete_period_id"`
	PeriodStartsAt   string   `json:"period_starts_at"`
	SeatLabels       []string `json:"seats"`
	AllocatedAt      string   `json:"allocated_at"`
}

// ReservationReleasedEvent is published when a reservation is
// cancelled and its seat-periods return to the free pool.
type ReservationReleasedEvent struct {
	ReservationID uint64   `json:"reservation_id"`
	SeatPeriodIDs []uint64 `json:"seat_period_ids"`
	ReleasedAt    string   `json:"released_at"`
}
