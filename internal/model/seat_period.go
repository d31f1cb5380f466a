package model

import "time"

// SeatPeriod is one ledger row: the availability of a single seat in
// a single concrete period.  It is the unit of booking.  CanBooked is
// the authoritative "is this seat free in this window" flag; a false
// value must always be owned by exactly one active reservation (or an
// operator block).  CanOnlineBooked restricts the online channel;
// in-store bookings ignore it.
//
// Fields:
//  ID               – primary key identifier.
//  SeatID           – the seat this row covers.
//  ConcretePeriodID – the concrete period this row covers.
//  CanBooked        – free/claimed flag, flipped only transactionally.
//  CanOnlineBooked  – whether the online channel may claim this row.
//  CreatedAt        – timestamp when the record was created.
//  UpdatedAt        – timestamp when the record was last updated.
type SeatPeriod struct {
	ID               uint64    `json:"id"`                 // seat_periods.id
	SeatID           uint64    `json:"seat_id"`            // seat_periods.seat_id
	ConcretePeriodID uint64    `json:"concrete_period_id"` // seat_periods.concrete_period_id
	CanBooked        bool      `json:"can_booked"`         // seat_periods.can_booked
	CanOnlineBooked  bool      `json:"can_online_booked"`  // seat_periods.can_online_booked
	CreatedAt        time.Time `json:"created_at"`         // seat_periods.created_at
	UpdatedAt        time.Time `json:"updated_at"`         // seat_periods.updated_at
}
