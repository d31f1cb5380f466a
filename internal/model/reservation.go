package model

import (
	"encoding/json"
	"time"
)

// Reservation status values.  A reservation is ACTIVE from allocation
// until it is cancelled; CANCELLED reservations no longer own their
// seat-period rows.
const (
	ReservationActive    = "ACTIVE"
	ReservationCancelled = "CANCELLED"
)

// ReservationLog records the outcome of one successful booking
// attempt.  The seat-period rows it claims (one or two, depending on
// party size) are stored in reservation_seat_periods and are flipped
// to can_booked=false in the same transaction that inserts this row.
// StartOfMeal/EndOfMeal stay nil until the party is actually seated
// and departs; front-of-house flows set them but never touch the seat
// assignment.
//
// Fields:
//  ID               – primary key identifier.
//  ConfirmationCode – opaque reference returned to the caller.
//  PartySize        – number of guests.
//  BookingType      – how the booking entered (online/phone/walk-in).
//  Options          – free-form contact/preferences payload.
//  Status           – ACTIVE or CANCELLED.
//  StartOfMeal      – when the party was seated (nullable).
//  EndOfMeal        – when the party departed (nullable).
//  SeatPeriodIDs    – ledger rows claimed by this reservation.
//  CreatedAt        – creation timestamp.
//  UpdatedAt        – last update timestamp.
type ReservationLog struct {
	ID               uint64          `json:"id"`                 // reservation_logs.id
	ConfirmationCode string          `json:"confirmation_code"`  // reservation_logs.confirmation_code
	PartySize        uint32          `json:"party_size"`         // reservation_logs.party_size
	BookingType      BookingType     `json:"booking_type"`       // reservation_logs.booking_type
	Options          json.RawMessage `json:"options,omitempty"`  // reservation_logs.options
	Status           string          `json:"status"`             // reservation_logs.status
	StartOfMeal      *time.Time      `json:"start_of_meal"`      // reservation_logs.start_of_meal
	EndOfMeal        *time.Time      `json:"end_of_meal"`        // reservation_logs.end_of_meal
	SeatPeriodIDs    []uint64        `json:"seat_period_ids"`    // reservation_seat_periods.seat_period_id
	CreatedAt        time.Time       `json:"created_at"`         // reservation_logs.created_at
	UpdatedAt        time.Time       `json:"updated_at"`         // reservation_logs.updated_at
}
