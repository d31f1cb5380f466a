// Package repository implements data access for the seating service
// on top of database/sql.  Sentinel errors defined here (and the
// interface sentinels in internal/allocation and internal/schedule)
// let handlers distinguish failure scenarios without inspecting SQL
// errors.
package repository

import "errors"

// ErrSeatNotFound is returned when a seat lookup yields no rows.
var ErrSeatNotFound = errors.New("seat not found")

// ErrSeatPeriodNotFound is returned when a ledger row lookup yields
// no rows.
var ErrSeatPeriodNotFound = errors.New("seat period not found")

// ErrReservationNotFound is returned when a reservation log lookup
// yields no rows.
var ErrReservationNotFound = errors.New("reservation not found")

// ErrConflict is returned when an operation cannot proceed because of
// dependent records, e.g. deleting a seat that has ledger rows.
var ErrConflict = errors.New("conflict")
