package model

import (
	"strconv"
	"time"
)

// Seat describes a physical table in the restaurant.  Seats are
// uniquely identified by their zone prefix and number within the
// zone.  Capacity is the number of guests the seat can serve on its
// own; sibling links declare which neighbouring seats it may be
// combined with to serve a larger party.
//
// Fields:
//  ID        – primary key identifier.
//  Prefix    – zone letter (e.g. "A" for the window row).
//  No        – seat number within the zone (1-based).
//  Capacity  – guest capacity of the seat alone (2, 4 or 10).
//  Siblings  – IDs of seats this seat may be combined with.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Seat struct {
	ID        uint64    `json:"id"`         // seats.id
	Prefix    string    `json:"prefix"`     // seats.zone_prefix
	No        uint32    `json:"no"`         // seats.seat_no
	Capacity  uint32    `json:"capacity"`   // seats.capacity
	Siblings  []uint64  `json:"siblings"`   // seat_siblings.sibling_seat_id
	CreatedAt time.Time `json:"created_at"` // seats.created_at
	UpdatedAt time.Time `json:"updated_at"` // seats.updated_at
}

// Label renders the human-readable seat name, e.g. "A2".
func (s Seat) Label() string {
	return s.Prefix + strconv.FormatUint(uint64(s.No), 10)
}
