package model

// Channel identifies the sales channel acting on the ledger.  Seat
// eligibility is tracked per channel: online bookings may only claim
// seat-periods flagged can_online_booked, while in-store channels
// (phone and walk-in) may claim any free seat-period.
type Channel string

const (
	ChannelOnline  Channel = "ONLINE"   // self-service online booking
	ChannelInStore Channel = "IN_STORE" // phone or walk-in, handled by staff
)

// Valid reports whether the channel is one of the known values.
func (c Channel) Valid() bool {
	return c == ChannelOnline || c == ChannelInStore
}

// BookingType records how a reservation entered the system.  It is
// finer grained than Channel: both PhoneBooking and WalkInSeating map
// to the in-store channel for eligibility purposes.
type BookingType string

const (
	OnlineBooking BookingType = "ONLINE_BOOKING"
	PhoneBooking  BookingType = "PHONE_BOOKING"
	WalkInSeating BookingType = "WALK_IN_SEATING"
)

// Valid reports whether the booking type is a known value.
func (b BookingType) Valid() bool {
	switch b {
	case OnlineBooking, PhoneBooking, WalkInSeating:
		return true
	}
	return false
}

// Channel returns the sales channel a booking type belongs to.
func (b BookingType) Channel() Channel {
	if b == OnlineBooking {
		return ChannelOnline
	}
	return ChannelInStore
}
