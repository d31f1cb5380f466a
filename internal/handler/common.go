package handler // handler defines the HTTP handlers of the seating API

import (
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/tavolo/seating/internal/model"
)

// Role values carried in the JWT "role" claim.  ONLINE tokens belong
// to guest-facing clients; STAFF tokens belong to host-stand
// terminals and back-office tooling.
const (
	RoleOnline = "ONLINE"
	RoleStaff  = "STAFF"
)

// currentRole extracts the role claim that JWTAuth stored in the
// context.  Returns an error when the claim is missing or not a
// string.
func currentRole(c echo.Context) (string, error) {
	v := c.Get("role")
	if s, ok := v.(string); ok && s != "" {
		return s, nil
	}
	return "", errors.New("invalid role in context")
}

// bookingTypeForRole validates that the caller's role may record the
// given booking type.  ONLINE clients can only create online bookings;
// STAFF may record any type (phone, walk-in, or an online booking
// taken over the counter).
func bookingTypeForRole(role string, bt model.BookingType) bool {
	if role == RoleStaff {
		return true
	}
	return bt == model.OnlineBooking
}
