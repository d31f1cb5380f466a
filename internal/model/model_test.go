package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tavolo/seating/internal/model"
)

func TestBookingTypeChannel(t *testing.T) {
	assert.Equal(t, model.ChannelOnline, model.OnlineBooking.Channel())
	assert.Equal(t, model.ChannelInStore, model.PhoneBooking.Channel())
	assert.Equal(t, model.ChannelInStore, model.WalkInSeating.Channel())
}

func TestBookingTypeValid(t *testing.T) {
	assert.True(t, model.OnlineBooking.Valid())
	assert.False(t, model.BookingType("FAX_BOOKING").Valid())
}

func TestSeatLabel(t *testing.T) {
	assert.Equal(t, "A2", model.Seat{Prefix: "A", No: 2}.Label())
	assert.Equal(t, "C12", model.Seat{Prefix: "C", No: 12}.Label())
	assert.Equal(t, "B0", model.Seat{Prefix: "B", No: 0}.Label())
}

func TestIntervalUnitValid(t *testing.T) {
	assert.True(t, model.IntervalWeek.Valid())
	assert.False(t, model.IntervalUnit("FORTNIGHT").Valid())
}
