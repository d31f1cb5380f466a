package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeatBodyAcceptsFixedCapacities(t *testing.T) {
	for _, capacity := range []uint32{2, 4, 10} {
		b := seatBody{Prefix: "A", No: 1, Capacity: capacity}
		assert.True(t, b.valid(), "capacity %d", capacity)
	}
}

func TestSeatBodyRejectsBadInput(t *testing.T) {
	for _, b := range []seatBody{
		{Prefix: "A", No: 1, Capacity: 3},
		{Prefix: "A", No: 1, Capacity: 0},
		{Prefix: "A", No: 1, Capacity: 12},
		{Prefix: "", No: 1, Capacity: 2},
		{Prefix: "A", No: 0, Capacity: 2},
	} {
		assert.False(t, b.valid(), "%+v", b)
	}
}
