package repository

import (
	"context"
	"time"

	"github.com/tavolo/seating/internal/model"
)

// ScheduleStore composes the repositories backing the period
// materializer into the schedule.Store contract.
type ScheduleStore struct {
	Periods     *PeriodRepo
	Seats       *SeatRepo
	SeatPeriods *SeatPeriodRepo
}

// NewScheduleStore builds a ScheduleStore; all repositories must be
// non-nil.
func NewScheduleStore(periods *PeriodRepo, seats *SeatRepo, seatPeriods *SeatPeriodRepo) *ScheduleStore {
	if periods == nil || seats == nil || seatPeriods == nil {
		panic("nil repository passed to NewScheduleStore")
	}
	return &ScheduleStore{Periods: periods, Seats: seats, SeatPeriods: seatPeriods}
}

// GetPeriod delegates to the period repository.
func (s *ScheduleStore) GetPeriod(ctx context.Context, id uint64) (*model.Period, error) {
	return s.Periods.GetPeriod(ctx, id)
}

// EnsureConcretePeriod delegates to the period repository.
func (s *ScheduleStore) EnsureConcretePeriod(ctx context.Context, periodID uint64, start, end time.Time) (uint64, bool, error) {
	return s.Periods.EnsureConcretePeriod(ctx, periodID, start, end)
}

// SeatIDs delegates to the seat repository.
func (s *ScheduleStore) SeatIDs(ctx context.Context) ([]uint64, error) {
	return s.Seats.SeatIDs(ctx)
}

// EnsureSeatPeriods delegates to the seat-period repository.
func (s *ScheduleStore) EnsureSeatPeriods(ctx context.Context, concretePeriodID uint64, seatIDs []uint64, onlineDefault bool) (int64, error) {
	return s.SeatPeriods.EnsureSeatPeriods(ctx, concretePeriodID, seatIDs, onlineDefault)
}
