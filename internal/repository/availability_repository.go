package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/tavolo/seating/internal/availability"
	"github.com/tavolo/seating/internal/model"
)

// AvailabilityRepo implements availability.LedgerReader: the read
// path aggregating seat capacity per concrete period directly from
// the ledger.  It is only used on cache misses; it never mutates.
type AvailabilityRepo struct {
	db *sql.DB
}

// NewAvailabilityRepo constructs an AvailabilityRepo with the given
// DB handle.
func NewAvailabilityRepo(db *sql.DB) *AvailabilityRepo {
	return &AvailabilityRepo{db: db}
}

// PeriodAvailability aggregates total and remaining capacity per
// concrete period starting in [from, to], ascending by start.  The
// inner join drops periods with no ledger row matching the channel
// filter, which is exactly the "omit, don't emit zero" contract.
func (r *AvailabilityRepo) PeriodAvailability(ctx context.Context, ch model.Channel, from, to time.Time) ([]availability.PeriodAvailability, error) {
	q := `SELECT cp.id, cp.started_at, cp.ended_at,
	             COALESCE(SUM(s.capacity), 0),
	             COALESCE(SUM(CASE WHEN sp.can_booked = 1 THEN s.capacity ELSE 0 END), 0)
	      FROM concrete_periods cp
	      JOIN seat_periods sp ON sp.concrete_period_id = cp.id
	      JOIN seats s ON s.id = sp.seat_id
	      WHERE cp.started_at >= ? AND cp.started_at <= ?`
	if ch == model.ChannelOnline {
		q += ` AND sp.can_online_booked = 1`
	}
	q += ` GROUP BY cp.id, cp.started_at, cp.ended_at
	       ORDER BY cp.started_at, cp.id`
	rows, err := r.db.QueryContext(ctx, q, from.UTC(), to.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]availability.PeriodAvailability, 0)
	for rows.Next() {
		var p availability.PeriodAvailability
		if err := rows.Scan(&p.ConcretePeriodID, &p.StartedAt, &p.EndedAt, &p.TotalCapacity, &p.AvailableCapacity); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
