package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/tavolo/seating/internal/model"
)

// SeatPeriodRepo provides access to the ledger rows outside of
// allocation transactions: materialization fan-out, admin listing and
// channel-eligibility edits.  The transactional claim/release path
// lives in Ledger.
type SeatPeriodRepo struct {
	db *sql.DB
}

// NewSeatPeriodRepo constructs a SeatPeriodRepo with the given DB
// handle.
func NewSeatPeriodRepo(db *sql.DB) *SeatPeriodRepo {
	return &SeatPeriodRepo{db: db}
}

// EnsureSeatPeriods inserts missing ledger rows for a concrete
// period, one per seat, defaulting can_booked=true.  The
// (seat_id, concrete_period_id) unique key plus INSERT IGNORE makes
// re-runs no-ops; the returned count is the number of rows actually
// inserted.
func (r *SeatPeriodRepo) EnsureSeatPeriods(ctx context.Context, concretePeriodID uint64, seatIDs []uint64, onlineDefault bool) (int64, error) {
	if len(seatIDs) == 0 {
		return 0, nil
	}
	query := `INSERT IGNORE INTO seat_periods (seat_id, concrete_period_id, can_booked, can_online_booked) VALUES `
	args := make([]interface{}, 0, len(seatIDs)*4)
	for i, sid := range seatIDs {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, 1, ?)"
		args = append(args, sid, concretePeriodID, onlineDefault)
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// ListByPeriod returns all ledger rows of a concrete period in
// natural order, for operator inspection.
func (r *SeatPeriodRepo) ListByPeriod(ctx context.Context, concretePeriodID uint64) ([]model.SeatPeriod, error) {
	const q = `SELECT id, seat_id, concrete_period_id, can_booked, can_online_booked, created_at, updated_at
	           FROM seat_periods
	           WHERE concrete_period_id = ?
	           ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, concretePeriodID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.SeatPeriod, 0)
	for rows.Next() {
		var sp model.SeatPeriod
		if err := rows.Scan(&sp.ID, &sp.SeatID, &sp.ConcretePeriodID, &sp.CanBooked, &sp.CanOnlineBooked, &sp.CreatedAt, &sp.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, sp)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// SetOnlineBookable flips the online-channel eligibility of one
// ledger row.  It never touches can_booked; claiming and releasing
// stay with the allocation engine.  Returns ErrSeatPeriodNotFound
// when the row does not exist.
func (r *SeatPeriodRepo) SetOnlineBookable(ctx context.Context, id uint64, bookable bool) error {
	const q = `UPDATE seat_periods SET can_online_booked = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, bookable, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Distinguish a missing row from an idempotent update that
		// changed nothing.
		const sel = `SELECT id FROM seat_periods WHERE id = ?`
		var got uint64
		if err := r.db.QueryRowContext(ctx, sel, id).Scan(&got); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrSeatPeriodNotFound
			}
			return err
		}
	}
	return nil
}
