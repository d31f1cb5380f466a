package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/tavolo/seating/internal/model"
)

// ReservationRepo reads reservation logs and applies the
// front-of-house meal timestamps.  Seat assignment is immutable
// here: allocation and release go through the Ledger so the
// seat-period invariants cannot be bypassed.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given
// database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// scanLog scans one reservation_logs row shared by GetByID and List.
func scanLog(scan func(dest ...interface{}) error) (*model.ReservationLog, error) {
	var rec model.ReservationLog
	var options []byte
	var startOfMeal, endOfMeal sql.NullTime
	if err := scan(
		&rec.ID, &rec.ConfirmationCode, &rec.PartySize, &rec.BookingType,
		&options, &rec.Status, &startOfMeal, &endOfMeal, &rec.CreatedAt, &rec.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if len(options) > 0 {
		rec.Options = options
	}
	if startOfMeal.Valid {
		t := startOfMeal.Time
		rec.StartOfMeal = &t
	}
	if endOfMeal.Valid {
		t := endOfMeal.Time
		rec.EndOfMeal = &t
	}
	return &rec, nil
}

const logColumns = `id, confirmation_code, party_size, booking_type, options, status, start_of_meal, end_of_meal, created_at, updated_at`

// GetByID returns one reservation with its claimed seat-period IDs.
// Returns ErrReservationNotFound when absent.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (*model.ReservationLog, error) {
	q := `SELECT ` + logColumns + ` FROM reservation_logs WHERE id = ?`
	rec, err := scanLog(r.db.QueryRowContext(ctx, q, id).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	const sq = `SELECT seat_period_id FROM reservation_seat_periods WHERE reservation_log_id = ? ORDER BY seat_period_id`
	rows, err := r.db.QueryContext(ctx, sq, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var spID uint64
		if err := rows.Scan(&spID); err != nil {
			return nil, err
		}
		rec.SeatPeriodIDs = append(rec.SeatPeriodIDs, spID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return rec, nil
}

// List returns reservations newest first, each with its claimed
// seat-period IDs populated in one follow-up query.
func (r *ReservationRepo) List(ctx context.Context) ([]model.ReservationLog, error) {
	q := `SELECT ` + logColumns + ` FROM reservation_logs ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := make([]model.ReservationLog, 0)
	index := make(map[uint64]int)
	for rows.Next() {
		rec, err := scanLog(rows.Scan)
		if err != nil {
			return nil, err
		}
		index[rec.ID] = len(logs)
		logs = append(logs, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(logs) == 0 {
		return logs, nil
	}
	ids := make([]interface{}, 0, len(logs))
	placeholders := make([]string, 0, len(logs))
	for _, l := range logs {
		ids = append(ids, l.ID)
		placeholders = append(placeholders, "?")
	}
	sq := `SELECT reservation_log_id, seat_period_id
	       FROM reservation_seat_periods
	       WHERE reservation_log_id IN (` + strings.Join(placeholders, ",") + `)
	       ORDER BY reservation_log_id, seat_period_id`
	srows, err := r.db.QueryContext(ctx, sq, ids...)
	if err != nil {
		return nil, err
	}
	defer srows.Close()
	for srows.Next() {
		var logID, spID uint64
		if err := srows.Scan(&logID, &spID); err != nil {
			return nil, err
		}
		if i, ok := index[logID]; ok {
			logs[i].SeatPeriodIDs = append(logs[i].SeatPeriodIDs, spID)
		}
	}
	if err := srows.Err(); err != nil {
		return nil, err
	}
	return logs, nil
}

// SetMealTimes records when the party was seated and departed.  Only
// the two timestamp columns are writable through this path, so
// front-of-house flows cannot alter the seat assignment.  A nil value
// leaves the corresponding column unchanged.  Returns
// ErrReservationNotFound when the reservation does not exist.
func (r *ReservationRepo) SetMealTimes(ctx context.Context, id uint64, startOfMeal, endOfMeal *time.Time) error {
	sets := make([]string, 0, 2)
	args := make([]interface{}, 0, 3)
	if startOfMeal != nil {
		sets = append(sets, "start_of_meal = ?")
		args = append(args, startOfMeal.UTC())
	}
	if endOfMeal != nil {
		sets = append(sets, "end_of_meal = ?")
		args = append(args, endOfMeal.UTC())
	}
	if len(sets) == 0 {
		return nil
	}
	sets = append(sets, "updated_at = CURRENT_TIMESTAMP")
	q := `UPDATE reservation_logs SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`
	args = append(args, id)
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		const sel = `SELECT id FROM reservation_logs WHERE id = ?`
		var got uint64
		if err := r.db.QueryRowContext(ctx, sel, id).Scan(&got); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrReservationNotFound
			}
			return err
		}
	}
	return nil
}
