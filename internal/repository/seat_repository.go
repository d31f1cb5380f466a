package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/tavolo/seating/internal/model"
)

// SeatRepo provides access to seats and their sibling adjacency.
// Seats are reference data: created at setup time and edited rarely
// by an operator, read constantly by the allocation engine.
type SeatRepo struct {
	db *sql.DB
}

// NewSeatRepo constructs a SeatRepo with the given DB handle.
func NewSeatRepo(db *sql.DB) *SeatRepo {
	return &SeatRepo{db: db}
}

// Create inserts a single seat. On success the seat's ID is populated.
func (r *SeatRepo) Create(ctx context.Context, s *model.Seat) error {
	const q = `INSERT INTO seats (zone_prefix, seat_no, capacity) VALUES (?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, s.Prefix, s.No, s.Capacity)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	return nil
}

// CreateBulk inserts multiple seats in a single statement.
func (r *SeatRepo) CreateBulk(ctx context.Context, seats []model.Seat) error {
	if len(seats) == 0 {
		return nil
	}
	query := `INSERT INTO seats (zone_prefix, seat_no, capacity) VALUES `
	args := make([]interface{}, 0, len(seats)*3)
	for i, s := range seats {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?)"
		args = append(args, s.Prefix, s.No, s.Capacity)
	}
	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

// List retrieves all seats ordered by zone then number, with their
// sibling links populated.
func (r *SeatRepo) List(ctx context.Context) ([]model.Seat, error) {
	const q = `SELECT id, zone_prefix, seat_no, capacity, created_at, updated_at
	           FROM seats
	           ORDER BY zone_prefix, seat_no`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seats := make([]model.Seat, 0)
	index := make(map[uint64]int)
	for rows.Next() {
		var s model.Seat
		if err := rows.Scan(&s.ID, &s.Prefix, &s.No, &s.Capacity, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		s.Siblings = []uint64{}
		index[s.ID] = len(seats)
		seats = append(seats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(seats) == 0 {
		return seats, nil
	}
	// Populate sibling links for all seats in one query.
	const sq = `SELECT seat_id, sibling_seat_id FROM seat_siblings ORDER BY seat_id, sibling_seat_id`
	srows, err := r.db.QueryContext(ctx, sq)
	if err != nil {
		return nil, err
	}
	defer srows.Close()
	for srows.Next() {
		var seatID, sibID uint64
		if err := srows.Scan(&seatID, &sibID); err != nil {
			return nil, err
		}
		if i, ok := index[seatID]; ok {
			seats[i].Siblings = append(seats[i].Siblings, sibID)
		}
	}
	if err := srows.Err(); err != nil {
		return nil, err
	}
	return seats, nil
}

// GetByID retrieves a seat and its sibling links.
func (r *SeatRepo) GetByID(ctx context.Context, id uint64) (*model.Seat, error) {
	const q = `SELECT id, zone_prefix, seat_no, capacity, created_at, updated_at
	           FROM seats WHERE id = ?`
	var s model.Seat
	err := r.db.QueryRowContext(ctx, q, id).
		Scan(&s.ID, &s.Prefix, &s.No, &s.Capacity, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSeatNotFound
		}
		return nil, err
	}
	s.Siblings = []uint64{}
	const sq = `SELECT sibling_seat_id FROM seat_siblings WHERE seat_id = ? ORDER BY sibling_seat_id`
	rows, err := r.db.QueryContext(ctx, sq, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var sib uint64
		if err := rows.Scan(&sib); err != nil {
			return nil, err
		}
		s.Siblings = append(s.Siblings, sib)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &s, nil
}

// SeatIDs lists all seat IDs in natural order.  Used by the period
// materializer when fanning a new concrete period out into ledger rows.
func (r *SeatRepo) SeatIDs(ctx context.Context) ([]uint64, error) {
	const q = `SELECT id FROM seats ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

// AddSibling records a directed combinable link between two seats.
// Inserting an existing link is a no-op.  Both seats must exist;
// a foreign key violation surfaces as ErrSeatNotFound.
func (r *SeatRepo) AddSibling(ctx context.Context, seatID, siblingID uint64) error {
	const q = `INSERT IGNORE INTO seat_siblings (seat_id, sibling_seat_id) VALUES (?, ?)`
	_, err := r.db.ExecContext(ctx, q, seatID, siblingID)
	if err != nil && strings.Contains(err.Error(), "foreign key constraint") {
		return ErrSeatNotFound
	}
	return err
}

// RemoveSibling deletes a directed link. Returns sql.ErrNoRows when
// the link does not exist.
func (r *SeatRepo) RemoveSibling(ctx context.Context, seatID, siblingID uint64) error {
	const q = `DELETE FROM seat_siblings WHERE seat_id = ? AND sibling_seat_id = ?`
	res, err := r.db.ExecContext(ctx, q, seatID, siblingID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a seat that has no ledger rows.  Seats referenced by
// seat_periods must stay for audit; attempting to delete one returns
// ErrConflict.
func (r *SeatRepo) Delete(ctx context.Context, id uint64) error {
	const check = `SELECT COUNT(*) FROM seat_periods WHERE seat_id = ?`
	var n int
	if err := r.db.QueryRowContext(ctx, check, id).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return ErrConflict
	}
	const q = `DELETE FROM seats WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return ErrSeatNotFound
	}
	return nil
}
