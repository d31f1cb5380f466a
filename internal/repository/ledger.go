package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/tavolo/seating/internal/allocation"
	"github.com/tavolo/seating/internal/model"
)

// Ledger implements allocation.Ledger on MySQL.  Every unit of work
// is a plain sql.Tx; the claim relies on the UPDATE re-checking
// can_booked at write time, which under InnoDB row locking behaves as
// a compare-and-swap per row.
type Ledger struct {
	db *sql.DB
}

// NewLedger constructs a Ledger with the given DB handle.
func NewLedger(db *sql.DB) *Ledger {
	return &Ledger{db: db}
}

// GetConcretePeriod loads one concrete period, mapping a missing row
// to allocation.ErrPeriodNotFound.
func (l *Ledger) GetConcretePeriod(ctx context.Context, id uint64) (*model.ConcretePeriod, error) {
	const q = `SELECT id, period_id, started_at, ended_at, created_at
	           FROM concrete_periods WHERE id = ?`
	var cp model.ConcretePeriod
	err := l.db.QueryRowContext(ctx, q, id).
		Scan(&cp.ID, &cp.PeriodID, &cp.StartedAt, &cp.EndedAt, &cp.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, allocation.ErrPeriodNotFound
		}
		return nil, err
	}
	return &cp, nil
}

// Begin opens a ledger transaction.
func (l *Ledger) Begin(ctx context.Context) (allocation.LedgerTx, error) {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &ledgerTx{tx: tx}, nil
}

// ledgerTx implements allocation.LedgerTx on a sql.Tx.
type ledgerTx struct {
	tx *sql.Tx
}

// Candidates lists free seat-periods of the period in natural ledger
// order (primary key ascending), joined with seat identity and
// capacity, with sibling links attached.  The online channel only
// sees rows flagged can_online_booked; in-store sees every free row.
func (t *ledgerTx) Candidates(ctx context.Context, concretePeriodID uint64, ch model.Channel) ([]allocation.Candidate, error) {
	q := `SELECT sp.id, s.id, s.zone_prefix, s.seat_no, s.capacity
	      FROM seat_periods sp
	      JOIN seats s ON s.id = sp.seat_id
	      WHERE sp.concrete_period_id = ? AND sp.can_booked = 1`
	if ch == model.ChannelOnline {
		q += ` AND sp.can_online_booked = 1`
	}
	q += ` ORDER BY sp.id`
	rows, err := t.tx.QueryContext(ctx, q, concretePeriodID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cands := make([]allocation.Candidate, 0)
	index := make(map[uint64]int)
	for rows.Next() {
		var c allocation.Candidate
		var prefix string
		var no uint32
		if err := rows.Scan(&c.SeatPeriodID, &c.SeatID, &prefix, &no, &c.Capacity); err != nil {
			return nil, err
		}
		c.SeatLabel = fmt.Sprintf("%s%d", prefix, no)
		index[c.SeatID] = len(cands)
		cands = append(cands, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(cands) == 0 {
		return cands, nil
	}
	// Attach sibling links for the candidate seats in one query.
	ids := make([]interface{}, 0, len(cands))
	placeholders := make([]string, 0, len(cands))
	for _, c := range cands {
		ids = append(ids, c.SeatID)
		placeholders = append(placeholders, "?")
	}
	sq := `SELECT seat_id, sibling_seat_id FROM seat_siblings
	       WHERE seat_id IN (` + strings.Join(placeholders, ",") + `)
	       ORDER BY seat_id, sibling_seat_id`
	srows, err := t.tx.QueryContext(ctx, sq, ids...)
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
			cands[i].Siblings = append(cands[i].Siblings, sibID)
		}
	}
	if err := srows.Err(); err != nil {
		return nil, err
	}
	return cands, nil
}

// Claim flips can_booked=false on every row, but only where the flag
// still holds.  A short row count means another transaction got there
// first; the caller must abort.
func (t *ledgerTx) Claim(ctx context.Context, seatPeriodIDs []uint64) error {
	if len(seatPeriodIDs) == 0 {
		return nil
	}
	placeholders := make([]string, 0, len(seatPeriodIDs))
	args := make([]interface{}, 0, len(seatPeriodIDs))
	for _, id := range seatPeriodIDs {
		placeholders = append(placeholders, "?")
		args = append(args, id)
	}
	q := `UPDATE seat_periods SET can_booked = 0, updated_at = CURRENT_TIMESTAMP
	      WHERE id IN (` + strings.Join(placeholders, ",") + `) AND can_booked = 1`
	res, err := t.tx.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n != int64(len(seatPeriodIDs)) {
		return allocation.ErrConcurrentConflict
	}
	return nil
}

// Release flips can_booked=true on every row.
func (t *ledgerTx) Release(ctx context.Context, seatPeriodIDs []uint64) error {
	if len(seatPeriodIDs) == 0 {
		return nil
	}
	placeholders := make([]string, 0, len(seatPeriodIDs))
	args := make([]interface{}, 0, len(seatPeriodIDs))
	for _, id := range seatPeriodIDs {
		placeholders = append(placeholders, "?")
		args = append(args, id)
	}
	q := `UPDATE seat_periods SET can_booked = 1, updated_at = CURRENT_TIMESTAMP
	      WHERE id IN (` + strings.Join(placeholders, ",") + `)`
	_, err := t.tx.ExecContext(ctx, q, args...)
	return err
}

// InsertReservation writes the reservation log and its seat-period
// link rows inside the transaction, populating rec.ID.
func (t *ledgerTx) InsertReservation(ctx context.Context, rec *model.ReservationLog) error {
	const q = `INSERT INTO reservation_logs (confirmation_code, party_size, booking_type, options, status)
	           VALUES (?, ?, ?, ?, ?)`
	var options interface{}
	if len(rec.Options) > 0 {
		options = []byte(rec.Options)
	}
	res, err := t.tx.ExecContext(ctx, q, rec.ConfirmationCode, rec.PartySize, rec.BookingType, options, rec.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rec.ID = uint64(id)
	if len(rec.SeatPeriodIDs) == 0 {
		return nil
	}
	query := `INSERT INTO reservation_seat_periods (reservation_log_id, seat_period_id) VALUES `
	args := make([]interface{}, 0, len(rec.SeatPeriodIDs)*2)
	for i, spID := range rec.SeatPeriodIDs {
		if i > 0 {
			query += ","
		}
		query += "(?, ?)"
		args = append(args, rec.ID, spID)
	}
	_, err = t.tx.ExecContext(ctx, query, args...)
	return err
}

// ReservationForUpdate loads a reservation and its claimed rows,
// locking the log row for the rest of the transaction so two
// concurrent releases cannot both observe ACTIVE.
func (t *ledgerTx) ReservationForUpdate(ctx context.Context, reservationID uint64) (*model.ReservationLog, error) {
	const q = `SELECT id, confirmation_code, party_size, booking_type, status, created_at, updated_at
	           FROM reservation_logs WHERE id = ? FOR UPDATE`
	var rec model.ReservationLog
	err := t.tx.QueryRowContext(ctx, q, reservationID).
		Scan(&rec.ID, &rec.ConfirmationCode, &rec.PartySize, &rec.BookingType, &rec.Status, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, allocation.ErrReservationNotFound
		}
		return nil, err
	}
	const sq = `SELECT seat_period_id FROM reservation_seat_periods WHERE reservation_log_id = ? ORDER BY seat_period_id`
	rows, err := t.tx.QueryContext(ctx, sq, reservationID)
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
	return &rec, nil
}

// CancelReservation marks the reservation CANCELLED.
func (t *ledgerTx) CancelReservation(ctx context.Context, reservationID uint64) error {
	const q = `UPDATE reservation_logs SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	_, err := t.tx.ExecContext(ctx, q, model.ReservationCancelled, reservationID)
	return err
}

func (t *ledgerTx) Commit() error   { return t.tx.Commit() }
func (t *ledgerTx) Rollback() error { return t.tx.Rollback() }
