package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/tavolo/seating/internal/model"
	"github.com/tavolo/seating/internal/schedule"
)

// PeriodRepo provides access to period templates and their
// materialized concrete periods.  Templates are read-only after
// seeding; concrete periods are only ever created (never deleted
// while ledger rows reference them).
type PeriodRepo struct {
	db *sql.DB
}

// NewPeriodRepo constructs a PeriodRepo with the given DB handle.
func NewPeriodRepo(db *sql.DB) *PeriodRepo {
	return &PeriodRepo{db: db}
}

// CreateTemplate inserts a period template. On success the ID is
// populated.
func (r *PeriodRepo) CreateTemplate(ctx context.Context, p *model.Period) error {
	const q = `INSERT INTO periods (title, interval_unit, interval_amount, anchor_start)
	           VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, p.Title, p.IntervalUnit, p.IntervalAmount, p.AnchorStart.UTC())
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return nil
}

// ListTemplates returns all period templates ordered by anchor start.
func (r *PeriodRepo) ListTemplates(ctx context.Context) ([]model.Period, error) {
	const q = `SELECT id, title, interval_unit, interval_amount, anchor_start, created_at
	           FROM periods
	           ORDER BY anchor_start, id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Period, 0)
	for rows.Next() {
		var p model.Period
		if err := rows.Scan(&p.ID, &p.Title, &p.IntervalUnit, &p.IntervalAmount, &p.AnchorStart, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetPeriod retrieves a template by ID.  It satisfies the
// materializer's store contract and returns schedule.ErrTemplateNotFound
// when absent.
func (r *PeriodRepo) GetPeriod(ctx context.Context, id uint64) (*model.Period, error) {
	const q = `SELECT id, title, interval_unit, interval_amount, anchor_start, created_at
	           FROM periods WHERE id = ?`
	var p model.Period
	err := r.db.QueryRowContext(ctx, q, id).
		Scan(&p.ID, &p.Title, &p.IntervalUnit, &p.IntervalAmount, &p.AnchorStart, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, schedule.ErrTemplateNotFound
		}
		return nil, err
	}
	return &p, nil
}

// EnsureConcretePeriod creates one occurrence if it does not exist
// yet.  Idempotence rides on the (period_id, started_at) unique key:
// INSERT IGNORE leaves existing rows untouched and the follow-up
// SELECT resolves the ID either way.
func (r *PeriodRepo) EnsureConcretePeriod(ctx context.Context, periodID uint64, start, end time.Time) (uint64, bool, error) {
	const ins = `INSERT IGNORE INTO concrete_periods (period_id, started_at, ended_at) VALUES (?, ?, ?)`
	res, err := r.db.ExecContext(ctx, ins, periodID, start.UTC(), end.UTC())
	if err != nil {
		return 0, false, err
	}
	n, _ := res.RowsAffected()
	const sel = `SELECT id FROM concrete_periods WHERE period_id = ? AND started_at = ?`
	var id uint64
	if err := r.db.QueryRowContext(ctx, sel, periodID, start.UTC()).Scan(&id); err != nil {
		return 0, false, err
	}
	return id, n > 0, nil
}

// ListConcreteByTemplate returns the materialized occurrences of a
// template ordered by start, newest horizon last.
func (r *PeriodRepo) ListConcreteByTemplate(ctx context.Context, periodID uint64) ([]model.ConcretePeriod, error) {
	const q = `SELECT id, period_id, started_at, ended_at, created_at
	           FROM concrete_periods
	           WHERE period_id = ?
	           ORDER BY started_at`
	rows, err := r.db.QueryContext(ctx, q, periodID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.ConcretePeriod, 0)
	for rows.Next() {
		var cp model.ConcretePeriod
		if err := rows.Scan(&cp.ID, &cp.PeriodID, &cp.StartedAt, &cp.EndedAt, &cp.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, cp)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
