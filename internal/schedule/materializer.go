// Package schedule materializes period templates into concrete
// periods and their per-seat ledger rows.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/tavolo/seating/internal/model"
)

// ErrTemplateNotFound is returned when the period template does not
// exist.
var ErrTemplateNotFound = errors.New("period template not found")

// Store is the persistence surface the materializer needs.  The
// Ensure methods must be idempotent: re-running a window may not
// create duplicate concrete periods or duplicate (seat, period) rows.
// The MySQL implementation backs them with INSERT IGNORE against
// unique keys.
type Store interface {
	// GetPeriod returns ErrTemplateNotFound when absent.
	GetPeriod(ctx context.Context, id uint64) (*model.Period, error)
	// EnsureConcretePeriod creates the occurrence if missing and
	// reports whether a row was inserted.
	EnsureConcretePeriod(ctx context.Context, periodID uint64, start, end time.Time) (id uint64, created bool, err error)
	// SeatIDs lists all seat IDs in natural order.
	SeatIDs(ctx context.Context) ([]uint64, error)
	// EnsureSeatPeriods creates missing ledger rows for the period,
	// defaulting can_booked=true and can_online_booked=onlineDefault,
	// and returns how many rows were actually inserted.
	EnsureSeatPeriods(ctx context.Context, concretePeriodID uint64, seatIDs []uint64, onlineDefault bool) (int64, error)
}

// Report summarises one materialization run.
type Report struct {
	OccurrencesWalked  int   `json:"occurrences_walked"`
	PeriodsCreated     int   `json:"periods_created"`
	SeatPeriodsCreated int64 `json:"seat_periods_created"`
}

// Materializer expands templates across a rolling future window.
type Materializer struct {
	store         Store
	session       time.Duration // fixed session length, end = start + session
	onlineDefault bool          // default can_online_booked for new rows
}

// NewMaterializer constructs a Materializer.  session must be
// positive; the conventional value is two hours.
func NewMaterializer(store Store, session time.Duration, onlineDefault bool) *Materializer {
	if store == nil {
		panic("nil store passed to NewMaterializer")
	}
	if session <= 0 {
		session = 2 * time.Hour
	}
	return &Materializer{store: store, session: session, onlineDefault: onlineDefault}
}

// MaterializePeriods walks the template's cadence from its anchor and
// creates every missing occurrence whose start does not exceed
// horizonEnd, together with one seat-period row per existing seat.
// The walk is deterministic in (template, horizonEnd) and safe to
// re-run: existing occurrences and rows are left untouched.
func (m *Materializer) MaterializePeriods(ctx context.Context, templateID uint64, horizonEnd time.Time) (*Report, error) {
	tpl, err := m.store.GetPeriod(ctx, templateID)
	if err != nil {
		return nil, err
	}
	if tpl.IntervalAmount == 0 || !tpl.IntervalUnit.Valid() {
		return nil, fmt.Errorf("template %d has invalid cadence %d %s", tpl.ID, tpl.IntervalAmount, tpl.IntervalUnit)
	}

	seatIDs, err := m.store.SeatIDs(ctx)
	if err != nil {
		return nil, err
	}

	rep := &Report{}
	for start := tpl.AnchorStart; !start.After(horizonEnd); start = step(start, tpl.IntervalUnit, int(tpl.IntervalAmount)) {
		rep.OccurrencesWalked++
		cpID, created, err := m.store.EnsureConcretePeriod(ctx, tpl.ID, start, start.Add(m.session))
		if err != nil {
			return nil, err
		}
		if created {
			rep.PeriodsCreated++
		}
		// Seat rows are ensured even for pre-existing occurrences so
		// seats added after an earlier run get their ledger rows.
		n, err := m.store.EnsureSeatPeriods(ctx, cpID, seatIDs, m.onlineDefault)
		if err != nil {
			return nil, err
		}
		rep.SeatPeriodsCreated += n
	}
	log.Printf("schedule: template %d materialized: %d walked, %d periods created, %d seat-periods created",
		tpl.ID, rep.OccurrencesWalked, rep.PeriodsCreated, rep.SeatPeriodsCreated)
	return rep, nil
}

// step advances one cadence interval.  AddDate keeps civil-time
// semantics (a weekly 18:00 slot stays at 18:00 across DST shifts
// when anchors are stored in a fixed zone).
func step(t time.Time, unit model.IntervalUnit, amount int) time.Time {
	switch unit {
	case model.IntervalDay:
		return t.AddDate(0, 0, amount)
	case model.IntervalWeek:
		return t.AddDate(0, 0, 7*amount)
	default: // MONTH, validated by the caller
		return t.AddDate(0, amount, 0)
	}
}
