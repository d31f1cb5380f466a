package allocation

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/tavolo/seating/internal/model"
)

// Candidate is one free, channel-eligible ledger row joined with the
// seat it covers, in the ledger's natural query order.
type Candidate struct {
	SeatPeriodID uint64   // seat_periods.id
	SeatID       uint64   // seats.id
	SeatLabel    string   // e.g. "A2", for event payloads and responses
	Capacity     uint32   // seats.capacity
	Siblings     []uint64 // seat IDs this seat may be combined with
}

// LedgerTx is one all-or-nothing unit of work against the seat-period
// ledger.  Implementations must guarantee that Claim only succeeds if
// every named row still has can_booked=true at write time.
type LedgerTx interface {
	// Candidates lists free seat-periods of the period that the
	// channel may claim, in natural ledger order.
	Candidates(ctx context.Context, concretePeriodID uint64, ch model.Channel) ([]Candidate, error)
	// Claim flips can_booked=false on every row, or fails with
	// ErrConcurrentConflict without flipping any.
	Claim(ctx context.Context, seatPeriodIDs []uint64) error
	// Release flips can_booked=true on every row.
	Release(ctx context.Context, seatPeriodIDs []uint64) error
	// InsertReservation writes the reservation log and its seat-period
	// links, populating rec.ID.
	InsertReservation(ctx context.Context, rec *model.ReservationLog) error
	// ReservationForUpdate loads a reservation with its claimed rows,
	// locked for the remainder of the transaction.  Returns
	// ErrReservationNotFound when absent.
	ReservationForUpdate(ctx context.Context, reservationID uint64) (*model.ReservationLog, error)
	// CancelReservation marks the reservation CANCELLED.
	CancelReservation(ctx context.Context, reservationID uint64) error

	Commit() error
	Rollback() error
}

// Ledger is the transactional store the engine allocates against.
// The MySQL implementation lives in internal/repository; tests use an
// in-memory fake.
type Ledger interface {
	// GetConcretePeriod returns ErrPeriodNotFound when the period does
	// not exist.
	GetConcretePeriod(ctx context.Context, id uint64) (*model.ConcretePeriod, error)
	Begin(ctx context.Context) (LedgerTx, error)
}

// Invalidator drops availability snapshots that may cover a mutated
// period.  The aggregator implements it; a nil invalidator disables
// the signal (used in tests).
type Invalidator interface {
	Invalidate(ctx context.Context)
}

// Request carries one allocation attempt.
type Request struct {
	PartySize        uint32
	BookingType      model.BookingType
	ConcretePeriodID uint64
	Options          json.RawMessage // free-form contact payload, stored verbatim
}

// Result reports a successful allocation.
type Result struct {
	ReservationID    uint64   `json:"reservation_id"`
	ConfirmationCode string   `json:"confirmation_code"`
	SeatIDs          []uint64 `json:"seat_ids"`
	SeatLabels       []string `json:"seats"`
	SeatPeriodIDs    []uint64 `json:"seat_period_ids"`
}

// Engine performs seat-period allocation.  It owns no state of its
// own; correctness under concurrency comes entirely from the ledger's
// transactional claim.
type Engine struct {
	ledger Ledger
	inv    Invalidator
}

// NewEngine constructs an Engine.  ledger must be non-nil; inv may be
// nil when no availability cache is attached.
func NewEngine(ledger Ledger, inv Invalidator) *Engine {
	if ledger == nil {
		panic("nil ledger passed to NewEngine")
	}
	return &Engine{ledger: ledger, inv: inv}
}

// seatPlan captures which seats a party size needs.  The table is a
// fixed set of real table shapes, not general bin-packing:
//
//	1-2         one seat with capacity 2
//	3-4         one capacity-2 seat plus a free sibling seat
//	7-10        one seat with capacity 10
//	5-6, >10    unsupported
type seatPlan struct {
	capacity uint32
	pair     bool
}

func planFor(partySize uint32) (seatPlan, error) {
	switch {
	case partySize >= 1 && partySize <= 2:
		return seatPlan{capacity: 2}, nil
	case partySize >= 3 && partySize <= 4:
		return seatPlan{capacity: 2, pair: true}, nil
	case partySize >= 7 && partySize <= 10:
		return seatPlan{capacity: 10}, nil
	default:
		return seatPlan{}, ErrUnsupportedPartySize
	}
}

// pick selects the claim set from the candidate list.  The first
// candidate in ledger order that satisfies the plan wins; there is no
// seat-quality ranking.  Returns nil when nothing fits.
func (p seatPlan) pick(cands []Candidate) []Candidate {
	if !p.pair {
		for _, c := range cands {
			if c.Capacity == p.capacity {
				return []Candidate{c}
			}
		}
		return nil
	}
	// Pair case: the sibling's row must itself be free and eligible in
	// the same period, i.e. present in the candidate list.
	bySeat := make(map[uint64]Candidate, len(cands))
	for _, c := range cands {
		bySeat[c.SeatID] = c
	}
	for _, c := range cands {
		if c.Capacity != p.capacity || len(c.Siblings) == 0 {
			continue
		}
		for _, sib := range c.Siblings {
			mate, ok := bySeat[sib]
			if ok && mate.Capacity == p.capacity && mate.SeatPeriodID != c.SeatPeriodID {
				return []Candidate{c, mate}
			}
		}
	}
	return nil
}

// Allocate claims seat-period rows for the request and records the
// reservation, all in one ledger transaction.  The candidate read
// happens inside the transaction and the claim re-checks can_booked
// at write time, so two racing attempts on the same row resolve to
// exactly one winner; the loser sees ErrConcurrentConflict and may
// retry.
func (e *Engine) Allocate(ctx context.Context, req Request) (*Result, error) {
	plan, err := planFor(req.PartySize)
	if err != nil {
		return nil, err
	}
	if _, err := e.ledger.GetConcretePeriod(ctx, req.ConcretePeriodID); err != nil {
		return nil, err
	}

	tx, err := e.ledger.Begin(ctx)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	cands, err := tx.Candidates(ctx, req.ConcretePeriodID, req.BookingType.Channel())
	if err != nil {
		return nil, err
	}
	chosen := plan.pick(cands)
	if chosen == nil {
		return nil, ErrNoSuitableSeat
	}

	ids := make([]uint64, 0, len(chosen))
	seatIDs := make([]uint64, 0, len(chosen))
	labels := make([]string, 0, len(chosen))
	for _, c := range chosen {
		ids = append(ids, c.SeatPeriodID)
		seatIDs = append(seatIDs, c.SeatID)
		labels = append(labels, c.SeatLabel)
	}

	if err := tx.Claim(ctx, ids); err != nil {
		return nil, err
	}

	rec := &model.ReservationLog{
		ConfirmationCode: uuid.NewString(),
		PartySize:        req.PartySize,
		BookingType:      req.BookingType,
		Options:          req.Options,
		Status:           model.ReservationActive,
		SeatPeriodIDs:    ids,
	}
	if err := tx.InsertReservation(ctx, rec); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	e.invalidate(ctx)

	return &Result{
		ReservationID:    rec.ID,
		ConfirmationCode: rec.ConfirmationCode,
		SeatIDs:          seatIDs,
		SeatLabels:       labels,
		SeatPeriodIDs:    ids,
	}, nil
}

// Release cancels a reservation and returns its seat-period rows to
// the free pool, using the same transactional discipline as Allocate.
// Cancellation flows outside this package must go through here so the
// ledger invariants hold.
func (e *Engine) Release(ctx context.Context, reservationID uint64) error {
	tx, err := e.ledger.Begin(ctx)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	rec, err := tx.ReservationForUpdate(ctx, reservationID)
	if err != nil {
		return err
	}
	if rec.Status == model.ReservationCancelled {
		return ErrAlreadyReleased
	}
	if err := tx.CancelReservation(ctx, reservationID); err != nil {
		return err
	}
	if err := tx.Release(ctx, rec.SeatPeriodIDs); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true

	e.invalidate(ctx)
	return nil
}

func (e *Engine) invalidate(ctx context.Context) {
	if e.inv == nil {
		return
	}
	e.inv.Invalidate(ctx)
}
