package schedule_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tavolo/seating/internal/model"
	"github.com/tavolo/seating/internal/schedule"
)

// fakeStore keeps periods and ledger rows in maps, mimicking the
// unique-key idempotence of the MySQL implementation.
type fakeStore struct {
	templates map[uint64]*model.Period
	seats     []uint64

	nextCP     uint64
	concrete   map[string]uint64          // (periodID, start) -> concrete period ID
	starts     map[uint64]time.Time       // concrete period ID -> start
	ends       map[uint64]time.Time       // concrete period ID -> end
	ledgerRows map[uint64]map[uint64]bool // concrete period ID -> seat ID -> online default
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		templates:  make(map[uint64]*model.Period),
		concrete:   make(map[string]uint64),
		starts:     make(map[uint64]time.Time),
		ends:       make(map[uint64]time.Time),
		ledgerRows: make(map[uint64]map[uint64]bool),
	}
}

func (f *fakeStore) GetPeriod(_ context.Context, id uint64) (*model.Period, error) {
	tpl, ok := f.templates[id]
	if !ok {
		return nil, schedule.ErrTemplateNotFound
	}
	return tpl, nil
}

func (f *fakeStore) EnsureConcretePeriod(_ context.Context, periodID uint64, start, end time.Time) (uint64, bool, error) {
	key := fmt.Sprintf("%d|%s", periodID, start.UTC().Format(time.RFC3339))
	if id, ok := f.concrete[key]; ok {
		return id, false, nil
	}
	f.nextCP++
	f.concrete[key] = f.nextCP
	f.starts[f.nextCP] = start
	f.ends[f.nextCP] = end
	f.ledgerRows[f.nextCP] = make(map[uint64]bool)
	return f.nextCP, true, nil
}

func (f *fakeStore) SeatIDs(context.Context) ([]uint64, error) {
	return f.seats, nil
}

func (f *fakeStore) EnsureSeatPeriods(_ context.Context, cpID uint64, seatIDs []uint64, onlineDefault bool) (int64, error) {
	rows := f.ledgerRows[cpID]
	var created int64
	for _, sid := range seatIDs {
		if _, ok := rows[sid]; ok {
			continue
		}
		rows[sid] = onlineDefault
		created++
	}
	return created, nil
}

func weeklyDinner(anchor time.Time) *model.Period {
	return &model.Period{
		ID:             1,
		Title:          "Friday dinner",
		IntervalUnit:   model.IntervalWeek,
		IntervalAmount: 1,
		AnchorStart:    anchor,
	}
}

func TestMaterializeWalksCadence(t *testing.T) {
	anchor := time.Date(2026, 9, 4, 18, 0, 0, 0, time.UTC)
	store := newFakeStore()
	store.templates[1] = weeklyDinner(anchor)
	store.seats = []uint64{11, 12, 13}
	m := schedule.NewMaterializer(store, 2*time.Hour, true)

	// Horizon covers the anchor plus two more weeks.
	rep, err := m.MaterializePeriods(context.Background(), 1, anchor.AddDate(0, 0, 14))
	require.NoError(t, err)
	assert.Equal(t, 3, rep.OccurrencesWalked)
	assert.Equal(t, 3, rep.PeriodsCreated)
	assert.Equal(t, int64(9), rep.SeatPeriodsCreated)

	// Ends ride the fixed session length.
	for id, start := range store.starts {
		assert.Equal(t, start.Add(2*time.Hour), store.ends[id])
	}
}

func TestMaterializeIsIdempotent(t *testing.T) {
	anchor := time.Date(2026, 9, 4, 18, 0, 0, 0, time.UTC)
	store := newFakeStore()
	store.templates[1] = weeklyDinner(anchor)
	store.seats = []uint64{11, 12}
	m := schedule.NewMaterializer(store, 2*time.Hour, true)
	ctx := context.Background()

	horizon := anchor.AddDate(0, 0, 7)
	_, err := m.MaterializePeriods(ctx, 1, horizon)
	require.NoError(t, err)

	rep, err := m.MaterializePeriods(ctx, 1, horizon)
	require.NoError(t, err)
	assert.Equal(t, 2, rep.OccurrencesWalked)
	assert.Equal(t, 0, rep.PeriodsCreated)
	assert.Equal(t, int64(0), rep.SeatPeriodsCreated)
}

func TestMaterializeBackfillsNewSeats(t *testing.T) {
	// Seats added after a run get ledger rows for already-materialized
	// occurrences on the next run.
	anchor := time.Date(2026, 9, 4, 18, 0, 0, 0, time.UTC)
	store := newFakeStore()
	store.templates[1] = weeklyDinner(anchor)
	store.seats = []uint64{11}
	m := schedule.NewMaterializer(store, 2*time.Hour, true)
	ctx := context.Background()

	_, err := m.MaterializePeriods(ctx, 1, anchor)
	require.NoError(t, err)

	store.seats = append(store.seats, 12)
	rep, err := m.MaterializePeriods(ctx, 1, anchor)
	require.NoError(t, err)
	assert.Equal(t, 0, rep.PeriodsCreated)
	assert.Equal(t, int64(1), rep.SeatPeriodsCreated)
}

func TestMaterializeExtendsHorizon(t *testing.T) {
	anchor := time.Date(2026, 9, 4, 18, 0, 0, 0, time.UTC)
	store := newFakeStore()
	store.templates[1] = weeklyDinner(anchor)
	store.seats = []uint64{11}
	m := schedule.NewMaterializer(store, 2*time.Hour, false)
	ctx := context.Background()

	_, err := m.MaterializePeriods(ctx, 1, anchor.AddDate(0, 0, 7))
	require.NoError(t, err)

	rep, err := m.MaterializePeriods(ctx, 1, anchor.AddDate(0, 0, 21))
	require.NoError(t, err)
	assert.Equal(t, 4, rep.OccurrencesWalked)
	assert.Equal(t, 2, rep.PeriodsCreated)
}

func TestMaterializeDailyCadence(t *testing.T) {
	anchor := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	store := newFakeStore()
	store.templates[2] = &model.Period{
		ID:             2,
		Title:          "Lunch",
		IntervalUnit:   model.IntervalDay,
		IntervalAmount: 1,
		AnchorStart:    anchor,
	}
	store.seats = []uint64{11}
	m := schedule.NewMaterializer(store, 90*time.Minute, true)

	rep, err := m.MaterializePeriods(context.Background(), 2, anchor.AddDate(0, 0, 6))
	require.NoError(t, err)
	assert.Equal(t, 7, rep.PeriodsCreated)
}

func TestMaterializeUnknownTemplate(t *testing.T) {
	m := schedule.NewMaterializer(newFakeStore(), 2*time.Hour, true)
	_, err := m.MaterializePeriods(context.Background(), 404, time.Now())
	assert.ErrorIs(t, err, schedule.ErrTemplateNotFound)
}

func TestMaterializeRejectsInvalidCadence(t *testing.T) {
	store := newFakeStore()
	store.templates[1] = &model.Period{
		ID:           1,
		Title:        "broken",
		IntervalUnit: model.IntervalUnit("FORTNIGHT"),
		AnchorStart:  time.Now(),
	}
	m := schedule.NewMaterializer(store, 2*time.Hour, true)
	_, err := m.MaterializePeriods(context.Background(), 1, time.Now().AddDate(0, 1, 0))
	assert.Error(t, err)
}
