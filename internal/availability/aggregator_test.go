package availability_test

import (
	"context"
	"errors"
	"path"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tavolo/seating/internal/availability"
	"github.com/tavolo/seating/internal/cache"
	"github.com/tavolo/seating/internal/model"
)

// fakeReader serves a fixed period list and counts ledger reads.
type fakeReader struct {
	periods []availability.PeriodAvailability
	err     error
	calls   int
}

func (f *fakeReader) PeriodAvailability(_ context.Context, _ model.Channel, from, to time.Time) ([]availability.PeriodAvailability, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	var out []availability.PeriodAvailability
	for _, p := range f.periods {
		if p.StartedAt.Before(from) || p.StartedAt.After(to) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// fakeCache is a map-backed cache.Cache with injectable failures.
type fakeCache struct {
	data     map[string][]byte
	ttls     map[string]time.Duration
	patterns []string
	getErr   error
	setErr   error
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (f *fakeCache) Get(_ context.Context, key string) ([]byte, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	bs, ok := f.data[key]
	if !ok {
		return nil, cache.ErrMiss
	}
	return bs, nil
}

func (f *fakeCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.data[key] = value
	f.ttls[key] = ttl
	return nil
}

// DeleteByPattern evicts matching keys with the same glob family
// Redis uses, so a drift between the aggregator's key format and its
// invalidation pattern shows up here as a stale hit.
func (f *fakeCache) DeleteByPattern(_ context.Context, pattern string) error {
	f.patterns = append(f.patterns, pattern)
	for k := range f.data {
		ok, err := path.Match(pattern, k)
		if err != nil {
			return err
		}
		if ok {
			delete(f.data, k)
			delete(f.ttls, k)
		}
	}
	return nil
}

func period(id uint64, start time.Time, total, avail uint32) availability.PeriodAvailability {
	return availability.PeriodAvailability{
		ConcretePeriodID:  id,
		StartedAt:         start,
		EndedAt:           start.Add(2 * time.Hour),
		TotalCapacity:     total,
		AvailableCapacity: avail,
	}
}

func TestGetAvailabilityMissThenHit(t *testing.T) {
	start := time.Date(2026, 9, 4, 18, 0, 0, 0, time.UTC)
	reader := &fakeReader{periods: []availability.PeriodAvailability{period(1, start, 16, 12)}}
	c := newFakeCache()
	agg := availability.NewAggregator(reader, c, availability.Config{}, time.UTC)
	ctx := context.Background()

	from, to := start.Add(-time.Hour), start.Add(time.Hour)
	days, err := agg.GetAvailability(ctx, model.ChannelOnline, from, to, availability.GranularityInstant)
	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.Equal(t, 1, reader.calls)

	// Second identical query is served from the snapshot.
	again, err := agg.GetAvailability(ctx, model.ChannelOnline, from, to, availability.GranularityInstant)
	require.NoError(t, err)
	assert.Equal(t, days, again)
	assert.Equal(t, 1, reader.calls)
}

func TestGetAvailabilityBucketsByRestaurantDay(t *testing.T) {
	// 23:30 local on the 4th and 01:00 local on the 5th must land in
	// different days of the restaurant timezone, regardless of how the
	// instants render in UTC.
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	late := time.Date(2026, 9, 4, 23, 30, 0, 0, loc)
	early := time.Date(2026, 9, 5, 1, 0, 0, 0, loc)
	reader := &fakeReader{periods: []availability.PeriodAvailability{
		period(1, late, 16, 10),
		period(2, early, 16, 16),
	}}
	agg := availability.NewAggregator(reader, nil, availability.Config{}, loc)

	days, err := agg.GetAvailability(context.Background(), model.ChannelInStore,
		late.Add(-time.Hour), early.Add(time.Hour), availability.GranularityInstant)
	require.NoError(t, err)
	require.Len(t, days, 2)
	assert.Equal(t, "2026-09-04", days[0].Date)
	assert.Equal(t, "2026-09-05", days[1].Date)
	assert.Equal(t, uint32(10), days[0].AvailableCapacity)
	assert.Equal(t, uint32(16), days[1].AvailableCapacity)
}

func TestGetAvailabilityAggregatesWithinDay(t *testing.T) {
	day := time.Date(2026, 9, 4, 0, 0, 0, 0, time.UTC)
	reader := &fakeReader{periods: []availability.PeriodAvailability{
		period(1, day.Add(12*time.Hour), 16, 4),
		period(2, day.Add(18*time.Hour), 16, 14),
	}}
	agg := availability.NewAggregator(reader, nil, availability.Config{}, time.UTC)

	days, err := agg.GetAvailability(context.Background(), model.ChannelOnline,
		day, day.Add(23*time.Hour), availability.GranularityDate)
	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.Equal(t, uint32(32), days[0].TotalCapacity)
	assert.Equal(t, uint32(18), days[0].AvailableCapacity)
	require.Len(t, days[0].Periods, 2)
	assert.True(t, days[0].Periods[0].StartedAt.Before(days[0].Periods[1].StartedAt))
}

func TestGetAvailabilityTTLByGranularity(t *testing.T) {
	start := time.Date(2026, 9, 4, 18, 0, 0, 0, time.UTC)
	reader := &fakeReader{periods: []availability.PeriodAvailability{period(1, start, 16, 16)}}
	c := newFakeCache()
	cfg := availability.Config{InstantTTL: 3 * time.Minute, DateTTL: 12 * time.Hour}
	agg := availability.NewAggregator(reader, c, cfg, time.UTC)
	ctx := context.Background()

	_, err := agg.GetAvailability(ctx, model.ChannelOnline, start.Add(-time.Hour), start.Add(time.Hour), availability.GranularityInstant)
	require.NoError(t, err)
	_, err = agg.GetAvailability(ctx, model.ChannelOnline, start.Add(-time.Hour), start.Add(time.Hour), availability.GranularityDate)
	require.NoError(t, err)

	require.Len(t, c.ttls, 2)
	var sawInstant, sawDate bool
	for _, ttl := range c.ttls {
		switch ttl {
		case 3 * time.Minute:
			sawInstant = true
		case 12 * time.Hour:
			sawDate = true
		}
	}
	assert.True(t, sawInstant, "instant snapshot should carry the short TTL")
	assert.True(t, sawDate, "date snapshot should carry the long TTL")
}

func TestGetAvailabilityDateQueriesShareKey(t *testing.T) {
	// Two date-granularity queries at different times of the same days
	// must widen to the same calendar range and hit the same snapshot.
	start := time.Date(2026, 9, 4, 18, 0, 0, 0, time.UTC)
	reader := &fakeReader{periods: []availability.PeriodAvailability{period(1, start, 16, 16)}}
	c := newFakeCache()
	agg := availability.NewAggregator(reader, c, availability.Config{}, time.UTC)
	ctx := context.Background()

	_, err := agg.GetAvailability(ctx, model.ChannelOnline,
		start.Add(-9*time.Hour), start.Add(time.Hour), availability.GranularityDate)
	require.NoError(t, err)
	_, err = agg.GetAvailability(ctx, model.ChannelOnline,
		start.Add(-3*time.Hour), start.Add(4*time.Hour), availability.GranularityDate)
	require.NoError(t, err)

	assert.Equal(t, 1, reader.calls)
	assert.Len(t, c.data, 1)
}

func TestGetAvailabilityInvalidInput(t *testing.T) {
	reader := &fakeReader{}
	agg := availability.NewAggregator(reader, nil, availability.Config{}, time.UTC)
	ctx := context.Background()
	now := time.Now()

	_, err := agg.GetAvailability(ctx, model.ChannelOnline, now, now.Add(-time.Hour), availability.GranularityInstant)
	assert.ErrorIs(t, err, availability.ErrInvalidRange)

	_, err = agg.GetAvailability(ctx, "CARRIER_PIGEON", now, now.Add(time.Hour), availability.GranularityInstant)
	assert.ErrorIs(t, err, availability.ErrInvalidRange)

	_, err = agg.GetAvailability(ctx, model.ChannelOnline, now, now.Add(time.Hour), "hourly")
	assert.ErrorIs(t, err, availability.ErrInvalidRange)
}

func TestGetAvailabilityEmptyRange(t *testing.T) {
	reader := &fakeReader{}
	agg := availability.NewAggregator(reader, nil, availability.Config{}, time.UTC)

	days, err := agg.GetAvailability(context.Background(), model.ChannelOnline,
		time.Now(), time.Now().Add(time.Hour), availability.GranularityInstant)
	require.NoError(t, err)
	assert.NotNil(t, days)
	assert.Empty(t, days)
}

func TestGetAvailabilityCacheFailuresDegrade(t *testing.T) {
	start := time.Date(2026, 9, 4, 18, 0, 0, 0, time.UTC)
	reader := &fakeReader{periods: []availability.PeriodAvailability{period(1, start, 16, 16)}}
	c := newFakeCache()
	c.getErr = errors.New("connection refused")
	c.setErr = errors.New("connection refused")
	agg := availability.NewAggregator(reader, c, availability.Config{}, time.UTC)

	days, err := agg.GetAvailability(context.Background(), model.ChannelOnline,
		start.Add(-time.Hour), start.Add(time.Hour), availability.GranularityInstant)
	require.NoError(t, err)
	assert.Len(t, days, 1)
	assert.Equal(t, 1, reader.calls)
}

func TestGetAvailabilityCorruptSnapshotRecomputes(t *testing.T) {
	start := time.Date(2026, 9, 4, 18, 0, 0, 0, time.UTC)
	reader := &fakeReader{periods: []availability.PeriodAvailability{period(1, start, 16, 16)}}
	c := newFakeCache()
	agg := availability.NewAggregator(reader, c, availability.Config{}, time.UTC)
	ctx := context.Background()

	from, to := start.Add(-time.Hour), start.Add(time.Hour)
	_, err := agg.GetAvailability(ctx, model.ChannelOnline, from, to, availability.GranularityInstant)
	require.NoError(t, err)

	// Corrupt every stored snapshot, then query again.
	for k := range c.data {
		c.data[k] = []byte("{not json")
	}
	days, err := agg.GetAvailability(ctx, model.ChannelOnline, from, to, availability.GranularityInstant)
	require.NoError(t, err)
	assert.Len(t, days, 1)
	assert.Equal(t, 2, reader.calls)
}

func TestGetAvailabilityLedgerErrorSurfaces(t *testing.T) {
	reader := &fakeReader{err: errors.New("store unavailable")}
	agg := availability.NewAggregator(reader, newFakeCache(), availability.Config{}, time.UTC)

	_, err := agg.GetAvailability(context.Background(), model.ChannelOnline,
		time.Now(), time.Now().Add(time.Hour), availability.GranularityInstant)
	assert.Error(t, err)
}

func TestInvalidationEvictsCachedCapacity(t *testing.T) {
	// A warmed snapshot must not outlive a ledger mutation: after an
	// allocation shrinks remaining capacity and the engine invalidates,
	// the very next query recomputes and reports the reduced number.
	start := time.Date(2026, 9, 4, 18, 0, 0, 0, time.UTC)
	reader := &fakeReader{periods: []availability.PeriodAvailability{period(1, start, 16, 16)}}
	c := newFakeCache()
	agg := availability.NewAggregator(reader, c, availability.Config{Prefix: "avail"}, time.UTC)
	ctx := context.Background()
	from, to := start.Add(-time.Hour), start.Add(time.Hour)

	days, err := agg.GetAvailability(ctx, model.ChannelOnline, from, to, availability.GranularityInstant)
	require.NoError(t, err)
	require.Equal(t, uint32(16), days[0].AvailableCapacity)

	// A party of two claims a deuce in the ledger.  The snapshot is
	// still warm, so without invalidation the stale 16 keeps serving.
	reader.periods[0].AvailableCapacity = 14
	days, err = agg.GetAvailability(ctx, model.ChannelOnline, from, to, availability.GranularityInstant)
	require.NoError(t, err)
	assert.Equal(t, uint32(16), days[0].AvailableCapacity)
	assert.Equal(t, 1, reader.calls)

	agg.Invalidate(ctx)

	days, err = agg.GetAvailability(ctx, model.ChannelOnline, from, to, availability.GranularityInstant)
	require.NoError(t, err)
	assert.Equal(t, uint32(14), days[0].AvailableCapacity)
	assert.Equal(t, 2, reader.calls)
}

func TestInvalidateDropsBothChannels(t *testing.T) {
	reader := &fakeReader{}
	c := newFakeCache()
	agg := availability.NewAggregator(reader, c, availability.Config{Prefix: "avail"}, time.UTC)

	agg.Invalidate(context.Background())
	assert.ElementsMatch(t, []string{"avail:ONLINE:*", "avail:IN_STORE:*"}, c.patterns)
}
