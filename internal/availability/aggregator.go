// Package availability computes per-period and per-day remaining
// capacity from the seat-period ledger, with a cache-aside snapshot
// layer in front.  Snapshots are derived data: they are never read
// inside an allocation transaction and may be dropped at any time.
package availability

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/tavolo/seating/internal/cache"
	"github.com/tavolo/seating/internal/model"
)

// Granularity selects how availability is keyed and how long
// snapshots live.  Date-only queries ignore time-of-day, so their
// snapshots can live much longer.
type Granularity string

const (
	GranularityInstant Granularity = "instant" // exact period instants
	GranularityDate    Granularity = "date"    // whole calendar days
)

// Valid reports whether the granularity is a known value.
func (g Granularity) Valid() bool {
	return g == GranularityInstant || g == GranularityDate
}

// ErrInvalidRange is returned when from is after to or the
// granularity is unknown.
var ErrInvalidRange = errors.New("invalid availability query")

// PeriodAvailability is the aggregate for one concrete period.
type PeriodAvailability struct {
	ConcretePeriodID  uint64    `json:"concrete_period_id"`
	StartedAt         time.Time `json:"started_at"`
	EndedAt           time.Time `json:"ended_at"`
	TotalCapacity     uint32    `json:"total_capacity"`
	AvailableCapacity uint32    `json:"available_capacity"`
}

// DayAvailability groups the periods of one calendar day in the
// restaurant's timezone.  Days without any materialized period are
// omitted from results entirely.
type DayAvailability struct {
	Date              string               `json:"date"` // YYYY-MM-DD in the restaurant timezone
	TotalCapacity     uint32               `json:"total_capacity"`
	AvailableCapacity uint32               `json:"available_capacity"`
	Periods           []PeriodAvailability `json:"periods"`
}

// LedgerReader is the read path into the ledger.  Implementations
// must return periods ordered ascending by start instant and must
// only include periods that have at least one ledger row matching the
// channel filter.
type LedgerReader interface {
	PeriodAvailability(ctx context.Context, ch model.Channel, from, to time.Time) ([]PeriodAvailability, error)
}

// Config holds the snapshot cache tuning knobs.
type Config struct {
	Prefix     string        // cache key namespace, e.g. "avail"
	InstantTTL time.Duration // TTL for exact-instant snapshots (minutes)
	DateTTL    time.Duration // TTL for date-only snapshots (half a day)
}

// Aggregator serves availability queries cache-first.  A nil cache is
// allowed and simply disables snapshotting.
type Aggregator struct {
	reader LedgerReader
	cache  cache.Cache
	cfg    Config
	loc    *time.Location
}

// NewAggregator constructs an Aggregator.  loc is the restaurant's
// timezone used for day bucketing; nil falls back to UTC.
func NewAggregator(reader LedgerReader, c cache.Cache, cfg Config, loc *time.Location) *Aggregator {
	if reader == nil {
		panic("nil ledger reader passed to NewAggregator")
	}
	if loc == nil {
		loc = time.UTC
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "avail"
	}
	if cfg.InstantTTL <= 0 {
		cfg.InstantTTL = 3 * time.Minute
	}
	if cfg.DateTTL <= 0 {
		cfg.DateTTL = 12 * time.Hour
	}
	return &Aggregator{reader: reader, cache: c, cfg: cfg, loc: loc}
}

// GetAvailability returns per-day availability for the channel over
// [from, to], strictly ascending by date.  Cache failures degrade to
// recomputation from the ledger and are logged; only ledger read
// failures surface to the caller.
func (a *Aggregator) GetAvailability(ctx context.Context, ch model.Channel, from, to time.Time, g Granularity) ([]DayAvailability, error) {
	if !g.Valid() || !ch.Valid() || to.Before(from) {
		return nil, ErrInvalidRange
	}
	// Date-only queries ignore time-of-day: widen to whole calendar
	// days in the restaurant timezone so equivalent queries share one
	// cache key.
	if g == GranularityDate {
		from = startOfDay(from, a.loc)
		to = startOfDay(to, a.loc).Add(24*time.Hour - time.Nanosecond)
	}

	key := a.key(ch, g, from, to)
	if a.cache != nil {
		if bs, err := a.cache.Get(ctx, key); err == nil {
			var days []DayAvailability
			if err := json.Unmarshal(bs, &days); err == nil {
				return days, nil
			}
			log.Printf("availability: corrupt snapshot for %s, recomputing", key)
		} else if !errors.Is(err, cache.ErrMiss) {
			log.Printf("availability: cache read failed for %s: %v", key, err)
		}
	}

	periods, err := a.reader.PeriodAvailability(ctx, ch, from, to)
	if err != nil {
		return nil, err
	}
	days := a.bucketByDay(periods)

	if a.cache != nil {
		if bs, err := json.Marshal(days); err == nil {
			ttl := a.cfg.InstantTTL
			if g == GranularityDate {
				ttl = a.cfg.DateTTL
			}
			if err := a.cache.Set(ctx, key, bs, ttl); err != nil {
				log.Printf("availability: cache write failed for %s: %v", key, err)
			}
		}
	}
	return days, nil
}

// Invalidate drops every snapshot of every channel.  Any ledger
// mutation can shift remaining capacity for both channels (an
// in-store claim also removes the row from the online view), so the
// pattern delete runs per channel across the whole namespace.
func (a *Aggregator) Invalidate(ctx context.Context) {
	if a.cache == nil {
		return
	}
	for _, ch := range []model.Channel{model.ChannelOnline, model.ChannelInStore} {
		pattern := fmt.Sprintf("%s:%s:*", a.cfg.Prefix, ch)
		if err := a.cache.DeleteByPattern(ctx, pattern); err != nil {
			log.Printf("availability: invalidation failed for %s: %v", pattern, err)
		}
	}
}

func (a *Aggregator) key(ch model.Channel, g Granularity, from, to time.Time) string {
	return fmt.Sprintf("%s:%s:%s:%d:%d", a.cfg.Prefix, ch, g, from.Unix(), to.Unix())
}

// bucketByDay groups already-sorted periods into calendar days using
// explicit date arithmetic in the restaurant timezone.  Comparing
// (year, month, day) triples avoids the day-boundary misclassification
// that formatted-string bucketing suffers across timezones.
func (a *Aggregator) bucketByDay(periods []PeriodAvailability) []DayAvailability {
	days := make([]DayAvailability, 0)
	type civil struct {
		y int
		m time.Month
		d int
	}
	index := make(map[civil]int)
	for _, p := range periods {
		local := p.StartedAt.In(a.loc)
		y, m, d := local.Date()
		k := civil{y, m, d}
		i, ok := index[k]
		if !ok {
			i = len(days)
			index[k] = i
			days = append(days, DayAvailability{
				Date:    time.Date(y, m, d, 0, 0, 0, 0, a.loc).Format("2006-01-02"),
				Periods: []PeriodAvailability{},
			})
		}
		days[i].TotalCapacity += p.TotalCapacity
		days[i].AvailableCapacity += p.AvailableCapacity
		days[i].Periods = append(days[i].Periods, p)
	}
	return days
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
