package config

import "time"

// AvailabilityCacheConfig defines settings for the availability
// snapshot cache.  When Enabled is false or no Redis client is
// configured, the aggregator recomputes from the ledger on every
// request.  Date-only snapshots carry a much longer TTL than
// exact-instant ones because time-of-day never enters their cache
// key.
type AvailabilityCacheConfig struct {
	Enabled    bool
	Prefix     string
	InstantTTL time.Duration
	DateTTL    time.Duration
}

// LoadAvailabilityCacheConfig reads environment variables to build an
// AvailabilityCacheConfig.  Defaults are used when variables are not
// set.
func LoadAvailabilityCacheConfig() AvailabilityCacheConfig {
	return AvailabilityCacheConfig{
		Enabled:    getenv("AVAIL_CACHE_ENABLED", "true") == "true",
		Prefix:     getenv("AVAIL_CACHE_PREFIX", "avail"),
		InstantTTL: parseDur("AVAIL_CACHE_INSTANT_TTL", getenv("AVAIL_CACHE_INSTANT_TTL", "3m"), 3*time.Minute),
		DateTTL:    parseDur("AVAIL_CACHE_DATE_TTL", getenv("AVAIL_CACHE_DATE_TTL", "12h"), 12*time.Hour),
	}
}
