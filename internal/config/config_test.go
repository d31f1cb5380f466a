package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tavolo/seating/internal/config"
)

// setRequired fills the mandatory variables so Load does not fatal.
func setRequired(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("APP_PORT", "8080")
	t.Setenv("DB_USER", "seating")
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_PORT", "3306")
	t.Setenv("DB_NAME", "seating")
	t.Setenv("JWT_SECRET", "secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)
	t.Setenv("SESSION_DURATION", "")
	t.Setenv("RESTAURANT_TZ", "")
	t.Setenv("DB_MAX_OPEN_CONNS", "")
	t.Setenv("DB_CONN_MAX_LIFETIME", "")

	cfg := config.Load()
	assert.Equal(t, 2*time.Hour, cfg.SessionDuration)
	assert.Equal(t, time.UTC, cfg.RestaurantTZ)
	assert.Equal(t, 25, cfg.DBMaxOpenConns)
	assert.Equal(t, 25, cfg.DBMaxIdleConns)
	assert.Equal(t, 30*time.Minute, cfg.DBConnMaxLifetime)
	assert.True(t, cfg.OnlineDefault)
}

func TestLoadInvalidSessionDurationKeepsDefault(t *testing.T) {
	// A typo in SESSION_DURATION must not shrink the bookable window;
	// the documented two-hour default wins.
	setRequired(t)
	t.Setenv("SESSION_DURATION", "two hours")

	cfg := config.Load()
	assert.Equal(t, 2*time.Hour, cfg.SessionDuration)
}

func TestLoadNegativeDurationKeepsDefault(t *testing.T) {
	setRequired(t)
	t.Setenv("SESSION_DURATION", "-90m")

	cfg := config.Load()
	assert.Equal(t, 2*time.Hour, cfg.SessionDuration)
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("SESSION_DURATION", "90m")
	t.Setenv("RESTAURANT_TZ", "America/New_York")
	t.Setenv("DB_MAX_OPEN_CONNS", "50")
	t.Setenv("DB_MAX_IDLE_CONNS", "10")
	t.Setenv("DB_CONN_MAX_LIFETIME", "1h")
	t.Setenv("ONLINE_BOOKING_DEFAULT", "false")

	cfg := config.Load()
	assert.Equal(t, 90*time.Minute, cfg.SessionDuration)
	assert.Equal(t, "America/New_York", cfg.RestaurantTZ.String())
	assert.Equal(t, 50, cfg.DBMaxOpenConns)
	assert.Equal(t, 10, cfg.DBMaxIdleConns)
	assert.Equal(t, time.Hour, cfg.DBConnMaxLifetime)
	assert.False(t, cfg.OnlineDefault)
}

func TestLoadAvailabilityCacheConfigInvalidTTL(t *testing.T) {
	t.Setenv("AVAIL_CACHE_INSTANT_TTL", "soon")
	t.Setenv("AVAIL_CACHE_DATE_TTL", "")

	cfg := config.LoadAvailabilityCacheConfig()
	assert.Equal(t, 3*time.Minute, cfg.InstantTTL)
	assert.Equal(t, 12*time.Hour, cfg.DateTTL)
}
