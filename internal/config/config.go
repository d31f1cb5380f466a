// Package config loads application configuration from environment
// variables.
package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration values.  Each field
// corresponds to an environment variable.  Required values are
// enforced by must(); domain knobs fall back to sensible defaults.
type Config struct {
	Env               string         // application environment (e.g. "dev", "prod")
	Port              string         // HTTP port to listen on
	DBUser            string         // database username
	DBPass            string         // database password (optional)
	DBHost            string         // database host address
	DBPort            string         // database port number
	DBName            string         // database name
	DBMaxOpenConns    int            // connection pool ceiling
	DBMaxIdleConns    int            // idle connections kept warm
	DBConnMaxLifetime time.Duration  // recycle age for pooled connections
	JWTSecret         string         // secret used to verify channel tokens
	RestaurantTZ      *time.Location // timezone used for calendar-day bucketing
	SessionDuration   time.Duration  // fixed length of one bookable window
	OnlineDefault     bool           // default can_online_booked for new ledger rows
	ConsumerEnabled   bool           // run the broker audit consumer in-process
}

// Load reads configuration values from environment variables and
// returns a Config.  Missing required variables cause the program to
// exit with a fatal log message.
func Load() Config {
	return Config{
		Env:               must("APP_ENV"),
		Port:              must("APP_PORT"),
		DBUser:            must("DB_USER"),
		DBPass:            os.Getenv("DB_PASS"), // empty allowed
		DBHost:            must("DB_HOST"),
		DBPort:            must("DB_PORT"),
		DBName:            must("DB_NAME"),
		DBMaxOpenConns:    parseInt(getenv("DB_MAX_OPEN_CONNS", "25"), 25),
		DBMaxIdleConns:    parseInt(getenv("DB_MAX_IDLE_CONNS", "25"), 25),
		DBConnMaxLifetime: parseDur("DB_CONN_MAX_LIFETIME", getenv("DB_CONN_MAX_LIFETIME", "30m"), 30*time.Minute),
		JWTSecret:         must("JWT_SECRET"),
		RestaurantTZ:      loadLocation(getenv("RESTAURANT_TZ", "UTC")),
		SessionDuration:   parseDur("SESSION_DURATION", getenv("SESSION_DURATION", "2h"), 2*time.Hour),
		OnlineDefault:     getenv("ONLINE_BOOKING_DEFAULT", "true") == "true",
		ConsumerEnabled:   getenv("AUDIT_CONSUMER_ENABLED", "true") == "true",
	}
}

// must retrieves the value of a required environment variable.  If
// the variable is unset or empty, the application logs a fatal error
// and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// loadLocation resolves an IANA timezone name, falling back to UTC
// with a fatal log on bad input so a misconfigured deployment cannot
// silently bucket days in the wrong zone.
func loadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Fatalf("invalid RESTAURANT_TZ %q: %v", name, err)
	}
	return loc
}

// Helper functions shared with the cache and ratelimit loaders.
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

// parseDur falls back to the variable's documented default on
// unparseable input, logging loudly: a typo in SESSION_DURATION must
// not silently shrink every bookable window.
func parseDur(name, s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		log.Printf("config: invalid %s %q, using %s", name, s, def)
		return def
	}
	return d
}
