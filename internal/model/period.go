package model

import "time"

// IntervalUnit is the unit of a period template's recurrence cadence.
type IntervalUnit string

const (
	IntervalDay   IntervalUnit = "DAY"
	IntervalWeek  IntervalUnit = "WEEK"
	IntervalMonth IntervalUnit = "MONTH"
)

// Valid reports whether the unit is one of the supported values.
func (u IntervalUnit) Valid() bool {
	switch u {
	case IntervalDay, IntervalWeek, IntervalMonth:
		return true
	}
	return false
}

// Period is a recurring time-window template, e.g. "Friday dinner,
// weekly from 2026-01-09 18:00".  Templates are seeded once and are
// read-only afterwards; concrete occurrences are materialized from
// them by the scheduler.
//
// Fields:
//  ID             – primary key identifier.
//  Title          – operator-facing name of the window.
//  IntervalUnit   – recurrence step unit (DAY, WEEK, MONTH).
//  IntervalAmount – number of units between occurrences.
//  AnchorStart    – first concrete start instant.
//  CreatedAt      – creation timestamp.
type Period struct {
	ID             uint64       `json:"id"`              // periods.id
	Title          string       `json:"title"`           // periods.title
	IntervalUnit   IntervalUnit `json:"interval_unit"`   // periods.interval_unit
	IntervalAmount uint32       `json:"interval_amount"` // periods.interval_amount
	AnchorStart    time.Time    `json:"anchor_start"`    // periods.anchor_start
	CreatedAt      time.Time    `json:"created_at"`      // periods.created_at
}

// ConcretePeriod is one materialized occurrence of a Period template.
// Occurrences are never deleted while ledger rows reference them;
// historical periods are kept for audit.
//
// Fields:
//  ID        – primary key identifier.
//  PeriodID  – owning template.
//  StartedAt – start instant of the bookable window.
//  EndedAt   – end instant (StartedAt + fixed session duration).
//  CreatedAt – creation timestamp.
type ConcretePeriod struct {
	ID        uint64    `json:"id"`         // concrete_periods.id
	PeriodID  uint64    `json:"period_id"`  // concrete_periods.period_id
	StartedAt time.Time `json:"started_at"` // concrete_periods.started_at
	EndedAt   time.Time `json:"ended_at"`   // concrete_periods.ended_at
	CreatedAt time.Time `json:"created_at"` // concrete_periods.created_at
}
