// Package domain defines trackers, check-ins and the aggregate guarding them
package domain

import (
	"time"

	"stride/internal/platform/clock"
)

// TrackerKind classifies what a tracker watches
type TrackerKind string

// Tracker kinds
const (
	KindHabit      TrackerKind = "habit"
	KindMedication TrackerKind = "medication"
	KindValue      TrackerKind = "value"
	KindCommitment TrackerKind = "commitment"
)

// Valid reports whether k names a known kind
func (k TrackerKind) Valid() bool {
	switch k {
	case KindHabit, KindMedication, KindValue, KindCommitment:
		return true
	}
	return false
}

// Frequency is how often a tracker expects a check-in
type Frequency string

// Frequencies
const (
	FreqDaily  Frequency = "daily"
	FreqWeekly Frequency = "weekly"
	FreqCustom Frequency = "custom"
)

// Valid reports whether f names a known frequency
func (f Frequency) Valid() bool {
	switch f {
	case FreqDaily, FreqWeekly, FreqCustom:
		return true
	}
	return false
}

// Tracker is one tracked obligation
// NameKey is the folded form of Name; (owner, NameKey) is unique among
// active rows
type Tracker struct {
	ID        int64
	Owner     string
	Kind      TrackerKind
	Name      string
	NameKey   string
	Frequency Frequency
	CheckTime *clock.TimeOfDay // optional per-tracker reminder time
	Active    bool
	CreatedAt time.Time
}

// CheckInStatus is the outcome recorded for one calendar day
type CheckInStatus string

// Check-in statuses
const (
	StatusCompleted CheckInStatus = "completed"
	StatusSkipped   CheckInStatus = "skipped"
	StatusPartial   CheckInStatus = "partial"
)

// CheckIn is one dated record against a tracker
// CreatedAt is pinned to 12:00 UTC of the calendar day it covers so that
// date equality is stable across timezones
type CheckIn struct {
	ID        int64
	TrackerID int64
	Owner     string
	Status    CheckInStatus
	Note      string
	CreatedAt time.Time
}

// Date returns the calendar day the check-in covers
func (c CheckIn) Date() clock.Date { return clock.DateOf(c.CreatedAt.UTC()) }

// checkInAt pins a calendar date to its canonical storage instant
func checkInAt(d clock.Date) time.Time { return d.At(12, 0, time.UTC) }
