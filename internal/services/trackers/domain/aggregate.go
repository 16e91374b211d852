package domain

import (
	"stride/internal/platform/clock"
	perr "stride/internal/platform/errors"
)

// Aggregate is a tracker plus its check-ins, treated as one consistency
// boundary; it is the only sanctioned way to create CheckIn rows.
// The aggregate never writes to storage itself: commands append pending
// check-ins the caller persists via Pending
type Aggregate struct {
	tracker  Tracker
	existing []CheckIn
	pending  []CheckIn
}

// NewAggregate builds the aggregate, rejecting rows that do not belong to
// the tracker
func NewAggregate(t Tracker, checkIns []CheckIn) (*Aggregate, error) {
	for _, c := range checkIns {
		if c.TrackerID != t.ID {
			return nil, perr.OwnershipMismatchf(
				"check-in %d belongs to tracker %d, not %d", c.ID, c.TrackerID, t.ID)
		}
		if c.Owner != t.Owner {
			return nil, perr.OwnershipMismatchf(
				"check-in %d owner %q disagrees with tracker owner %q", c.ID, c.Owner, t.Owner)
		}
	}
	return &Aggregate{tracker: t, existing: checkIns}, nil
}

// Tracker returns the aggregate root
func (a *Aggregate) Tracker() Tracker { return a.tracker }

// MarkCompleted records a completed check-in for the given date
func (a *Aggregate) MarkCompleted(d clock.Date) error { return a.append(d, StatusCompleted, "") }

// Skip records a skipped check-in for the given date
func (a *Aggregate) Skip(d clock.Date) error { return a.append(d, StatusSkipped, "") }

// MarkPartial records a partial check-in with an optional note
func (a *Aggregate) MarkPartial(d clock.Date, note string) error {
	return a.append(d, StatusPartial, note)
}

func (a *Aggregate) append(d clock.Date, status CheckInStatus, note string) error {
	if a.HasCheckIn(d) {
		return perr.DuplicateCheckInf("tracker %d already has a check-in for %s", a.tracker.ID, d)
	}
	a.pending = append(a.pending, CheckIn{
		TrackerID: a.tracker.ID,
		Owner:     a.tracker.Owner,
		Status:    status,
		Note:      note,
		CreatedAt: checkInAt(d),
	})
	return nil
}

// HasCheckIn reports whether any row, persisted or pending, covers d
func (a *Aggregate) HasCheckIn(d clock.Date) bool {
	for _, c := range a.existing {
		if c.Date().Equal(d) {
			return true
		}
	}
	for _, c := range a.pending {
		if c.Date().Equal(d) {
			return true
		}
	}
	return false
}

// Pending returns a snapshot of check-ins awaiting persistence
func (a *Aggregate) Pending() []CheckIn {
	out := make([]CheckIn, len(a.pending))
	copy(out, a.pending)
	return out
}

// ComputeStreak returns the greatest k such that every day in
// [today-k+1, today] has a completed or partial check-in
func (a *Aggregate) ComputeStreak(today clock.Date) int {
	counted := make(map[clock.Date]bool)
	a.eachCheckIn(func(c CheckIn) {
		if c.Status == StatusCompleted || c.Status == StatusPartial {
			counted[c.Date()] = true
		}
	})
	streak := 0
	for d := today; counted[d]; d = d.AddDays(-1) {
		streak++
	}
	return streak
}

// ConsecutiveMisses returns, for daily trackers, how many days today is past
// the latest check-in of any status, floored at zero. For non-daily
// frequencies the count is defined to be zero
func (a *Aggregate) ConsecutiveMisses(today clock.Date) int {
	if a.tracker.Frequency != FreqDaily {
		return 0
	}
	var latest clock.Date
	seen := false
	a.eachCheckIn(func(c CheckIn) {
		d := c.Date()
		if !seen || d.After(latest) {
			latest = d
			seen = true
		}
	})
	if !seen {
		return 0
	}
	m := today.DaysSince(latest)
	if m < 0 {
		return 0
	}
	return m
}

func (a *Aggregate) eachCheckIn(fn func(CheckIn)) {
	for _, c := range a.existing {
		fn(c)
	}
	for _, c := range a.pending {
		fn(c)
	}
}
