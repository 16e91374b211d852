// Package clock provides an injectable time source for schedulers and domain code
package clock

import "time"

// Date is a civil calendar date with no time-of-day component
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf truncates t to its calendar date in t's location
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses a YYYY-MM-DD string
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, err
	}
	return DateOf(t), nil
}

// String formats the date as YYYY-MM-DD
func (d Date) String() string {
	return d.At(0, 0, time.UTC).Format("2006-01-02")
}

// At returns the instant at hour:min on this date in loc
func (d Date) At(hour, minute int, loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, hour, minute, 0, 0, loc)
}

// AddDays returns the date n days later (n may be negative)
func (d Date) AddDays(n int) Date {
	return DateOf(d.At(12, 0, time.UTC).AddDate(0, 0, n))
}

// DaysSince returns the whole number of days from other to d
func (d Date) DaysSince(other Date) int {
	a := d.At(12, 0, time.UTC)
	b := other.At(12, 0, time.UTC)
	return int(a.Sub(b).Hours() / 24)
}

// Before reports whether d is strictly earlier than other
func (d Date) Before(other Date) bool { return d.DaysSince(other) < 0 }

// After reports whether d is strictly later than other
func (d Date) After(other Date) bool { return d.DaysSince(other) > 0 }

// Equal reports whether both dates name the same day
func (d Date) Equal(other Date) bool { return d == other }

// IsZero reports whether d is the zero date
func (d Date) IsZero() bool { return d == Date{} }

// Clock is the time source threaded through every time-dependent component
// production code uses System; tests inject Fixed or Stepping clocks
type Clock interface {
	// NowWall returns the current civil wall-clock time
	NowWall() time.Time
	// NowMonotonic returns a monotonic reading suitable for measuring durations
	NowMonotonic() time.Duration
	// Today returns the current calendar date in the process timezone
	Today() Date
}

type system struct{ epoch time.Time }

// System returns the production clock backed by the OS
func System() Clock { return &system{epoch: time.Now()} }

func (s *system) NowWall() time.Time          { return time.Now() }
func (s *system) NowMonotonic() time.Duration { return time.Since(s.epoch) }
func (s *system) Today() Date                 { return DateOf(time.Now()) }

// Fixed is a clock frozen at a single instant
type Fixed struct{ T time.Time }

// NowWall implements Clock
func (f Fixed) NowWall() time.Time { return f.T }

// NowMonotonic implements Clock
func (f Fixed) NowMonotonic() time.Duration { return 0 }

// Today implements Clock
func (f Fixed) Today() Date { return DateOf(f.T) }

// Stepping is a mutable test clock whose instant advances on demand
type Stepping struct {
	T    time.Time
	mono time.Duration
}

// NewStepping builds a Stepping clock starting at t
func NewStepping(t time.Time) *Stepping { return &Stepping{T: t} }

// Advance moves the clock forward by d
func (s *Stepping) Advance(d time.Duration) {
	s.T = s.T.Add(d)
	s.mono += d
}

// NowWall implements Clock
func (s *Stepping) NowWall() time.Time { return s.T }

// NowMonotonic implements Clock
func (s *Stepping) NowMonotonic() time.Duration { return s.mono }

// Today implements Clock
func (s *Stepping) Today() Date { return DateOf(s.T) }
