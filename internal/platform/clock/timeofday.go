package clock

import (
	"fmt"
	"strconv"
	"strings"
)

// TimeOfDay is a wall-clock HH:MM within a civil day
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses "HH:MM" in 24h form
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return TimeOfDay{}, fmt.Errorf("invalid time of day %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return TimeOfDay{}, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return TimeOfDay{}, fmt.Errorf("invalid minute in %q", s)
	}
	return TimeOfDay{Hour: h, Minute: m}, nil
}

// MustTimeOfDay parses or panics; for literals in wiring code
func MustTimeOfDay(s string) TimeOfDay {
	t, err := ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

// String formats as zero-padded HH:MM
func (t TimeOfDay) String() string { return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute) }

// MinuteOfDay returns minutes since midnight
func (t TimeOfDay) MinuteOfDay() int { return t.Hour*60 + t.Minute }

// Before reports whether t is strictly earlier in the day than u
func (t TimeOfDay) Before(u TimeOfDay) bool { return t.MinuteOfDay() < u.MinuteOfDay() }

// Add returns the time of day m minutes later, wrapping past midnight
func (t TimeOfDay) Add(m int) TimeOfDay {
	total := ((t.MinuteOfDay()+m)%1440 + 1440) % 1440
	return TimeOfDay{Hour: total / 60, Minute: total % 60}
}
