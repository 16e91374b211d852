// Package engine implements the SM-2 spaced repetition arithmetic
//
// The functions are pure: given the same card state and rating they always
// produce the same next state, so the whole review policy is testable without
// a store or a clock
package engine

import (
	"math"

	perr "stride/internal/platform/errors"
)

// Rating is the user's recall judgement for one review
type Rating int

// Ratings, weakest recall first
const (
	RatingAgain Rating = 0
	RatingHard  Rating = 1
	RatingGood  Rating = 2
	RatingEasy  Rating = 3
)

// Valid reports whether r is in range
func (r Rating) Valid() bool { return r >= RatingAgain && r <= RatingEasy }

// MinEase is the floor the ease factor never drops below
const MinEase = 1.3

// DefaultEase seeds new cards
const DefaultEase = 2.5

// State is the card's scheduling state
type State struct {
	IntervalDays int
	Ease         float64
	Repetitions  int
}

// Review applies one rating and returns the next state
//
// Again resets the repetition run and schedules for tomorrow without touching
// ease. Any passing grade advances the run: the first two successes use the
// fixed 1 and 3 day steps, after that the interval grows by the ease factor
func Review(s State, r Rating) (State, error) {
	if !r.Valid() {
		return State{}, perr.InvalidArgf("rating %d out of range", r)
	}
	if r == RatingAgain {
		return State{IntervalDays: 1, Ease: s.Ease, Repetitions: 0}, nil
	}

	next := State{Repetitions: s.Repetitions + 1}
	switch s.Repetitions {
	case 0:
		next.IntervalDays = 1
	case 1:
		next.IntervalDays = 3
	default:
		next.IntervalDays = int(math.Floor(float64(s.IntervalDays) * s.Ease))
	}

	q := float64(3 - r)
	next.Ease = s.Ease + 0.1 - q*(0.08+q*0.02)
	if next.Ease < MinEase {
		next.Ease = MinEase
	}
	return next, nil
}
