// Package domain defines spaced repetition cards and their contracts
package domain

import (
	"time"

	"stride/internal/platform/clock"
	"stride/internal/services/srs/engine"
)

// NoteType classifies a vault note for review purposes
type NoteType string

// Note types
const (
	NoteIdea  NoteType = "idea"
	NoteTrail NoteType = "trail"
	NoteMOC   NoteType = "moc"
	NoteOther NoteType = "other"
)

// ParseNoteType maps a front-matter type value to a known note type
func ParseNoteType(s string) NoteType {
	switch NoteType(s) {
	case NoteIdea, NoteTrail, NoteMOC:
		return NoteType(s)
	}
	return NoteOther
}

// Card is one reviewable vault note
// NotePath is vault-relative and unique; the stored scheduling state and the
// file's front-matter must agree after every mutation
type Card struct {
	ID           int64
	NotePath     string
	NoteType     NoteType
	Title        string
	SRSEnabled   bool
	NextReview   clock.Date
	LastReview   clock.Date // zero until first review
	IntervalDays int
	Ease         float64
	Repetitions  int
	IsDue        bool
	TotalReviews int
}

// State extracts the card's scheduling state for the review arithmetic
func (c Card) State() engine.State {
	return engine.State{IntervalDays: c.IntervalDays, Ease: c.Ease, Repetitions: c.Repetitions}
}

// Review is one append-only history row
type Review struct {
	ID             int64
	CardID         int64
	UserID         string
	Rating         engine.Rating
	IntervalBefore int
	IntervalAfter  int
	EaseBefore     float64
	EaseAfter      float64
	ReviewedAt     time.Time
}

// Session is the context handed to the external agent when the user asks to
// develop a note; it has no side effect on card state
type Session struct {
	NotePath  string
	Title     string
	Excerpt   string
	Backlinks []string
}
