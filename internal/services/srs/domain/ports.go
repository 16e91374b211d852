package domain

import (
	"context"

	"stride/internal/platform/clock"
	"stride/internal/services/srs/engine"
)

// Repo is the storage contract for cards and review history
type Repo interface {
	// GetCard returns the card or a not found error
	GetCard(ctx context.Context, id int64) (Card, error)
	// GetCardByPath returns the card for a vault-relative path
	GetCardByPath(ctx context.Context, notePath string) (Card, error)
	// UpsertCard inserts or updates by note path and returns the stored row
	UpsertCard(ctx context.Context, c Card) (Card, error)
	// UpdateCardState writes the post-review scheduling fields
	UpdateCardState(ctx context.Context, c Card) error
	// ListDue returns due enabled cards ordered by next review ascending
	ListDue(ctx context.Context, today clock.Date, limit int, noteType NoteType) ([]Card, error)
	// RecomputeDue refreshes is_due for every enabled card and returns how
	// many flipped to due
	RecomputeDue(ctx context.Context, today clock.Date) (int, error)
	// InsertReview appends one history row
	InsertReview(ctx context.Context, r Review) error
}

// BacklinkExtractor finds notes that reference the given note
// The provided default is a plain text match over file bodies; callers may
// swap in something smarter
type BacklinkExtractor interface {
	Backlinks(ctx context.Context, notePath string, limit int) ([]string, error)
}

// Port is the SRS surface the runtime and transport call
type Port interface {
	// Rate applies a rating and persists card, history and vault atomically
	Rate(ctx context.Context, userID string, cardID int64, rating engine.Rating) (Card, error)
	// DueCards returns up to limit due cards, optionally filtered by type
	DueCards(ctx context.Context, limit int, noteType NoteType) ([]Card, error)
	// SyncVault walks the vault and upserts card rows from front-matter
	SyncVault(ctx context.Context) (int, error)
	// Develop builds the development session context for a card
	Develop(ctx context.Context, cardID int64) (Session, error)
	// ScheduleUser installs the user's morning review batch job
	ScheduleUser(ctx context.Context, userID, chatID string, at clock.TimeOfDay) error
	// UnscheduleUser removes the user's review job
	UnscheduleUser(ctx context.Context, userID string) error
	// Rehydrate reinstalls registered review jobs, called once at startup
	Rehydrate(ctx context.Context) error
}
