package domain

import "context"

// Repo is the storage contract for trackers and check-ins
type Repo interface {
	// CreateTracker inserts a tracker and returns it with its id
	CreateTracker(ctx context.Context, t Tracker) (Tracker, error)
	// GetTracker returns the tracker or a not found error
	GetTracker(ctx context.Context, id int64) (Tracker, error)
	// FindActiveByNameKey returns the owner's active tracker with the folded name
	FindActiveByNameKey(ctx context.Context, owner, nameKey string) (Tracker, error)
	// ListActive returns the owner's active trackers ordered by name
	ListActive(ctx context.Context, owner string) ([]Tracker, error)
	// Deactivate soft-deletes a tracker
	Deactivate(ctx context.Context, id int64) error

	// ListCheckIns returns a tracker's check-ins ordered newest first
	ListCheckIns(ctx context.Context, trackerID int64) ([]CheckIn, error)
	// InsertCheckIns persists pending aggregate rows
	InsertCheckIns(ctx context.Context, rows []CheckIn) error
}

// Port is the surface other services use to work with trackers
type Port interface {
	// Create registers a new tracker, enforcing per-owner name uniqueness
	Create(ctx context.Context, t Tracker) (Tracker, error)
	// Get returns a tracker after checking it belongs to owner
	Get(ctx context.Context, owner string, id int64) (Tracker, error)
	// Active returns the owner's active trackers
	Active(ctx context.Context, owner string) ([]Tracker, error)
	// Deactivate soft-deletes an owner's tracker
	Deactivate(ctx context.Context, owner string, id int64) error
	// Load builds the aggregate for a tracker the owner holds
	Load(ctx context.Context, owner string, id int64) (*Aggregate, error)
	// Save persists an aggregate's pending check-ins atomically
	Save(ctx context.Context, a *Aggregate) error
}
