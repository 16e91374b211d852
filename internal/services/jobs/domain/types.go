// Package domain defines the persistent job registry
//
// The registry is the durable index of per-user schedules; the runtime
// scheduler itself holds everything in memory, so on startup the core walks
// these rows and reinstalls each job
package domain

import (
	"context"
	"time"
)

// JobKind names the family a registered job belongs to
type JobKind string

// Job kinds
const (
	KindCheckin   JobKind = "checkin"
	KindStruggle  JobKind = "struggle"
	KindSRS       JobKind = "srs"
	KindLifeWeeks JobKind = "life_weeks"
)

// Row is one registered job
type Row struct {
	JobName   string
	UserID    string
	Kind      JobKind
	Metadata  map[string]string
	CreatedAt time.Time
}

// Repo is the storage contract for the registry
type Repo interface {
	// Upsert writes rows idempotently, keyed by job name
	Upsert(ctx context.Context, rows []Row) error
	// ListAll returns every registered row ordered by job name
	ListAll(ctx context.Context) ([]Row, error)
	// ListUser returns a user's rows
	ListUser(ctx context.Context, userID string) ([]Row, error)
	// ClearUser removes every row owned by the user
	ClearUser(ctx context.Context, userID string) error
	// Remove deletes specific rows by job name
	Remove(ctx context.Context, jobNames []string) error
}

// Port is the registry surface other services consume
type Port interface {
	Register(ctx context.Context, rows []Row) error
	All(ctx context.Context) ([]Row, error)
	ForUser(ctx context.Context, userID string) ([]Row, error)
	Clear(ctx context.Context, userID string) error
	Unregister(ctx context.Context, jobNames ...string) error
}
