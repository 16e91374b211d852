package domain

import (
	"context"

	"stride/internal/platform/sched"
	dispatch "stride/internal/services/dispatch/domain"
)

// CheckinActions handles check-in and tracker action tokens
type CheckinActions interface {
	HandleAction(ctx context.Context, userID string, token dispatch.Token) (string, error)
}

// ReviewActions handles review and develop tokens and on-demand vault syncs
type ReviewActions interface {
	HandleAction(ctx context.Context, userID, chatID string, token dispatch.Token) (string, error)
	SyncVault(ctx context.Context) (int, error)
}

// JobLister snapshots the in-process scheduler
type JobLister interface {
	Snapshot() []sched.Job
}
