// Package repo provides Postgres bindings for the retention sweeper
package repo

import (
	"context"
	"time"

	"stride/internal/modkit/repokit"
)

type (
	// PG is a Postgres binder for Storage
	PG      struct{}
	queries struct{ q repokit.Queryer }
)

// Storage is the sweeper's deletion surface
// Messages join chats on the internal primary key while poll responses join
// on the external chat identifier; the two id spaces must never be conflated
type Storage interface {
	DeleteMessagesBefore(ctx context.Context, userID string, cutoff time.Time) (int64, error)
	DeletePollResponsesBefore(ctx context.Context, userID string, cutoff time.Time) (int64, error)
	DeleteCheckInsBefore(ctx context.Context, userID string, cutoff time.Time) (int64, error)
}

// Compile-time assertion: queries implements Storage
var _ Storage = (*queries)(nil)

// NewPG returns a Postgres binder for Storage
func NewPG() repokit.Binder[Storage] { return PG{} }

// Bind implements repokit.Binder
func (PG) Bind(q repokit.Queryer) Storage { return &queries{q: q} }

// DeleteMessagesBefore removes the user's messages older than cutoff,
// scoped through chats by the internal chat primary key
func (r *queries) DeleteMessagesBefore(ctx context.Context, userID string, cutoff time.Time) (int64, error) {
	tag, err := r.q.Exec(ctx, `
		DELETE FROM messages m
		USING chats c
		WHERE m.chat_id = c.id
			AND c.user_id = $1
			AND m.created_at < $2
	`, userID, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// DeletePollResponsesBefore removes the user's poll responses older than
// cutoff; poll rows carry the external chat identifier, not the primary key
func (r *queries) DeletePollResponsesBefore(ctx context.Context, userID string, cutoff time.Time) (int64, error) {
	tag, err := r.q.Exec(ctx, `
		DELETE FROM poll_responses pr
		USING chats c
		WHERE pr.chat_id = c.external_id
			AND c.user_id = $1
			AND pr.created_at < $2
	`, userID, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// DeleteCheckInsBefore removes the user's check-ins older than cutoff;
// tracker rows are never touched by retention
func (r *queries) DeleteCheckInsBefore(ctx context.Context, userID string, cutoff time.Time) (int64, error) {
	tag, err := r.q.Exec(ctx, `
		DELETE FROM check_ins WHERE user_id = $1 AND created_at < $2
	`, userID, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
