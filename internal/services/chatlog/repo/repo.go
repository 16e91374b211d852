// Package repo provides Postgres bindings for the chat log
package repo

import (
	"context"
	"fmt"
	"strings"

	"stride/internal/modkit/repokit"
	perr "stride/internal/platform/errors"
	"stride/internal/services/chatlog/domain"
)

type (
	// PG is a Postgres binder for Storage
	PG      struct{}
	queries struct{ q repokit.Queryer }
)

// Storage defines the chat log repository
type Storage interface {
	UpsertChat(ctx context.Context, userID, externalID string) (domain.Chat, error)
	GetChatByExternalID(ctx context.Context, externalID string) (domain.Chat, error)
	InsertMessage(ctx context.Context, chatID int64, dir domain.Direction, kind, body string) (domain.Message, error)
	InsertPollResponse(ctx context.Context, chatExternalID, pollID, option string) (domain.PollResponse, error)
	ListMessages(ctx context.Context, in domain.HistoryInput, hardLimit int) ([]domain.Message, domain.AfterKey, error)
}

// Compile-time assertion: queries implements Storage
var _ Storage = (*queries)(nil)

// NewPG returns a Postgres binder for Storage
func NewPG() repokit.Binder[Storage] { return PG{} }

// Bind implements repokit.Binder
func (PG) Bind(q repokit.Queryer) Storage { return &queries{q: q} }

// UpsertChat registers the conversation, keeping the original created_at
func (r *queries) UpsertChat(ctx context.Context, userID, externalID string) (domain.Chat, error) {
	row := r.q.QueryRow(ctx, `
		INSERT INTO chats (external_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (external_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING id, external_id, user_id, created_at
	`, externalID, userID)
	return scanChat(row)
}

// GetChatByExternalID returns the chat or a not found error
func (r *queries) GetChatByExternalID(ctx context.Context, externalID string) (domain.Chat, error) {
	row := r.q.QueryRow(ctx, `
		SELECT id, external_id, user_id, created_at
		FROM chats WHERE external_id = $1
	`, externalID)
	c, err := scanChat(row)
	if err != nil {
		if repokit.IsNoRows(err) {
			return domain.Chat{}, perr.NotFoundf("chat %q", externalID)
		}
		return domain.Chat{}, err
	}
	return c, nil
}

// InsertMessage logs one message against the internal chat key
func (r *queries) InsertMessage(
	ctx context.Context, chatID int64, dir domain.Direction, kind, body string,
) (domain.Message, error) {
	row := r.q.QueryRow(ctx, `
		INSERT INTO messages (chat_id, direction, kind, body)
		VALUES ($1, $2, $3, $4)
		RETURNING id, chat_id, direction, kind, body, created_at
	`, chatID, string(dir), kind, body)

	var m domain.Message
	var dirStr string
	if err := row.Scan(&m.ID, &m.ChatID, &dirStr, &m.Kind, &m.Body, &m.CreatedAt); err != nil {
		return domain.Message{}, err
	}
	m.Direction = domain.Direction(dirStr)
	return m, nil
}

// InsertPollResponse logs one poll answer against the external chat id
func (r *queries) InsertPollResponse(
	ctx context.Context, chatExternalID, pollID, option string,
) (domain.PollResponse, error) {
	row := r.q.QueryRow(ctx, `
		INSERT INTO poll_responses (chat_id, poll_id, option)
		VALUES ($1, $2, $3)
		RETURNING id, chat_id, poll_id, option, created_at
	`, chatExternalID, pollID, option)

	var p domain.PollResponse
	if err := row.Scan(&p.ID, &p.ChatExternalID, &p.PollID, &p.Option, &p.CreatedAt); err != nil {
		return domain.PollResponse{}, err
	}
	return p, nil
}

// ListMessages pages a user's history with a dynamic WHERE and numbered args
func (r *queries) ListMessages(
	ctx context.Context, in domain.HistoryInput, hardLimit int,
) ([]domain.Message, domain.AfterKey, error) {
	var sb strings.Builder
	var args []any
	arg := func(v any) string { args = append(args, v); return fmt.Sprintf("$%d", len(args)) }

	sb.WriteString(`
		SELECT m.id, m.chat_id, m.direction, m.kind, m.body, m.created_at
		FROM messages m
		JOIN chats c ON m.chat_id = c.id
		WHERE c.user_id = ` + arg(in.UserID) + "\n")

	if !in.Since.IsZero() {
		sb.WriteString("  AND m.created_at >= " + arg(in.Since) + "\n")
	}
	if !in.Until.IsZero() {
		sb.WriteString("  AND m.created_at < " + arg(in.Until) + "\n")
	}

	// Keyset only when AfterKey is set
	if in.After.ID != 0 {
		sb.WriteString("  AND (m.created_at, m.id) > (" + arg(in.After.CreatedAt) + ", " + arg(in.After.ID) + ")\n")
	}

	if in.Direction != "" {
		sb.WriteString("  AND m.direction = " + arg(string(in.Direction)) + "\n")
	}
	if in.Kind != "" {
		sb.WriteString("  AND m.kind = " + arg(in.Kind) + "\n")
	}

	sb.WriteString("ORDER BY m.created_at, m.id\nLIMIT " + arg(hardLimit))

	rows, err := r.q.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, domain.AfterKey{}, err
	}
	defer rows.Close()

	out := make([]domain.Message, 0, hardLimit)
	var last domain.AfterKey
	for rows.Next() {
		var m domain.Message
		var dirStr string
		if err := rows.Scan(&m.ID, &m.ChatID, &dirStr, &m.Kind, &m.Body, &m.CreatedAt); err != nil {
			return nil, domain.AfterKey{}, err
		}
		m.Direction = domain.Direction(dirStr)
		out = append(out, m)
		last = domain.AfterKey{CreatedAt: m.CreatedAt, ID: m.ID}
	}
	return out, last, rows.Err()
}

func scanChat(row interface{ Scan(...any) error }) (domain.Chat, error) {
	var c domain.Chat
	if err := row.Scan(&c.ID, &c.ExternalID, &c.UserID, &c.CreatedAt); err != nil {
		return domain.Chat{}, err
	}
	return c, nil
}
