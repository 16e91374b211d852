package domain

import "context"

// RecorderPort is the write interface for the chat log
type RecorderPort interface {
	// EnsureChat registers the transport conversation for a user, returning
	// the existing row when the external id is already known
	EnsureChat(ctx context.Context, userID, externalID string) (Chat, error)
	// RecordInbound logs a message the user sent
	RecordInbound(ctx context.Context, chatExternalID, kind, body string) (Message, error)
	// RecordOutbound logs a message the runtime delivered; unknown chats are
	// skipped rather than failing the delivery path
	RecordOutbound(ctx context.Context, chatExternalID, kind, body string) (Message, error)
	// RecordPollResponse logs one poll answer keyed by the external chat id
	RecordPollResponse(ctx context.Context, chatExternalID, pollID, option string) (PollResponse, error)
}

// ReaderPort is the read interface for the chat log
type ReaderPort interface {
	// History returns up to Limit rows ordered by (created_at, id)
	History(ctx context.Context, in HistoryInput) (rows []Message, next AfterKey, err error)
}
