package service

import (
	"context"

	"stride/internal/platform/logger"
	"stride/internal/services/chatlog/domain"
	dispatch "stride/internal/services/dispatch/domain"
)

// Tap wraps a dispatch port and logs each delivery as an outbound message
// Recording failures are logged and swallowed; delivery comes first
type Tap struct {
	Next dispatch.Port
	Rec  domain.RecorderPort
	Log  logger.Logger
}

var _ dispatch.Port = (*Tap)(nil)

// Deliver implements the dispatch port
func (t *Tap) Deliver(ctx context.Context, recipientID string, p dispatch.Payload) error {
	if err := t.Next.Deliver(ctx, recipientID, p); err != nil {
		return err
	}
	if t.Rec != nil {
		if _, err := t.Rec.RecordOutbound(ctx, recipientID, string(p.Kind), p.Body); err != nil {
			t.Log.Warn().Err(err).Str("chat", recipientID).Msg("outbound message not logged")
		}
	}
	return nil
}
