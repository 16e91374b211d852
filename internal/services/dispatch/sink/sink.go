// Package sink provides dispatch adapters used when no transport is attached
package sink

import (
	"context"
	"sync"

	"stride/internal/modkit/scope"
	"stride/internal/platform/logger"
	"stride/internal/services/dispatch/domain"
)

// Log is a dispatch adapter that records deliveries as structured log events
// it stands in for the chat transport in local runs
type Log struct {
	Logger logger.Logger
}

// Deliver implements domain.Port
func (l *Log) Deliver(ctx context.Context, recipientID string, p domain.Payload) error {
	evt := l.Logger.Info()
	// fire identity or acting user, when the caller tagged the context
	for _, k := range []string{"job", "run", "actor"} {
		if v, ok := scope.Get(ctx, k); ok {
			evt = evt.Str(k, v)
		}
	}
	evt.Str("recipient", recipientID).
		Str("kind", string(p.Kind)).
		Int("body_len", len(p.Body)).
		Int("audio_bytes", len(p.Audio)).
		Int("image_bytes", len(p.Image)).
		Int("action_rows", len(p.Actions)).
		Msg("dispatch")
	return nil
}

// Delivery is one captured dispatch
type Delivery struct {
	RecipientID string
	Payload     domain.Payload
}

// Recorder captures deliveries for tests
type Recorder struct {
	mu         sync.Mutex
	deliveries []Delivery
}

// Deliver implements domain.Port
func (r *Recorder) Deliver(_ context.Context, recipientID string, p domain.Payload) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deliveries = append(r.deliveries, Delivery{RecipientID: recipientID, Payload: p})
	return nil
}

// Deliveries returns a copy of everything captured so far
func (r *Recorder) Deliveries() []Delivery {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Delivery, len(r.deliveries))
	copy(out, r.deliveries)
	return out
}

// Reset clears the recorder
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.deliveries = nil
	r.mu.Unlock()
}
