package domain

import "context"

// Port is the narrow outbound seam to the chat transport
type Port interface {
	Deliver(ctx context.Context, recipientID string, p Payload) error
}

// ReplyContextTracker is an optional hook the transport may implement so a
// user's reply to a delivered event can be routed to a configured destination
type ReplyContextTracker interface {
	TrackReplyContext(ctx context.Context, recipientID, destination string) error
}
