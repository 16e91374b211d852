// Package domain defines core types and interfaces for the chat log
package domain

import "time"

// Chat binds a transport conversation to a user; ID is the internal primary
// key and ExternalID is the transport's chat identifier. The two id spaces
// must never be conflated: messages reference ID, poll responses reference
// ExternalID
type Chat struct {
	ID         int64
	ExternalID string
	UserID     string
	CreatedAt  time.Time
}

// Direction marks who produced a message
type Direction string

// Message directions
const (
	DirIn  Direction = "in"
	DirOut Direction = "out"
)

// Message is one logged chat message
type Message struct {
	ID        int64
	ChatID    int64 // chats.id, the internal key
	Direction Direction
	Kind      string // text voice photo
	Body      string
	CreatedAt time.Time
}

// PollResponse is one recorded poll answer; ChatExternalID is the
// transport's chat id, not the internal chats primary key
type PollResponse struct {
	ID             int64
	ChatExternalID string
	PollID         string
	Option         string
	CreatedAt      time.Time
}

// AfterKey supports stable keyset pagination over (created_at, id)
type AfterKey struct {
	CreatedAt time.Time
	ID        int64
}

// HistoryInput defines the parameters for listing messages
type HistoryInput struct {
	UserID string    // required
	Since  time.Time // inclusive; zero = from start
	Until  time.Time // exclusive; zero = open-ended
	After  AfterKey  // zero value = from start
	Limit  int       // hard-capped in service

	// Optional filters (ANDed)
	Direction Direction
	Kind      string
}
