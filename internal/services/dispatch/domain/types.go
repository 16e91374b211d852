// Package domain defines the outbound dispatch contract the core hands
// rendered events to; the chat transport adapter translates from here
package domain

// PayloadKind discriminates the payload variants
type PayloadKind string

// Payload kinds
const (
	KindText  PayloadKind = "text"
	KindVoice PayloadKind = "voice"
	KindPhoto PayloadKind = "photo"
)

// InlineAction is one button: a label plus an opaque token the transport
// round-trips back verbatim; tokens are capped at 64 bytes
type InlineAction struct {
	Label string
	Token Token
}

// ActionGrid is rows of inline actions
type ActionGrid [][]InlineAction

// Payload is one deliverable event
// Body is always set; Audio and Image accompany voice and photo kinds
type Payload struct {
	Kind    PayloadKind
	Body    string
	Audio   []byte
	Image   []byte
	Actions ActionGrid
}

// Text builds a text payload
func Text(body string, actions ActionGrid) Payload {
	return Payload{Kind: KindText, Body: body, Actions: actions}
}

// Voice builds a voice payload with synthesized audio attached
func Voice(body string, audio []byte, actions ActionGrid) Payload {
	return Payload{Kind: KindVoice, Body: body, Audio: audio, Actions: actions}
}

// Photo builds a photo payload with image bytes attached
func Photo(body string, image []byte, actions ActionGrid) Payload {
	return Payload{Kind: KindPhoto, Body: body, Image: image, Actions: actions}
}
