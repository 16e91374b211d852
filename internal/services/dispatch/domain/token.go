package domain

import (
	"fmt"
	"strconv"
	"strings"

	perr "stride/internal/platform/errors"
)

// Namespace tags the action family a token belongs to
type Namespace string

// Recognised token namespaces; ids are integer primary keys resolved
// server-side, never paths or user identifiers
const (
	NSSRSAgain    Namespace = "srs_again"
	NSSRSHard     Namespace = "srs_hard"
	NSSRSGood     Namespace = "srs_good"
	NSSRSEasy     Namespace = "srs_easy"
	NSSRSDevelop  Namespace = "srs_develop"
	NSCheckinDone Namespace = "checkin_done"
	NSCheckinSkip Namespace = "checkin_skip"
	NSTrackDone   Namespace = "track_done"
	NSTrackSkip   Namespace = "track_skip"
)

// MaxTokenBytes is the transport's inline-callback budget
const MaxTokenBytes = 64

// Token is the wire form <namespace>:<id>
type Token string

// NewToken encodes ns and id, guarding the 64-byte budget
func NewToken(ns Namespace, id int64) (Token, error) {
	t := Token(fmt.Sprintf("%s:%d", ns, id))
	if len(t) > MaxTokenBytes {
		return "", perr.InvalidArgf("action token %q exceeds %d bytes", t, MaxTokenBytes)
	}
	return t, nil
}

// MustToken is NewToken for namespaces whose encoded form cannot overflow
func MustToken(ns Namespace, id int64) Token {
	t, err := NewToken(ns, id)
	if err != nil {
		panic(err)
	}
	return t
}

// ParseToken splits a round-tripped token back into namespace and id
func ParseToken(t Token) (Namespace, int64, error) {
	if len(t) > MaxTokenBytes {
		return "", 0, perr.InvalidArgf("action token exceeds %d bytes", MaxTokenBytes)
	}
	idx := strings.LastIndex(string(t), ":")
	if idx <= 0 || idx == len(t)-1 {
		return "", 0, perr.InvalidArgf("malformed action token %q", t)
	}
	ns := Namespace(t[:idx])
	switch ns {
	case NSSRSAgain, NSSRSHard, NSSRSGood, NSSRSEasy, NSSRSDevelop,
		NSCheckinDone, NSCheckinSkip, NSTrackDone, NSTrackSkip:
	default:
		return "", 0, perr.InvalidArgf("unknown action namespace %q", ns)
	}
	id, err := strconv.ParseInt(string(t[idx+1:]), 10, 64)
	if err != nil {
		return "", 0, perr.InvalidArgf("non-integer id in action token %q", t)
	}
	return ns, id, nil
}
