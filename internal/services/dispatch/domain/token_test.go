package domain

import (
	"strings"
	"testing"

	perr "stride/internal/platform/errors"
)

func TestTokenRoundTrip(t *testing.T) {
	tok, err := NewToken(NSSRSGood, 42)
	if err != nil {
		t.Fatalf("new token: %v", err)
	}
	if tok != "srs_good:42" {
		t.Errorf("token = %q", tok)
	}

	ns, id, err := ParseToken(tok)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if ns != NSSRSGood || id != 42 {
		t.Errorf("parsed %s %d, want srs_good 42", ns, id)
	}
}

func TestParseTokenRejectsMalformed(t *testing.T) {
	bad := []Token{
		"",
		"srs_good",
		"srs_good:",
		":42",
		"not_a_namespace:42",
		"srs_good:forty-two",
		Token(strings.Repeat("x", MaxTokenBytes) + ":1"),
	}
	for _, tok := range bad {
		if _, _, err := ParseToken(tok); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
			t.Errorf("ParseToken(%q) = %v, want invalid argument", tok, err)
		}
	}
}

func TestParseTokenHandlesNegativeIDs(t *testing.T) {
	// LastIndex keeps a leading minus sign with the id, not the namespace
	ns, id, err := ParseToken("checkin_done:-5")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if ns != NSCheckinDone || id != -5 {
		t.Errorf("parsed %s %d", ns, id)
	}
}

func TestMustTokenPanicsOnOverflow(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for oversized namespace")
		}
	}()
	MustToken(Namespace(strings.Repeat("n", MaxTokenBytes)), 1)
}
