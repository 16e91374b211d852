package service

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"stride/internal/modkit/repokit"
	perr "stride/internal/platform/errors"
	"stride/internal/services/chatlog/domain"
	"stride/internal/services/chatlog/repo"
	dispatch "stride/internal/services/dispatch/domain"
)

type fakeTx struct{ repokit.TxRunner }

func (fakeTx) Tx(_ context.Context, fn func(q repokit.Queryer) error) error { return fn(nil) }

type fakeStorage struct {
	chats     map[string]domain.Chat
	messages  []domain.Message
	polls     []domain.PollResponse
	lastLimit int
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{chats: make(map[string]domain.Chat)}
}

func (f *fakeStorage) UpsertChat(_ context.Context, userID, externalID string) (domain.Chat, error) {
	if c, ok := f.chats[externalID]; ok {
		c.UserID = userID
		f.chats[externalID] = c
		return c, nil
	}
	c := domain.Chat{ID: int64(len(f.chats) + 1), ExternalID: externalID, UserID: userID}
	f.chats[externalID] = c
	return c, nil
}

func (f *fakeStorage) GetChatByExternalID(_ context.Context, externalID string) (domain.Chat, error) {
	c, ok := f.chats[externalID]
	if !ok {
		return domain.Chat{}, perr.NotFoundf("chat %q", externalID)
	}
	return c, nil
}

func (f *fakeStorage) InsertMessage(
	_ context.Context, chatID int64, dir domain.Direction, kind, body string,
) (domain.Message, error) {
	m := domain.Message{ID: int64(len(f.messages) + 1), ChatID: chatID, Direction: dir, Kind: kind, Body: body}
	f.messages = append(f.messages, m)
	return m, nil
}

func (f *fakeStorage) InsertPollResponse(
	_ context.Context, chatExternalID, pollID, option string,
) (domain.PollResponse, error) {
	p := domain.PollResponse{ID: int64(len(f.polls) + 1), ChatExternalID: chatExternalID, PollID: pollID, Option: option}
	f.polls = append(f.polls, p)
	return p, nil
}

func (f *fakeStorage) ListMessages(
	_ context.Context, in domain.HistoryInput, hardLimit int,
) ([]domain.Message, domain.AfterKey, error) {
	f.lastLimit = hardLimit
	return nil, domain.AfterKey{}, nil
}

type fakeBinder struct{ st *fakeStorage }

func (b fakeBinder) Bind(repokit.Queryer) repo.Storage { return b.st }

func newService(st *fakeStorage, cfg Config) *Service {
	return New(fakeTx{}, fakeBinder{st: st}, zerolog.Nop(), cfg)
}

func TestRecordInboundNeedsKnownChat(t *testing.T) {
	st := newFakeStorage()
	s := newService(st, Config{})

	if _, err := s.RecordInbound(context.Background(), "c1", "text", "hi"); !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("inbound to unknown chat: got %v, want not found", err)
	}

	if _, err := s.EnsureChat(context.Background(), "u1", "c1"); err != nil {
		t.Fatalf("ensure chat: %v", err)
	}
	m, err := s.RecordInbound(context.Background(), "c1", "", "hi")
	if err != nil {
		t.Fatalf("inbound: %v", err)
	}
	if m.Kind != "text" {
		t.Errorf("kind = %q, want default text", m.Kind)
	}
	if m.Direction != domain.DirIn {
		t.Errorf("direction = %q", m.Direction)
	}
}

func TestRecordOutboundSkipsUnknownChat(t *testing.T) {
	st := newFakeStorage()
	s := newService(st, Config{})

	m, err := s.RecordOutbound(context.Background(), "nobody", "text", "hello")
	if err != nil {
		t.Fatalf("outbound to unknown chat should not fail: %v", err)
	}
	if m.ID != 0 {
		t.Errorf("message was recorded anyway: %+v", m)
	}
	if len(st.messages) != 0 {
		t.Errorf("messages = %d, want 0", len(st.messages))
	}
}

func TestRecordTruncatesBody(t *testing.T) {
	st := newFakeStorage()
	s := newService(st, Config{BodyMaxRunes: 10})

	if _, err := s.EnsureChat(context.Background(), "u1", "c1"); err != nil {
		t.Fatalf("ensure chat: %v", err)
	}
	m, err := s.RecordInbound(context.Background(), "c1", "text", strings.Repeat("é", 25))
	if err != nil {
		t.Fatalf("inbound: %v", err)
	}
	if got := len([]rune(m.Body)); got != 10 {
		t.Errorf("body runes = %d, want 10", got)
	}
}

func TestHistoryCapsLimit(t *testing.T) {
	st := newFakeStorage()
	s := newService(st, Config{HardLimit: 50})

	if _, _, err := s.History(context.Background(), domain.HistoryInput{UserID: "u1", Limit: 9999}); err != nil {
		t.Fatalf("history: %v", err)
	}
	if st.lastLimit != 50 {
		t.Errorf("limit = %d, want capped at 50", st.lastLimit)
	}

	if _, _, err := s.History(context.Background(), domain.HistoryInput{}); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Errorf("history without user: got %v, want invalid argument", err)
	}
}

type stubPort struct {
	err   error
	calls int
}

func (p *stubPort) Deliver(context.Context, string, dispatch.Payload) error {
	p.calls++
	return p.err
}

func TestTapRecordsAfterDelivery(t *testing.T) {
	st := newFakeStorage()
	s := newService(st, Config{})
	if _, err := s.EnsureChat(context.Background(), "u1", "c1"); err != nil {
		t.Fatalf("ensure chat: %v", err)
	}

	next := &stubPort{}
	tap := &Tap{Next: next, Rec: s, Log: zerolog.Nop()}

	if err := tap.Deliver(context.Background(), "c1", dispatch.Text("hello", nil)); err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if next.calls != 1 {
		t.Errorf("inner deliveries = %d, want 1", next.calls)
	}
	if len(st.messages) != 1 || st.messages[0].Direction != domain.DirOut {
		t.Errorf("outbound log = %+v, want one out message", st.messages)
	}
}

func TestTapDeliveryFailureIsNotLogged(t *testing.T) {
	st := newFakeStorage()
	s := newService(st, Config{})
	if _, err := s.EnsureChat(context.Background(), "u1", "c1"); err != nil {
		t.Fatalf("ensure chat: %v", err)
	}

	next := &stubPort{err: perr.Unavailablef("transport down")}
	tap := &Tap{Next: next, Rec: s, Log: zerolog.Nop()}

	if err := tap.Deliver(context.Background(), "c1", dispatch.Text("hello", nil)); err == nil {
		t.Fatal("deliver should surface the transport error")
	}
	if len(st.messages) != 0 {
		t.Errorf("failed delivery was logged: %+v", st.messages)
	}
}
