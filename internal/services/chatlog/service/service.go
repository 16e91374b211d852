// Package service provides the chat log service implementation
package service

import (
	"context"

	"stride/internal/modkit/repokit"
	perr "stride/internal/platform/errors"
	"stride/internal/platform/logger"
	"stride/internal/services/chatlog/domain"
	"stride/internal/services/chatlog/repo"
)

// Config for the chat log service
type Config struct {
	// HardLimit is the maximum allowed limit per History call; defaults to 1000 if <=0
	HardLimit int
	// BodyMaxRunes truncates logged bodies; defaults to 4096 if <=0
	BodyMaxRunes int
}

// Service implements domain.RecorderPort and domain.ReaderPort
type Service struct {
	DB     repokit.TxRunner
	Binder repokit.Binder[repo.Storage]
	Log    logger.Logger
	Cfg    Config
}

// New constructs a new chat log service
func New(db repokit.TxRunner, b repokit.Binder[repo.Storage], log logger.Logger, cfg Config) *Service {
	if cfg.HardLimit <= 0 {
		cfg.HardLimit = 1000
	}
	if cfg.BodyMaxRunes <= 0 {
		cfg.BodyMaxRunes = 4096
	}
	return &Service{DB: db, Binder: b, Log: log, Cfg: cfg}
}

var (
	_ domain.RecorderPort = (*Service)(nil)
	_ domain.ReaderPort   = (*Service)(nil)
)

// EnsureChat implements domain.RecorderPort
func (s *Service) EnsureChat(ctx context.Context, userID, externalID string) (domain.Chat, error) {
	if userID == "" || externalID == "" {
		return domain.Chat{}, perr.InvalidArgf("chat needs a user id and an external id")
	}
	var c domain.Chat
	err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
		var err error
		c, err = s.Binder.Bind(q).UpsertChat(ctx, userID, externalID)
		return err
	})
	return c, err
}

// RecordInbound implements domain.RecorderPort
func (s *Service) RecordInbound(ctx context.Context, chatExternalID, kind, body string) (domain.Message, error) {
	return s.record(ctx, chatExternalID, domain.DirIn, kind, body)
}

// RecordOutbound implements domain.RecorderPort
// Unknown chats are skipped so a log miss never fails the delivery path
func (s *Service) RecordOutbound(ctx context.Context, chatExternalID, kind, body string) (domain.Message, error) {
	m, err := s.record(ctx, chatExternalID, domain.DirOut, kind, body)
	if perr.IsCode(err, perr.ErrorCodeNotFound) {
		s.Log.Debug().Str("chat", chatExternalID).Msg("outbound to unregistered chat not logged")
		return domain.Message{}, nil
	}
	return m, err
}

func (s *Service) record(
	ctx context.Context, chatExternalID string, dir domain.Direction, kind, body string,
) (domain.Message, error) {
	if chatExternalID == "" {
		return domain.Message{}, perr.InvalidArgf("empty chat id")
	}
	if kind == "" {
		kind = "text"
	}
	body = truncateRunes(body, s.Cfg.BodyMaxRunes)

	var m domain.Message
	err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
		r := s.Binder.Bind(q)
		c, err := r.GetChatByExternalID(ctx, chatExternalID)
		if err != nil {
			return err
		}
		m, err = r.InsertMessage(ctx, c.ID, dir, kind, body)
		return err
	})
	return m, err
}

// RecordPollResponse implements domain.RecorderPort
// Poll responses are keyed by the transport's chat id, deliberately outside
// the chats primary key space
func (s *Service) RecordPollResponse(
	ctx context.Context, chatExternalID, pollID, option string,
) (domain.PollResponse, error) {
	if chatExternalID == "" || pollID == "" {
		return domain.PollResponse{}, perr.InvalidArgf("poll response needs a chat id and a poll id")
	}
	var p domain.PollResponse
	err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
		var err error
		p, err = s.Binder.Bind(q).InsertPollResponse(ctx, chatExternalID, pollID, option)
		return err
	})
	return p, err
}

// History implements domain.ReaderPort
func (s *Service) History(ctx context.Context, in domain.HistoryInput) ([]domain.Message, domain.AfterKey, error) {
	if in.UserID == "" {
		return nil, domain.AfterKey{}, perr.InvalidArgf("empty user id")
	}
	limit := in.Limit
	if limit <= 0 || limit > s.Cfg.HardLimit {
		limit = s.Cfg.HardLimit
	}

	var rows []domain.Message
	var next domain.AfterKey
	err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
		var err error
		rows, next, err = s.Binder.Bind(q).ListMessages(ctx, in, limit)
		return err
	})
	if err != nil {
		return nil, domain.AfterKey{}, err
	}
	return rows, next, nil
}

func truncateRunes(s string, max int) string {
	if max <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
