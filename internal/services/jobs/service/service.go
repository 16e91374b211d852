// Package service provides the job registry service
package service

import (
	"context"

	"stride/internal/modkit/repokit"
	"stride/internal/services/jobs/domain"
)

// Service implements domain.Port
type Service struct {
	DB     repokit.TxRunner
	Binder repokit.Binder[domain.Repo]
}

// New constructs a new job registry service
func New(db repokit.TxRunner, b repokit.Binder[domain.Repo]) *Service {
	return &Service{DB: db, Binder: b}
}

var _ domain.Port = (*Service)(nil)

// Register implements domain.Port
func (s *Service) Register(ctx context.Context, rows []domain.Row) error {
	if len(rows) == 0 {
		return nil
	}
	return s.DB.Tx(ctx, func(q repokit.Queryer) error {
		return s.Binder.Bind(q).Upsert(ctx, rows)
	})
}

// All implements domain.Port
func (s *Service) All(ctx context.Context) ([]domain.Row, error) {
	var out []domain.Row
	err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
		var err error
		out, err = s.Binder.Bind(q).ListAll(ctx)
		return err
	})
	return out, err
}

// ForUser implements domain.Port
func (s *Service) ForUser(ctx context.Context, userID string) ([]domain.Row, error) {
	var out []domain.Row
	err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
		var err error
		out, err = s.Binder.Bind(q).ListUser(ctx, userID)
		return err
	})
	return out, err
}

// Clear implements domain.Port
func (s *Service) Clear(ctx context.Context, userID string) error {
	return s.DB.Tx(ctx, func(q repokit.Queryer) error {
		return s.Binder.Bind(q).ClearUser(ctx, userID)
	})
}

// Unregister implements domain.Port
func (s *Service) Unregister(ctx context.Context, jobNames ...string) error {
	if len(jobNames) == 0 {
		return nil
	}
	return s.DB.Tx(ctx, func(q repokit.Queryer) error {
		return s.Binder.Bind(q).Remove(ctx, jobNames)
	})
}
