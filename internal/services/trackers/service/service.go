// Package service provides the trackers service implementation
package service

import (
	"context"

	"stride/internal/core/namekey"
	"stride/internal/modkit/repokit"
	perr "stride/internal/platform/errors"
	"stride/internal/services/trackers/domain"
)

// Service implements domain.Port
type Service struct {
	DB     repokit.TxRunner
	Binder repokit.Binder[domain.Repo]
}

// New constructs a new trackers service
func New(db repokit.TxRunner, b repokit.Binder[domain.Repo]) *Service {
	return &Service{DB: db, Binder: b}
}

var _ domain.Port = (*Service)(nil)

// Create implements domain.Port
// Name uniqueness is checked against the folded name so "Exercise" and
// "exercise" collide
func (s *Service) Create(ctx context.Context, t domain.Tracker) (domain.Tracker, error) {
	if t.Owner == "" {
		return domain.Tracker{}, perr.InvalidArgf("tracker requires an owner")
	}
	if t.Name == "" {
		return domain.Tracker{}, perr.InvalidArgf("tracker requires a name")
	}
	if !t.Kind.Valid() {
		return domain.Tracker{}, perr.InvalidArgf("unknown tracker kind %q", t.Kind)
	}
	if !t.Frequency.Valid() {
		return domain.Tracker{}, perr.InvalidArgf("unknown frequency %q", t.Frequency)
	}
	t.NameKey = namekey.Key(t.Name)

	var out domain.Tracker
	err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
		r := s.Binder.Bind(q)
		if existing, err := r.FindActiveByNameKey(ctx, t.Owner, t.NameKey); err == nil {
			return perr.InvalidArgf("tracker %q already exists as %q", t.Name, existing.Name)
		} else if !perr.IsCode(err, perr.ErrorCodeNotFound) {
			return err
		}
		var err error
		out, err = r.CreateTracker(ctx, t)
		return err
	})
	return out, err
}

// Get implements domain.Port
func (s *Service) Get(ctx context.Context, owner string, id int64) (domain.Tracker, error) {
	var out domain.Tracker
	err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
		var err error
		out, err = s.owned(ctx, s.Binder.Bind(q), owner, id)
		return err
	})
	return out, err
}

// Active implements domain.Port
func (s *Service) Active(ctx context.Context, owner string) ([]domain.Tracker, error) {
	var out []domain.Tracker
	err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
		var err error
		out, err = s.Binder.Bind(q).ListActive(ctx, owner)
		return err
	})
	return out, err
}

// Deactivate implements domain.Port
func (s *Service) Deactivate(ctx context.Context, owner string, id int64) error {
	return s.DB.Tx(ctx, func(q repokit.Queryer) error {
		r := s.Binder.Bind(q)
		if _, err := s.owned(ctx, r, owner, id); err != nil {
			return err
		}
		return r.Deactivate(ctx, id)
	})
}

// Load implements domain.Port
func (s *Service) Load(ctx context.Context, owner string, id int64) (*domain.Aggregate, error) {
	var agg *domain.Aggregate
	err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
		r := s.Binder.Bind(q)
		t, err := s.owned(ctx, r, owner, id)
		if err != nil {
			return err
		}
		checkIns, err := r.ListCheckIns(ctx, id)
		if err != nil {
			return err
		}
		agg, err = domain.NewAggregate(t, checkIns)
		return err
	})
	return agg, err
}

// Save implements domain.Port
func (s *Service) Save(ctx context.Context, a *domain.Aggregate) error {
	pending := a.Pending()
	if len(pending) == 0 {
		return nil
	}
	return s.DB.Tx(ctx, func(q repokit.Queryer) error {
		return s.Binder.Bind(q).InsertCheckIns(ctx, pending)
	})
}

// owned fetches a tracker and verifies the caller holds it
func (s *Service) owned(ctx context.Context, r domain.Repo, owner string, id int64) (domain.Tracker, error) {
	t, err := r.GetTracker(ctx, id)
	if err != nil {
		return domain.Tracker{}, err
	}
	if t.Owner != owner {
		return domain.Tracker{}, perr.OwnershipMismatchf("tracker %d is not held by %q", id, owner)
	}
	return t, nil
}
