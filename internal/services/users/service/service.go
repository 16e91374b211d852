// Package service provides the users service implementation
package service

import (
	"context"

	"stride/internal/modkit/repokit"
	perr "stride/internal/platform/errors"
	"stride/internal/platform/logger"
	"stride/internal/services/users/domain"
)

// Config for the users service
type Config struct {
	// DefaultLocale is applied when first contact carries no locale
	DefaultLocale string
	// DefaultStruggleThreshold seeds new accountability profiles
	DefaultStruggleThreshold int
	// DefaultRetention applies to users without a privacy row
	DefaultRetention domain.Retention
}

// Service implements domain.ReaderPort and domain.WriterPort
type Service struct {
	DB     repokit.TxRunner
	Binder repokit.Binder[domain.Repo]
	Log    logger.Logger
	Cfg    Config
}

// New constructs a new users service
func New(db repokit.TxRunner, b repokit.Binder[domain.Repo], log logger.Logger, cfg Config) *Service {
	if cfg.DefaultLocale == "" {
		cfg.DefaultLocale = "en"
	}
	if cfg.DefaultStruggleThreshold <= 0 {
		cfg.DefaultStruggleThreshold = 3
	}
	if !cfg.DefaultRetention.Valid() {
		cfg.DefaultRetention = domain.RetentionOneYear
	}
	return &Service{DB: db, Binder: b, Log: log, Cfg: cfg}
}

var (
	_ domain.ReaderPort = (*Service)(nil)
	_ domain.WriterPort = (*Service)(nil)
)

// Ensure implements domain.WriterPort
func (s *Service) Ensure(ctx context.Context, userID, locale string) (domain.User, error) {
	if userID == "" {
		return domain.User{}, perr.InvalidArgf("empty user id")
	}
	if locale == "" {
		locale = s.Cfg.DefaultLocale
	}
	var u domain.User
	err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
		var err error
		u, err = s.Binder.Bind(q).EnsureUser(ctx, userID, locale)
		return err
	})
	return u, err
}

// Get implements domain.ReaderPort
func (s *Service) Get(ctx context.Context, userID string) (domain.User, error) {
	var u domain.User
	err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
		var err error
		u, err = s.Binder.Bind(q).GetUser(ctx, userID)
		return err
	})
	return u, err
}

// Privacy implements domain.ReaderPort
// Users without a stored row get the configured default window
func (s *Service) Privacy(ctx context.Context, userID string) (domain.PrivacySettings, error) {
	var p domain.PrivacySettings
	err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
		var err error
		p, err = s.Binder.Bind(q).GetPrivacy(ctx, userID)
		return err
	})
	if perr.IsCode(err, perr.ErrorCodeNotFound) {
		return domain.PrivacySettings{UserID: userID, Retention: s.Cfg.DefaultRetention}, nil
	}
	return p, err
}

// SetPrivacy implements domain.WriterPort
func (s *Service) SetPrivacy(ctx context.Context, p domain.PrivacySettings) error {
	if !p.Retention.Valid() {
		return perr.InvalidArgf("unknown retention window %q", p.Retention)
	}
	return s.DB.Tx(ctx, func(q repokit.Queryer) error {
		return s.Binder.Bind(q).PutPrivacy(ctx, p)
	})
}

// Profile implements domain.ReaderPort
func (s *Service) Profile(ctx context.Context, userID string) (domain.AccountabilityProfile, error) {
	var p domain.AccountabilityProfile
	err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
		var err error
		p, err = s.Binder.Bind(q).GetProfile(ctx, userID)
		return err
	})
	return p, err
}

// SetProfile implements domain.WriterPort
func (s *Service) SetProfile(ctx context.Context, p domain.AccountabilityProfile) error {
	if !p.Personality.Valid() {
		return perr.InvalidArgf("unknown personality %q", p.Personality)
	}
	if p.StruggleThreshold <= 0 {
		p.StruggleThreshold = s.Cfg.DefaultStruggleThreshold
	}
	if p.CelebrationStyle == "" {
		p.CelebrationStyle = domain.CelebrationModerate
	}
	return s.DB.Tx(ctx, func(q repokit.Queryer) error {
		return s.Binder.Bind(q).PutProfile(ctx, p)
	})
}

// Profiles implements domain.ReaderPort
func (s *Service) Profiles(ctx context.Context) ([]domain.AccountabilityProfile, error) {
	var out []domain.AccountabilityProfile
	err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
		var err error
		out, err = s.Binder.Bind(q).ListProfiles(ctx)
		return err
	})
	return out, err
}

// LifeWeeks implements domain.ReaderPort
func (s *Service) LifeWeeks(ctx context.Context, userID string) (domain.LifeWeeksSettings, error) {
	var lw domain.LifeWeeksSettings
	err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
		var err error
		lw, err = s.Binder.Bind(q).GetLifeWeeks(ctx, userID)
		return err
	})
	return lw, err
}

// SetLifeWeeks implements domain.WriterPort
func (s *Service) SetLifeWeeks(ctx context.Context, lw domain.LifeWeeksSettings) error {
	if lw.Enabled && lw.DateOfBirth.IsZero() {
		return perr.InvalidArgf("life weeks requires a date of birth")
	}
	if lw.Destination == domain.DestinationCustom && lw.CustomPath == "" {
		return perr.InvalidArgf("custom destination requires a path")
	}
	return s.DB.Tx(ctx, func(q repokit.Queryer) error {
		return s.Binder.Bind(q).PutLifeWeeks(ctx, lw)
	})
}

// LifeWeeksEnabled implements domain.ReaderPort
func (s *Service) LifeWeeksEnabled(ctx context.Context) ([]domain.LifeWeeksSettings, error) {
	var out []domain.LifeWeeksSettings
	err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
		var err error
		out, err = s.Binder.Bind(q).ListLifeWeeksEnabled(ctx)
		return err
	})
	return out, err
}

// RetentionWindows implements domain.ReaderPort
func (s *Service) RetentionWindows(ctx context.Context) ([]domain.PrivacySettings, error) {
	var out []domain.PrivacySettings
	err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
		var err error
		out, err = s.Binder.Bind(q).ListRetentionWindows(ctx, s.Cfg.DefaultRetention)
		return err
	})
	return out, err
}

// Erase implements domain.WriterPort
// Everything the user owns goes in one transaction; vault notes are the
// user's files and are left untouched
func (s *Service) Erase(ctx context.Context, userID string) error {
	err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
		r := s.Binder.Bind(q)
		if _, err := r.GetUser(ctx, userID); err != nil {
			return err
		}
		return r.EraseUser(ctx, userID)
	})
	if err != nil {
		return err
	}
	s.Log.Info().Str("user", userID).Msg("user erased")
	return nil
}
