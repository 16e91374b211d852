// Package service runs the daily retention sweep
package service

import (
	"context"
	"time"

	"stride/internal/modkit/repokit"
	"stride/internal/platform/clock"
	"stride/internal/platform/logger"
	"stride/internal/platform/sched"
	"stride/internal/services/retention/repo"
	users "stride/internal/services/users/domain"
)

// jobName is the singleton sweep job
const jobName = "retention_sweep"

// Config for the retention service
type Config struct {
	// Interval between sweeps; daily by default
	Interval time.Duration
}

// Service owns the sweep job
type Service struct {
	DB     repokit.TxRunner
	Binder repokit.Binder[repo.Storage]
	Users  users.ReaderPort
	Sched  *sched.Scheduler
	Clock  clock.Clock
	Log    logger.Logger
	Cfg    Config
}

// New constructs a new retention service
func New(db repokit.TxRunner, b repokit.Binder[repo.Storage], u users.ReaderPort,
	sc *sched.Scheduler, clk clock.Clock, log logger.Logger, cfg Config,
) *Service {
	if cfg.Interval <= 0 {
		cfg.Interval = 24 * time.Hour
	}
	return &Service{DB: db, Binder: b, Users: u, Sched: sc, Clock: clk, Log: log, Cfg: cfg}
}

// Install registers the sweep job
func (s *Service) Install() error {
	return s.Sched.Schedule(sched.Job{
		Name:     jobName,
		Kind:     "retention",
		Schedule: sched.Every(s.Cfg.Interval),
		Enabled:  true,
		Handler:  s.run,
	})
}

func (s *Service) run(ctx context.Context, _ sched.Fire) error { return s.Sweep(ctx) }

// Sweep runs one pass over every user with a bounded retention window; the
// scheduled job and the oneshot runner both land here
func (s *Service) Sweep(ctx context.Context) error {
	rows, err := s.Users.RetentionWindows(ctx)
	if err != nil {
		return err
	}
	for _, p := range rows {
		window, bounded := p.Retention.Window()
		if !bounded {
			continue
		}
		if err := s.sweepUser(ctx, p.UserID, window); err != nil {
			return err
		}
	}
	return nil
}

// SweepUser runs one user's sweep immediately, outside the schedule
func (s *Service) SweepUser(ctx context.Context, userID string) error {
	p, err := s.Users.Privacy(ctx, userID)
	if err != nil {
		return err
	}
	window, bounded := p.Retention.Window()
	if !bounded {
		return nil
	}
	return s.sweepUser(ctx, userID, window)
}

func (s *Service) sweepUser(ctx context.Context, userID string, window time.Duration) error {
	cutoff := s.Clock.NowWall().Add(-window)

	var messages, polls, checkIns int64
	err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
		r := s.Binder.Bind(q)
		var err error
		if messages, err = r.DeleteMessagesBefore(ctx, userID, cutoff); err != nil {
			return err
		}
		if polls, err = r.DeletePollResponsesBefore(ctx, userID, cutoff); err != nil {
			return err
		}
		checkIns, err = r.DeleteCheckInsBefore(ctx, userID, cutoff)
		return err
	})
	if err != nil {
		return err
	}

	if messages+polls+checkIns > 0 {
		s.Log.Info().
			Str("user", userID).
			Time("cutoff", cutoff).
			Int64("messages", messages).
			Int64("poll_responses", polls).
			Int64("check_ins", checkIns).
			Msg("retention sweep")
	}
	return nil
}
