// Package service delivers the weekly life-in-weeks visualisation
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"stride/internal/modkit/scope"
	"stride/internal/platform/clock"
	"stride/internal/platform/logger"
	"stride/internal/platform/retry"
	"stride/internal/platform/sched"
	dispatch "stride/internal/services/dispatch/domain"
	"stride/internal/services/lifeweeks/grid"
	users "stride/internal/services/users/domain"
)

// jobName is the singleton delivery job
const jobName = "life_weeks"

// fireTimes are the coarse slots the job wakes at; per-user hour filtering
// happens inside the fire
var fireTimes = []clock.TimeOfDay{
	{Hour: 6}, {Hour: 9}, {Hour: 12}, {Hour: 18},
}

// externalTimeout caps dispatch calls
const externalTimeout = 300 * time.Second

// Service owns the life weeks job
type Service struct {
	Users    users.ReaderPort
	Dispatch dispatch.Port
	Reply    dispatch.ReplyContextTracker // optional
	Sched    *sched.Scheduler
	Clock    clock.Clock
	Log      logger.Logger

	mu       sync.Mutex
	lastSent map[string]clock.Date // user id -> last delivery day
}

// New constructs a new life weeks service
func New(u users.ReaderPort, d dispatch.Port, reply dispatch.ReplyContextTracker,
	sc *sched.Scheduler, clk clock.Clock, log logger.Logger,
) *Service {
	return &Service{
		Users: u, Dispatch: d, Reply: reply, Sched: sc, Clock: clk, Log: log,
		lastSent: make(map[string]clock.Date),
	}
}

// Install registers the daily job over the coarse fire times
func (s *Service) Install() error {
	return s.Sched.Schedule(sched.Job{
		Name:     jobName,
		Kind:     "life_weeks",
		Schedule: sched.DailyAt(fireTimes...),
		Enabled:  true,
		Handler:  s.run,
	})
}

func (s *Service) run(ctx context.Context, fire sched.Fire) error {
	return s.RunOnce(scope.With(ctx, map[string]string{"job": fire.Job, "run": fire.RunID}))
}

// RunOnce is one coarse-slot pass; it delivers to every user whose scheduled
// weekday is today and whose configured hour has been reached, at most once
// per day per user
func (s *Service) RunOnce(ctx context.Context) error {
	now := s.Clock.NowWall()
	today := s.Clock.Today()

	settings, err := s.Users.LifeWeeksEnabled(ctx)
	if err != nil {
		return err
	}
	for _, lw := range settings {
		if lw.Weekday != now.Weekday() {
			continue
		}
		if now.Hour() < lw.TimeOfDay.Hour {
			continue
		}
		if s.sentToday(lw.UserID, today) {
			continue
		}
		if err := s.deliverTo(ctx, lw, today); err != nil {
			return err
		}
		s.markSent(lw.UserID, today)
	}
	return nil
}

func (s *Service) sentToday(userID string, today clock.Date) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSent[userID].Equal(today)
}

func (s *Service) markSent(userID string, today clock.Date) {
	s.mu.Lock()
	s.lastSent[userID] = today
	s.mu.Unlock()
}

// deliverTo renders and sends one user's grid
func (s *Service) deliverTo(ctx context.Context, lw users.LifeWeeksSettings, today clock.Date) error {
	weeks := WeeksLived(lw.DateOfBirth, today)
	img, err := grid.Render(weeks)
	if err != nil {
		return err
	}
	stats := grid.StatsFor(weeks)
	body := fmt.Sprintf("Your life in weeks. %s. What will you do with this one?", stats.Caption())

	profile, err := s.Users.Profile(ctx, lw.UserID)
	if err != nil {
		return err
	}

	if err := retry.Do(ctx, retry.Callback, func(ctx context.Context) error {
		dctx, cancel := context.WithTimeout(ctx, externalTimeout)
		defer cancel()
		return s.Dispatch.Deliver(dctx, profile.ChatID, dispatch.Photo(body, img, nil))
	}); err != nil {
		return err
	}

	if s.Reply != nil {
		if err := s.Reply.TrackReplyContext(ctx, profile.ChatID, destinationPath(lw)); err != nil {
			// Reply routing is best effort; the image is already delivered
			s.Log.Warn().Err(err).Str("user", lw.UserID).Msg("reply context tracking failed")
		}
	}
	return nil
}

// WeeksLived is the whole number of weeks between birth and today
func WeeksLived(dob, today clock.Date) int {
	days := today.DaysSince(dob)
	if days < 0 {
		return 0
	}
	return days / 7
}

// destinationPath resolves where a reply to the visualisation should land
func destinationPath(lw users.LifeWeeksSettings) string {
	switch lw.Destination {
	case users.DestinationJournal:
		return "journal"
	case users.DestinationInbox:
		return "inbox"
	case users.DestinationWeekly:
		return "weekly"
	case users.DestinationCustom:
		return lw.CustomPath
	}
	return "inbox"
}
