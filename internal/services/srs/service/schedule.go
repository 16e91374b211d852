package service

import (
	"context"
	"fmt"
	"time"

	"stride/internal/modkit/repokit"
	"stride/internal/modkit/scope"
	"stride/internal/platform/clock"
	perr "stride/internal/platform/errors"
	"stride/internal/platform/retry"
	"stride/internal/platform/sched"
	dispatch "stride/internal/services/dispatch/domain"
	jobs "stride/internal/services/jobs/domain"
	"stride/internal/services/srs/engine"
)

// externalTimeout caps dispatch calls made from review fires
const externalTimeout = 300 * time.Second

func reviewJobName(userID string) string { return "srs_review_" + userID }

// recomputeJobName is the singleton nightly refresh
const recomputeJobName = "srs_recompute"

// InstallRecompute registers the nightly is_due refresh, waking just after
// midnight and every 24h thereafter
func (s *Service) InstallRecompute() error {
	now := s.Clock.NowWall()
	next := time.Date(now.Year(), now.Month(), now.Day(),
		s.Cfg.RecomputeAt.Hour, s.Cfg.RecomputeAt.Minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return s.Sched.Schedule(sched.Job{
		Name:       recomputeJobName,
		Kind:       "srs",
		Schedule:   sched.Every(24 * time.Hour),
		FirstDelay: next.Sub(now),
		Enabled:    true,
		Handler:    s.runRecompute,
	})
}

func (s *Service) runRecompute(ctx context.Context, _ sched.Fire) error { return s.Recompute(ctx) }

// Recompute refreshes is_due flags against today's date
func (s *Service) Recompute(ctx context.Context) error {
	today := s.Clock.Today()
	var flipped int
	err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
		var err error
		flipped, err = s.Binder.Bind(q).RecomputeDue(ctx, today)
		return err
	})
	if err != nil {
		return err
	}
	s.Log.Info().Int("flipped", flipped).Msg("due flags recomputed")
	return nil
}

// ScheduleUser implements domain.Port
func (s *Service) ScheduleUser(ctx context.Context, userID, chatID string, at clock.TimeOfDay) error {
	if at == (clock.TimeOfDay{}) {
		at = s.Cfg.MorningTime
	}
	if err := s.Registry.Register(ctx, []jobs.Row{{
		JobName: reviewJobName(userID),
		UserID:  userID,
		Kind:    jobs.KindSRS,
		Metadata: map[string]string{
			"chat": chatID,
			"at":   at.String(),
		},
	}}); err != nil {
		return err
	}
	return s.Sched.Schedule(sched.Job{
		Name:     reviewJobName(userID),
		Kind:     "srs",
		Schedule: sched.DailyAt(at),
		Enabled:  true,
		Data:     map[string]string{"user": userID, "chat": chatID},
		Handler:  s.runMorning,
	})
}

// UnscheduleUser implements domain.Port
func (s *Service) UnscheduleUser(ctx context.Context, userID string) error {
	s.Sched.Cancel(reviewJobName(userID))
	return s.Registry.Unregister(ctx, reviewJobName(userID))
}

// Rehydrate implements domain.Port
func (s *Service) Rehydrate(ctx context.Context) error {
	rows, err := s.Registry.All(ctx)
	if err != nil {
		return err
	}
	installed := 0
	for _, row := range rows {
		if row.Kind != jobs.KindSRS {
			continue
		}
		at, err := clock.ParseTimeOfDay(row.Metadata["at"])
		if err != nil {
			at = s.Cfg.MorningTime
		}
		if err := s.ScheduleUser(ctx, row.UserID, row.Metadata["chat"], at); err != nil {
			return err
		}
		installed++
	}
	s.Log.Info().Int("users", installed).Msg("review schedules rehydrated")
	return nil
}

// runMorning is the daily review batch fire
func (s *Service) runMorning(ctx context.Context, fire sched.Fire) error {
	ctx = scope.With(ctx, map[string]string{"job": fire.Job, "run": fire.RunID})
	chatID := fire.Data["chat"]
	cards, err := s.DueCards(ctx, s.Cfg.BatchSize, "")
	if err != nil {
		return err
	}
	for _, card := range cards {
		body := fmt.Sprintf("Review: %s", card.Title)
		actions := dispatch.ActionGrid{
			{
				{Label: "Again", Token: dispatch.MustToken(dispatch.NSSRSAgain, card.ID)},
				{Label: "Hard", Token: dispatch.MustToken(dispatch.NSSRSHard, card.ID)},
				{Label: "Good", Token: dispatch.MustToken(dispatch.NSSRSGood, card.ID)},
				{Label: "Easy", Token: dispatch.MustToken(dispatch.NSSRSEasy, card.ID)},
			},
			{
				{Label: "Develop", Token: dispatch.MustToken(dispatch.NSSRSDevelop, card.ID)},
			},
		}
		if err := s.deliver(ctx, chatID, dispatch.Text(body, actions)); err != nil {
			return err
		}
	}
	return nil
}

// HandleAction reacts to a rating or develop button press and returns the
// acknowledgement text to show the user
func (s *Service) HandleAction(ctx context.Context, userID, chatID string, token dispatch.Token) (string, error) {
	ns, id, err := dispatch.ParseToken(token)
	if err != nil {
		return "", err
	}

	var rating engine.Rating
	switch ns {
	case dispatch.NSSRSAgain:
		rating = engine.RatingAgain
	case dispatch.NSSRSHard:
		rating = engine.RatingHard
	case dispatch.NSSRSGood:
		rating = engine.RatingGood
	case dispatch.NSSRSEasy:
		rating = engine.RatingEasy
	case dispatch.NSSRSDevelop:
		return s.handleDevelop(ctx, chatID, id)
	default:
		return "", perr.InvalidArgf("action %q is not a review action", ns)
	}

	card, err := s.Rate(ctx, userID, id, rating)
	if err != nil {
		if perr.IsCode(err, perr.ErrorCodeNotFound) {
			return "That card no longer exists.", nil
		}
		return "", err
	}
	return fmt.Sprintf("Got it. %s comes back in %d days.", card.Title, card.IntervalDays), nil
}

// handleDevelop emits the development session event; card state is untouched
func (s *Service) handleDevelop(ctx context.Context, chatID string, cardID int64) (string, error) {
	session, err := s.Develop(ctx, cardID)
	if err != nil {
		if perr.IsCode(err, perr.ErrorCodeNotFound) {
			return "That card no longer exists.", nil
		}
		return "", err
	}

	body := fmt.Sprintf("Development session: %s\n\n%s", session.Title, session.Excerpt)
	if len(session.Backlinks) > 0 {
		body += "\n\nLinked from:"
		for _, l := range session.Backlinks {
			body += "\n- " + l
		}
	}
	if err := s.deliver(ctx, chatID, dispatch.Text(body, nil)); err != nil {
		return "", err
	}
	return fmt.Sprintf("Opening a development session for %s.", session.Title), nil
}

func (s *Service) deliver(ctx context.Context, chatID string, p dispatch.Payload) error {
	return retry.Do(ctx, retry.Callback, func(ctx context.Context) error {
		dctx, cancel := context.WithTimeout(ctx, externalTimeout)
		defer cancel()
		return s.Dispatch.Deliver(dctx, chatID, p)
	})
}
