// Package service composes trackers, the response generator and the runtime
// scheduler into per-user check-in and struggle jobs
package service

import (
	"context"
	"fmt"
	"time"

	"stride/internal/modkit/scope"
	"stride/internal/platform/clock"
	perr "stride/internal/platform/errors"
	"stride/internal/platform/logger"
	"stride/internal/platform/retry"
	"stride/internal/platform/sched"
	"stride/internal/services/accountability/domain"
	"stride/internal/services/accountability/respond"
	dispatch "stride/internal/services/dispatch/domain"
	jobs "stride/internal/services/jobs/domain"
	trackers "stride/internal/services/trackers/domain"
	users "stride/internal/services/users/domain"
)

// externalTimeout caps dispatch and synthesis calls
const externalTimeout = 300 * time.Second

// struggleOffsetMinutes places the struggle job after the check-in job
const struggleOffsetMinutes = 60

// Config for the accountability service
type Config struct {
	Quiet            domain.QuietHours
	DefaultCheckTime clock.TimeOfDay
}

// Service implements domain.Port
type Service struct {
	Users    users.ReaderPort
	Trackers trackers.Port
	Registry jobs.Port
	Dispatch dispatch.Port
	Sched    *sched.Scheduler
	Synth    domain.Synth // optional
	Clock    clock.Clock
	Log      logger.Logger
	Cfg      Config
}

// New constructs a new accountability service
func New(
	u users.ReaderPort, t trackers.Port, reg jobs.Port, d dispatch.Port,
	sc *sched.Scheduler, synth domain.Synth, clk clock.Clock, log logger.Logger, cfg Config,
) *Service {
	if cfg.Quiet == (domain.QuietHours{}) {
		cfg.Quiet = domain.DefaultQuietHours()
	}
	if cfg.DefaultCheckTime == (clock.TimeOfDay{}) {
		cfg.DefaultCheckTime = clock.TimeOfDay{Hour: 19}
	}
	return &Service{
		Users: u, Trackers: t, Registry: reg, Dispatch: d,
		Sched: sc, Synth: synth, Clock: clk, Log: log, Cfg: cfg,
	}
}

var _ domain.Port = (*Service)(nil)

func checkinJobName(userID string) string  { return "checkin_" + userID }
func struggleJobName(userID string) string { return "struggle_" + userID }

// ScheduleUser implements domain.Port
func (s *Service) ScheduleUser(ctx context.Context, userID, chatID string) error {
	profile, err := s.Users.Profile(ctx, userID)
	if err != nil {
		if !perr.IsCode(err, perr.ErrorCodeNotFound) {
			return err
		}
		profile = users.AccountabilityProfile{
			UserID:    userID,
			ChatID:    chatID,
			CheckTime: s.Cfg.DefaultCheckTime,
		}
	}
	if chatID == "" {
		chatID = profile.ChatID
	}
	checkTime := profile.CheckTime
	if checkTime == (clock.TimeOfDay{}) {
		checkTime = s.Cfg.DefaultCheckTime
	}

	if err := s.Registry.Register(ctx, []jobs.Row{
		{JobName: checkinJobName(userID), UserID: userID, Kind: jobs.KindCheckin,
			Metadata: map[string]string{"chat": chatID, "check_time": checkTime.String()}},
		{JobName: struggleJobName(userID), UserID: userID, Kind: jobs.KindStruggle,
			Metadata: map[string]string{"chat": chatID}},
	}); err != nil {
		return err
	}

	data := map[string]string{"user": userID, "chat": chatID}
	if err := s.Sched.Schedule(sched.Job{
		Name:     checkinJobName(userID),
		Kind:     "checkin",
		Schedule: sched.DailyAt(checkTime),
		Enabled:  true,
		Data:     data,
		Handler:  s.runCheckin,
	}); err != nil {
		return err
	}
	return s.Sched.Schedule(sched.Job{
		Name:     struggleJobName(userID),
		Kind:     "struggle",
		Schedule: sched.DailyAt(checkTime.Add(struggleOffsetMinutes)),
		Enabled:  true,
		Data:     data,
		Handler:  s.runStruggle,
	})
}

// UnscheduleUser implements domain.Port
func (s *Service) UnscheduleUser(ctx context.Context, userID string) error {
	s.Sched.Cancel(checkinJobName(userID))
	s.Sched.Cancel(struggleJobName(userID))
	return s.Registry.Unregister(ctx, checkinJobName(userID), struggleJobName(userID))
}

// Rehydrate implements domain.Port
// Registry rows are authoritative across restarts; each check-in row carries
// enough metadata to reinstall both of the user's jobs
func (s *Service) Rehydrate(ctx context.Context) error {
	rows, err := s.Registry.All(ctx)
	if err != nil {
		return err
	}
	installed := 0
	for _, row := range rows {
		if row.Kind != jobs.KindCheckin {
			continue
		}
		if err := s.ScheduleUser(ctx, row.UserID, row.Metadata["chat"]); err != nil {
			return err
		}
		installed++
	}
	s.Log.Info().Int("users", installed).Msg("accountability schedules rehydrated")
	return nil
}

// subject resolves the user and profile behind a fire, synthesizing defaults
// when the rows are missing; a scheduled job must keep delivering for users
// who never configured a profile
func (s *Service) subject(ctx context.Context, userID, chatID string) (users.User, users.AccountabilityProfile, error) {
	user, err := s.Users.Get(ctx, userID)
	if err != nil {
		if !perr.IsCode(err, perr.ErrorCodeNotFound) {
			return users.User{}, users.AccountabilityProfile{}, err
		}
		user = users.User{UserID: userID, Locale: "en"}
	}
	profile, err := s.Users.Profile(ctx, userID)
	if err != nil {
		if !perr.IsCode(err, perr.ErrorCodeNotFound) {
			return users.User{}, users.AccountabilityProfile{}, err
		}
		profile = users.AccountabilityProfile{
			UserID:           userID,
			ChatID:           chatID,
			CheckTime:        s.Cfg.DefaultCheckTime,
			Personality:      users.PersonalitySupportive,
			CelebrationStyle: users.CelebrationModerate,
		}
	}
	return user, profile, nil
}

// runCheckin is the daily check-in fire
func (s *Service) runCheckin(ctx context.Context, fire sched.Fire) error {
	ctx = scope.With(ctx, map[string]string{"job": fire.Job, "run": fire.RunID})
	now := clock.DateOf(s.Clock.NowWall())
	tod := clock.TimeOfDay{Hour: s.Clock.NowWall().Hour(), Minute: s.Clock.NowWall().Minute()}
	if s.Cfg.Quiet.Contains(tod) {
		return sched.Skip("quiet_hours")
	}

	userID := fire.Data["user"]
	chatID := fire.Data["chat"]
	user, profile, err := s.subject(ctx, userID, chatID)
	if err != nil {
		return err
	}

	active, err := s.Trackers.Active(ctx, userID)
	if err != nil {
		return err
	}
	for _, t := range active {
		agg, err := s.Trackers.Load(ctx, userID, t.ID)
		if err != nil {
			return err
		}
		if agg.HasCheckIn(now) {
			continue
		}
		streak := agg.ComputeStreak(now.AddDays(-1)) // run ending yesterday, today still open
		kind := respond.EventCheckin
		if streak > 0 {
			kind = respond.EventCheckinWithStreak
		}
		rendered, err := respond.Render(kind, profile.Personality, profile.CelebrationStyle, user.Locale, respond.Context{
			TrackerName: t.Name,
			Streak:      streak,
			Greeting:    respond.GreetingFor(tod),
		})
		if err != nil {
			return err
		}
		actions := dispatch.ActionGrid{{
			{Label: "Done", Token: dispatch.MustToken(dispatch.NSCheckinDone, t.ID)},
			{Label: "Skip", Token: dispatch.MustToken(dispatch.NSCheckinSkip, t.ID)},
		}}
		if err := s.deliver(ctx, chatID, rendered, profile, actions); err != nil {
			return err
		}
	}
	return nil
}

// runStruggle is the daily struggle sweep, one hour after check-in
func (s *Service) runStruggle(ctx context.Context, fire sched.Fire) error {
	ctx = scope.With(ctx, map[string]string{"job": fire.Job, "run": fire.RunID})
	userID := fire.Data["user"]
	chatID := fire.Data["chat"]
	today := s.Clock.Today()

	user, profile, err := s.subject(ctx, userID, chatID)
	if err != nil {
		return err
	}

	active, err := s.Trackers.Active(ctx, userID)
	if err != nil {
		return err
	}
	for _, t := range active {
		agg, err := s.Trackers.Load(ctx, userID, t.ID)
		if err != nil {
			return err
		}
		misses := agg.ConsecutiveMisses(today)
		if misses < profile.StruggleThreshold || profile.StruggleThreshold <= 0 {
			continue
		}
		rendered, err := respond.Render(respond.EventStruggle, profile.Personality, profile.CelebrationStyle, user.Locale, respond.Context{
			TrackerName:       t.Name,
			ConsecutiveMisses: misses,
		})
		if err != nil {
			return err
		}
		if err := s.deliver(ctx, chatID, rendered, profile, nil); err != nil {
			return err
		}
	}
	return nil
}

// HandleAction implements domain.Port
func (s *Service) HandleAction(ctx context.Context, userID string, token dispatch.Token) (string, error) {
	ns, id, err := dispatch.ParseToken(token)
	if err != nil {
		return "", err
	}

	var done bool
	switch ns {
	case dispatch.NSCheckinDone, dispatch.NSTrackDone:
		done = true
	case dispatch.NSCheckinSkip, dispatch.NSTrackSkip:
		done = false
	default:
		return "", perr.InvalidArgf("action %q is not an accountability action", ns)
	}

	today := s.Clock.Today()
	agg, err := s.Trackers.Load(ctx, userID, id)
	if err != nil {
		if perr.IsCode(err, perr.ErrorCodeNotFound) {
			return "That tracker doesn't exist anymore.", nil
		}
		return "", err
	}

	if done {
		err = agg.MarkCompleted(today)
	} else {
		err = agg.Skip(today)
	}
	if err != nil {
		if perr.IsCode(err, perr.ErrorCodeDuplicateCheckIn) {
			return "Already checked in for today.", nil
		}
		return "", err
	}
	if err := s.Trackers.Save(ctx, agg); err != nil {
		return "", err
	}

	t := agg.Tracker()
	if !done {
		return fmt.Sprintf("Skipped %s for today.", t.Name), nil
	}

	streak := agg.ComputeStreak(today)
	if respond.IsMilestone(streak) {
		if err := s.celebrate(ctx, userID, t.Name, streak); err != nil {
			return "", err
		}
	}
	return fmt.Sprintf("Logged %s. Streak: %d.", t.Name, streak), nil
}

// celebrate renders and delivers a milestone event
func (s *Service) celebrate(ctx context.Context, userID, trackerName string, streak int) error {
	user, err := s.Users.Get(ctx, userID)
	if err != nil {
		return err
	}
	profile, err := s.Users.Profile(ctx, userID)
	if err != nil {
		return err
	}
	rendered, err := respond.Render(respond.EventCelebration, profile.Personality, profile.CelebrationStyle, user.Locale, respond.Context{
		TrackerName: trackerName,
		Streak:      streak,
		Milestone:   streak,
	})
	if err != nil {
		return err
	}
	return s.deliver(ctx, profile.ChatID, rendered, profile, nil)
}

// deliver hands a rendered event to dispatch, attaching audio when the voice
// collaborator is available; transport calls get the hard external timeout
// and three in-fire retries
func (s *Service) deliver(ctx context.Context, chatID string, r respond.Rendered, profile users.AccountabilityProfile, actions dispatch.ActionGrid) error {
	voice := r.Voice
	if profile.VoiceOverride != "" {
		voice = profile.VoiceOverride
	}

	var audio []byte
	if s.Synth != nil {
		cctx, cancel := context.WithTimeout(ctx, externalTimeout)
		var err error
		audio, err = s.Synth.Synthesize(cctx, r.Body, voice, r.Emotion)
		cancel()
		if err != nil {
			// Synthesis failure downgrades the event to text
			s.Log.Warn().Err(err).Str("voice", voice).Msg("voice synthesis failed")
			audio = nil
		}
	}

	body := respond.StripVoiceTags(r.Body)
	payload := dispatch.Text(body, actions)
	if len(audio) > 0 {
		payload = dispatch.Voice(body, audio, actions)
	}

	return retry.Do(ctx, retry.Callback, func(ctx context.Context) error {
		dctx, cancel := context.WithTimeout(ctx, externalTimeout)
		defer cancel()
		return s.Dispatch.Deliver(dctx, chatID, payload)
	})
}
