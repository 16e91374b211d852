// Package domain defines the accountability scheduler's contracts
package domain

import (
	"context"

	"stride/internal/platform/clock"
	dispatch "stride/internal/services/dispatch/domain"
)

// Port is the accountability surface the runtime and transport call
type Port interface {
	// ScheduleUser installs the user's check-in and struggle jobs and records
	// them in the registry; calling it again is a no-op refresh
	ScheduleUser(ctx context.Context, userID, chatID string) error
	// UnscheduleUser cancels the user's jobs and clears registry rows
	UnscheduleUser(ctx context.Context, userID string) error
	// Rehydrate reinstalls every registered schedule, called once at startup
	Rehydrate(ctx context.Context) error
	// HandleAction reacts to a done or skip button press and returns the
	// acknowledgement text to show the user
	HandleAction(ctx context.Context, userID string, token dispatch.Token) (string, error)
}

// Synth is the external voice synthesis collaborator; implementations may be
// absent, in which case events go out as plain text
type Synth interface {
	Synthesize(ctx context.Context, text, voice, emotion string) ([]byte, error)
}

// QuietHours is a daily suppression window, inclusive at both edges and
// wrap-aware: start 22:00 end 07:00 covers late evening through early morning
type QuietHours struct {
	Start clock.TimeOfDay
	End   clock.TimeOfDay
}

// DefaultQuietHours is the 22:00 through 07:00 window
func DefaultQuietHours() QuietHours {
	return QuietHours{
		Start: clock.TimeOfDay{Hour: 22},
		End:   clock.TimeOfDay{Hour: 7},
	}
}

// Contains reports whether t falls inside the window
func (q QuietHours) Contains(t clock.TimeOfDay) bool {
	s, e, m := q.Start.MinuteOfDay(), q.End.MinuteOfDay(), t.MinuteOfDay()
	if s <= e {
		return m >= s && m <= e
	}
	// Window wraps past midnight
	return m >= s || m <= e
}
