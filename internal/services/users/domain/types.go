// Package domain defines the types and interfaces for the users service
package domain

import (
	"time"

	"stride/internal/platform/clock"
)

// User is a person the assistant talks to, keyed by the stable external id
// the transport assigns; created on first contact and removed only by an
// explicit erasure command
type User struct {
	UserID       string
	Locale       string
	ConsentFlags ConsentFlags
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ConsentFlags records what the user has agreed to
type ConsentFlags struct {
	HealthData bool `json:"health_data"`
	Voice      bool `json:"voice"`
}

// Retention is the per-user data retention window
type Retention string

// Retention windows
const (
	RetentionOneMonth  Retention = "1_month"
	RetentionSixMonths Retention = "6_months"
	RetentionOneYear   Retention = "1_year"
	RetentionForever   Retention = "forever"
)

// Window returns the retention duration and false for forever
func (r Retention) Window() (time.Duration, bool) {
	const day = 24 * time.Hour
	switch r {
	case RetentionOneMonth:
		return 30 * day, true
	case RetentionSixMonths:
		return 182 * day, true
	case RetentionOneYear:
		return 365 * day, true
	default:
		return 0, false
	}
}

// Valid reports whether r names a known window
func (r Retention) Valid() bool {
	switch r {
	case RetentionOneMonth, RetentionSixMonths, RetentionOneYear, RetentionForever:
		return true
	}
	return false
}

// PrivacySettings is the per-user privacy row
type PrivacySettings struct {
	UserID            string
	Retention         Retention
	ConsentHealthData bool
	TTSProvider       string // override, empty for default
	STTProvider       string // override, empty for default
}

// Personality selects the response generator's register
type Personality string

// Personalities, mildest first
const (
	PersonalityGentle     Personality = "gentle"
	PersonalitySupportive Personality = "supportive"
	PersonalityDirect     Personality = "direct"
	PersonalityAssertive  Personality = "assertive"
	PersonalityToughLove  Personality = "tough_love"
)

// Valid reports whether p names a known personality
func (p Personality) Valid() bool {
	switch p {
	case PersonalityGentle, PersonalitySupportive, PersonalityDirect,
		PersonalityAssertive, PersonalityToughLove:
		return true
	}
	return false
}

// CelebrationStyle adjusts milestone enthusiasm
type CelebrationStyle string

// Celebration styles
const (
	CelebrationQuiet        CelebrationStyle = "quiet"
	CelebrationModerate     CelebrationStyle = "moderate"
	CelebrationEnthusiastic CelebrationStyle = "enthusiastic"
)

// AccountabilityProfile is the per-user accountability configuration
type AccountabilityProfile struct {
	UserID            string
	ChatID            string // external transport chat id for deliveries
	Personality       Personality
	StruggleThreshold int
	CelebrationStyle  CelebrationStyle
	VoiceOverride     string          // empty for the personality default
	CheckTime         clock.TimeOfDay // daily check-in time
}

// LifeWeeksDestination names where a reply to the visualisation is routed
type LifeWeeksDestination string

// Destinations: three vault locations plus a custom path
const (
	DestinationJournal LifeWeeksDestination = "journal"
	DestinationInbox   LifeWeeksDestination = "inbox"
	DestinationWeekly  LifeWeeksDestination = "weekly"
	DestinationCustom  LifeWeeksDestination = "custom"
)

// LifeWeeksSettings configures the weekly visualisation per user
type LifeWeeksSettings struct {
	UserID      string
	Enabled     bool
	DateOfBirth clock.Date
	TimeOfDay   clock.TimeOfDay
	Weekday     time.Weekday
	Destination LifeWeeksDestination
	CustomPath  string // used when Destination is custom
}
