package domain

import "context"

// Repo is the storage contract for users and their settings rows
type Repo interface {
	// EnsureUser inserts the user on first contact and returns the stored row
	EnsureUser(ctx context.Context, userID, locale string) (User, error)
	// GetUser returns the user or a not found error
	GetUser(ctx context.Context, userID string) (User, error)
	// TouchUser bumps updated_at and optionally the locale
	TouchUser(ctx context.Context, userID, locale string) error

	// GetPrivacy returns the privacy row or a not found error
	GetPrivacy(ctx context.Context, userID string) (PrivacySettings, error)
	// PutPrivacy upserts the privacy row
	PutPrivacy(ctx context.Context, p PrivacySettings) error
	// ListRetentionWindows returns every user with a bounded retention window,
	// applying def to users without a privacy row
	ListRetentionWindows(ctx context.Context, def Retention) ([]PrivacySettings, error)

	// GetProfile returns the accountability profile or a not found error
	GetProfile(ctx context.Context, userID string) (AccountabilityProfile, error)
	// PutProfile upserts the accountability profile
	PutProfile(ctx context.Context, p AccountabilityProfile) error
	// ListProfiles returns every accountability profile for schedule rehydration
	ListProfiles(ctx context.Context) ([]AccountabilityProfile, error)

	// GetLifeWeeks returns the life weeks row or a not found error
	GetLifeWeeks(ctx context.Context, userID string) (LifeWeeksSettings, error)
	// PutLifeWeeks upserts the life weeks row
	PutLifeWeeks(ctx context.Context, s LifeWeeksSettings) error
	// ListLifeWeeksEnabled returns every enabled life weeks configuration
	ListLifeWeeksEnabled(ctx context.Context) ([]LifeWeeksSettings, error)

	// EraseUser deletes the user and every dependent row
	EraseUser(ctx context.Context, userID string) error
}

// ReaderPort is the read surface other services consume
type ReaderPort interface {
	Get(ctx context.Context, userID string) (User, error)
	Privacy(ctx context.Context, userID string) (PrivacySettings, error)
	Profile(ctx context.Context, userID string) (AccountabilityProfile, error)
	Profiles(ctx context.Context) ([]AccountabilityProfile, error)
	LifeWeeks(ctx context.Context, userID string) (LifeWeeksSettings, error)
	LifeWeeksEnabled(ctx context.Context) ([]LifeWeeksSettings, error)
	RetentionWindows(ctx context.Context) ([]PrivacySettings, error)
}

// WriterPort is the mutation surface
type WriterPort interface {
	Ensure(ctx context.Context, userID, locale string) (User, error)
	SetPrivacy(ctx context.Context, p PrivacySettings) error
	SetProfile(ctx context.Context, p AccountabilityProfile) error
	SetLifeWeeks(ctx context.Context, s LifeWeeksSettings) error
	Erase(ctx context.Context, userID string) error
}
