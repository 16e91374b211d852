// Package repo provides Postgres bindings for the users domain
package repo

import (
	"context"
	"time"

	"stride/internal/modkit/repokit"
	"stride/internal/platform/clock"
	perr "stride/internal/platform/errors"
	"stride/internal/services/users/domain"
)

type (
	// PG is a Postgres binder for domain.Repo
	PG      struct{}
	queries struct{ q repokit.Queryer }
)

// Compile-time assertion: queries implements domain.Repo
var _ domain.Repo = (*queries)(nil)

// NewPG returns a Postgres binder for Repo
func NewPG() repokit.Binder[domain.Repo] { return PG{} }

// Bind implements repokit.Binder
func (PG) Bind(q repokit.Queryer) domain.Repo { return &queries{q: q} }

// EnsureUser inserts the user on first contact and returns the stored row
func (r *queries) EnsureUser(ctx context.Context, userID, locale string) (domain.User, error) {
	row := r.q.QueryRow(ctx, `
		INSERT INTO users (user_id, locale)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET updated_at = now()
		RETURNING user_id, locale, consent_health_data, consent_voice, created_at, updated_at
	`, userID, locale)
	return scanUser(row)
}

// GetUser returns the user or a not found error
func (r *queries) GetUser(ctx context.Context, userID string) (domain.User, error) {
	row := r.q.QueryRow(ctx, `
		SELECT user_id, locale, consent_health_data, consent_voice, created_at, updated_at
		FROM users WHERE user_id = $1
	`, userID)
	u, err := scanUser(row)
	if err != nil {
		if repokit.IsNoRows(err) {
			return domain.User{}, perr.NotFoundf("user %q", userID)
		}
		return domain.User{}, err
	}
	return u, nil
}

// TouchUser bumps updated_at and optionally the locale
func (r *queries) TouchUser(ctx context.Context, userID, locale string) error {
	_, err := r.q.Exec(ctx, `
		UPDATE users SET updated_at = now(), locale = COALESCE(NULLIF($2, ''), locale)
		WHERE user_id = $1
	`, userID, locale)
	return err
}

func scanUser(row repokit.Row) (domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.UserID, &u.Locale,
		&u.ConsentFlags.HealthData, &u.ConsentFlags.Voice,
		&u.CreatedAt, &u.UpdatedAt,
	)
	return u, err
}

// GetPrivacy returns the privacy row or a not found error
func (r *queries) GetPrivacy(ctx context.Context, userID string) (domain.PrivacySettings, error) {
	row := r.q.QueryRow(ctx, `
		SELECT user_id, retention, consent_health_data, tts_provider, stt_provider
		FROM privacy_settings WHERE user_id = $1
	`, userID)
	var p domain.PrivacySettings
	err := row.Scan(&p.UserID, &p.Retention, &p.ConsentHealthData, &p.TTSProvider, &p.STTProvider)
	if err != nil {
		if repokit.IsNoRows(err) {
			return domain.PrivacySettings{}, perr.NotFoundf("privacy settings for user %q", userID)
		}
		return domain.PrivacySettings{}, err
	}
	return p, nil
}

// PutPrivacy upserts the privacy row
func (r *queries) PutPrivacy(ctx context.Context, p domain.PrivacySettings) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO privacy_settings (user_id, retention, consent_health_data, tts_provider, stt_provider)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE SET
			retention = EXCLUDED.retention,
			consent_health_data = EXCLUDED.consent_health_data,
			tts_provider = EXCLUDED.tts_provider,
			stt_provider = EXCLUDED.stt_provider
	`, p.UserID, string(p.Retention), p.ConsentHealthData, p.TTSProvider, p.STTProvider)
	return err
}

// ListRetentionWindows returns every user with a bounded retention window;
// users without a privacy row get the supplied default
func (r *queries) ListRetentionWindows(ctx context.Context, def domain.Retention) ([]domain.PrivacySettings, error) {
	rows, err := r.q.Query(ctx, `
		SELECT u.user_id,
			COALESCE(ps.retention, $1),
			COALESCE(ps.consent_health_data, FALSE),
			COALESCE(ps.tts_provider, ''),
			COALESCE(ps.stt_provider, '')
		FROM users u
		LEFT JOIN privacy_settings ps ON ps.user_id = u.user_id
		WHERE COALESCE(ps.retention, $1) <> 'forever'
		ORDER BY u.user_id
	`, string(def))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.PrivacySettings
	for rows.Next() {
		var p domain.PrivacySettings
		if err := rows.Scan(&p.UserID, &p.Retention, &p.ConsentHealthData, &p.TTSProvider, &p.STTProvider); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetProfile returns the accountability profile or a not found error
func (r *queries) GetProfile(ctx context.Context, userID string) (domain.AccountabilityProfile, error) {
	row := r.q.QueryRow(ctx, `
		SELECT user_id, chat_id, personality, struggle_threshold, celebration_style, voice_override, check_time
		FROM accountability_profiles WHERE user_id = $1
	`, userID)
	p, err := scanProfile(row)
	if err != nil {
		if repokit.IsNoRows(err) {
			return domain.AccountabilityProfile{}, perr.NotFoundf("accountability profile for user %q", userID)
		}
		return domain.AccountabilityProfile{}, err
	}
	return p, nil
}

// PutProfile upserts the accountability profile
func (r *queries) PutProfile(ctx context.Context, p domain.AccountabilityProfile) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO accountability_profiles
			(user_id, chat_id, personality, struggle_threshold, celebration_style, voice_override, check_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id) DO UPDATE SET
			chat_id = EXCLUDED.chat_id,
			personality = EXCLUDED.personality,
			struggle_threshold = EXCLUDED.struggle_threshold,
			celebration_style = EXCLUDED.celebration_style,
			voice_override = EXCLUDED.voice_override,
			check_time = EXCLUDED.check_time
	`, p.UserID, p.ChatID, string(p.Personality), p.StruggleThreshold,
		string(p.CelebrationStyle), p.VoiceOverride, p.CheckTime.String())
	return err
}

// ListProfiles returns every accountability profile for schedule rehydration
func (r *queries) ListProfiles(ctx context.Context) ([]domain.AccountabilityProfile, error) {
	rows, err := r.q.Query(ctx, `
		SELECT user_id, chat_id, personality, struggle_threshold, celebration_style, voice_override, check_time
		FROM accountability_profiles
		ORDER BY user_id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.AccountabilityProfile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanProfile(row repokit.Row) (domain.AccountabilityProfile, error) {
	var p domain.AccountabilityProfile
	var checkTime string
	err := row.Scan(
		&p.UserID, &p.ChatID, &p.Personality, &p.StruggleThreshold,
		&p.CelebrationStyle, &p.VoiceOverride, &checkTime,
	)
	if err != nil {
		return domain.AccountabilityProfile{}, err
	}
	tod, err := clock.ParseTimeOfDay(checkTime)
	if err != nil {
		return domain.AccountabilityProfile{}, perr.Internalf("bad check_time %q for user %q: %v", checkTime, p.UserID, err)
	}
	p.CheckTime = tod
	return p, nil
}

// GetLifeWeeks returns the life weeks row or a not found error
func (r *queries) GetLifeWeeks(ctx context.Context, userID string) (domain.LifeWeeksSettings, error) {
	row := r.q.QueryRow(ctx, `
		SELECT user_id, enabled, date_of_birth, time_of_day, weekday, destination, custom_path
		FROM life_weeks_settings WHERE user_id = $1
	`, userID)
	s, err := scanLifeWeeks(row)
	if err != nil {
		if repokit.IsNoRows(err) {
			return domain.LifeWeeksSettings{}, perr.NotFoundf("life weeks settings for user %q", userID)
		}
		return domain.LifeWeeksSettings{}, err
	}
	return s, nil
}

// PutLifeWeeks upserts the life weeks row
func (r *queries) PutLifeWeeks(ctx context.Context, s domain.LifeWeeksSettings) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO life_weeks_settings
			(user_id, enabled, date_of_birth, time_of_day, weekday, destination, custom_path)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id) DO UPDATE SET
			enabled = EXCLUDED.enabled,
			date_of_birth = EXCLUDED.date_of_birth,
			time_of_day = EXCLUDED.time_of_day,
			weekday = EXCLUDED.weekday,
			destination = EXCLUDED.destination,
			custom_path = EXCLUDED.custom_path
	`, s.UserID, s.Enabled, s.DateOfBirth.At(0, 0, time.UTC), s.TimeOfDay.String(),
		int(s.Weekday), string(s.Destination), s.CustomPath)
	return err
}

// ListLifeWeeksEnabled returns every enabled life weeks configuration
func (r *queries) ListLifeWeeksEnabled(ctx context.Context) ([]domain.LifeWeeksSettings, error) {
	rows, err := r.q.Query(ctx, `
		SELECT user_id, enabled, date_of_birth, time_of_day, weekday, destination, custom_path
		FROM life_weeks_settings
		WHERE enabled
		ORDER BY user_id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.LifeWeeksSettings
	for rows.Next() {
		s, err := scanLifeWeeks(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func scanLifeWeeks(row repokit.Row) (domain.LifeWeeksSettings, error) {
	var s domain.LifeWeeksSettings
	var dob time.Time
	var tod string
	var weekday int
	err := row.Scan(&s.UserID, &s.Enabled, &dob, &tod, &weekday, &s.Destination, &s.CustomPath)
	if err != nil {
		return domain.LifeWeeksSettings{}, err
	}
	s.DateOfBirth = clock.DateOf(dob)
	s.Weekday = time.Weekday(weekday)
	t, err := clock.ParseTimeOfDay(tod)
	if err != nil {
		return domain.LifeWeeksSettings{}, perr.Internalf("bad time_of_day %q for user %q: %v", tod, s.UserID, err)
	}
	s.TimeOfDay = t
	return s, nil
}

// EraseUser deletes the user and every dependent row
// Review history and conversation rows go with the user; trackers and their
// check-ins are owned data and are removed here too. Caller runs this inside
// one transaction so a crash cannot leave a partial erase
func (r *queries) EraseUser(ctx context.Context, userID string) error {
	stmts := []string{
		`DELETE FROM check_ins ci USING trackers t WHERE ci.tracker_id = t.id AND t.user_id = $1`,
		`DELETE FROM trackers WHERE user_id = $1`,
		`DELETE FROM review_history WHERE user_id = $1`,
		`DELETE FROM messages m USING chats c WHERE m.chat_id = c.id AND c.user_id = $1`,
		`DELETE FROM poll_responses pr USING chats c WHERE pr.chat_id = c.external_id AND c.user_id = $1`,
		`DELETE FROM chats WHERE user_id = $1`,
		`DELETE FROM scheduled_jobs WHERE user_id = $1`,
		`DELETE FROM life_weeks_settings WHERE user_id = $1`,
		`DELETE FROM accountability_profiles WHERE user_id = $1`,
		`DELETE FROM privacy_settings WHERE user_id = $1`,
		`DELETE FROM users WHERE user_id = $1`,
	}
	for _, stmt := range stmts {
		if _, err := r.q.Exec(ctx, stmt, userID); err != nil {
			return err
		}
	}
	return nil
}
