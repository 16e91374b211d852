// Package repo provides Postgres bindings for the trackers domain
package repo

import (
	"context"

	"stride/internal/modkit/repokit"
	"stride/internal/platform/clock"
	perr "stride/internal/platform/errors"
	"stride/internal/services/trackers/domain"
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

const trackerCols = `id, user_id, kind, name, name_key, frequency, check_time, active, created_at`

// CreateTracker inserts a tracker and returns it with its id
func (r *queries) CreateTracker(ctx context.Context, t domain.Tracker) (domain.Tracker, error) {
	var checkTime *string
	if t.CheckTime != nil {
		s := t.CheckTime.String()
		checkTime = &s
	}
	row := r.q.QueryRow(ctx, `
		INSERT INTO trackers (user_id, kind, name, name_key, frequency, check_time, active)
		VALUES ($1, $2, $3, $4, $5, $6, TRUE)
		RETURNING `+trackerCols+`
	`, t.Owner, string(t.Kind), t.Name, t.NameKey, string(t.Frequency), checkTime)
	return scanTracker(row)
}

// GetTracker returns the tracker or a not found error
func (r *queries) GetTracker(ctx context.Context, id int64) (domain.Tracker, error) {
	row := r.q.QueryRow(ctx, `SELECT `+trackerCols+` FROM trackers WHERE id = $1`, id)
	t, err := scanTracker(row)
	if err != nil {
		if repokit.IsNoRows(err) {
			return domain.Tracker{}, perr.NotFoundf("tracker %d", id)
		}
		return domain.Tracker{}, err
	}
	return t, nil
}

// FindActiveByNameKey returns the owner's active tracker with the folded name
func (r *queries) FindActiveByNameKey(ctx context.Context, owner, nameKey string) (domain.Tracker, error) {
	row := r.q.QueryRow(ctx, `
		SELECT `+trackerCols+` FROM trackers
		WHERE user_id = $1 AND name_key = $2 AND active
	`, owner, nameKey)
	t, err := scanTracker(row)
	if err != nil {
		if repokit.IsNoRows(err) {
			return domain.Tracker{}, perr.NotFoundf("tracker %q for user %q", nameKey, owner)
		}
		return domain.Tracker{}, err
	}
	return t, nil
}

// ListActive returns the owner's active trackers ordered by name
func (r *queries) ListActive(ctx context.Context, owner string) ([]domain.Tracker, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+trackerCols+` FROM trackers
		WHERE user_id = $1 AND active
		ORDER BY name
	`, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Tracker
	for rows.Next() {
		t, err := scanTracker(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Deactivate soft-deletes a tracker
func (r *queries) Deactivate(ctx context.Context, id int64) error {
	tag, err := r.q.Exec(ctx, `UPDATE trackers SET active = FALSE WHERE id = $1 AND active`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return perr.NotFoundf("tracker %d", id)
	}
	return nil
}

func scanTracker(row repokit.Row) (domain.Tracker, error) {
	var t domain.Tracker
	var checkTime *string
	err := row.Scan(
		&t.ID, &t.Owner, &t.Kind, &t.Name, &t.NameKey,
		&t.Frequency, &checkTime, &t.Active, &t.CreatedAt,
	)
	if err != nil {
		return domain.Tracker{}, err
	}
	if checkTime != nil {
		tod, err := clock.ParseTimeOfDay(*checkTime)
		if err != nil {
			return domain.Tracker{}, perr.Internalf("bad check_time %q on tracker %d: %v", *checkTime, t.ID, err)
		}
		t.CheckTime = &tod
	}
	return t, nil
}

// ListCheckIns returns a tracker's check-ins ordered newest first
func (r *queries) ListCheckIns(ctx context.Context, trackerID int64) ([]domain.CheckIn, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, tracker_id, user_id, status, note, created_at
		FROM check_ins
		WHERE tracker_id = $1
		ORDER BY created_at DESC
	`, trackerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.CheckIn
	for rows.Next() {
		var c domain.CheckIn
		if err := rows.Scan(&c.ID, &c.TrackerID, &c.Owner, &c.Status, &c.Note, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// InsertCheckIns persists pending aggregate rows
func (r *queries) InsertCheckIns(ctx context.Context, cs []domain.CheckIn) error {
	for _, c := range cs {
		if _, err := r.q.Exec(ctx, `
			INSERT INTO check_ins (tracker_id, user_id, status, note, created_at)
			VALUES ($1, $2, $3, $4, $5)
		`, c.TrackerID, c.Owner, string(c.Status), c.Note, c.CreatedAt); err != nil {
			return err
		}
	}
	return nil
}
