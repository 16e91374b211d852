// Package repo provides Postgres bindings for the SRS domain
package repo

import (
	"context"
	"strings"
	"time"

	"stride/internal/modkit/repokit"
	"stride/internal/platform/clock"
	perr "stride/internal/platform/errors"
	"stride/internal/services/srs/domain"
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

const cardCols = `id, note_path, note_type, title, srs_enabled, next_review_date,
	last_review_date, interval_days, ease_factor, repetitions, is_due, total_reviews`

// GetCard returns the card or a not found error
func (r *queries) GetCard(ctx context.Context, id int64) (domain.Card, error) {
	row := r.q.QueryRow(ctx, `SELECT `+cardCols+` FROM srs_cards WHERE id = $1`, id)
	c, err := scanCard(row)
	if err != nil {
		if repokit.IsNoRows(err) {
			return domain.Card{}, perr.NotFoundf("card %d", id)
		}
		return domain.Card{}, err
	}
	return c, nil
}

// GetCardByPath returns the card for a vault-relative path
func (r *queries) GetCardByPath(ctx context.Context, notePath string) (domain.Card, error) {
	row := r.q.QueryRow(ctx, `SELECT `+cardCols+` FROM srs_cards WHERE note_path = $1`, notePath)
	c, err := scanCard(row)
	if err != nil {
		if repokit.IsNoRows(err) {
			return domain.Card{}, perr.NotFoundf("card for note %q", notePath)
		}
		return domain.Card{}, err
	}
	return c, nil
}

// UpsertCard inserts or updates by note path and returns the stored row
func (r *queries) UpsertCard(ctx context.Context, c domain.Card) (domain.Card, error) {
	row := r.q.QueryRow(ctx, `
		INSERT INTO srs_cards
			(note_path, note_type, title, srs_enabled, next_review_date,
			 last_review_date, interval_days, ease_factor, repetitions, is_due, total_reviews)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (note_path) DO UPDATE SET
			note_type = EXCLUDED.note_type,
			title = EXCLUDED.title,
			srs_enabled = EXCLUDED.srs_enabled,
			next_review_date = EXCLUDED.next_review_date,
			last_review_date = EXCLUDED.last_review_date,
			interval_days = EXCLUDED.interval_days,
			ease_factor = EXCLUDED.ease_factor,
			repetitions = EXCLUDED.repetitions,
			is_due = EXCLUDED.is_due
		RETURNING `+cardCols,
		c.NotePath, string(c.NoteType), c.Title, c.SRSEnabled, dateArg(c.NextReview),
		dateArg(c.LastReview), c.IntervalDays, c.Ease, c.Repetitions, c.IsDue, c.TotalReviews)
	return scanCard(row)
}

// UpdateCardState writes the post-review scheduling fields
func (r *queries) UpdateCardState(ctx context.Context, c domain.Card) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE srs_cards SET
			next_review_date = $2,
			last_review_date = $3,
			interval_days = $4,
			ease_factor = $5,
			repetitions = $6,
			is_due = $7,
			total_reviews = $8
		WHERE id = $1
	`, c.ID, dateArg(c.NextReview), dateArg(c.LastReview),
		c.IntervalDays, c.Ease, c.Repetitions, c.IsDue, c.TotalReviews)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return perr.NotFoundf("card %d", c.ID)
	}
	return nil
}

// ListDue returns due enabled cards ordered by next review ascending
func (r *queries) ListDue(ctx context.Context, today clock.Date, limit int, noteType domain.NoteType) ([]domain.Card, error) {
	var sb strings.Builder
	args := []any{dateArg(today), limit}
	sb.WriteString(`
		SELECT ` + cardCols + ` FROM srs_cards
		WHERE srs_enabled AND next_review_date IS NOT NULL AND next_review_date <= $1
	`)
	if noteType != "" {
		args = append(args, string(noteType))
		sb.WriteString(" AND note_type = $3")
	}
	sb.WriteString(" ORDER BY next_review_date ASC, id ASC LIMIT $2")

	rows, err := r.q.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Card
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// RecomputeDue refreshes is_due for every enabled card
func (r *queries) RecomputeDue(ctx context.Context, today clock.Date) (int, error) {
	tag, err := r.q.Exec(ctx, `
		UPDATE srs_cards
		SET is_due = (next_review_date IS NOT NULL AND next_review_date <= $1)
		WHERE srs_enabled
			AND is_due IS DISTINCT FROM (next_review_date IS NOT NULL AND next_review_date <= $1)
	`, dateArg(today))
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

// InsertReview appends one history row
func (r *queries) InsertReview(ctx context.Context, rev domain.Review) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO review_history
			(card_id, user_id, rating, interval_before, interval_after, ease_before, ease_after, reviewed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, rev.CardID, rev.UserID, int(rev.Rating), rev.IntervalBefore, rev.IntervalAfter,
		rev.EaseBefore, rev.EaseAfter, rev.ReviewedAt)
	return err
}

// dateArg maps the zero date to SQL NULL
func dateArg(d clock.Date) any {
	if d.IsZero() {
		return nil
	}
	return d.At(0, 0, time.UTC)
}

func scanCard(row repokit.Row) (domain.Card, error) {
	var c domain.Card
	var next, last *time.Time
	err := row.Scan(
		&c.ID, &c.NotePath, &c.NoteType, &c.Title, &c.SRSEnabled, &next,
		&last, &c.IntervalDays, &c.Ease, &c.Repetitions, &c.IsDue, &c.TotalReviews,
	)
	if err != nil {
		return domain.Card{}, err
	}
	if next != nil {
		c.NextReview = clock.DateOf(next.UTC())
	}
	if last != nil {
		c.LastReview = clock.DateOf(last.UTC())
	}
	return c, nil
}
