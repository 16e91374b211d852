// Package repo provides Postgres bindings for the job registry
package repo

import (
	"context"
	"encoding/json"

	"stride/internal/modkit/repokit"
	"stride/internal/services/jobs/domain"
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

// Upsert writes rows idempotently, keyed by job name
func (r *queries) Upsert(ctx context.Context, rows []domain.Row) error {
	for _, row := range rows {
		meta, err := json.Marshal(row.Metadata)
		if err != nil {
			return err
		}
		if _, err := r.q.Exec(ctx, `
			INSERT INTO scheduled_jobs (job_name, user_id, kind, metadata)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (job_name) DO UPDATE SET
				user_id = EXCLUDED.user_id,
				kind = EXCLUDED.kind,
				metadata = EXCLUDED.metadata
		`, row.JobName, row.UserID, string(row.Kind), meta); err != nil {
			return err
		}
	}
	return nil
}

// ListAll returns every registered row ordered by job name
func (r *queries) ListAll(ctx context.Context) ([]domain.Row, error) {
	return r.list(ctx, `
		SELECT job_name, user_id, kind, metadata, created_at
		FROM scheduled_jobs ORDER BY job_name
	`)
}

// ListUser returns a user's rows
func (r *queries) ListUser(ctx context.Context, userID string) ([]domain.Row, error) {
	return r.list(ctx, `
		SELECT job_name, user_id, kind, metadata, created_at
		FROM scheduled_jobs WHERE user_id = $1 ORDER BY job_name
	`, userID)
}

func (r *queries) list(ctx context.Context, sql string, args ...any) ([]domain.Row, error) {
	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Row
	for rows.Next() {
		var row domain.Row
		var meta []byte
		if err := rows.Scan(&row.JobName, &row.UserID, &row.Kind, &meta, &row.CreatedAt); err != nil {
			return nil, err
		}
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &row.Metadata); err != nil {
				return nil, err
			}
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// ClearUser removes every row owned by the user
func (r *queries) ClearUser(ctx context.Context, userID string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM scheduled_jobs WHERE user_id = $1`, userID)
	return err
}

// Remove deletes specific rows by job name
func (r *queries) Remove(ctx context.Context, jobNames []string) error {
	if len(jobNames) == 0 {
		return nil
	}
	_, err := r.q.Exec(ctx, `DELETE FROM scheduled_jobs WHERE job_name = ANY($1)`, jobNames)
	return err
}
