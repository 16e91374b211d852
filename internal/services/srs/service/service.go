// Package service provides the SRS service implementation
package service

import (
	"context"
	"math/rand/v2"
	"path"
	"strings"

	"stride/internal/modkit/repokit"
	"stride/internal/platform/clock"
	perr "stride/internal/platform/errors"
	"stride/internal/platform/logger"
	"stride/internal/platform/sched"
	"stride/internal/platform/vault"
	dispatch "stride/internal/services/dispatch/domain"
	jobs "stride/internal/services/jobs/domain"
	"stride/internal/services/srs/domain"
	"stride/internal/services/srs/engine"
)

// Config for the SRS service
type Config struct {
	// BatchSize caps the morning review batch; default 5
	BatchSize int
	// BatchMax is the configured ceiling on any batch; clamped to the hard cap
	BatchMax int
	// MorningTime is the default review delivery time
	MorningTime clock.TimeOfDay
	// RecomputeAt is when the nightly is_due refresh runs
	RecomputeAt clock.TimeOfDay
	// SeedMaxDays bounds the random initial interval for new ideas
	SeedMaxDays int
	// ExcerptRunes caps the development session excerpt
	ExcerptRunes int
}

// batchCap is the hard ceiling on the morning batch
const batchCap = 20

// maxBacklinks bounds the development session context
const maxBacklinks = 5

// Service implements domain.Port
type Service struct {
	DB       repokit.TxRunner
	Binder   repokit.Binder[domain.Repo]
	Vault    *vault.Vault
	Sched    *sched.Scheduler
	Registry jobs.Port
	Dispatch dispatch.Port
	Links    domain.BacklinkExtractor
	Clock    clock.Clock
	Log      logger.Logger
	Cfg      Config

	// intn is swappable so seeding is deterministic in tests
	intn func(n int) int
}

// New constructs a new SRS service
func New(
	db repokit.TxRunner, b repokit.Binder[domain.Repo], v *vault.Vault,
	sc *sched.Scheduler, reg jobs.Port, d dispatch.Port, links domain.BacklinkExtractor,
	clk clock.Clock, log logger.Logger, cfg Config,
) *Service {
	if cfg.BatchMax <= 0 || cfg.BatchMax > batchCap {
		cfg.BatchMax = batchCap
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 5
	}
	if cfg.BatchSize > cfg.BatchMax {
		cfg.BatchSize = cfg.BatchMax
	}
	if cfg.MorningTime == (clock.TimeOfDay{}) {
		cfg.MorningTime = clock.TimeOfDay{Hour: 9}
	}
	if cfg.RecomputeAt == (clock.TimeOfDay{}) {
		cfg.RecomputeAt = clock.TimeOfDay{Hour: 0, Minute: 5}
	}
	if cfg.SeedMaxDays <= 0 {
		cfg.SeedMaxDays = 30
	}
	if cfg.ExcerptRunes <= 0 {
		cfg.ExcerptRunes = 600
	}
	s := &Service{
		DB: db, Binder: b, Vault: v, Sched: sc, Registry: reg, Dispatch: d,
		Links: links, Clock: clk, Log: log, Cfg: cfg,
		intn: rand.IntN,
	}
	if s.Links == nil {
		s.Links = &TextMatchExtractor{Vault: v}
	}
	return s
}

var _ domain.Port = (*Service)(nil)

// Rate implements domain.Port
// The review row, the card update and the vault write-back share one
// transaction boundary; a vault failure rolls the store changes back
func (s *Service) Rate(ctx context.Context, userID string, cardID int64, rating engine.Rating) (domain.Card, error) {
	if !rating.Valid() {
		return domain.Card{}, perr.InvalidArgf("rating %d out of range", rating)
	}
	today := s.Clock.Today()

	var out domain.Card
	err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
		r := s.Binder.Bind(q)
		card, err := r.GetCard(ctx, cardID)
		if err != nil {
			return err
		}

		before := card.State()
		after, err := engine.Review(before, rating)
		if err != nil {
			return err
		}

		if err := r.InsertReview(ctx, domain.Review{
			CardID:         card.ID,
			UserID:         userID,
			Rating:         rating,
			IntervalBefore: before.IntervalDays,
			IntervalAfter:  after.IntervalDays,
			EaseBefore:     before.Ease,
			EaseAfter:      after.Ease,
			ReviewedAt:     s.Clock.NowWall(),
		}); err != nil {
			return err
		}

		card.IntervalDays = after.IntervalDays
		card.Ease = after.Ease
		card.Repetitions = after.Repetitions
		card.LastReview = today
		card.NextReview = today.AddDays(after.IntervalDays)
		card.IsDue = false
		card.TotalReviews++

		if err := r.UpdateCardState(ctx, card); err != nil {
			return err
		}
		if err := s.writeBack(card); err != nil {
			return err
		}
		out = card
		return nil
	})
	return out, err
}

// writeBack mirrors the card's scheduling state into the note's front-matter
func (s *Service) writeBack(c domain.Card) error {
	return s.Vault.UpdateMetadata(c.NotePath, vault.Patch{
		"srs_enabled":     vault.Bool(c.SRSEnabled),
		"srs_next_review": vault.Date(c.NextReview),
		"srs_last_review": vault.Date(c.LastReview),
		"srs_interval":    vault.Int(c.IntervalDays),
		"srs_ease_factor": vault.Float(c.Ease),
		"srs_repetitions": vault.Int(c.Repetitions),
	})
}

// DueCards implements domain.Port
func (s *Service) DueCards(ctx context.Context, limit int, noteType domain.NoteType) ([]domain.Card, error) {
	if limit <= 0 || limit > s.Cfg.BatchMax {
		limit = s.Cfg.BatchSize
	}
	today := s.Clock.Today()
	var out []domain.Card
	err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
		var err error
		out, err = s.Binder.Bind(q).ListDue(ctx, today, limit, noteType)
		return err
	})
	return out, err
}

// SyncVault implements domain.Port
// Walks every note, upserting a card per file that is review-eligible.
// Rows for files that have disappeared are left alone
func (s *Service) SyncVault(ctx context.Context) (int, error) {
	files, err := s.Vault.ListFiles("")
	if err != nil {
		return 0, err
	}
	synced := 0
	for _, rel := range files {
		if !strings.HasSuffix(rel, ".md") {
			continue
		}
		ok, err := s.syncFile(ctx, rel)
		if err != nil {
			return synced, err
		}
		if ok {
			synced++
		}
	}
	s.Log.Info().Int("cards", synced).Msg("vault sync complete")
	return synced, nil
}

// syncFile upserts one note's card row; returns false when the note is not
// review-eligible
func (s *Service) syncFile(ctx context.Context, rel string) (bool, error) {
	md, _, err := s.Vault.Read(rel)
	if err != nil {
		if perr.IsCode(err, perr.ErrorCodeNotFound) {
			return false, nil // deleted between list and read
		}
		return false, err
	}

	enabled, _ := md.Bool("srs_enabled")
	typeStr, _ := md.String("type")
	noteType := domain.ParseNoteType(typeStr)
	nextReview, hasReview := md.Date("srs_next_review")

	eligible := enabled || ((noteType == domain.NoteTrail || noteType == domain.NoteMOC) && hasReview)
	if !eligible {
		return false, nil
	}

	today := s.Clock.Today()
	card := domain.Card{
		NotePath:   rel,
		NoteType:   noteType,
		Title:      noteTitle(md, rel),
		SRSEnabled: true,
	}
	if iv, ok := md.Int("srs_interval"); ok {
		card.IntervalDays = iv
	}
	if ease, ok := md.Float("srs_ease_factor"); ok {
		card.Ease = ease
	} else {
		card.Ease = engine.DefaultEase
	}
	if reps, ok := md.Int("srs_repetitions"); ok {
		card.Repetitions = reps
	}
	if last, ok := md.Date("srs_last_review"); ok {
		card.LastReview = last
	}

	if hasReview {
		card.NextReview = nextReview
	} else {
		// Fresh ideas get a random interval so the review stream stays even;
		// anything else starts tomorrow
		if noteType == domain.NoteIdea {
			card.IntervalDays = 1 + s.intn(s.Cfg.SeedMaxDays)
		} else {
			card.IntervalDays = 1
		}
		card.Ease = engine.DefaultEase
		card.Repetitions = 0
		card.NextReview = today.AddDays(card.IntervalDays)
		if err := s.writeBack(card); err != nil {
			return false, err
		}
	}
	card.IsDue = !card.NextReview.After(today)

	err = s.DB.Tx(ctx, func(q repokit.Queryer) error {
		stored, err := s.Binder.Bind(q).UpsertCard(ctx, card)
		if err != nil {
			return err
		}
		card = stored
		return nil
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

func noteTitle(md *vault.Metadata, rel string) string {
	if t, ok := md.String("title"); ok && t != "" {
		return t
	}
	base := path.Base(rel)
	return strings.TrimSuffix(base, path.Ext(base))
}

// Develop implements domain.Port
func (s *Service) Develop(ctx context.Context, cardID int64) (domain.Session, error) {
	var card domain.Card
	err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
		var err error
		card, err = s.Binder.Bind(q).GetCard(ctx, cardID)
		return err
	})
	if err != nil {
		return domain.Session{}, err
	}

	_, body, err := s.Vault.Read(card.NotePath)
	if err != nil {
		return domain.Session{}, err
	}
	links, err := s.Links.Backlinks(ctx, card.NotePath, maxBacklinks)
	if err != nil {
		return domain.Session{}, err
	}

	return domain.Session{
		NotePath:  card.NotePath,
		Title:     card.Title,
		Excerpt:   excerpt(body, s.Cfg.ExcerptRunes),
		Backlinks: links,
	}, nil
}

func excerpt(body string, limit int) string {
	body = strings.TrimSpace(body)
	runes := []rune(body)
	if len(runes) <= limit {
		return body
	}
	return string(runes[:limit]) + "…"
}
