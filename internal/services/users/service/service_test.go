package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"stride/internal/modkit/repokit"
	"stride/internal/platform/clock"
	perr "stride/internal/platform/errors"
	"stride/internal/services/users/domain"
)

type fakeTx struct{ repokit.TxRunner }

func (fakeTx) Tx(_ context.Context, fn func(q repokit.Queryer) error) error { return fn(nil) }

type fakeRepo struct {
	domain.Repo

	users    map[string]domain.User
	privacy  map[string]domain.PrivacySettings
	profiles map[string]domain.AccountabilityProfile
	erased   []string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:    make(map[string]domain.User),
		privacy:  make(map[string]domain.PrivacySettings),
		profiles: make(map[string]domain.AccountabilityProfile),
	}
}

func (f *fakeRepo) EnsureUser(_ context.Context, userID, locale string) (domain.User, error) {
	if u, ok := f.users[userID]; ok {
		return u, nil
	}
	u := domain.User{UserID: userID, Locale: locale}
	f.users[userID] = u
	return u, nil
}

func (f *fakeRepo) GetUser(_ context.Context, userID string) (domain.User, error) {
	u, ok := f.users[userID]
	if !ok {
		return domain.User{}, perr.NotFoundf("user %q", userID)
	}
	return u, nil
}

func (f *fakeRepo) GetPrivacy(_ context.Context, userID string) (domain.PrivacySettings, error) {
	p, ok := f.privacy[userID]
	if !ok {
		return domain.PrivacySettings{}, perr.NotFoundf("privacy %q", userID)
	}
	return p, nil
}

func (f *fakeRepo) PutPrivacy(_ context.Context, p domain.PrivacySettings) error {
	f.privacy[p.UserID] = p
	return nil
}

func (f *fakeRepo) PutProfile(_ context.Context, p domain.AccountabilityProfile) error {
	f.profiles[p.UserID] = p
	return nil
}

func (f *fakeRepo) EraseUser(_ context.Context, userID string) error {
	delete(f.users, userID)
	f.erased = append(f.erased, userID)
	return nil
}

func newService(repo *fakeRepo, cfg Config) *Service {
	return New(
		fakeTx{}, repokit.BindFunc[domain.Repo](func(repokit.Queryer) domain.Repo { return repo }),
		zerolog.Nop(), cfg,
	)
}

func TestEnsureAppliesDefaultLocale(t *testing.T) {
	repo := newFakeRepo()
	s := newService(repo, Config{})

	u, err := s.Ensure(context.Background(), "u1", "")
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if u.Locale != "en" {
		t.Errorf("locale = %q, want the en default", u.Locale)
	}

	if _, err := s.Ensure(context.Background(), "", "en"); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Errorf("empty user id: got %v, want invalid argument", err)
	}
}

func TestPrivacyFallsBackToDefaultWindow(t *testing.T) {
	repo := newFakeRepo()
	s := newService(repo, Config{DefaultRetention: domain.RetentionSixMonths})

	p, err := s.Privacy(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("privacy: %v", err)
	}
	if p.UserID != "nobody" || p.Retention != domain.RetentionSixMonths {
		t.Errorf("fallback = %+v", p)
	}

	repo.privacy["u1"] = domain.PrivacySettings{UserID: "u1", Retention: domain.RetentionOneMonth}
	p, err = s.Privacy(context.Background(), "u1")
	if err != nil {
		t.Fatalf("privacy: %v", err)
	}
	if p.Retention != domain.RetentionOneMonth {
		t.Errorf("stored row ignored: %+v", p)
	}
}

func TestSetPrivacyValidatesWindow(t *testing.T) {
	s := newService(newFakeRepo(), Config{})
	err := s.SetPrivacy(context.Background(), domain.PrivacySettings{UserID: "u1", Retention: "fortnight"})
	if !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Errorf("got %v, want invalid argument", err)
	}
}

func TestSetProfileFillsDefaults(t *testing.T) {
	repo := newFakeRepo()
	s := newService(repo, Config{})

	err := s.SetProfile(context.Background(), domain.AccountabilityProfile{
		UserID:      "u1",
		ChatID:      "chat-1",
		Personality: domain.PersonalityDirect,
		CheckTime:   clock.TimeOfDay{Hour: 8},
	})
	if err != nil {
		t.Fatalf("set profile: %v", err)
	}
	got := repo.profiles["u1"]
	if got.StruggleThreshold != 3 {
		t.Errorf("struggle threshold = %d, want the default 3", got.StruggleThreshold)
	}
	if got.CelebrationStyle != domain.CelebrationModerate {
		t.Errorf("celebration style = %q, want moderate", got.CelebrationStyle)
	}

	err = s.SetProfile(context.Background(), domain.AccountabilityProfile{UserID: "u1", Personality: "sassy"})
	if !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Errorf("unknown personality: got %v, want invalid argument", err)
	}
}

func TestSetLifeWeeksValidation(t *testing.T) {
	s := newService(newFakeRepo(), Config{})

	err := s.SetLifeWeeks(context.Background(), domain.LifeWeeksSettings{UserID: "u1", Enabled: true})
	if !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Errorf("missing dob: got %v, want invalid argument", err)
	}

	err = s.SetLifeWeeks(context.Background(), domain.LifeWeeksSettings{
		UserID: "u1", Destination: domain.DestinationCustom,
	})
	if !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Errorf("custom without path: got %v, want invalid argument", err)
	}
}

func TestEraseRequiresExistingUser(t *testing.T) {
	repo := newFakeRepo()
	s := newService(repo, Config{})

	if err := s.Erase(context.Background(), "ghost"); !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Errorf("got %v, want not found", err)
	}

	repo.users["u1"] = domain.User{UserID: "u1"}
	if err := s.Erase(context.Background(), "u1"); err != nil {
		t.Fatalf("erase: %v", err)
	}
	if len(repo.erased) != 1 || repo.erased[0] != "u1" {
		t.Errorf("erased = %v", repo.erased)
	}
}
