// Package module provides the SRS module
package module

import (
	"net/http"

	"stride/internal/modkit"
	"stride/internal/modkit/httpkit"
	"stride/internal/modkit/repokit"
	dispatch "stride/internal/services/dispatch/domain"
	jobs "stride/internal/services/jobs/domain"
	"stride/internal/services/srs/domain"
	"stride/internal/services/srs/repo"
	"stride/internal/services/srs/service"
)

// Ports exposed by the SRS module
type Ports struct {
	SRS *service.Service
}

// Collaborators are the cross-module dependencies wired by the composition root
type Collaborators struct {
	Registry jobs.Port
	Dispatch dispatch.Port
	Links    domain.BacklinkExtractor // optional, text match by default
}

// Module implements modkit.Module
type Module struct {
	deps  modkit.Deps
	ports Ports
	opts  Options
}

// New constructs a new SRS module
func New(deps modkit.Deps, c Collaborators) (*Module, error) {
	opts, err := FromConfig(deps.Cfg)
	if err != nil {
		return nil, err
	}

	svc := service.New(
		repokit.TxRunner(deps.PG), repo.NewPG(), deps.Vault,
		deps.Sched, c.Registry, c.Dispatch, c.Links,
		deps.Clock, deps.Log,
		service.Config{
			BatchSize:   opts.BatchSize,
			BatchMax:    opts.BatchMax,
			MorningTime: opts.MorningTime,
			RecomputeAt: opts.RecomputeAt,
			SeedMaxDays: opts.SeedMaxDays,
		},
	)

	m := &Module{deps: deps, opts: opts}
	m.ports = Ports{SRS: svc}
	return m, nil
}

// WatchEnabled reports whether the vault watcher should run
func (m *Module) WatchEnabled() bool { return m.opts.Watch }

// Name implements modkit.Module
func (m *Module) Name() string { return "srs" }

// Ports implements modkit.Module
func (m *Module) Ports() any { return m.ports }

// Prefix implements modkit.Module
func (m *Module) Prefix() string { return "" }

// Middlewares implements modkit.Module
func (m *Module) Middlewares() []func(http.Handler) http.Handler { return nil }

// MountRoutes implements modkit.Module
func (m *Module) MountRoutes(r httpkit.Router) {}
