// Package module provides the accountability module
package module

import (
	"net/http"

	"stride/internal/modkit"
	"stride/internal/modkit/httpkit"
	"stride/internal/services/accountability/domain"
	"stride/internal/services/accountability/service"
	dispatch "stride/internal/services/dispatch/domain"
	jobs "stride/internal/services/jobs/domain"
	trackers "stride/internal/services/trackers/domain"
	users "stride/internal/services/users/domain"
)

// Ports exposed by the accountability module
type Ports struct {
	Accountability domain.Port
}

// Collaborators are the cross-module dependencies wired by the composition root
type Collaborators struct {
	Users    users.ReaderPort
	Trackers trackers.Port
	Registry jobs.Port
	Dispatch dispatch.Port
	Synth    domain.Synth // optional
}

// Module implements modkit.Module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs a new accountability module
func New(deps modkit.Deps, c Collaborators) (*Module, error) {
	opts, err := FromConfig(deps.Cfg)
	if err != nil {
		return nil, err
	}

	svc := service.New(
		c.Users, c.Trackers, c.Registry, c.Dispatch,
		deps.Sched, c.Synth, deps.Clock, deps.Log,
		service.Config{Quiet: opts.Quiet, DefaultCheckTime: opts.DefaultCheckTime},
	)

	m := &Module{deps: deps}
	m.ports = Ports{Accountability: svc}
	return m, nil
}

// Name implements modkit.Module
func (m *Module) Name() string { return "accountability" }

// Ports implements modkit.Module
func (m *Module) Ports() any { return m.ports }

// Prefix implements modkit.Module
func (m *Module) Prefix() string { return "" }

// Middlewares implements modkit.Module
func (m *Module) Middlewares() []func(http.Handler) http.Handler { return nil }

// MountRoutes implements modkit.Module
func (m *Module) MountRoutes(r httpkit.Router) {}
