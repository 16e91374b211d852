// Package module provides the life weeks module
package module

import (
	"net/http"

	"stride/internal/modkit"
	"stride/internal/modkit/httpkit"
	dispatch "stride/internal/services/dispatch/domain"
	"stride/internal/services/lifeweeks/service"
	users "stride/internal/services/users/domain"
)

// Ports exposed by the life weeks module
type Ports struct {
	LifeWeeks *service.Service
}

// Collaborators are the cross-module dependencies wired by the composition root
type Collaborators struct {
	Users    users.ReaderPort
	Dispatch dispatch.Port
	Reply    dispatch.ReplyContextTracker // optional
}

// Module implements modkit.Module
type Module struct {
	deps  modkit.Deps
	ports Ports
	opts  Options
}

// New constructs a new life weeks module
func New(deps modkit.Deps, c Collaborators) *Module {
	svc := service.New(c.Users, c.Dispatch, c.Reply, deps.Sched, deps.Clock, deps.Log)
	m := &Module{deps: deps, opts: FromConfig(deps.Cfg)}
	m.ports = Ports{LifeWeeks: svc}
	return m
}

// Enabled reports whether the daily life weeks job should be installed
func (m *Module) Enabled() bool { return m.opts.Enabled }

// Name implements modkit.Module
func (m *Module) Name() string { return "lifeweeks" }

// Ports implements modkit.Module
func (m *Module) Ports() any { return m.ports }

// Prefix implements modkit.Module
func (m *Module) Prefix() string { return "" }

// Middlewares implements modkit.Module
func (m *Module) Middlewares() []func(http.Handler) http.Handler { return nil }

// MountRoutes implements modkit.Module
func (m *Module) MountRoutes(r httpkit.Router) {}
