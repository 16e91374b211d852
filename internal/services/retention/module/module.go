// Package module provides the retention module
package module

import (
	"net/http"
	"time"

	"stride/internal/modkit"
	"stride/internal/modkit/httpkit"
	"stride/internal/modkit/repokit"
	"stride/internal/services/retention/repo"
	"stride/internal/services/retention/service"
	users "stride/internal/services/users/domain"
)

// Ports exposed by the retention module
type Ports struct {
	Retention *service.Service
}

// Collaborators are the cross-module dependencies wired by the composition root
type Collaborators struct {
	Users users.ReaderPort
}

// Module implements modkit.Module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs a new retention module
func New(deps modkit.Deps, c Collaborators) *Module {
	interval := deps.Cfg.Prefix("CORE_RETENTION_").MayDuration("INTERVAL", 24*time.Hour)

	svc := service.New(
		repokit.TxRunner(deps.PG), repo.NewPG(), c.Users,
		deps.Sched, deps.Clock, deps.Log,
		service.Config{Interval: interval},
	)

	m := &Module{deps: deps}
	m.ports = Ports{Retention: svc}
	return m
}

// Name implements modkit.Module
func (m *Module) Name() string { return "retention" }

// Ports implements modkit.Module
func (m *Module) Ports() any { return m.ports }

// Prefix implements modkit.Module
func (m *Module) Prefix() string { return "" }

// Middlewares implements modkit.Module
func (m *Module) Middlewares() []func(http.Handler) http.Handler { return nil }

// MountRoutes implements modkit.Module
func (m *Module) MountRoutes(r httpkit.Router) {}
