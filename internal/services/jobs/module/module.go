// Package module provides the job registry module
package module

import (
	"net/http"

	"stride/internal/modkit"
	"stride/internal/modkit/httpkit"
	"stride/internal/modkit/repokit"
	"stride/internal/services/jobs/domain"
	"stride/internal/services/jobs/repo"
	"stride/internal/services/jobs/service"
)

// Ports exposed by the jobs module
type Ports struct {
	Registry domain.Port
}

// Module implements modkit.Module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs a new jobs module
func New(deps modkit.Deps) *Module {
	svc := service.New(repokit.TxRunner(deps.PG), repo.NewPG())
	m := &Module{deps: deps}
	m.ports = Ports{Registry: svc}
	return m
}

// Name implements modkit.Module
func (m *Module) Name() string { return "jobs" }

// Ports implements modkit.Module
func (m *Module) Ports() any { return m.ports }

// Prefix implements modkit.Module
func (m *Module) Prefix() string { return "" }

// Middlewares implements modkit.Module
func (m *Module) Middlewares() []func(http.Handler) http.Handler { return nil }

// MountRoutes implements modkit.Module
func (m *Module) MountRoutes(r httpkit.Router) {}
