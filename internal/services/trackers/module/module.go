// Package module provides the trackers module
package module

import (
	"net/http"

	"stride/internal/modkit"
	"stride/internal/modkit/httpkit"
	"stride/internal/modkit/repokit"
	"stride/internal/services/trackers/domain"
	"stride/internal/services/trackers/repo"
	"stride/internal/services/trackers/service"
)

// Ports exposed by the trackers module
type Ports struct {
	Trackers domain.Port
}

// Module implements modkit.Module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs a new trackers module
func New(deps modkit.Deps) *Module {
	svc := service.New(repokit.TxRunner(deps.PG), repo.NewPG())
	m := &Module{deps: deps}
	m.ports = Ports{Trackers: svc}
	return m
}

// Name implements modkit.Module
func (m *Module) Name() string { return "trackers" }

// Ports implements modkit.Module
func (m *Module) Ports() any { return m.ports }

// Prefix implements modkit.Module
func (m *Module) Prefix() string { return "" }

// Middlewares implements modkit.Module
func (m *Module) Middlewares() []func(http.Handler) http.Handler { return nil }

// MountRoutes implements modkit.Module
func (m *Module) MountRoutes(r httpkit.Router) {}
