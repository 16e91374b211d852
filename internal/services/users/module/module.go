// Package module provides the users module
package module

import (
	"net/http"

	"stride/internal/modkit"
	"stride/internal/modkit/httpkit"
	"stride/internal/modkit/repokit"
	"stride/internal/services/users/domain"
	"stride/internal/services/users/repo"
	"stride/internal/services/users/service"
)

// Ports exposed by the users module
type Ports struct {
	Reader domain.ReaderPort
	Writer domain.WriterPort
}

// Module implements modkit.Module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs a new users module
func New(deps modkit.Deps) *Module {
	opts := FromConfig(deps.Cfg)

	svc := service.New(repokit.TxRunner(deps.PG), repo.NewPG(), deps.Log, service.Config{
		DefaultLocale:            opts.DefaultLocale,
		DefaultStruggleThreshold: opts.DefaultStruggleThreshold,
		DefaultRetention:         domain.Retention(opts.DefaultRetention),
	})

	m := &Module{deps: deps}
	m.ports = Ports{Reader: svc, Writer: svc}
	return m
}

// Name implements modkit.Module
func (m *Module) Name() string { return "users" }

// Ports implements modkit.Module
func (m *Module) Ports() any { return m.ports }

// Prefix implements modkit.Module
func (m *Module) Prefix() string { return "" }

// Middlewares implements modkit.Module
func (m *Module) Middlewares() []func(http.Handler) http.Handler { return nil }

// MountRoutes implements modkit.Module
func (m *Module) MountRoutes(r httpkit.Router) {}
