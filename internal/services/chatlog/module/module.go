// Package module provides the chat log module
package module

import (
	"net/http"

	"stride/internal/modkit"
	"stride/internal/modkit/httpkit"
	"stride/internal/modkit/repokit"
	"stride/internal/services/chatlog/domain"
	"stride/internal/services/chatlog/repo"
	"stride/internal/services/chatlog/service"
)

// Ports exposed by the chat log module
type Ports struct {
	Recorder domain.RecorderPort
	Reader   domain.ReaderPort
}

// Module implements modkit.Module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs a new chat log module
func New(deps modkit.Deps) *Module {
	opts := FromConfig(deps.Cfg)

	binder := repo.NewPG()
	svc := service.New(repokit.TxRunner(deps.PG), binder, deps.Log, service.Config{
		HardLimit:    opts.HardLimit,
		BodyMaxRunes: opts.BodyMaxRunes,
	})

	m := &Module{deps: deps}
	m.ports = Ports{Recorder: svc, Reader: svc}
	return m
}

// Name implements modkit.Module
func (m *Module) Name() string { return "chatlog" }

// Ports implements modkit.Module
func (m *Module) Ports() any { return m.ports }

// Prefix implements modkit.Module
func (m *Module) Prefix() string { return "" }

// Middlewares implements modkit.Module
func (m *Module) Middlewares() []func(http.Handler) http.Handler { return nil }

// MountRoutes implements modkit.Module
func (m *Module) MountRoutes(r httpkit.Router) {}
