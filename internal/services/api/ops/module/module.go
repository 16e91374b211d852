// Package module wires ops into the API using modkit
package module

import (
	"crypto/subtle"
	"net/http"

	modkit "stride/internal/modkit"
	"stride/internal/modkit/httpkit"
	perr "stride/internal/platform/errors"
	"stride/internal/platform/net/middleware"
	str "stride/internal/platform/strings"

	opsdom "stride/internal/services/api/ops/domain"
	opshttp "stride/internal/services/api/ops/http"
)

// Ports declares the injected service ports for this API module
type Ports struct {
	Checkins opsdom.CheckinActions
	Reviews  opsdom.ReviewActions
	Jobs     opsdom.JobLister
}

// Module implements the modkit.Module interface
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string

	mws       []func(http.Handler) http.Handler
	ports     any
	swaggerOn bool

	auth      middleware.AuthPort
	subrouter func(httpkit.Router) httpkit.Router
	register  func(httpkit.Router)
}

// tokenAuth admits callers presenting the configured static bearer token
type tokenAuth struct{ token string }

func (a tokenAuth) Parse(r *http.Request) (string, string, error) {
	raw, err := httpkit.JWT(r)
	if err != nil {
		return "", "", err
	}
	if subtle.ConstantTimeCompare([]byte(raw), []byte(a.token)) != 1 {
		return "", "", perr.Unauthorizedf("invalid ops token")
	}
	return "ops", "", nil
}

// New constructs an ops module with the provided dependencies and options
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("ops"),
		modkit.WithPrefix("/ops"),
	}, opts...)...)

	var injected Ports
	if p, ok := b.Ports.(Ports); ok {
		injected = p
	}
	if injected.Jobs == nil && deps.Sched != nil {
		injected.Jobs = deps.Sched
	}

	m := &Module{
		deps:      deps,
		name:      b.Name,
		prefix:    b.Prefix,
		mws:       b.Mw,
		ports:     injected,
		swaggerOn: b.SwaggerOn,
		subrouter: b.Subrouter,
	}

	// CORE_OPS_TOKEN, when set, puts the whole surface behind bearer auth
	if tok := deps.Cfg.Prefix("CORE_OPS_").MayString("TOKEN", ""); tok != "" {
		m.auth = tokenAuth{token: tok}
	}

	external := b.Register
	m.register = func(r httpkit.Router) {
		opshttp.Register(r, opshttp.Deps{
			Checkins: injected.Checkins,
			Reviews:  injected.Reviews,
			Jobs:     injected.Jobs,
		})
		if external != nil {
			external(r)
		}
	}
	return m
}

// MountRoutes implements the modkit.Module interface
func (m *Module) MountRoutes(r httpkit.Router) {
	r.Route(m.prefix, func(rr httpkit.Router) {
		for _, mw := range m.mws {
			rr.Use(mw)
		}
		if m.subrouter != nil {
			rr = m.subrouter(rr)
		}
		if m.register == nil {
			return
		}
		if m.auth != nil {
			httpkit.Protected(rr, m.auth, m.register)
			return
		}
		m.register(rr)
	})
}

// Name implements the modkit.Module interface
func (m *Module) Name() string { return str.MustString(m.name, "ops") }

// Prefix implements the modkit.Module interface
func (m *Module) Prefix() string { return str.MustPrefix(m.prefix) }

// Middlewares implements the modkit.Module interface
func (m *Module) Middlewares() []func(http.Handler) http.Handler { return m.mws }

// Ports implements the modkit.Module interface
func (m *Module) Ports() any { return m.ports }
