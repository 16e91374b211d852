// Package api provides the HTTP surface for the runtime
package api

import (
	"stride/internal/platform/config"
	"stride/internal/platform/logger"
	phttp "stride/internal/platform/net/http"
	"stride/internal/platform/sched"
	"stride/internal/platform/store"
	"stride/internal/platform/telemetry"

	"stride/internal/modkit"
	"stride/internal/modkit/httpkit"
	"stride/internal/modkit/module"
	"stride/internal/modkit/swaggerkit"

	metamod "stride/internal/services/api/meta/module"
	opsdom "stride/internal/services/api/ops/domain"
	opsmod "stride/internal/services/api/ops/module"
)

// Options are the API options
type Options struct {
	Config config.Conf
	Store  *store.Store
	Logger *logger.Logger
	Sched  *sched.Scheduler
	Tel    *telemetry.Registry

	// Action ports owned by the accountability and srs services
	Checkins opsdom.CheckinActions
	Reviews  opsdom.ReviewActions

	EnableSwagger  bool
	EnableProfiler bool
}

// Mount mounts the API service onto the given router
func Mount(r phttp.Router, opt Options) {
	// shared deps for modules
	deps := modkit.Deps{
		Cfg:   opt.Config,
		PG:    opt.Store.PG,
		Sched: opt.Sched,
		Tel:   opt.Tel,
	}

	ops := opsmod.New(deps, modkit.WithPorts(opsmod.Ports{
		Checkins: opt.Checkins,
		Reviews:  opt.Reviews,
	}))

	mods := []module.Module{
		metamod.New(deps),
		ops,
	}

	// versioned API with a common middleware stack
	httpkit.MountAPIV1(r, httpkit.CommonStack(), func(api httpkit.Router) {
		// Swagger + profiler
		swaggerkit.Mount(r, opt.EnableSwagger)
		phttp.MountProfiler(r, "/debug", opt.EnableProfiler)

		for _, m := range mods {
			// register each module's ports under its own name (for cross-module lookups)
			module.Register(m.Name(), m.Ports())

			// mount module routes under its Prefix()
			m.MountRoutes(api)
		}
	})

	// prometheus exposition lives outside the versioned tree
	if opt.Tel != nil {
		r.Handle("/metrics", opt.Tel.Handler())
	}
}
