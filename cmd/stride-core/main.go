// @title         Stride Core
// @version       0.1.0
// @description   Scheduling, accountability and spaced repetition runtime

package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"
	"time"

	"stride/internal/modkit"
	"stride/internal/platform/clock"
	"stride/internal/platform/config"
	"stride/internal/platform/logger"
	phttp "stride/internal/platform/net/http"
	"stride/internal/platform/sched"
	"stride/internal/platform/store"
	"stride/internal/platform/telemetry"
	"stride/internal/platform/vault"

	"stride/internal/services/api"
	chatlogsvc "stride/internal/services/chatlog/service"
	dispatchdom "stride/internal/services/dispatch/domain"
	"stride/internal/services/dispatch/sink"

	acctmod "stride/internal/services/accountability/module"
	chatlogmod "stride/internal/services/chatlog/module"
	jobsmod "stride/internal/services/jobs/module"
	lifeweeksmod "stride/internal/services/lifeweeks/module"
	retentionmod "stride/internal/services/retention/module"
	srsmod "stride/internal/services/srs/module"
	trackersmod "stride/internal/services/trackers/module"
	usersmod "stride/internal/services/users/module"
)

func main() {
	oneshot := flag.String("oneshot", "",
		"run one job (retention_sweep, srs_recompute, vault_sync, life_weeks) and exit")
	flag.Parse()

	root := config.New()
	apiCfg := root.Prefix("CORE_API_")
	pgCfg := root.Prefix("SERVICE_PGSQL_")

	// bring up logging early
	l := logger.Get()

	// open the platform store
	st, err := store.Open(
		context.Background(),
		store.Config{
			PG: store.PGConfig{
				Enabled:     true,
				URL:         pgCfg.MustString("DBURL"),
				MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 4)),
				SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
				LogSQL:      pgCfg.MayBool("LOG_SQL", false),
			},
		},
		store.WithLogger(*l),
	)
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	clk := clock.System()
	tel := telemetry.New()
	vlt := vault.New(root.Prefix("CORE_VAULT_").MustString("PATH"))
	sc := sched.New(clk, *l, tel, sched.Options{
		Workers: root.Prefix("CORE_SCHED_").MayInt("WORKERS", 8),
	})

	deps := modkit.Deps{
		Log:   *l,
		Cfg:   root,
		PG:    st.PG,
		Clock: clk,
		Vault: vlt,
		Sched: sc,
		Tel:   tel,
	}

	// base modules
	usersMod := usersmod.New(deps)
	trackersMod := trackersmod.New(deps)
	jobsMod := jobsmod.New(deps)
	chatlogMod := chatlogmod.New(deps)

	up := usersMod.Ports().(usersmod.Ports)
	tp := trackersMod.Ports().(trackersmod.Ports)
	jp := jobsMod.Ports().(jobsmod.Ports)
	cp := chatlogMod.Ports().(chatlogmod.Ports)

	// outbound transport: structured log sink until a chat adapter is
	// attached, tapped so deliveries land in the chat log
	var transport dispatchdom.Port = &sink.Log{Logger: *l}
	transport = &chatlogsvc.Tap{Next: transport, Rec: cp.Recorder, Log: *l}

	// domain modules over the base ports
	acctMod, err := acctmod.New(deps, acctmod.Collaborators{
		Users:    up.Reader,
		Trackers: tp.Trackers,
		Registry: jp.Registry,
		Dispatch: transport,
	})
	if err != nil {
		l.Panic().Err(err).Msg("accountability module init failed")
	}
	srsMod, err := srsmod.New(deps, srsmod.Collaborators{
		Registry: jp.Registry,
		Dispatch: transport,
	})
	if err != nil {
		l.Panic().Err(err).Msg("srs module init failed")
	}
	lifeweeksMod := lifeweeksmod.New(deps, lifeweeksmod.Collaborators{
		Users:    up.Reader,
		Dispatch: transport,
	})
	retentionMod := retentionmod.New(deps, retentionmod.Collaborators{
		Users: up.Reader,
	})

	ap := acctMod.Ports().(acctmod.Ports)
	sp := srsMod.Ports().(srsmod.Ports)
	lp := lifeweeksMod.Ports().(lifeweeksmod.Ports)
	rp := retentionMod.Ports().(retentionmod.Ports)

	if *oneshot != "" {
		runOneshot(l, *oneshot, sp, lp, rp)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := sc.Start(); err != nil {
		l.Panic().Err(err).Msg("scheduler start failed")
	}
	defer sc.Stop()

	// reinstall persisted per-user schedules and the singleton jobs
	if err := ap.Accountability.Rehydrate(ctx); err != nil {
		l.Panic().Err(err).Msg("accountability rehydrate failed")
	}
	if err := sp.SRS.Rehydrate(ctx); err != nil {
		l.Panic().Err(err).Msg("srs rehydrate failed")
	}
	if err := sp.SRS.InstallRecompute(); err != nil {
		l.Panic().Err(err).Msg("recompute install failed")
	}
	if lifeweeksMod.Enabled() {
		if err := lp.LifeWeeks.Install(); err != nil {
			l.Panic().Err(err).Msg("life weeks install failed")
		}
	}
	if err := rp.Retention.Install(); err != nil {
		l.Panic().Err(err).Msg("retention install failed")
	}

	// bring card rows in line with the vault, then keep them there
	if n, err := sp.SRS.SyncVault(ctx); err != nil {
		l.Error().Err(err).Msg("vault sync failed")
	} else {
		l.Info().Int("cards", n).Msg("vault synced")
	}
	if srsMod.WatchEnabled() {
		w, err := sp.SRS.Watch(ctx)
		if err != nil {
			l.Error().Err(err).Msg("vault watcher failed to start")
		} else {
			defer func() {
				if err := w.Close(); err != nil {
					l.Error().Err(err).Msg("vault watcher close failed")
				}
			}()
		}
	}

	// http surface (reads CORE_API_API_PORT)
	srv := phttp.NewServer(apiCfg)
	api.Mount(srv.Router(), api.Options{
		Config:         apiCfg,
		Store:          st,
		Logger:         l,
		Sched:          sc,
		Tel:            tel,
		Checkins:       ap.Accountability,
		Reviews:        sp.SRS,
		EnableSwagger:  apiCfg.MayBool("SWAGGER", false),
		EnableProfiler: apiCfg.MayBool("PROFILER", false),
	})

	go func() {
		<-ctx.Done()
		shctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shctx); err != nil {
			l.Error().Err(err).Msg("http shutdown failed")
		}
	}()

	if err := srv.Run(ctx); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
}

// runOneshot executes one scheduled job body immediately; this is the entry
// the OS scheduler units produced by stride-jobctl invoke
func runOneshot(l *logger.Logger, job string, sp srsmod.Ports, lp lifeweeksmod.Ports, rp retentionmod.Ports) {
	ctx := context.Background()
	var err error
	switch job {
	case "retention_sweep":
		err = rp.Retention.Sweep(ctx)
	case "srs_recompute":
		err = sp.SRS.Recompute(ctx)
	case "vault_sync":
		var n int
		if n, err = sp.SRS.SyncVault(ctx); err == nil {
			l.Info().Int("cards", n).Msg("vault synced")
		}
	case "life_weeks":
		err = lp.LifeWeeks.RunOnce(ctx)
	default:
		l.Fatal().Str("job", job).Msg("unknown oneshot job")
	}
	if err != nil {
		l.Fatal().Err(err).Str("job", job).Msg("oneshot failed")
	}
}
