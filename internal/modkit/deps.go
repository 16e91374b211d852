// Package modkit provides module wiring and core deps
package modkit

import (
	"stride/internal/modkit/repokit"
	"stride/internal/platform/clock"
	"stride/internal/platform/config"
	"stride/internal/platform/logger"
	"stride/internal/platform/sched"
	"stride/internal/platform/telemetry"
	"stride/internal/platform/vault"
)

// Deps holds core dependencies passed to modules
// this is wiring only and does not introduce new abstractions
type Deps struct {
	Log   logger.Logger
	Cfg   config.Conf
	PG    repokit.TxRunner
	Clock clock.Clock
	Vault *vault.Vault
	Sched *sched.Scheduler
	Tel   *telemetry.Registry
}

// ZeroOK returns true when deps are safe to use with zero values in tests
// consumers should still nil check for optional stores
func (d Deps) ZeroOK() bool { return true }
