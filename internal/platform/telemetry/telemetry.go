// Package telemetry tracks scheduler fire outcomes and backs the health endpoint
package telemetry

import (
	"net/http"
	"sync"
	"time"

	perr "stride/internal/platform/errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome classifies one scheduler fire
type Outcome string

// Fire outcomes; error outcomes are derived via ErrorOutcome
const (
	OutcomeOK               Outcome = "ok"
	OutcomeSkippedOverlap   Outcome = "skipped_overlap"
	OutcomeSkippedQuietHrs  Outcome = "skipped_quiet_hours"
	outcomeErrPrefix                = "error:"
)

// ErrorOutcome maps an error to its outcome label, error:<kind>
func ErrorOutcome(err error) Outcome {
	kind := "unknown"
	if e, ok := perr.As(err); ok {
		switch e.Code() {
		case perr.ErrorCodeNotFound:
			kind = "not_found"
		case perr.ErrorCodeDuplicateCheckIn:
			kind = "duplicate_check_in"
		case perr.ErrorCodeOwnershipMismatch:
			kind = "ownership_mismatch"
		case perr.ErrorCodeInvalidSchedule:
			kind = "invalid_schedule"
		case perr.ErrorCodeUnavailable:
			kind = "transient"
		case perr.ErrorCodeCancelled:
			kind = "cancelled"
		case perr.ErrorCodeConfig:
			kind = "config"
		case perr.ErrorCodeDB:
			kind = "db"
		case perr.ErrorCodeValidation, perr.ErrorCodeInvalidArgument:
			kind = "invalid"
		}
	}
	return Outcome(outcomeErrPrefix + kind)
}

// LastError captures the most recent failure of a subsystem
type LastError struct {
	At      time.Time `json:"at"`
	Message string    `json:"message"`
}

// Health is the snapshot served by the health endpoint
type Health struct {
	State      string               `json:"state"` // healthy | degraded
	Outcomes   map[string]uint64    `json:"outcomes"`
	LastErrors map[string]LastError `json:"last_errors,omitempty"`
}

// Registry owns the prometheus collectors and the rolling counters
type Registry struct {
	reg      *prometheus.Registry
	fires    *prometheus.CounterVec
	duration *prometheus.HistogramVec

	mu       sync.Mutex
	outcomes map[Outcome]uint64
	lastErr  map[string]LastError
}

// New builds a Registry with its own prometheus registry
func New() *Registry {
	reg := prometheus.NewRegistry()
	fires := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stride_fires_total",
		Help: "Scheduler fires by job kind and outcome",
	}, []string{"job_kind", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "stride_fire_duration_seconds",
		Help:    "Callback duration per job kind",
		Buckets: prometheus.DefBuckets,
	}, []string{"job_kind"})
	reg.MustRegister(fires, duration)
	return &Registry{
		reg:      reg,
		fires:    fires,
		duration: duration,
		outcomes: make(map[Outcome]uint64),
		lastErr:  make(map[string]LastError),
	}
}

// RecordFire counts one fire of jobKind with the given outcome and duration
func (r *Registry) RecordFire(jobKind string, outcome Outcome, d time.Duration) {
	r.fires.WithLabelValues(jobKind, string(outcome)).Inc()
	r.duration.WithLabelValues(jobKind).Observe(d.Seconds())

	r.mu.Lock()
	r.outcomes[outcome]++
	r.mu.Unlock()
}

// RecordError remembers the latest error per subsystem (scheduler, store)
func (r *Registry) RecordError(subsystem string, at time.Time, err error) {
	if err == nil {
		return
	}
	r.mu.Lock()
	r.lastErr[subsystem] = LastError{At: at, Message: err.Error()}
	r.mu.Unlock()
}

// Health reports healthy when no error outcome has been counted
func (r *Registry) Health() Health {
	r.mu.Lock()
	defer r.mu.Unlock()

	h := Health{
		State:      "healthy",
		Outcomes:   make(map[string]uint64, len(r.outcomes)),
		LastErrors: make(map[string]LastError, len(r.lastErr)),
	}
	for k, v := range r.outcomes {
		h.Outcomes[string(k)] = v
		if len(k) > len(outcomeErrPrefix) && k[:len(outcomeErrPrefix)] == outcomeErrPrefix && v > 0 {
			h.State = "degraded"
		}
	}
	for k, v := range r.lastErr {
		h.LastErrors[k] = v
	}
	return h
}

// Handler serves the prometheus exposition format for this registry
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}
