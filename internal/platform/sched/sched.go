// Package sched is the in-process runtime scheduler: one dispatcher loop over
// a fire-time priority queue, callbacks on a bounded worker pool
//
// Semantics
//   - interval jobs: first fire at register time + first delay, then every
//     interval; a tick whose previous invocation is still running is skipped,
//     never queued
//   - daily jobs: each HH:MM is an independent sub-job named <name>_HH:MM and
//     fires once per civil day in the process timezone
//   - Cancel(name) removes the job and every sub-job named name_*
//   - jobs with the same fire time dispatch in registration order
package sched

import (
	"container/heap"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"stride/internal/platform/clock"
	perr "stride/internal/platform/errors"
	"stride/internal/platform/logger"
	"stride/internal/platform/telemetry"
)

// ScheduleKind discriminates the two schedule shapes
type ScheduleKind int

// Schedule kinds
const (
	KindInterval ScheduleKind = iota
	KindDaily
)

// Schedule is either a fixed interval or a set of daily times
type Schedule struct {
	Kind  ScheduleKind
	Every time.Duration
	Times []clock.TimeOfDay
}

// Every builds an interval schedule
func Every(d time.Duration) Schedule { return Schedule{Kind: KindInterval, Every: d} }

// DailyAt builds a daily schedule over the given times
func DailyAt(times ...clock.TimeOfDay) Schedule {
	return Schedule{Kind: KindDaily, Times: times}
}

// Fire describes one dispatch of a job to its handler
type Fire struct {
	Job   string
	Kind  string
	RunID string
	At    time.Time
	Data  map[string]string
}

// Handler is the callback invoked per fire; ctx is the job's cancellation
// token and is tripped by Cancel or Stop
type Handler func(ctx context.Context, fire Fire) error

// Job is a registration request; Name replaces any prior job of that name
type Job struct {
	Name       string
	Kind       string
	Schedule   Schedule
	FirstDelay time.Duration
	Enabled    bool
	Data       map[string]string
	Handler    Handler
}

// skipError lets handlers report a gated fire without treating it as failure
type skipError struct{ reason string }

func (e skipError) Error() string { return "skipped: " + e.reason }

// Skip returns an error handlers use to mark the fire skipped for reason,
// e.g. Skip("quiet_hours") yields the outcome skipped_quiet_hours
func Skip(reason string) error { return skipError{reason: reason} }

// softBudget is how long a callback may run before a warning is logged
const softBudget = 5 * time.Minute

// drainBudget bounds Stop's wait for in-flight callbacks
const drainBudget = 30 * time.Second

// entry is one schedulable unit (an interval job or a daily sub-job)
type entry struct {
	name     string
	kind     string
	parent   string // registration name; equals name for interval jobs
	schedule Schedule
	at       clock.TimeOfDay // daily sub-jobs only
	interval time.Duration
	data     map[string]string
	handler  Handler
	seq      uint64

	ctx     context.Context
	cancel  context.CancelFunc
	running bool
	removed bool
}

type item struct {
	when  time.Time
	seq   uint64
	ent   *entry
	index int
}

type fireQueue []*item

func (q fireQueue) Len() int { return len(q) }
func (q fireQueue) Less(i, j int) bool {
	if !q[i].when.Equal(q[j].when) {
		return q[i].when.Before(q[j].when)
	}
	return q[i].seq < q[j].seq
}
func (q fireQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}
func (q *fireQueue) Push(x any) {
	it := x.(*item)
	it.index = len(*q)
	*q = append(*q, it)
}
func (q *fireQueue) Pop() any {
	old := *q
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return it
}

// Options tune the scheduler
type Options struct {
	Workers int
}

// Scheduler multiplexes heterogeneous jobs onto one process
type Scheduler struct {
	clk clock.Clock
	log logger.Logger
	tel *telemetry.Registry

	workers int

	mu      sync.Mutex
	entries map[string]*entry // by sub-job name
	specs   map[string]Job    // by registration name, for Snapshot
	queue   fireQueue
	nextSeq uint64
	started bool
	stopped bool

	rootCtx  context.Context
	rootStop context.CancelFunc
	wake     chan struct{}
	work     chan *item
	wg       sync.WaitGroup
	loopDone chan struct{}
}

// New constructs a stopped scheduler
func New(clk clock.Clock, log logger.Logger, tel *telemetry.Registry, opts Options) *Scheduler {
	if opts.Workers <= 0 {
		opts.Workers = 8
	}
	return &Scheduler{
		clk:     clk,
		log:     log,
		tel:     tel,
		workers: opts.Workers,
		entries: make(map[string]*entry),
		specs:   make(map[string]Job),
		wake:    make(chan struct{}, 1),
		work:    make(chan *item, 256),
	}
}

// Schedule inserts j, replacing any prior job registered under the same name
func (s *Scheduler) Schedule(j Job) error {
	if err := validate(j); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return perr.InvalidSchedulef("scheduler stopped")
	}

	// replacement: cancel the previous registration and its sub-jobs
	s.cancelLocked(j.Name)
	s.specs[j.Name] = j
	if !j.Enabled {
		s.wakeLoop()
		return nil
	}

	now := s.clk.NowWall()
	base := context.Background()
	if s.rootCtx != nil {
		base = s.rootCtx
	}

	switch j.Schedule.Kind {
	case KindInterval:
		ctx, cancel := context.WithCancel(base)
		e := &entry{
			name:     j.Name,
			kind:     j.Kind,
			parent:   j.Name,
			schedule: j.Schedule,
			interval: j.Schedule.Every,
			data:     j.Data,
			handler:  j.Handler,
			seq:      s.nextSeq,
			ctx:      ctx,
			cancel:   cancel,
		}
		s.nextSeq++
		s.entries[e.name] = e
		heap.Push(&s.queue, &item{when: now.Add(j.FirstDelay), seq: e.seq, ent: e})
	case KindDaily:
		for _, tod := range j.Schedule.Times {
			ctx, cancel := context.WithCancel(base)
			e := &entry{
				name:     fmt.Sprintf("%s_%s", j.Name, tod),
				kind:     j.Kind,
				parent:   j.Name,
				schedule: j.Schedule,
				at:       tod,
				data:     j.Data,
				handler:  j.Handler,
				seq:      s.nextSeq,
				ctx:      ctx,
				cancel:   cancel,
			}
			s.nextSeq++
			s.entries[e.name] = e
			heap.Push(&s.queue, &item{when: nextDaily(now, tod), seq: e.seq, ent: e})
		}
	}
	s.wakeLoop()
	return nil
}

func validate(j Job) error {
	if strings.TrimSpace(j.Name) == "" {
		return perr.InvalidSchedulef("job name is required")
	}
	if j.Handler == nil {
		return perr.InvalidSchedulef("job %s has no handler", j.Name)
	}
	switch j.Schedule.Kind {
	case KindInterval:
		if j.Schedule.Every <= 0 {
			return perr.InvalidSchedulef("job %s: interval must be positive", j.Name)
		}
	case KindDaily:
		if len(j.Schedule.Times) == 0 {
			return perr.InvalidSchedulef("job %s: daily schedule needs at least one time", j.Name)
		}
	default:
		return perr.InvalidSchedulef("job %s: unknown schedule kind %d", j.Name, j.Schedule.Kind)
	}
	return nil
}

// nextDaily returns the next instant at tod on or after now's day
func nextDaily(now time.Time, tod clock.TimeOfDay) time.Time {
	next := clock.DateOf(now).At(tod.Hour, tod.Minute, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// Cancel removes the named job plus all sub-jobs named name_*, tripping
// their cancellation tokens; returns the number of removed sub-jobs
func (s *Scheduler) Cancel(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.cancelLocked(name)
	s.wakeLoop()
	return n
}

func (s *Scheduler) cancelLocked(name string) int {
	prefix := name + "_"
	n := 0
	for key, e := range s.entries {
		if key == name || strings.HasPrefix(key, prefix) {
			e.removed = true
			e.cancel()
			delete(s.entries, key)
			n++
		}
	}
	delete(s.specs, name)
	return n
}

// List enumerates registered sub-job names in sorted order
func (s *Scheduler) List() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.entries))
	for name := range s.entries {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Snapshot returns the registered job specs (one per registration name)
func (s *Scheduler) Snapshot() []Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Job, 0, len(s.specs))
	names := make([]string, 0, len(s.specs))
	for name := range s.specs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		out = append(out, s.specs[name])
	}
	return out
}

// Start launches the dispatcher loop and the worker pool
func (s *Scheduler) Start() error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return errors.New("sched: already started")
	}
	s.started = true
	s.rootCtx, s.rootStop = context.WithCancel(context.Background())

	// re-parent tokens of jobs registered before Start
	for _, e := range s.entries {
		old := e.cancel
		ctx, cancel := context.WithCancel(s.rootCtx)
		e.ctx, e.cancel = ctx, cancel
		old()
	}
	s.loopDone = make(chan struct{})
	s.mu.Unlock()

	for i := 0; i < s.workers; i++ {
		s.wg.Add(1)
		go s.worker()
	}
	go s.loop()
	s.log.Info().Int("workers", s.workers).Msg("scheduler started")
	return nil
}

// Stop cancels every token, stops the loop, and drains the pool within the
// 30 second budget; callbacks still running after that are abandoned
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.started || s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	for _, e := range s.entries {
		e.cancel()
	}
	s.rootStop()
	s.mu.Unlock()

	<-s.loopDone
	close(s.work)

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		s.log.Info().Msg("scheduler stopped")
	case <-time.After(drainBudget):
		s.log.Error().Dur("budget", drainBudget).Msg("scheduler drain budget exceeded; abandoning callbacks")
	}
}

func (s *Scheduler) wakeLoop() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// loop walks the priority queue and hands due items to the pool
func (s *Scheduler) loop() {
	defer close(s.loopDone)
	timer := time.NewTimer(time.Hour)
	defer timer.Stop()

	for {
		s.mu.Lock()
		now := s.clk.NowWall()
		var due []*item
		for len(s.queue) > 0 && !s.queue[0].when.After(now) {
			it := heap.Pop(&s.queue).(*item)
			if it.ent.removed {
				continue
			}
			due = append(due, it)
			s.scheduleNextLocked(it, now)
		}
		var wait time.Duration
		if len(s.queue) > 0 {
			wait = s.queue[0].when.Sub(now)
			if wait < 0 {
				wait = 0
			}
		} else {
			wait = time.Hour
		}
		s.mu.Unlock()

		for _, it := range due {
			s.dispatch(it)
		}

		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(wait)

		select {
		case <-s.rootCtx.Done():
			return
		case <-s.wake:
		case <-timer.C:
		}
	}
}

// scheduleNextLocked reinserts the entry at its next occurrence
func (s *Scheduler) scheduleNextLocked(it *item, now time.Time) {
	e := it.ent
	var next time.Time
	switch e.schedule.Kind {
	case KindInterval:
		next = it.when.Add(e.interval)
		if !next.After(now) {
			next = now.Add(e.interval)
		}
	case KindDaily:
		next = nextDaily(it.when.Add(time.Minute), e.at)
		if !next.After(now) {
			next = nextDaily(now, e.at)
		}
	}
	heap.Push(&s.queue, &item{when: next, seq: e.seq, ent: e})
}

// dispatch enqueues the fire unless the previous one is still running
func (s *Scheduler) dispatch(it *item) {
	e := it.ent
	s.mu.Lock()
	if e.removed {
		s.mu.Unlock()
		return
	}
	if e.running {
		s.mu.Unlock()
		s.log.Warn().Str("job", e.name).Time("at", it.when).Msg("previous fire still running; tick skipped")
		s.tel.RecordFire(e.kind, telemetry.OutcomeSkippedOverlap, 0)
		return
	}
	e.running = true
	s.mu.Unlock()

	select {
	case s.work <- it:
	case <-s.rootCtx.Done():
		s.mu.Lock()
		e.running = false
		s.mu.Unlock()
	}
}

func (s *Scheduler) worker() {
	defer s.wg.Done()
	for it := range s.work {
		s.run(it)
	}
}

// run executes one fire and records its structured outcome event
func (s *Scheduler) run(it *item) {
	e := it.ent
	fire := Fire{
		Job:   e.name,
		Kind:  e.kind,
		RunID: uuid.NewString(),
		At:    it.when,
		Data:  e.data,
	}

	start := s.clk.NowWall()
	over := time.AfterFunc(softBudget, func() {
		s.log.Warn().Str("job", e.name).Str("run_id", fire.RunID).
			Dur("budget", softBudget).Msg("callback exceeded soft budget")
	})
	err := e.handler(e.ctx, fire)
	over.Stop()
	elapsed := s.clk.NowWall().Sub(start)

	s.mu.Lock()
	e.running = false
	s.mu.Unlock()

	outcome := telemetry.OutcomeOK
	var skip skipError
	switch {
	case err == nil:
	case errors.As(err, &skip):
		outcome = telemetry.Outcome("skipped_" + skip.reason)
	case perr.IsCode(err, perr.ErrorCodeCancelled) || errors.Is(err, context.Canceled):
		// cancellation is silent
		s.tel.RecordFire(e.kind, telemetry.ErrorOutcome(perr.Cancelledf("cancelled")), elapsed)
		return
	default:
		outcome = telemetry.ErrorOutcome(err)
	}
	s.tel.RecordFire(e.kind, outcome, elapsed)

	evt := s.log.Info()
	if err != nil && outcome != telemetry.OutcomeOK && !strings.HasPrefix(string(outcome), "skipped_") {
		evt = s.log.Error().Err(err)
		s.tel.RecordError("scheduler", s.clk.NowWall(), err)
	}
	evt.Str("job", e.name).
		Str("kind", e.kind).
		Str("run_id", fire.RunID).
		Str("user", e.data["user"]).
		Dur("duration", elapsed).
		Str("outcome", string(outcome)).
		Msg("fire")
}
