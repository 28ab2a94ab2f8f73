package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"nudge/internal/config"
	"nudge/internal/logging"
	"nudge/internal/services"
)

const dayLayout = "2006-01-02"

// Job is the work bound to a time of day.
type Job func(ctx context.Context) error

// TimeOfDay is a local wall-clock time.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses "HH:MM".
func ParseTimeOfDay(value string) (TimeOfDay, error) {
	hour, minute, err := config.ParseClock(value)
	if err != nil {
		return TimeOfDay{}, err
	}
	return TimeOfDay{Hour: hour, Minute: minute}, nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

func (t TimeOfDay) cronSpec() string {
	return fmt.Sprintf("%d %d * * *", t.Minute, t.Hour)
}

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

type binding struct {
	name      string
	at        TimeOfDay
	job       Job
	schedule  cron.Schedule
	lastFired string
}

// dueOn returns the binding's activation on now's local calendar day.
func (b *binding) dueOn(now time.Time) time.Time {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return b.schedule.Next(midnight.Add(-time.Second))
}

// Status describes one binding for display.
type Status struct {
	Name       string
	At         TimeOfDay
	FiredDay   string
	NextRun    time.Time
	FiredToday bool
}

// Scheduler owns the bindings and the polling loop.
type Scheduler struct {
	clock    Clock
	interval time.Duration
	catchUp  bool
	logger   *slog.Logger

	mu       sync.Mutex
	bindings []*binding
	running  atomic.Bool
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock injects the time source.
func WithClock(c Clock) Option {
	return func(s *Scheduler) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithPollInterval sets how often Run evaluates bindings.
func WithPollInterval(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithCatchUp makes Run fire bindings whose time already passed today.
func WithCatchUp(enabled bool) Option {
	return func(s *Scheduler) {
		s.catchUp = enabled
	}
}

// WithLogger sets the base logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

// New constructs a Scheduler with a 60 second poll interval.
func New(opts ...Option) *Scheduler {
	s := &Scheduler{clock: systemClock{}, interval: time.Minute}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.NewComponentLogger(s.logger, "scheduler")
	return s
}

// ErrRunning is returned by Register once Run has started.
var ErrRunning = errors.New("scheduler already running")

// Register binds job to at. Bindings sharing a time fire on the same tick in
// registration order.
func (s *Scheduler) Register(name string, at TimeOfDay, job Job) error {
	if s.running.Load() {
		return ErrRunning
	}
	if job == nil {
		return fmt.Errorf("register %s: job is nil", name)
	}
	schedule, err := cron.ParseStandard(at.cronSpec())
	if err != nil {
		return fmt.Errorf("register %s at %s: %w", name, at, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bindings = append(s.bindings, &binding{name: name, at: at, job: job, schedule: schedule})
	return nil
}

// Prime applies the startup policy at now: without catch-up, bindings whose
// time already passed today are treated as fired.
func (s *Scheduler) Prime(now time.Time) {
	if s.catchUp {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	today := now.Format(dayLayout)
	for _, b := range s.bindings {
		if !now.Before(b.dueOn(now)) {
			b.lastFired = today
			s.logger.Info("skipping job already past for today",
				logging.String(logging.FieldJob, b.name),
				logging.String("at", b.at.String()),
				logging.String(logging.FieldEventType, "job_skipped_startup"))
		}
	}
}

// Tick fires every binding that is due at now and has not fired today. It
// returns the names fired, in order.
func (s *Scheduler) Tick(ctx context.Context, now time.Time) []string {
	s.mu.Lock()
	due := make([]*binding, 0, len(s.bindings))
	today := now.Format(dayLayout)
	for _, b := range s.bindings {
		if b.lastFired == today {
			continue
		}
		if now.Before(b.dueOn(now)) {
			continue
		}
		b.lastFired = today
		due = append(due, b)
	}
	s.mu.Unlock()

	fired := make([]string, 0, len(due))
	for _, b := range due {
		if ctx.Err() != nil {
			break
		}
		s.fire(ctx, b)
		fired = append(fired, b.name)
	}
	return fired
}

// fire runs b to completion. The job keeps ctx values but not its
// cancellation, so an interrupt never cuts a send or encode short.
func (s *Scheduler) fire(ctx context.Context, b *binding) {
	ctx = services.WithJob(context.WithoutCancel(ctx), b.name)
	ctx = services.WithRunID(ctx, uuid.NewString())
	logger := logging.WithContext(ctx, s.logger)
	started := s.clock.Now()

	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("job panicked: %v", r)
				logger.Error("job panic recovered",
					logging.String(logging.FieldEventType, "job_panic"),
					logging.String("stack", string(debug.Stack())))
			}
		}()
		return b.job(ctx)
	}()

	elapsed := s.clock.Now().Sub(started)
	if err != nil {
		logging.ErrorWithContext(logger, "job failed", "job_failed",
			logging.Error(err),
			logging.Duration("elapsed", elapsed),
			logging.String(logging.FieldErrorHint, "see the job's own log lines for the failing step"))
		return
	}
	logger.Info("job finished",
		logging.String(logging.FieldEventType, "job_finished"),
		logging.Duration("elapsed", elapsed))
}

// Run primes the bindings and polls until ctx is cancelled. It returns nil on
// cancellation; a job in progress finishes before Run returns.
func (s *Scheduler) Run(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrRunning
	}
	defer s.running.Store(false)

	now := s.clock.Now()
	s.Prime(now)
	for _, st := range s.Statuses(now) {
		s.logger.Info("job scheduled",
			logging.String(logging.FieldJob, st.Name),
			logging.String("at", st.At.String()),
			logging.String("next_run", st.NextRun.Format("2006-01-02 15:04")))
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.Tick(ctx, now)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped", logging.String(logging.FieldEventType, "scheduler_stopped"))
			return nil
		case <-ticker.C:
			s.Tick(ctx, s.clock.Now())
		}
	}
}

// Statuses reports every binding's state at now, in registration order.
func (s *Scheduler) Statuses(now time.Time) []Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	today := now.Format(dayLayout)
	out := make([]Status, 0, len(s.bindings))
	for _, b := range s.bindings {
		st := Status{Name: b.name, At: b.at, FiredDay: b.lastFired, FiredToday: b.lastFired == today}
		due := b.dueOn(now)
		switch {
		case st.FiredToday:
			st.NextRun = b.schedule.Next(due)
		case now.Before(due):
			st.NextRun = due
		default:
			st.NextRun = now
		}
		out = append(out, st)
	}
	return out
}
