package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"nudge/internal/config"
	"nudge/internal/logging"
	"nudge/internal/metrics"
	"nudge/internal/reminders"
	"nudge/internal/scheduler"
)

// JobSet resolves scheduled job names to runnable jobs.
type JobSet interface {
	ByName(name string) (func(context.Context) error, error)
}

// Daemon owns the scheduler lifecycle and enforces single-instance execution.
type Daemon struct {
	cfg     *config.Config
	logger  *slog.Logger
	clock   scheduler.Clock
	sched   *scheduler.Scheduler
	metrics *metrics.Server

	lockPath string
	lock     *flock.Flock

	mu      sync.Mutex
	running atomic.Bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	LockFilePath string
	MetricsAddr  string
	Jobs         []scheduler.Status
}

// Option customizes a Daemon.
type Option func(*Daemon)

// WithClock injects the scheduler time source.
func WithClock(c scheduler.Clock) Option {
	return func(d *Daemon) {
		if c != nil {
			d.clock = c
		}
	}
}

// WithMetricsServer serves metrics for the daemon's lifetime. A nil server is ignored.
func WithMetricsServer(server *metrics.Server) Option {
	return func(d *Daemon) {
		d.metrics = server
	}
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// New constructs a daemon and registers the three daily reminders.
func New(cfg *config.Config, jobs JobSet, logger *slog.Logger, opts ...Option) (*Daemon, error) {
	if cfg == nil || jobs == nil {
		return nil, errors.New("daemon requires config and jobs")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	d := &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		clock:    systemClock{},
		lockPath: cfg.LockPath(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.lock = flock.New(d.lockPath)

	d.sched = scheduler.New(
		scheduler.WithClock(d.clock),
		scheduler.WithPollInterval(time.Duration(cfg.Scheduler.PollIntervalSeconds)*time.Second),
		scheduler.WithCatchUp(cfg.Scheduler.CatchUpMissed),
		scheduler.WithLogger(logger),
	)
	bindings := []struct {
		name string
		at   string
	}{
		{reminders.JobMorning, cfg.Schedule.Morning},
		{reminders.JobMidday, cfg.Schedule.Midday},
		{reminders.JobEvening, cfg.Schedule.Evening},
	}
	for _, b := range bindings {
		at, err := scheduler.ParseTimeOfDay(b.at)
		if err != nil {
			return nil, fmt.Errorf("schedule %s: %w", b.name, err)
		}
		job, err := jobs.ByName(b.name)
		if err != nil {
			return nil, err
		}
		if err := d.sched.Register(b.name, at, job); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// Start acquires the daemon lock and launches the scheduler.
func (d *Daemon) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another nudge daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	if err := d.metrics.Start(runCtx); err != nil {
		logging.WarnWithContext(d.logger, "metrics server unavailable", "metrics_start_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check metrics.bind or leave it empty"),
			logging.String(logging.FieldImpact, "reminders still run; /metrics is not served"),
		)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := d.sched.Run(runCtx); err != nil {
			logging.ErrorWithContext(d.logger, "scheduler exited", "scheduler_failed", logging.Error(err))
		}
	}()

	d.cancel = cancel
	d.done = done
	d.running.Store(true)
	d.logger.Info("nudge daemon started",
		logging.String(logging.FieldEventType, "daemon_started"),
		logging.String("lock", d.lockPath))
	return nil
}

// Stop cancels the scheduler, waits for an in-flight job and releases the lock.
func (d *Daemon) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.running.Load() {
		return
	}

	d.cancel()
	<-d.done
	d.metrics.Stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.cancel = nil
	d.done = nil
	d.running.Store(false)
	d.logger.Info("nudge daemon stopped", logging.String(logging.FieldEventType, "daemon_stopped"))
}

// Wait blocks until ctx is done and then stops the daemon.
func (d *Daemon) Wait(ctx context.Context) {
	<-ctx.Done()
	d.Stop()
}

// Status returns the current daemon status.
func (d *Daemon) Status() Status {
	return Status{
		Running:      d.running.Load(),
		LockFilePath: d.lockPath,
		MetricsAddr:  d.metrics.Addr(),
		Jobs:         d.sched.Statuses(d.clock.Now()),
	}
}
