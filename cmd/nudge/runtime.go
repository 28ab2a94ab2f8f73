package main

import (
	"fmt"
	"log/slog"

	"nudge/internal/compose"
	"nudge/internal/config"
	"nudge/internal/history"
	"nudge/internal/logging"
	"nudge/internal/metrics"
	"nudge/internal/notifications"
	"nudge/internal/progress"
	"nudge/internal/reminders"
	"nudge/internal/video"
)

// runtime bundles the collaborators a reminder job needs.
type runtime struct {
	cfg      *config.Config
	logger   *slog.Logger
	progress *progress.Store
	history  *history.Store
	metrics  *metrics.Recorder
	jobs     *reminders.Jobs
}

// openRuntime wires the reminder jobs. History is best effort: a database that
// cannot be opened is logged and the jobs run without it.
func (c *commandContext) openRuntime(logger *slog.Logger) (*runtime, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	now := c.clock()

	store, err := progress.Load(cfg.Paths.ProgressFile, progress.WithClock(now), progress.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("load progress: %w", err)
	}

	catalog, err := compose.LoadCatalog(cfg.Compose.MessagesFile)
	if err != nil {
		return nil, err
	}

	rt := &runtime{
		cfg:      cfg,
		logger:   logger,
		progress: store,
		metrics:  metrics.NewRecorder(),
	}

	deps := reminders.Dependencies{
		Config:     cfg,
		Composer:   compose.NewComposer(catalog, cfg.Compose.Seed),
		Dispatcher: c.dispatcher,
		Progress:   store,
		Metrics:    rt.metrics,
		Clock:      now,
		Logger:     logger,
	}
	if deps.Dispatcher == nil {
		email := notifications.NewEmail(cfg, notifications.WithLogger(logger))
		deps.Dispatcher = notifications.NewFanout(email, logger, notifications.NewNtfy(cfg))
	}
	if cfg.Video.Enabled {
		deps.Video = c.generator
		if deps.Video == nil {
			deps.Video = video.New(cfg, video.WithLogger(logger), video.WithClock(now))
		}
	}

	hist, err := history.Open(cfg.HistoryPath())
	if err != nil {
		logging.WarnWithContext(logger, "run history unavailable", "history_open_failed",
			logging.Error(err),
			logging.String("history_path", cfg.HistoryPath()),
			logging.String(logging.FieldImpact, "runs are not recorded for `nudge history`"),
		)
	} else {
		rt.history = hist
		deps.History = hist
	}

	jobs, err := reminders.New(deps)
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.jobs = jobs
	return rt, nil
}

func (r *runtime) Close() {
	if r == nil || r.history == nil {
		return
	}
	if err := r.history.Close(); err != nil {
		r.logger.Warn("failed to close run history", logging.Error(err))
	}
}
