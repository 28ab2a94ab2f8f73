package reminders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"nudge/internal/compose"
	"nudge/internal/config"
	"nudge/internal/history"
	"nudge/internal/logging"
	"nudge/internal/metrics"
	"nudge/internal/notifications"
	"nudge/internal/progress"
	"nudge/internal/services"
	"nudge/internal/video"
)

// Job names used for scheduling, history and metrics.
const (
	JobMorning = "morning"
	JobMidday  = "midday"
	JobEvening = "evening"
	JobTest    = "test"
)

// VideoGenerator produces the evening video.
type VideoGenerator interface {
	Generate(ctx context.Context, script video.Script) (video.Result, error)
}

// HistoryRecorder appends job runs.
type HistoryRecorder interface {
	Record(ctx context.Context, run history.Run) (int64, error)
}

// Dependencies wires a Jobs instance. Video, History and Metrics are optional.
type Dependencies struct {
	Config     *config.Config
	Composer   *compose.Composer
	Dispatcher notifications.Dispatcher
	Progress   *progress.Store
	Video      VideoGenerator
	History    HistoryRecorder
	Metrics    *metrics.Recorder
	Clock      func() time.Time
	Logger     *slog.Logger
}

// Jobs runs reminder jobs against shared collaborators.
type Jobs struct {
	project     string
	description string
	composer    *compose.Composer
	dispatcher  notifications.Dispatcher
	progress    *progress.Store
	video       VideoGenerator
	history     HistoryRecorder
	metrics     *metrics.Recorder
	now         func() time.Time
	logger      *slog.Logger
}

// report carries per-run details for history.
type report struct {
	artifact string
	degraded bool
	reason   string
}

// New validates deps and returns a Jobs instance.
func New(deps Dependencies) (*Jobs, error) {
	if deps.Config == nil || deps.Composer == nil || deps.Dispatcher == nil {
		return nil, errors.New("reminders require config, composer, and dispatcher")
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = logging.NewNop()
	}
	return &Jobs{
		project:     deps.Config.Project.Name,
		description: deps.Config.Project.Description,
		composer:    deps.Composer,
		dispatcher:  deps.Dispatcher,
		progress:    deps.Progress,
		video:       deps.Video,
		history:     deps.History,
		metrics:     deps.Metrics,
		now:         deps.Clock,
		logger:      logging.NewComponentLogger(deps.Logger, "reminders"),
	}, nil
}

// ByName returns the job function for name.
func (j *Jobs) ByName(name string) (func(context.Context) error, error) {
	switch name {
	case JobMorning:
		return j.Morning, nil
	case JobMidday:
		return j.Midday, nil
	case JobEvening:
		return j.Evening, nil
	case JobTest:
		return j.Test, nil
	default:
		return nil, services.Wrap(services.ErrNotFound, "reminders", "lookup", fmt.Sprintf("unknown job %q", name), nil)
	}
}

// Morning sends the morning motivation email.
func (j *Jobs) Morning(ctx context.Context) error {
	return j.run(ctx, JobMorning, j.motivation)
}

// Midday sends the same motivation email as the morning job.
func (j *Jobs) Midday(ctx context.Context) error {
	return j.run(ctx, JobMidday, j.motivation)
}

// Evening builds the video and sends the evening summary.
func (j *Jobs) Evening(ctx context.Context) error {
	return j.run(ctx, JobEvening, j.evening)
}

// Test sends the delivery verification email.
func (j *Jobs) Test(ctx context.Context) error {
	return j.run(ctx, JobTest, func(ctx context.Context, logger *slog.Logger) (report, error) {
		msg, err := j.composer.Test(j.context())
		if err != nil {
			return report{}, services.Wrap(services.ErrValidation, "reminders", "compose test", "", err)
		}
		return report{}, j.send(ctx, msg, "")
	})
}

func (j *Jobs) motivation(ctx context.Context, logger *slog.Logger) (report, error) {
	msg, err := j.composer.Morning(j.context())
	if err != nil {
		return report{}, services.Wrap(services.ErrValidation, "reminders", "compose morning", "", err)
	}
	sendErr := j.send(ctx, msg, "")

	if j.progress == nil {
		return report{}, sendErr
	}
	if err := j.progress.RecordReminder(j.now()); err != nil {
		logging.WarnWithContext(logger, "last reminder not persisted", "reminder_timestamp_failed",
			logging.Error(err),
			logging.String("path", j.progress.Path()),
			logging.String(logging.FieldErrorHint, "check write permissions on the progress file"),
			logging.String(logging.FieldImpact, "last_reminder is stale on disk"),
		)
		if sendErr == nil {
			return report{}, err
		}
	}
	return report{}, sendErr
}

func (j *Jobs) evening(ctx context.Context, logger *slog.Logger) (report, error) {
	var rep report
	data := j.context()

	if j.video != nil {
		script := compose.VideoScript(j.project, data.Date, j.composer.Catalog().FocusAreas)
		result, err := j.video.Generate(ctx, script)
		switch {
		case err != nil:
			rep.degraded = true
			rep.reason = fmt.Sprintf("video generation failed: %v", err)
			logging.WarnWithContext(logger, "evening video unavailable; sending without attachment", "video_generation_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "run `nudge status` to verify ffmpeg and the speech engine"),
				logging.String(logging.FieldImpact, "evening email has no video"),
			)
		default:
			rep.artifact = result.Path
			rep.degraded = result.Degraded
			rep.reason = result.Reason
			if result.Degraded {
				j.metrics.ObserveDegradedVideo()
			}
		}
	}

	data.VideoAttached = rep.artifact != ""
	data.VideoDegraded = rep.degraded
	msg, err := j.composer.Evening(data)
	if err != nil {
		return rep, services.Wrap(services.ErrValidation, "reminders", "compose evening", "", err)
	}
	return rep, j.send(ctx, msg, rep.artifact)
}

func (j *Jobs) send(ctx context.Context, msg compose.Message, attachment string) error {
	return j.dispatcher.Send(ctx, notifications.Message{
		Subject:    msg.Subject,
		HTML:       msg.HTML,
		Text:       msg.Text,
		Attachment: attachment,
	})
}

func (j *Jobs) context() compose.Context {
	return compose.Context{
		Project:     j.project,
		Description: j.description,
		Date:        j.now(),
	}
}

func (j *Jobs) run(ctx context.Context, name string, fn func(context.Context, *slog.Logger) (report, error)) error {
	ctx = services.WithJob(ctx, name)
	runID, ok := services.RunIDFromContext(ctx)
	if !ok {
		runID = uuid.NewString()
		ctx = services.WithRunID(ctx, runID)
	}
	logger := logging.WithContext(ctx, j.logger)

	started := j.now()
	clock := time.Now()
	rep, err := fn(ctx, logger)
	elapsed := time.Since(clock)
	outcome := services.Outcome(err)

	if err == nil {
		logger.Info("reminder delivered",
			logging.String(logging.FieldEventType, "reminder_sent"),
			logging.String("outcome", outcome),
			logging.String("artifact", rep.artifact),
			logging.Bool("degraded", rep.degraded),
			logging.Duration("duration", elapsed),
		)
	}

	j.metrics.ObserveRun(name, outcome, elapsed, j.now())
	if j.history != nil {
		run := history.Run{
			RunID:          runID,
			Job:            name,
			StartedAt:      started,
			Duration:       elapsed,
			Outcome:        outcome,
			Artifact:       rep.artifact,
			Degraded:       rep.degraded,
			DegradedReason: rep.reason,
		}
		if err != nil {
			run.Error = err.Error()
		}
		if _, histErr := j.history.Record(context.WithoutCancel(ctx), run); histErr != nil {
			logging.WarnWithContext(logger, "run history not recorded", "history_record_failed",
				logging.Error(histErr),
				logging.String(logging.FieldErrorHint, "check the state directory and history.db"),
				logging.String(logging.FieldImpact, "this run is missing from `nudge history`"),
			)
		}
	}
	return err
}
