package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"nudge/internal/config"
	"nudge/internal/daemon"
	"nudge/internal/logging"
	"nudge/internal/metrics"
	"nudge/internal/preflight"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the reminder scheduler until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := jobLogger(ctx)
			if err != nil {
				return err
			}
			logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays, logging.RetentionTarget{
				Dir:     cfg.Paths.LogDir,
				Pattern: "nudge-*.log",
				Exclude: []string{logging.DailyLogPath(cfg.Paths.LogDir, time.Now())},
			})
			logPreflight(cmd, logger, cfg)

			rt, err := ctx.openRuntime(logger)
			if err != nil {
				return err
			}
			defer rt.Close()

			server := metrics.NewServer(cfg.Metrics.Bind, rt.metrics, logger)
			d, err := daemon.New(cfg, rt.jobs, logger, daemon.WithMetricsServer(server))
			if err != nil {
				return fmt.Errorf("create daemon: %w", err)
			}
			if err := d.Start(cmd.Context()); err != nil {
				return err
			}
			d.Wait(cmd.Context())
			logger.Info("nudge shutting down", logging.String(logging.FieldEventType, "shutdown"))
			return nil
		},
	}
}

// logPreflight reports failing checks without refusing to start; a missing
// speech engine or ffmpeg only degrades the evening reminder.
func logPreflight(cmd *cobra.Command, logger *slog.Logger, cfg *config.Config) {
	results := preflight.RunAll(cmd.Context(), cfg)
	for _, r := range preflight.Failed(results) {
		logging.WarnWithContext(logger, "preflight check failed", "preflight_failed",
			logging.String("check", r.Name),
			logging.String("detail", r.Detail),
			logging.String(logging.FieldErrorHint, "run `nudge status` for the full report"),
		)
	}
	logger.Info("preflight complete",
		logging.String(logging.FieldEventType, "preflight_complete"),
		logging.Int("checks", len(results)),
		logging.Int("failed", len(preflight.Failed(results))),
		logging.Bool("email_configured", cfg.EmailConfigured()),
		logging.Bool("video_enabled", cfg.Video.Enabled),
		logging.Bool("speech_enabled", cfg.Speech.Enabled),
	)
}
