package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"nudge/internal/history"
	"nudge/internal/preflight"
	"nudge/internal/reminders"
	"nudge/internal/scheduler"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var checkSMTP bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show preflight checks, schedule and last runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			var lines []string

			lines = append(lines, renderSectionHeader("Preflight", colorize)...)
			results := preflight.RunAll(cmd.Context(), cfg)
			if checkSMTP {
				results = append(results, preflight.CheckSMTP(cmd.Context(), cfg.Email.SMTPHost, cfg.Email.SMTPPort))
			}
			for _, r := range results {
				kind := statusOK
				switch {
				case !r.Passed:
					kind = statusError
				case strings.HasSuffix(r.Detail, "(optional)"):
					kind = statusWarn
				}
				lines = append(lines, renderStatusLine(r.Name, kind, r.Detail, colorize))
			}

			lines = append(lines, "")
			lines = append(lines, renderSectionHeader("Schedule", colorize)...)
			last := lastRuns(ctx, cmd)
			now := ctx.clock()()
			for _, entry := range []struct{ name, at string }{
				{reminders.JobMorning, cfg.Schedule.Morning},
				{reminders.JobMidday, cfg.Schedule.Midday},
				{reminders.JobEvening, cfg.Schedule.Evening},
			} {
				msg := "at " + entry.at
				if at, err := scheduler.ParseTimeOfDay(entry.at); err == nil {
					msg += ", next " + nextOccurrence(now, at).Format("Mon 15:04")
				}
				kind := statusInfo
				if run, ok := last[entry.name]; ok {
					msg += fmt.Sprintf(", last %s (%s)", run.StartedAt.Local().Format("2006-01-02 15:04"), run.Outcome)
					if !run.Succeeded() {
						kind = statusWarn
					}
				}
				lines = append(lines, renderStatusLine(entry.name, kind, msg, colorize))
			}
			lines = append(lines, renderStatusLine("catch up missed", statusInfo, yesNo(cfg.Scheduler.CatchUpMissed), colorize))
			if cfg.Metrics.Bind != "" {
				lines = append(lines, renderStatusLine("metrics", statusInfo, "http://"+cfg.Metrics.Bind+"/metrics", colorize))
			}

			for _, line := range lines {
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&checkSMTP, "smtp", false, "Also verify the SMTP server is reachable")
	return cmd
}

func lastRuns(ctx *commandContext, cmd *cobra.Command) map[string]history.Run {
	runs := map[string]history.Run{}
	_ = ctx.withHistory(func(store *history.Store) error {
		for _, name := range []string{reminders.JobMorning, reminders.JobMidday, reminders.JobEvening} {
			run, ok, err := store.LastRun(cmd.Context(), name)
			if err == nil && ok {
				runs[name] = run
			}
		}
		return nil
	})
	return runs
}

func nextOccurrence(now time.Time, at scheduler.TimeOfDay) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), at.Hour, at.Minute, 0, 0, now.Location())
	if !now.Before(next) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
