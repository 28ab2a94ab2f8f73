package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"nudge/internal/logging"
	"nudge/internal/reminders"
)

func newTestCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Send one verification email and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJob(cmd, ctx, reminders.JobTest)
		},
	}
}

func newSendCommand(ctx *commandContext) *cobra.Command {
	jobs := []string{reminders.JobMorning, reminders.JobMidday, reminders.JobEvening}
	return &cobra.Command{
		Use:       "send <" + strings.Join(jobs, "|") + ">",
		Short:     "Fire one scheduled reminder immediately",
		Args:      cobra.ExactArgs(1),
		ValidArgs: jobs,
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.ToLower(strings.TrimSpace(args[0]))
			if name == reminders.JobTest {
				return fmt.Errorf("use `nudge test` for the verification email")
			}
			return runJob(cmd, ctx, name)
		},
	}
}

func runJob(cmd *cobra.Command, ctx *commandContext, name string) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := jobLogger(ctx)
	if err != nil {
		return err
	}
	rt, err := ctx.openRuntime(logger)
	if err != nil {
		return err
	}
	defer rt.Close()

	job, err := rt.jobs.ByName(name)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if err := job(cmd.Context()); err != nil {
		fmt.Fprintf(out, "❌ %s reminder failed\n", name)
		return err
	}
	fmt.Fprintf(out, "✅ %s reminder sent to %s\n", name, cfg.Email.Recipient)
	return nil
}

func jobLogger(ctx *commandContext) (*slog.Logger, error) {
	if ctx.logger != nil {
		return ctx.logger, nil
	}
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return logger, nil
}
