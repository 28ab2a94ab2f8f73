package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"nudge/internal/logging"
	"nudge/internal/progress"
)

// openProgress loads the tracker document, warning on stdout when a corrupt
// file was replaced by an empty one.
func (c *commandContext) openProgress(out io.Writer) (*progress.Store, string, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, "", err
	}
	logger := c.logger
	if logger == nil {
		logger = logging.NewNop()
	}
	store, err := progress.Load(cfg.Paths.ProgressFile, progress.WithClock(c.clock()), progress.WithLogger(logger))
	if err != nil {
		return nil, "", err
	}
	if loadErr := store.LoadErr(); loadErr != nil {
		fmt.Fprintf(out, "⚠️  Error loading tasks: %v (starting fresh)\n", loadErr)
	}
	return store, cfg.Project.Name, nil
}

func newTaskCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Log and complete daily tasks",
	}
	cmd.AddCommand(newTaskAddCommand(ctx))
	cmd.AddCommand(newTaskCompleteCommand(ctx))
	cmd.AddCommand(newTaskListCommand(ctx))
	return cmd
}

func newTaskAddCommand(ctx *commandContext) *cobra.Command {
	var category string
	var hours float64
	cmd := &cobra.Command{
		Use:   "add <description>",
		Short: "Add a task for today",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			store, _, err := ctx.openProgress(out)
			if err != nil {
				return err
			}
			task, err := store.AddTask(category, strings.Join(args, " "), hours)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "✅ Task added: %s - %s\n", progress.CategoryLabel(task.Category), task.Description)
			return nil
		},
	}
	cmd.Flags().StringVarP(&category, "category", "k", "other", "Category key or free-text label")
	cmd.Flags().Float64VarP(&hours, "hours", "H", 0, "Hours spent")
	return cmd
}

func newTaskCompleteCommand(ctx *commandContext) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "complete <id>",
		Short: "Mark a task as completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(strings.TrimSpace(args[0]))
			if err != nil {
				return fmt.Errorf("invalid task ID %q", args[0])
			}
			out := cmd.OutOrStdout()
			store, _, err := ctx.openProgress(out)
			if err != nil {
				return err
			}
			task, err := store.CompleteTask(date, id)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "🎉 Task completed: %s\n", task.Description)
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Day the task was logged (YYYY-MM-DD, default today)")
	return cmd
}

func newTaskListCommand(ctx *commandContext) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show tasks for a day",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			store, project, err := ctx.openProgress(out)
			if err != nil {
				return err
			}
			day := strings.TrimSpace(date)
			if day == "" {
				day = store.Today()
			}
			renderTasks(out, project, day, store.TasksFor(day))
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Day to show (YYYY-MM-DD, default today)")
	return cmd
}

func newMilestoneCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "milestone",
		Short: "Record and list milestones",
	}

	var description string
	add := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a milestone dated today",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			store, _, err := ctx.openProgress(out)
			if err != nil {
				return err
			}
			m, err := store.AddMilestone(strings.Join(args, " "), description)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "🏆 Milestone added: %s\n", m.Title)
			return nil
		},
	}
	add.Flags().StringVarP(&description, "description", "d", "", "Milestone description")

	list := &cobra.Command{
		Use:   "list",
		Short: "Show all milestones",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			store, project, err := ctx.openProgress(out)
			if err != nil {
				return err
			}
			renderMilestones(out, project, store.Milestones())
			return nil
		},
	}

	cmd.AddCommand(add, list)
	return cmd
}

func newStatsCommand(ctx *commandContext) *cobra.Command {
	var byCategory bool
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show overall progress statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			store, project, err := ctx.openProgress(out)
			if err != nil {
				return err
			}
			renderStats(out, project, store.Stats(), byCategory)
			return nil
		},
	}
	cmd.Flags().BoolVar(&byCategory, "by-category", false, "Include an hours-per-category table")
	return cmd
}

func newCategoriesCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "categories",
		Short:       "List the predefined task categories",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			renderCategories(cmd.OutOrStdout())
			return nil
		},
	}
}
