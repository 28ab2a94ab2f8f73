package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"nudge/internal/progress"
	"nudge/internal/services"
)

func newTrackerCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "tracker",
		Short: "Interactive task and milestone tracker",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			store, project, err := ctx.openProgress(out)
			if err != nil {
				return err
			}
			t := &tracker{
				store:   store,
				project: project,
				in:      bufio.NewReader(cmd.InOrStdin()),
				out:     out,
			}
			return t.loop()
		},
	}
}

type tracker struct {
	store   *progress.Store
	project string
	in      *bufio.Reader
	out     io.Writer
}

var errInputClosed = errors.New("input closed")

func (t *tracker) loop() error {
	fmt.Fprintf(t.out, "🌞 Welcome to %s Task Tracker! 🌞\n", t.project)
	fmt.Fprintln(t.out, "Track your daily progress on your startup")

	for {
		fmt.Fprintln(t.out, "\n"+rule(ruleWidth))
		fmt.Fprintln(t.out, "📋 Menu:")
		fmt.Fprintln(t.out, "1. Add task")
		fmt.Fprintln(t.out, "2. Complete task")
		fmt.Fprintln(t.out, "3. Show today's tasks")
		fmt.Fprintln(t.out, "4. Show categories")
		fmt.Fprintln(t.out, "5. Add milestone")
		fmt.Fprintln(t.out, "6. Show milestones")
		fmt.Fprintln(t.out, "7. Show statistics")
		fmt.Fprintln(t.out, "8. Exit")

		choice, err := t.prompt("\nChoose an option (1-8): ")
		if errors.Is(err, errInputClosed) {
			t.goodbye()
			return nil
		}
		if err != nil {
			return err
		}

		var stepErr error
		switch choice {
		case "1":
			stepErr = t.addTask()
		case "2":
			stepErr = t.completeTask()
		case "3":
			t.showToday()
		case "4":
			renderCategories(t.out)
		case "5":
			stepErr = t.addMilestone()
		case "6":
			renderMilestones(t.out, t.project, t.store.Milestones())
		case "7":
			renderStats(t.out, t.project, t.store.Stats(), false)
		case "8":
			t.goodbye()
			return nil
		default:
			fmt.Fprintln(t.out, "❌ Invalid choice. Please try again.")
		}
		if errors.Is(stepErr, errInputClosed) {
			t.goodbye()
			return nil
		}
		if stepErr != nil {
			t.report(stepErr)
		}
	}
}

func (t *tracker) goodbye() {
	fmt.Fprintf(t.out, "👋 Keep working on %s! Goodbye!\n", t.project)
}

// prompt prints label and returns the trimmed next line. A final line without
// a newline is still returned; errInputClosed is only reported once nothing
// is left to read.
func (t *tracker) prompt(label string) (string, error) {
	fmt.Fprint(t.out, label)
	line, err := t.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			if line == "" {
				fmt.Fprintln(t.out)
				return "", errInputClosed
			}
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (t *tracker) showToday() {
	today := t.store.Today()
	renderTasks(t.out, t.project, today, t.store.TasksFor(today))
}

func (t *tracker) addTask() error {
	renderCategories(t.out)
	category, err := t.prompt("Enter category (or key): ")
	if err != nil {
		return err
	}
	description, err := t.prompt("Enter task description: ")
	if err != nil {
		return err
	}
	rawHours, err := t.prompt("Enter hours spent (0 if none): ")
	if err != nil {
		return err
	}
	hours, parseErr := strconv.ParseFloat(rawHours, 64)
	if parseErr != nil || hours < 0 || math.IsNaN(hours) || math.IsInf(hours, 0) {
		hours = 0
	}

	task, err := t.store.AddTask(category, description, hours)
	if err != nil {
		return err
	}
	fmt.Fprintf(t.out, "✅ Task added: %s - %s\n", progress.CategoryLabel(task.Category), task.Description)
	return nil
}

func (t *tracker) completeTask() error {
	t.showToday()
	raw, err := t.prompt("Enter task ID to complete: ")
	if err != nil {
		return err
	}
	id, convErr := strconv.Atoi(raw)
	if convErr != nil {
		fmt.Fprintln(t.out, "❌ Invalid task ID")
		return nil
	}
	task, err := t.store.CompleteTask("", id)
	if err != nil {
		return err
	}
	fmt.Fprintf(t.out, "🎉 Task completed: %s\n", task.Description)
	return nil
}

func (t *tracker) addMilestone() error {
	title, err := t.prompt("Enter milestone title: ")
	if err != nil {
		return err
	}
	description, err := t.prompt("Enter milestone description: ")
	if err != nil {
		return err
	}
	m, err := t.store.AddMilestone(title, description)
	if err != nil {
		return err
	}
	fmt.Fprintf(t.out, "🏆 Milestone added: %s\n", m.Title)
	return nil
}

// report prints a menu step failure and keeps the loop alive.
func (t *tracker) report(err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		fmt.Fprintln(t.out, "❌ Task not found")
	case errors.Is(err, services.ErrValidation):
		fmt.Fprintf(t.out, "❌ %v\n", err)
	case errors.Is(err, services.ErrPersistence):
		fmt.Fprintf(t.out, "⚠️  Error saving tasks: %v\n", err)
	default:
		fmt.Fprintf(t.out, "❌ %v\n", err)
	}
}
