package progress

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"nudge/internal/logging"
	"nudge/internal/services"
)

// Store provides serialized access to the tracker document. The daemon and
// the tracker commands share one file, so each mutation takes a file lock and
// re-reads the document before writing it back.
type Store struct {
	path   string
	logger *slog.Logger
	now    func() time.Time
	lock   *flock.Flock

	mu      sync.Mutex
	doc     Document
	loadErr error
	// dirty is set while the last write failed; memory is then ahead of disk.
	dirty bool
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for dates and timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the base logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// Load opens the document at path. A missing file is initialized with today's
// start date and persisted immediately. An unreadable or corrupt file, or a
// failed first write, is logged and leaves an in-memory default; LoadErr
// reports what happened and the next successful mutation overwrites the file.
func Load(path string, opts ...Option) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "progress", "load", "progress file path is empty", nil)
	}
	s := &Store{path: path, now: time.Now, lock: flock.New(path + ".lock")}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.NewComponentLogger(s.logger, "progress")

	doc, err := s.read()
	switch {
	case errors.Is(err, fs.ErrNotExist):
		s.doc = newDocument(s.today())
		if err := s.save(); err != nil {
			s.loadErr = err
			s.dirty = true
			logging.WarnWithContext(s.logger, "progress document could not be created; keeping it in memory", "progress_save_failed",
				logging.Error(err),
				logging.String("progress_path", path),
				logging.String(logging.FieldErrorHint, "check that the data directory is writable"),
				logging.String(logging.FieldImpact, "changes are lost when the process exits"))
			return s, nil
		}
		s.logger.Info("progress document created",
			logging.String(logging.FieldEventType, "progress_initialized"),
			logging.String("progress_path", path))
	case err != nil:
		s.loadErr = err
		s.doc = newDocument(s.today())
		logging.WarnWithContext(s.logger, "progress document unreadable; starting fresh", "progress_load_failed",
			logging.Error(err),
			logging.String("progress_path", path),
			logging.String(logging.FieldErrorHint, "fix or remove the file; the next change overwrites it"),
			logging.String(logging.FieldImpact, "previous tasks and milestones are not shown"))
	default:
		s.doc = doc
	}
	return s, nil
}

// Path returns the backing file location.
func (s *Store) Path() string { return s.path }

// LoadErr returns the read or parse failure encountered by Load, if any.
func (s *Store) LoadErr() error { return s.loadErr }

// Snapshot returns a deep copy of the current document.
func (s *Store) Snapshot() Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.clone()
}

// AddTask appends a task under today's date and adds its hours to the running
// total. The in-memory change is kept even when persisting fails.
func (s *Store) AddTask(category, description string, hours float64) (TaskEntry, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return TaskEntry{}, services.Wrap(services.ErrValidation, "progress", "add task", "description is required", nil)
	}
	if hours < 0 || math.IsNaN(hours) || math.IsInf(hours, 0) {
		return TaskEntry{}, services.Wrap(services.ErrValidation, "progress", "add task", fmt.Sprintf("hours must be a finite non-negative number (got %v)", hours), nil)
	}

	var entry TaskEntry
	err := s.mutate(func(doc *Document) error {
		now := s.now()
		day := now.Format(DateLayout)
		entry = TaskEntry{
			ID:          len(doc.DailyTasks[day]) + 1,
			Category:    NormalizeCategory(category),
			Description: description,
			Hours:       hours,
			Timestamp:   now.Format(TimestampLayout),
		}
		doc.DailyTasks[day] = append(doc.DailyTasks[day], entry)
		doc.TotalHours += hours
		return nil
	})
	if err != nil {
		return entry, err
	}
	s.logger.Debug("task added",
		logging.Int("task_id", entry.ID),
		logging.String("category", entry.Category))
	return entry, nil
}

// CompleteTask marks the task with id on date (today when empty) as completed.
// An unknown id returns ErrNotFound and leaves the document untouched.
// Completing an already completed task is a no-op.
func (s *Store) CompleteTask(date string, id int) (TaskEntry, error) {
	var entry TaskEntry
	err := s.mutate(func(doc *Document) error {
		now := s.now()
		if strings.TrimSpace(date) == "" {
			date = now.Format(DateLayout)
		}
		tasks := doc.DailyTasks[date]
		for i := range tasks {
			if tasks[i].ID != id {
				continue
			}
			if tasks[i].Completed {
				entry = tasks[i]
				return errUnchanged
			}
			tasks[i].Completed = true
			tasks[i].CompletedAt = now.Format(TimestampLayout)
			entry = tasks[i]
			return nil
		}
		return services.Wrap(services.ErrNotFound, "progress", "complete task", fmt.Sprintf("no task %d on %s", id, date), nil)
	})
	return entry, err
}

// AddMilestone appends a milestone dated today.
func (s *Store) AddMilestone(title, description string) (Milestone, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Milestone{}, services.Wrap(services.ErrValidation, "progress", "add milestone", "title is required", nil)
	}

	var m Milestone
	err := s.mutate(func(doc *Document) error {
		now := s.now()
		m = Milestone{
			ID:          len(doc.Milestones) + 1,
			Title:       title,
			Description: strings.TrimSpace(description),
			Date:        now.Format(DateLayout),
			Timestamp:   now.Format(TimestampLayout),
		}
		doc.Milestones = append(doc.Milestones, m)
		return nil
	})
	return m, err
}

// RecordReminder stores the time a reminder was sent.
func (s *Store) RecordReminder(at time.Time) error {
	stamp := at.Format(TimestampLayout)
	return s.mutate(func(doc *Document) error {
		doc.LastReminder = &stamp
		return nil
	})
}

// TasksFor returns a copy of the tasks logged on date (today when empty).
func (s *Store) TasksFor(date string) []TaskEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	if strings.TrimSpace(date) == "" {
		date = s.now().Format(DateLayout)
	}
	return append([]TaskEntry(nil), s.doc.DailyTasks[date]...)
}

// Milestones returns a copy of all milestones in insertion order.
func (s *Store) Milestones() []Milestone {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Milestone(nil), s.doc.Milestones...)
}

// Stats summarizes all tasks and milestones.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.stats()
}

// Today returns the store clock's current calendar date.
func (s *Store) Today() string {
	return s.today()
}

func (s *Store) today() string {
	return s.now().Format(DateLayout)
}

func (s *Store) read() (Document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Document{}, err
		}
		return Document{}, fmt.Errorf("read progress file: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("parse progress file: %w", err)
	}
	if doc.StartDate == "" {
		doc.StartDate = s.today()
	}
	if doc.DailyTasks == nil {
		doc.DailyTasks = map[string][]TaskEntry{}
	}
	if doc.Milestones == nil {
		doc.Milestones = []Milestone{}
	}
	return doc, nil
}

// errUnchanged lets a mutation succeed without rewriting the file.
var errUnchanged = errors.New("progress unchanged")

// mutate applies fn to the latest document under the in-process mutex and the
// cross-process file lock, then persists it. An error from fn leaves the
// document untouched. A failed write keeps the change in memory.
func (s *Store) mutate(fn func(doc *Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if unlock := s.lockFile(); unlock != nil {
		defer unlock()
	}
	if !s.dirty {
		if doc, err := s.read(); err == nil {
			s.doc = doc
		}
	}

	next := s.doc.clone()
	if err := fn(&next); err != nil {
		if errors.Is(err, errUnchanged) {
			return nil
		}
		return err
	}
	s.doc = next
	if err := s.save(); err != nil {
		s.dirty = true
		return err
	}
	s.dirty = false
	return nil
}

// lockFile takes the cross-process lock. Without it the write still goes
// ahead, since a failed save is reported on its own.
func (s *Store) lockFile() func() {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err == nil {
		if err := s.lock.Lock(); err == nil {
			return func() { _ = s.lock.Unlock() }
		}
	}
	s.logger.Debug("progress lock unavailable; writing without it",
		logging.String("lock_path", s.lock.Path()))
	return nil
}

// save writes the whole document atomically. Callers hold s.mu.
func (s *Store) save() error {
	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return services.Wrap(services.ErrPersistence, "progress", "save", "marshal document", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return services.Wrap(services.ErrPersistence, "progress", "save", "create directory", err)
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return services.Wrap(services.ErrPersistence, "progress", "save", "write temp file", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return services.Wrap(services.ErrPersistence, "progress", "save", "rename temp file", err)
	}
	return nil
}
