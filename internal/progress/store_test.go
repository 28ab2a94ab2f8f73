package progress_test

import (
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nudge/internal/progress"
	"nudge/internal/services"
)

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func newStore(t *testing.T, c *clock) (*progress.Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "progress.json")
	store, err := progress.Load(path, progress.WithClock(c.Now))
	require.NoError(t, err)
	return store, path
}

func TestLoadInitializesMissingDocument(t *testing.T) {
	c := &clock{now: time.Date(2026, 3, 1, 9, 30, 0, 0, time.Local)}
	_, path := newStore(t, c)

	data, err := os.ReadFile(path)
	require.NoError(t, err, "document should be persisted immediately")

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "2026-03-01", raw["start_date"])
	assert.Equal(t, map[string]any{}, raw["daily_tasks"])
	assert.Equal(t, []any{}, raw["milestones"])
	assert.Equal(t, float64(0), raw["total_hours"])
	assert.Contains(t, raw, "last_reminder")
	assert.Nil(t, raw["last_reminder"])
}

func TestAddTaskAccumulatesHoursAndIDs(t *testing.T) {
	c := &clock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.Local)}
	store, path := newStore(t, c)

	first, err := store.AddTask("solar_research", "Compare panel efficiency", 1.5)
	require.NoError(t, err)
	second, err := store.AddTask("funding", "Draft investor email", 2.0)
	require.NoError(t, err)

	assert.Equal(t, 1, first.ID)
	assert.Equal(t, 2, second.ID)
	assert.Equal(t, "2026-03-01 10:00:00", first.Timestamp)
	assert.False(t, first.Completed)

	reloaded, err := progress.Load(path, progress.WithClock(c.Now))
	require.NoError(t, err)
	assert.InDelta(t, 3.5, reloaded.Snapshot().TotalHours, 1e-9)
	assert.Len(t, reloaded.TasksFor("2026-03-01"), 2)
}

func TestAddTaskIDsRestartEachDay(t *testing.T) {
	c := &clock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.Local)}
	store, _ := newStore(t, c)

	_, err := store.AddTask("other", "day one", 0)
	require.NoError(t, err)
	c.now = c.now.AddDate(0, 0, 1)
	entry, err := store.AddTask("other", "day two", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, entry.ID)
}

func TestAddTaskRejectsNegativeHours(t *testing.T) {
	store, _ := newStore(t, &clock{now: time.Now()})
	_, err := store.AddTask("other", "oops", -1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, services.ErrValidation))
	assert.Zero(t, store.Snapshot().TotalHours)
}

func TestAddTaskRejectsNonFiniteHours(t *testing.T) {
	store, path := newStore(t, &clock{now: time.Now()})
	for _, hours := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := store.AddTask("funding", "bad hours", hours)
		require.Error(t, err)
		assert.True(t, errors.Is(err, services.ErrValidation))
	}

	_, err := store.AddTask("funding", "Draft pitch deck", 1.5)
	require.NoError(t, err)
	_, err = store.AddMilestone("Deck ready", "")
	require.NoError(t, err)

	reloaded, err := progress.Load(path)
	require.NoError(t, err)
	doc := reloaded.Snapshot()
	assert.InDelta(t, 1.5, doc.TotalHours, 1e-9)
	assert.Len(t, doc.Milestones, 1)
}

func TestAddTaskKeepsFreeTextCategory(t *testing.T) {
	store, _ := newStore(t, &clock{now: time.Now()})
	entry, err := store.AddTask("  Customer Calls ", "call pilot customers", 1)
	require.NoError(t, err)
	assert.Equal(t, "Customer Calls", entry.Category)
	assert.Equal(t, "Customer Calls", progress.CategoryLabel(entry.Category))

	entry, err = store.AddTask("", "misc", 0)
	require.NoError(t, err)
	assert.Equal(t, "other", entry.Category)
}

func TestCompleteTaskSetsCompletion(t *testing.T) {
	c := &clock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.Local)}
	store, path := newStore(t, c)
	_, err := store.AddTask("marketing", "Write blog post", 1)
	require.NoError(t, err)

	c.now = c.now.Add(2 * time.Hour)
	done, err := store.CompleteTask("", 1)
	require.NoError(t, err)
	assert.True(t, done.Completed)
	assert.Equal(t, "2026-03-01 12:00:00", done.CompletedAt)

	reloaded, err := progress.Load(path)
	require.NoError(t, err)
	tasks := reloaded.TasksFor("2026-03-01")
	require.Len(t, tasks, 1)
	assert.True(t, tasks[0].Completed)
}

func TestCompleteTaskMissingIDLeavesDocumentUnchanged(t *testing.T) {
	c := &clock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.Local)}
	store, path := newStore(t, c)
	_, err := store.AddTask("marketing", "Write blog post", 1)
	require.NoError(t, err)

	before, err := os.ReadFile(path)
	require.NoError(t, err)

	_, err = store.CompleteTask("", 7)
	require.Error(t, err)
	assert.True(t, errors.Is(err, services.ErrNotFound))

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
	assert.False(t, store.TasksFor("")[0].Completed)
}

func TestAddMilestoneAndRecordReminder(t *testing.T) {
	c := &clock{now: time.Date(2026, 4, 2, 8, 0, 0, 0, time.Local)}
	store, path := newStore(t, c)

	m, err := store.AddMilestone("First pilot", "Signed a pilot customer")
	require.NoError(t, err)
	assert.Equal(t, 1, m.ID)
	assert.Equal(t, "2026-04-02", m.Date)

	_, err = store.AddMilestone("  ", "blank")
	require.Error(t, err)

	require.NoError(t, store.RecordReminder(c.now))

	reloaded, err := progress.Load(path)
	require.NoError(t, err)
	doc := reloaded.Snapshot()
	require.NotNil(t, doc.LastReminder)
	assert.Equal(t, "2026-04-02 08:00:00", *doc.LastReminder)
	assert.Len(t, doc.Milestones, 1)
}

func TestLoadCorruptDocumentFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	store, err := progress.Load(path)
	require.NoError(t, err)
	assert.Error(t, store.LoadErr())
	assert.Empty(t, store.Snapshot().DailyTasks)
}

func TestStatsCompletionRate(t *testing.T) {
	store, _ := newStore(t, &clock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.Local)})
	_, ok := store.Stats().CompletionRate()
	assert.False(t, ok)

	for _, d := range []string{"a", "b", "c", "d"} {
		_, err := store.AddTask("innovation", d, 0.5)
		require.NoError(t, err)
	}
	_, err := store.CompleteTask("", 2)
	require.NoError(t, err)

	stats := store.Stats()
	rate, ok := stats.CompletionRate()
	require.True(t, ok)
	assert.InDelta(t, 25.0, rate, 1e-9)
	assert.Equal(t, 4, stats.TotalTasks)
	assert.Equal(t, 1, stats.ActiveDays)
	assert.InDelta(t, 2.0, stats.HoursByCategory["innovation"], 1e-9)
}

func TestSaveFailureIsPersistenceError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "progress.json")
	store, err := progress.Load(path)
	require.NoError(t, err)

	// A directory at the temp path makes the write fail.
	require.NoError(t, os.Mkdir(path+".tmp", 0o755))

	_, err = store.AddTask("other", "will not persist", 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, services.ErrPersistence))
	assert.InDelta(t, 1.0, store.Snapshot().TotalHours, 1e-9)
}

func TestLoadKeepsDefaultsWhenFirstWriteFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.json")
	// A directory at the temp path makes every write fail.
	require.NoError(t, os.Mkdir(path+".tmp", 0o755))

	store, err := progress.Load(path, progress.WithClock((&clock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.Local)}).Now))
	require.NoError(t, err)
	require.NotNil(t, store)
	assert.True(t, errors.Is(store.LoadErr(), services.ErrPersistence))
	assert.Equal(t, "2026-03-01", store.Snapshot().StartDate)

	_, err = store.AddTask("other", "kept in memory", 2)
	assert.True(t, errors.Is(err, services.ErrPersistence))
	assert.InDelta(t, 2.0, store.Snapshot().TotalHours, 1e-9)
}

func TestStoresSharingAFileKeepEachOthersChanges(t *testing.T) {
	c := &clock{now: time.Date(2026, 3, 2, 8, 0, 0, 0, time.Local)}
	path := filepath.Join(t.TempDir(), "progress.json")

	daemon, err := progress.Load(path, progress.WithClock(c.Now))
	require.NoError(t, err)
	tracker, err := progress.Load(path, progress.WithClock(c.Now))
	require.NoError(t, err)

	_, err = tracker.AddTask("funding", "Draft pitch deck", 2.0)
	require.NoError(t, err)
	_, err = tracker.AddMilestone("Deck drafted", "first version")
	require.NoError(t, err)
	require.NoError(t, daemon.RecordReminder(c.now))

	_, err = tracker.AddTask("marketing", "Landing page copy", 1.0)
	require.NoError(t, err)

	reloaded, err := progress.Load(path)
	require.NoError(t, err)
	doc := reloaded.Snapshot()
	assert.InDelta(t, 3.0, doc.TotalHours, 1e-9)
	assert.Len(t, doc.DailyTasks["2026-03-02"], 2)
	assert.Len(t, doc.Milestones, 1)
	require.NotNil(t, doc.LastReminder, "tracker write must not drop the daemon's reminder stamp")
	assert.Equal(t, "2026-03-02 08:00:00", *doc.LastReminder)
}

func TestFailedWriteIsNotLostOnNextMutation(t *testing.T) {
	c := &clock{now: time.Date(2026, 3, 2, 10, 0, 0, 0, time.Local)}
	store, path := newStore(t, c)

	require.NoError(t, os.Mkdir(path+".tmp", 0o755))
	_, err := store.AddTask("other", "first", 1)
	require.Error(t, err)
	require.NoError(t, os.Remove(path+".tmp"))

	_, err = store.AddTask("other", "second", 2)
	require.NoError(t, err)

	reloaded, err := progress.Load(path)
	require.NoError(t, err)
	assert.InDelta(t, 3.0, reloaded.Snapshot().TotalHours, 1e-9)
	assert.Len(t, reloaded.TasksFor("2026-03-02"), 2)
}
