package testsupport

import (
	"testing"
	"time"

	"nudge/internal/config"
	"nudge/internal/history"
	"nudge/internal/progress"
)

// MustOpenHistory opens the run history database for tests and registers cleanup.
func MustOpenHistory(t testing.TB, cfg *config.Config) *history.Store {
	t.Helper()

	store, err := history.Open(cfg.HistoryPath())
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// MustLoadProgress loads the progress document configured in cfg. A non-nil
// now pins the store clock.
func MustLoadProgress(t testing.TB, cfg *config.Config, now func() time.Time) *progress.Store {
	t.Helper()

	var opts []progress.Option
	if now != nil {
		opts = append(opts, progress.WithClock(now))
	}
	store, err := progress.Load(cfg.Paths.ProgressFile, opts...)
	if err != nil {
		t.Fatalf("progress.Load: %v", err)
	}
	return store
}
