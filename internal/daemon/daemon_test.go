package daemon_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nudge/internal/daemon"
	"nudge/internal/reminders"
	"nudge/internal/testsupport"
)

type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

type stubJobs struct {
	fired chan string
}

func newStubJobs() *stubJobs {
	return &stubJobs{fired: make(chan string, 8)}
}

func (s *stubJobs) ByName(name string) (func(context.Context) error, error) {
	return func(context.Context) error {
		s.fired <- name
		return nil
	}, nil
}

type missingJobs struct{}

func (missingJobs) ByName(name string) (func(context.Context) error, error) {
	return nil, errors.New("no job " + name)
}

func TestDaemonStartStop(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithDirectories())
	clock := &fixedClock{now: time.Date(2026, 3, 2, 7, 0, 0, 0, time.Local)}
	d, err := daemon.New(cfg, newStubJobs(), nil, daemon.WithClock(clock))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, d.Start(ctx))
	status := d.Status()
	assert.True(t, status.Running)
	assert.Equal(t, cfg.LockPath(), status.LockFilePath)
	require.Len(t, status.Jobs, 3)
	assert.Equal(t, reminders.JobMorning, status.Jobs[0].Name)
	assert.Equal(t, reminders.JobMidday, status.Jobs[1].Name)
	assert.Equal(t, reminders.JobEvening, status.Jobs[2].Name)
	assert.Equal(t, 8, status.Jobs[0].NextRun.Hour())

	assert.Error(t, d.Start(ctx), "second start should fail")

	d.Stop()
	assert.False(t, d.Status().Running)
	d.Stop()
}

func TestDaemonLockPreventsSecondInstance(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithDirectories())
	first, err := daemon.New(cfg, newStubJobs(), nil)
	require.NoError(t, err)
	second, err := daemon.New(cfg, newStubJobs(), nil)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, first.Start(ctx))
	defer first.Stop()

	err = second.Start(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already running")
}

func TestDaemonCatchUpFiresPassedReminders(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithDirectories())
	cfg.Scheduler.CatchUpMissed = true
	clock := &fixedClock{now: time.Date(2026, 3, 2, 15, 0, 0, 0, time.Local)}
	jobs := newStubJobs()
	d, err := daemon.New(cfg, jobs, nil, daemon.WithClock(clock))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, d.Start(ctx))
	defer d.Stop()

	var fired []string
	for len(fired) < 2 {
		select {
		case name := <-jobs.fired:
			fired = append(fired, name)
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for catch-up, fired %v", fired)
		}
	}
	assert.Equal(t, []string{reminders.JobMorning, reminders.JobMidday}, fired)
}

func TestDaemonWaitStopsOnCancel(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithDirectories())
	d, err := daemon.New(cfg, newStubJobs(), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, d.Start(ctx))

	done := make(chan struct{})
	go func() {
		d.Wait(ctx)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("daemon did not stop after cancellation")
	}
	assert.False(t, d.Status().Running)
}

func TestNewRejectsInvalidSchedule(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Schedule.Evening = "25:00"
	_, err := daemon.New(cfg, newStubJobs(), nil)
	assert.Error(t, err)

	cfg = testsupport.NewConfig(t)
	_, err = daemon.New(cfg, missingJobs{}, nil)
	assert.Error(t, err)

	_, err = daemon.New(nil, newStubJobs(), nil)
	assert.Error(t, err)
}
