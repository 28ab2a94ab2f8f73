package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"nudge/internal/logging"
	"nudge/internal/notifications"
	"nudge/internal/video"
)

type recordingDispatcher struct {
	mu   sync.Mutex
	sent []notifications.Message
	err  error
}

func (d *recordingDispatcher) Send(_ context.Context, msg notifications.Message) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent = append(d.sent, msg)
	return d.err
}

func (d *recordingDispatcher) messages() []notifications.Message {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]notifications.Message(nil), d.sent...)
}

type fakeGenerator struct {
	result video.Result
	err    error
	calls  int
}

func (g *fakeGenerator) Generate(context.Context, video.Script) (video.Result, error) {
	g.calls++
	return g.result, g.err
}

type cliTestEnv struct {
	configPath string
	dataDir    string
	dispatcher *recordingDispatcher
	generator  *fakeGenerator
	now        time.Time
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	for _, key := range []string{"EMAIL_SENDER", "EMAIL_PASSWORD", "EMAIL_RECIPIENT", "STARTUP_NAME", "STARTUP_DESCRIPTION"} {
		t.Setenv(key, "")
	}

	dataDir := filepath.Join(base, "data")
	configPath := filepath.Join(homeDir, ".config", "nudge", "config.toml")
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	writeTestConfig(t, configPath, dataDir)

	return &cliTestEnv{
		configPath: configPath,
		dataDir:    dataDir,
		dispatcher: &recordingDispatcher{},
		generator:  &fakeGenerator{},
		now:        time.Date(2026, 3, 2, 9, 30, 0, 0, time.Local),
	}
}

func writeTestConfig(t *testing.T, path, dataDir string) {
	t.Helper()
	content := fmt.Sprintf(`[project]
name = "Tesphase"

[paths]
data_dir = %q
env_file = ""

[email]
sender = "bot@example.com"
password = "app-password"
recipient = "founder@example.com"

[compose]
seed = 7
`, dataDir)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func (e *cliTestEnv) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var configFlag string
	ctx := newCommandContext(&configFlag)
	ctx.dispatcher = e.dispatcher
	ctx.generator = e.generator
	ctx.logger = logging.NewNop()
	now := e.now
	ctx.now = func() time.Time { return now }

	cmd := buildRootCommand(ctx, &configFlag)
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--config", e.configPath}, args...))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
