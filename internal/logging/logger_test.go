package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"nudge/internal/config"
	"nudge/internal/logging"
	"nudge/internal/services"
)

func TestNewFromConfigWritesDailyJSONFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("file message", logging.String(logging.FieldEventType, "test_event"))

	content, err := os.ReadFile(logging.DailyLogPath(cfg.Paths.LogDir, time.Now()))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var entry map[string]any
	line := strings.TrimSpace(strings.Split(string(content), "\n")[0])
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("expected JSON log line, got %q: %v", line, err)
	}
	if entry["msg"] != "file message" {
		t.Fatalf("unexpected msg: %v", entry["msg"])
	}
	if entry["event_type"] != "test_event" {
		t.Fatalf("unexpected event_type: %v", entry["event_type"])
	}
}

func consoleOutput(t *testing.T, level string, emit func(*slog.Logger)) string {
	t.Helper()
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Level: level, Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	emit(logger)
	return buf.String()
}

func TestConsoleLoggerCallerDependsOnLevel(t *testing.T) {
	info := consoleOutput(t, "info", func(l *slog.Logger) { l.Info("message without caller") })
	if strings.Contains(info, ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", info)
	}
	debug := consoleOutput(t, "debug", func(l *slog.Logger) { l.Info("message with caller") })
	if !strings.Contains(debug, ".go:") {
		t.Fatalf("expected caller information in debug logs, got %q", debug)
	}
}

func TestConsoleLoggerShowsComponentAndJob(t *testing.T) {
	text := consoleOutput(t, "info", func(l *slog.Logger) {
		ctx := services.WithJob(context.Background(), "evening")
		logging.WithContext(ctx, logging.NewComponentLogger(l, "reminders")).Info("reminder sent", logging.String("subject", "hello"))
	})
	for _, fragment := range []string{"[reminders]", "Evening job", "reminder sent", "Subject: hello"} {
		if !strings.Contains(text, fragment) {
			t.Fatalf("expected %q in %q", fragment, text)
		}
	}
}

func TestConsoleLoggerOrdersHighlightsAndHidesPaths(t *testing.T) {
	text := consoleOutput(t, "info", func(l *slog.Logger) {
		l.Info("video rendered",
			logging.String("video_path", "/tmp/evening.mp4"),
			logging.Bool("audio_truncated", true),
			logging.String("reason", "speech longer than clip"),
			logging.String(logging.FieldEventType, "video_ready"),
		)
	})
	if strings.Contains(text, "/tmp/evening.mp4") {
		t.Fatalf("expected path field hidden at info, got %q", text)
	}
	event := strings.Index(text, "Event: video_ready")
	reason := strings.Index(text, "Reason: speech longer than clip")
	cut := strings.Index(text, "Audio Cut: yes")
	if event < 0 || reason < 0 || cut < 0 {
		t.Fatalf("missing highlighted fields in %q", text)
	}
	if !(event < reason && reason < cut) {
		t.Fatalf("unexpected field order in %q", text)
	}
}

func TestConsoleLoggerDebugPrintsRawFields(t *testing.T) {
	text := consoleOutput(t, "debug", func(l *slog.Logger) {
		l.Debug("probe", logging.String("video_path", "/tmp/a.mp4"), logging.Int("frames", 250))
	})
	for _, fragment := range []string{"DEBUG", "video_path: /tmp/a.mp4", "frames: 250"} {
		if !strings.Contains(text, fragment) {
			t.Fatalf("expected %q in %q", fragment, text)
		}
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestWithContextAddsFields(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithJob(ctx, "morning")
	ctx = services.WithRunID(ctx, "run-xyz")

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	logging.WithContext(ctx, logger).Info("contextual log")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log entry: %v", err)
	}
	if entry[logging.FieldJob] != "morning" {
		t.Fatalf("field job = %v", entry[logging.FieldJob])
	}
	if entry[logging.FieldRunID] != "run-xyz" {
		t.Fatalf("field run_id = %v", entry[logging.FieldRunID])
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	logging.WarnWithContext(logger, "narration skipped", "speech_failed")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log entry: %v", err)
	}
	for _, key := range []string{logging.FieldEventType, logging.FieldErrorHint, logging.FieldImpact} {
		if _, ok := entry[key]; !ok {
			t.Fatalf("expected %s in %v", key, entry)
		}
	}
	if entry[logging.FieldEventType] != "speech_failed" {
		t.Fatalf("unexpected event type %v", entry[logging.FieldEventType])
	}
}

func TestCleanupOldLogsRemovesExpiredFiles(t *testing.T) {
	dir := t.TempDir()
	oldPath := filepath.Join(dir, "nudge-20200101.log")
	freshPath := filepath.Join(dir, "nudge-20990101.log")
	for _, path := range []string{oldPath, freshPath} {
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
	past := time.Now().AddDate(0, 0, -40)
	if err := os.Chtimes(oldPath, past, past); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	logging.CleanupOldLogs(logging.NewNop(), 30, logging.RetentionTarget{Dir: dir, Pattern: "nudge-*.log"})

	if _, err := os.Stat(oldPath); !os.IsNotExist(err) {
		t.Fatalf("expected old log to be removed, stat err=%v", err)
	}
	if _, err := os.Stat(freshPath); err != nil {
		t.Fatalf("expected fresh log to remain: %v", err)
	}
}
