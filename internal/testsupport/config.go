package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"nudge/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Email settings are filled with placeholder values; nothing dials out unless
// a test wires a real transport.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	data := filepath.Join(base, "data")
	cfgVal.Paths = config.Paths{
		DataDir:      data,
		VideosDir:    filepath.Join(data, "videos"),
		AudioDir:     filepath.Join(data, "audio"),
		ImagesDir:    filepath.Join(data, "images"),
		LogDir:       filepath.Join(data, "logs"),
		StateDir:     filepath.Join(data, "state"),
		ProgressFile: filepath.Join(data, "progress.json"),
	}
	cfgVal.Email.Sender = "bot@example.com"
	cfgVal.Email.Password = "app-password"
	cfgVal.Email.Recipient = "founder@example.com"
	cfgVal.Scheduler.PollIntervalSeconds = 1

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithEmail overrides sender, credential and recipient.
func WithEmail(sender, password, recipient string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Email.Sender = sender
		b.cfg.Email.Password = password
		b.cfg.Email.Recipient = recipient
	}
}

// WithProject sets the project name and description woven into messages.
func WithProject(name, description string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Project.Name = name
		b.cfg.Project.Description = description
	}
}

// WithDirectories creates every configured directory up front.
func WithDirectories() ConfigOption {
	return func(b *configBuilder) {
		if err := b.cfg.EnsureDirectories(); err != nil {
			b.t.Fatalf("ensure directories: %v", err)
		}
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, the default external binaries
// (ffmpeg, ffprobe and the speech engine) are stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"ffmpeg", "ffprobe", b.cfg.Speech.Binary}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		script := []byte("#!/bin/sh\nexit 0\n")
		for _, name := range names {
			target := filepath.Join(binDir, name)
			if err := os.WriteFile(target, script, 0o755); err != nil {
				b.t.Fatalf("write stub %s: %v", name, err)
			}
		}

		oldPath := os.Getenv("PATH")
		if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
			b.t.Fatalf("set PATH: %v", err)
		}
		b.t.Cleanup(func() {
			_ = os.Setenv("PATH", oldPath)
		})
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
