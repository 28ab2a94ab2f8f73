package speech

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"nudge/internal/config"
	"nudge/internal/services"
)

// Synthesizer renders text to an audio file at outPath.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, outPath string) error
}

type commandRunner func(ctx context.Context, stdin io.Reader, name string, args ...string) error

// Espeak synthesizes speech with the espeak-ng command line tool.
type Espeak struct {
	binary    string
	voice     string
	rate      int
	amplitude int
	run       commandRunner
}

// NewEspeak builds a synthesizer from the [speech] config section.
func NewEspeak(cfg config.Speech) *Espeak {
	binary := strings.TrimSpace(cfg.Binary)
	if binary == "" {
		binary = "espeak-ng"
	}
	return &Espeak{
		binary:    binary,
		voice:     strings.TrimSpace(cfg.Voice),
		rate:      cfg.Rate,
		amplitude: Amplitude(cfg.Volume),
		run:       defaultRunner,
	}
}

// WithCommandRunner allows injecting a custom command runner for tests.
func (e *Espeak) WithCommandRunner(r func(ctx context.Context, stdin io.Reader, name string, args ...string) error) *Espeak {
	if e != nil && r != nil {
		e.run = r
	}
	return e
}

// Binary reports the configured executable name.
func (e *Espeak) Binary() string {
	return e.binary
}

// Synthesize feeds text on stdin so long scripts never hit argv limits.
func (e *Espeak) Synthesize(ctx context.Context, text, outPath string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return services.Wrap(services.ErrValidation, "speech", "synthesize", "empty narration", nil)
	}
	if strings.TrimSpace(outPath) == "" {
		return services.Wrap(services.ErrValidation, "speech", "synthesize", "output path required", nil)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return services.Wrap(services.ErrPersistence, "speech", "synthesize", "create audio directory", err)
	}
	if err := e.run(ctx, strings.NewReader(text), e.binary, e.Args(outPath)...); err != nil {
		_ = os.Remove(outPath)
		return services.Wrap(services.ErrExternalTool, "speech", "synthesize", e.binary, err)
	}
	info, err := os.Stat(outPath)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "speech", "synthesize", "no audio produced", err)
	}
	if info.Size() == 0 {
		return services.Wrap(services.ErrExternalTool, "speech", "synthesize", "empty audio produced", nil)
	}
	return nil
}

// Args returns the espeak arguments for writing outPath.
func (e *Espeak) Args(outPath string) []string {
	args := []string{"-w", outPath}
	if e.rate > 0 {
		args = append(args, "-s", strconv.Itoa(e.rate))
	}
	args = append(args, "-a", strconv.Itoa(e.amplitude))
	if e.voice != "" {
		args = append(args, "-v", e.voice)
	}
	return append(args, "--stdin")
}

// Amplitude maps a 0..1 volume onto espeak's amplitude scale.
func Amplitude(volume float64) int {
	if volume <= 0 || math.IsNaN(volume) {
		return 0
	}
	amp := int(math.Round(volume * 100))
	return min(amp, 200)
}

func defaultRunner(ctx context.Context, stdin io.Reader, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	var stderr strings.Builder
	cmd.Stdin = stdin
	cmd.Stdout = io.Discard
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("%s exited %d: %s", name, exitErr.ExitCode(), strings.TrimSpace(stderr.String()))
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}
