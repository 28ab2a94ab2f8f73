package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"nudge/internal/logging"
)

// Runner executes name with args, feeding stdin when non-nil.
type Runner func(ctx context.Context, stdin io.Reader, name string, args ...string) error

// EncodeRequest describes a silent video made of one repeated frame.
type EncodeRequest struct {
	Output string
	Frame  []byte // raw RGBA, Width*Height*4 bytes
	Width  int
	Height int
	FPS    int
	Frames int
	Codec  string
}

// MuxRequest combines a silent video with an audio track. A positive Limit
// cuts the output (and therefore the audio) at that duration.
type MuxRequest struct {
	Video  string
	Audio  string
	Output string
	Limit  time.Duration
}

// Encoder wraps the ffmpeg binary.
type Encoder struct {
	binary string
	run    Runner
	logger *slog.Logger
}

// New constructs an encoder for binary ("ffmpeg" when empty).
func New(binary string, logger *slog.Logger) *Encoder {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Encoder{
		binary: binary,
		run:    defaultRunner,
		logger: logging.NewComponentLogger(logger, "ffmpeg"),
	}
}

// WithRunner allows injecting a custom command runner for tests.
func (e *Encoder) WithRunner(r Runner) *Encoder {
	if e != nil && r != nil {
		e.run = r
	}
	return e
}

// EncodeFrames streams req.Frame req.Frames times into ffmpeg's stdin.
func (e *Encoder) EncodeFrames(ctx context.Context, req EncodeRequest) error {
	if err := req.validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(req.Output), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	args := EncodeArgs(req)
	e.logger.Debug("encoding frames",
		logging.String("output", req.Output),
		logging.Int("frames", req.Frames),
		logging.Int("fps", req.FPS),
	)
	if err := e.run(ctx, NewRepeatReader(req.Frame, req.Frames), e.binary, args...); err != nil {
		_ = os.Remove(req.Output)
		return fmt.Errorf("ffmpeg encode: %w", err)
	}
	return nil
}

// Mux writes req.Output from the video stream of req.Video and the audio
// stream of req.Audio. The video stream is copied without re-encoding.
func (e *Encoder) Mux(ctx context.Context, req MuxRequest) error {
	if strings.TrimSpace(req.Video) == "" || strings.TrimSpace(req.Audio) == "" || strings.TrimSpace(req.Output) == "" {
		return errors.New("ffmpeg mux: video, audio and output are required")
	}
	args := MuxArgs(req)
	e.logger.Debug("muxing narration",
		logging.String("video", req.Video),
		logging.String("audio", req.Audio),
		logging.Duration("limit", req.Limit),
	)
	if err := e.run(ctx, nil, e.binary, args...); err != nil {
		_ = os.Remove(req.Output)
		return fmt.Errorf("ffmpeg mux: %w", err)
	}
	return nil
}

// EncodeArgs builds the ffmpeg arguments for a raw RGBA stdin encode.
func EncodeArgs(req EncodeRequest) []string {
	codec := strings.TrimSpace(req.Codec)
	if codec == "" {
		codec = "libx264"
	}
	return []string{
		"-y", "-hide_banner", "-loglevel", "error",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-s", fmt.Sprintf("%dx%d", req.Width, req.Height),
		"-r", strconv.Itoa(req.FPS),
		"-i", "-",
		"-frames:v", strconv.Itoa(req.Frames),
		"-c:v", codec,
		"-pix_fmt", "yuv420p",
		"-movflags", "+faststart",
		req.Output,
	}
}

// MuxArgs builds the ffmpeg arguments for combining video and narration.
func MuxArgs(req MuxRequest) []string {
	args := []string{
		"-y", "-hide_banner", "-loglevel", "error",
		"-i", req.Video,
		"-i", req.Audio,
		"-map", "0:v:0",
		"-map", "1:a:0",
		"-c:v", "copy",
		"-c:a", "aac",
	}
	if req.Limit > 0 {
		args = append(args, "-t", strconv.FormatFloat(req.Limit.Seconds(), 'f', 3, 64))
	}
	return append(args, "-movflags", "+faststart", req.Output)
}

func (r EncodeRequest) validate() error {
	switch {
	case strings.TrimSpace(r.Output) == "":
		return errors.New("ffmpeg encode: output path is required")
	case r.Width <= 0 || r.Height <= 0:
		return fmt.Errorf("ffmpeg encode: invalid dimensions %dx%d", r.Width, r.Height)
	case r.FPS <= 0 || r.Frames <= 0:
		return fmt.Errorf("ffmpeg encode: invalid timing fps=%d frames=%d", r.FPS, r.Frames)
	case len(r.Frame) != r.Width*r.Height*4:
		return fmt.Errorf("ffmpeg encode: frame is %d bytes, want %d", len(r.Frame), r.Width*r.Height*4)
	}
	return nil
}

func defaultRunner(ctx context.Context, stdin io.Reader, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	var stderr bytes.Buffer
	cmd.Stdin = stdin
	cmd.Stdout = io.Discard
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(stderr.String()))
	}
	return nil
}
