package video

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"golang.org/x/image/font"

	"nudge/internal/config"
	"nudge/internal/logging"
	"nudge/internal/media/ffmpeg"
	"nudge/internal/media/ffprobe"
	"nudge/internal/services"
	"nudge/internal/speech"
	"nudge/internal/textutil"
)

// Encoder turns frames into video and muxes audio onto it.
type Encoder interface {
	EncodeFrames(ctx context.Context, req ffmpeg.EncodeRequest) error
	Mux(ctx context.Context, req ffmpeg.MuxRequest) error
}

// Prober reports media durations.
type Prober interface {
	Duration(ctx context.Context, path string) (time.Duration, error)
}

// Result describes the produced artifact. Path is the file to attach: the
// narrated video, or the silent one when Degraded is set.
type Result struct {
	Path           string
	SilentPath     string
	FramePath      string
	Degraded       bool
	Reason         string
	AudioDuration  time.Duration
	VideoDuration  time.Duration
	AudioTruncated bool
	Frames         int
}

// Generator produces the daily reminder video.
type Generator struct {
	settings config.Video
	paths    config.Paths
	project  string
	encoder  Encoder
	prober   Prober
	synth    speech.Synthesizer
	now      func() time.Time
	logger   *slog.Logger
}

// Option customizes a Generator.
type Option func(*Generator)

// WithEncoder replaces the ffmpeg encoder.
func WithEncoder(e Encoder) Option {
	return func(g *Generator) {
		if e != nil {
			g.encoder = e
		}
	}
}

// WithProber replaces the ffprobe duration probe.
func WithProber(p Prober) Option {
	return func(g *Generator) {
		if p != nil {
			g.prober = p
		}
	}
}

// WithSynthesizer replaces the narration engine. A nil synthesizer disables
// narration and every result is degraded.
func WithSynthesizer(s speech.Synthesizer) Option {
	return func(g *Generator) {
		g.synth = s
	}
}

// WithClock sets the time source used for artifact names.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		if now != nil {
			g.now = now
		}
	}
}

// WithLogger sets the generator logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// New builds a generator from configuration with ffmpeg, ffprobe and espeak
// backends.
func New(cfg *config.Config, opts ...Option) *Generator {
	g := &Generator{
		settings: cfg.Video,
		paths:    cfg.Paths,
		project:  cfg.Project.Name,
		prober:   ffprobe.New(cfg.FFprobeBinary()),
		now:      time.Now,
		logger:   logging.NewNop(),
	}
	if cfg.Speech.Enabled {
		g.synth = speech.NewEspeak(cfg.Speech)
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.encoder == nil {
		g.encoder = ffmpeg.New(cfg.FFmpegBinary(), g.logger)
	}
	g.logger = logging.NewComponentLogger(g.logger, "video")
	return g
}

// Generate renders, encodes and narrates script. Narration problems degrade
// the result instead of failing it.
func (g *Generator) Generate(ctx context.Context, script Script) (Result, error) {
	logger := logging.WithContext(ctx, g.logger)
	if g.settings.TimeoutSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(g.settings.TimeoutSeconds)*time.Second)
		defer cancel()
	}

	stamp := g.now().Format("20060102")
	slug := textutil.SanitizeToken(g.project)
	result := Result{
		SilentPath: filepath.Join(g.paths.VideosDir, fmt.Sprintf("%s_reminder_%s.mp4", slug, stamp)),
		FramePath:  filepath.Join(g.paths.ImagesDir, fmt.Sprintf("frame_%s.png", stamp)),
		Frames:     frameCount(g.settings.FPS, g.settings.DurationSeconds),
	}
	result.VideoDuration = durationOf(result.Frames, g.settings.FPS)
	if result.Frames == 0 {
		return Result{}, services.Wrap(services.ErrGeneration, "video", "render",
			fmt.Sprintf("invalid timing fps=%d duration=%ds", g.settings.FPS, g.settings.DurationSeconds), nil)
	}

	frame := RenderFrame(script, g.settings.Width, g.settings.Height, g.face(logger))
	if err := savePNG(frame, result.FramePath); err != nil {
		logging.WarnWithContext(logger, "frame snapshot not saved", "video_frame_save_failed",
			logging.Error(err),
			logging.String("path", result.FramePath),
			logging.String(logging.FieldErrorHint, "check paths.images_dir permissions"),
			logging.String(logging.FieldImpact, "video is unaffected; preview image is missing"),
		)
		result.FramePath = ""
	}

	encodeStart := time.Now()
	err := g.encoder.EncodeFrames(ctx, ffmpeg.EncodeRequest{
		Output: result.SilentPath,
		Frame:  frame.Pix,
		Width:  g.settings.Width,
		Height: g.settings.Height,
		FPS:    g.settings.FPS,
		Frames: result.Frames,
		Codec:  g.settings.Codec,
	})
	if err != nil {
		return Result{}, services.Wrap(services.ErrGeneration, "video", "encode", result.SilentPath, err)
	}
	logger.Info("silent video encoded",
		logging.String(logging.FieldEventType, "video_encoded"),
		logging.String("path", result.SilentPath),
		logging.Int("frames", result.Frames),
		logging.Duration("duration", time.Since(encodeStart)),
	)
	result.Path = result.SilentPath

	if reason := g.narrate(ctx, logger, script, stamp, slug, &result); reason != "" {
		result.Degraded = true
		result.Reason = reason
		logging.WarnWithContext(logger, "narration skipped; attaching silent video", "video_degraded",
			logging.String("reason", reason),
			logging.String("path", result.Path),
			logging.String(logging.FieldErrorHint, "check the speech binary and ffmpeg logs"),
			logging.String(logging.FieldImpact, "evening video has no narration"),
		)
	}
	return result, nil
}

// narrate runs synthesis and muxing, returning a degradation reason or "".
func (g *Generator) narrate(ctx context.Context, logger *slog.Logger, script Script, stamp, slug string, result *Result) string {
	if g.synth == nil {
		return "narration disabled"
	}
	audioPath := filepath.Join(g.paths.AudioDir, fmt.Sprintf("narration_%s.wav", stamp))
	if err := g.synth.Synthesize(ctx, script.Narration, audioPath); err != nil {
		logger.Debug("speech synthesis failed", logging.Error(err))
		return fmt.Sprintf("speech synthesis failed: %v", err)
	}

	audioDuration, err := g.prober.Duration(ctx, audioPath)
	if err != nil {
		return fmt.Sprintf("probe narration: %v", err)
	}
	plan := planMux(result.VideoDuration, audioDuration)

	finalPath := filepath.Join(g.paths.VideosDir, fmt.Sprintf("%s_final_%s.mp4", slug, stamp))
	if err := g.encoder.Mux(ctx, ffmpeg.MuxRequest{
		Video:  result.SilentPath,
		Audio:  audioPath,
		Output: finalPath,
		Limit:  plan.limit,
	}); err != nil {
		return fmt.Sprintf("mux narration: %v", err)
	}

	result.Path = finalPath
	result.AudioDuration = plan.audioDuration
	result.AudioTruncated = plan.audioTruncated
	logger.Info("narrated video ready",
		logging.String(logging.FieldEventType, "video_ready"),
		logging.String("path", finalPath),
		logging.Duration("audio_duration", audioDuration),
		logging.Bool("audio_truncated", plan.audioTruncated),
	)
	return ""
}

func (g *Generator) face(logger *slog.Logger) font.Face {
	if g.settings.FontPath == "" {
		logger.Debug("no font configured; using built-in bitmap font")
		return nil
	}
	face, err := LoadFace(g.settings.FontPath, g.settings.FontSize)
	if err != nil {
		logging.WarnWithContext(logger, "font unavailable; using built-in bitmap font", "video_font_fallback",
			logging.Error(err),
			logging.String("font_path", g.settings.FontPath),
			logging.String(logging.FieldErrorHint, "set video.font_path to a readable .ttf or .otf file"),
			logging.String(logging.FieldImpact, "on-screen text uses a small fallback font"),
		)
		return nil
	}
	return face
}
