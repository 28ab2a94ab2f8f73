package video_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"nudge/internal/compose"
	"nudge/internal/media/ffmpeg"
	"nudge/internal/services"
	"nudge/internal/testsupport"
	"nudge/internal/video"
)

type fakeEncoder struct {
	encodes   []ffmpeg.EncodeRequest
	muxes     []ffmpeg.MuxRequest
	encodeErr error
	muxErr    error
}

func (f *fakeEncoder) EncodeFrames(_ context.Context, req ffmpeg.EncodeRequest) error {
	f.encodes = append(f.encodes, req)
	if f.encodeErr != nil {
		return f.encodeErr
	}
	return os.WriteFile(req.Output, []byte("silent"), 0o644)
}

func (f *fakeEncoder) Mux(_ context.Context, req ffmpeg.MuxRequest) error {
	f.muxes = append(f.muxes, req)
	if f.muxErr != nil {
		return f.muxErr
	}
	return os.WriteFile(req.Output, []byte("final"), 0o644)
}

type fakeSynth struct {
	calls int
	err   error
}

func (f *fakeSynth) Synthesize(_ context.Context, text, outPath string) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	if strings.TrimSpace(text) == "" {
		return errors.New("empty narration")
	}
	return os.WriteFile(outPath, []byte("RIFF"), 0o644)
}

type fixedProber time.Duration

func (p fixedProber) Duration(context.Context, string) (time.Duration, error) {
	return time.Duration(p), nil
}

func fixedNow() time.Time {
	return time.Date(2026, time.May, 1, 18, 0, 0, 0, time.Local)
}

func newGenerator(t *testing.T, enc *fakeEncoder, synth *fakeSynth, audio time.Duration) (*video.Generator, string) {
	t.Helper()
	cfg := testsupport.NewConfig(t, testsupport.WithDirectories())
	cfg.Video.Width = 64
	cfg.Video.Height = 36
	opts := []video.Option{
		video.WithEncoder(enc),
		video.WithProber(fixedProber(audio)),
		video.WithClock(fixedNow),
	}
	if synth != nil {
		opts = append(opts, video.WithSynthesizer(synth))
	} else {
		opts = append(opts, video.WithSynthesizer(nil))
	}
	return video.New(cfg, opts...), cfg.Paths.VideosDir
}

func script() video.Script {
	return compose.VideoScript("Tesphase", fixedNow(), nil)
}

func TestGenerateNarratedVideo(t *testing.T) {
	enc := &fakeEncoder{}
	synth := &fakeSynth{}
	gen, videos := newGenerator(t, enc, synth, 9*time.Second)

	result, err := gen.Generate(context.Background(), script())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if result.Degraded {
		t.Fatalf("unexpected degraded result: %s", result.Reason)
	}
	if result.Frames != 450 || result.VideoDuration != 15*time.Second {
		t.Fatalf("unexpected timing frames=%d duration=%v", result.Frames, result.VideoDuration)
	}
	if want := filepath.Join(videos, "tesphase_reminder_20260501.mp4"); result.SilentPath != want {
		t.Fatalf("silent path = %q, want %q", result.SilentPath, want)
	}
	if want := filepath.Join(videos, "tesphase_final_20260501.mp4"); result.Path != want {
		t.Fatalf("final path = %q, want %q", result.Path, want)
	}
	if len(enc.encodes) != 1 || len(enc.encodes[0].Frame) != 64*36*4 {
		t.Fatalf("expected one encode of a full RGBA frame")
	}
	if len(enc.muxes) != 1 || enc.muxes[0].Limit != 0 {
		t.Fatalf("shorter narration must not be cut: %+v", enc.muxes)
	}
	if result.AudioTruncated || result.AudioDuration != 9*time.Second {
		t.Fatalf("unexpected audio result %+v", result)
	}
	if _, err := os.Stat(result.FramePath); err != nil {
		t.Fatalf("expected frame snapshot: %v", err)
	}
}

func TestGenerateTruncatesLongNarration(t *testing.T) {
	enc := &fakeEncoder{}
	gen, _ := newGenerator(t, enc, &fakeSynth{}, 42*time.Second)

	result, err := gen.Generate(context.Background(), script())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !result.AudioTruncated {
		t.Fatal("expected audio to be truncated")
	}
	if result.AudioDuration != result.VideoDuration {
		t.Fatalf("audio duration %v must equal video duration %v", result.AudioDuration, result.VideoDuration)
	}
	if enc.muxes[0].Limit != 15*time.Second {
		t.Fatalf("expected mux limit of 15s, got %v", enc.muxes[0].Limit)
	}
}

func TestGenerateDegradesWhenSynthesisFails(t *testing.T) {
	enc := &fakeEncoder{}
	gen, _ := newGenerator(t, enc, &fakeSynth{err: errors.New("espeak-ng: not found")}, time.Second)

	result, err := gen.Generate(context.Background(), script())
	if err != nil {
		t.Fatalf("synthesis failure must not fail generation: %v", err)
	}
	if !result.Degraded || !strings.Contains(result.Reason, "speech synthesis failed") {
		t.Fatalf("expected degraded result, got %+v", result)
	}
	if result.Path != result.SilentPath {
		t.Fatalf("degraded result must point at the silent video")
	}
	if len(enc.muxes) != 0 {
		t.Fatalf("mux must be skipped after synthesis failure")
	}
	if _, err := os.Stat(result.Path); err != nil {
		t.Fatalf("silent video should exist: %v", err)
	}
}

func TestGenerateDegradesWhenMuxFails(t *testing.T) {
	enc := &fakeEncoder{muxErr: errors.New("exit status 1")}
	gen, _ := newGenerator(t, enc, &fakeSynth{}, time.Second)

	result, err := gen.Generate(context.Background(), script())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !result.Degraded || result.Path != result.SilentPath {
		t.Fatalf("expected silent fallback, got %+v", result)
	}
}

func TestGenerateDegradesWithoutSynthesizer(t *testing.T) {
	gen, _ := newGenerator(t, &fakeEncoder{}, nil, time.Second)
	result, err := gen.Generate(context.Background(), script())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !result.Degraded || result.Reason != "narration disabled" {
		t.Fatalf("expected disabled narration, got %+v", result)
	}
}

func TestGenerateFailsWhenEncodeFails(t *testing.T) {
	enc := &fakeEncoder{encodeErr: errors.New("ffmpeg: not found")}
	gen, _ := newGenerator(t, enc, &fakeSynth{}, time.Second)

	_, err := gen.Generate(context.Background(), script())
	if !errors.Is(err, services.ErrGeneration) {
		t.Fatalf("expected generation error, got %v", err)
	}
}
