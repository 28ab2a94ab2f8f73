package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"
)

func TestRepeatReaderYieldsCopies(t *testing.T) {
	data, err := io.ReadAll(NewRepeatReader([]byte("abc"), 4))
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(data) != "abcabcabcabc" {
		t.Fatalf("unexpected output %q", data)
	}
	empty, _ := io.ReadAll(NewRepeatReader(nil, 10))
	if len(empty) != 0 {
		t.Fatalf("expected empty output, got %d bytes", len(empty))
	}
}

func TestEncodeFramesStreamsEveryFrame(t *testing.T) {
	frame := bytes.Repeat([]byte{1, 2, 3, 4}, 4*2)
	var (
		gotName  string
		gotArgs  []string
		gotBytes int
	)
	enc := New("", nil).WithRunner(func(_ context.Context, stdin io.Reader, name string, args ...string) error {
		gotName = name
		gotArgs = args
		data, err := io.ReadAll(stdin)
		gotBytes = len(data)
		return err
	})
	out := filepath.Join(t.TempDir(), "videos", "tesphase_reminder_20260501.mp4")
	err := enc.EncodeFrames(context.Background(), EncodeRequest{
		Output: out, Frame: frame, Width: 4, Height: 2, FPS: 30, Frames: 450,
	})
	if err != nil {
		t.Fatalf("EncodeFrames: %v", err)
	}
	if gotName != "ffmpeg" {
		t.Fatalf("unexpected binary %q", gotName)
	}
	if gotBytes != len(frame)*450 {
		t.Fatalf("expected %d bytes on stdin, got %d", len(frame)*450, gotBytes)
	}
	joined := strings.Join(gotArgs, " ")
	for _, want := range []string{"-f rawvideo", "-pix_fmt rgba", "-s 4x2", "-r 30", "-i -", "-frames:v 450", "-c:v libx264"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("expected %q in args %q", want, joined)
		}
	}
	if gotArgs[len(gotArgs)-1] != out {
		t.Fatalf("output must be last argument")
	}
}

func TestEncodeFramesRejectsBadFrame(t *testing.T) {
	enc := New("ffmpeg", nil).WithRunner(func(context.Context, io.Reader, string, ...string) error {
		t.Fatal("runner must not be called")
		return nil
	})
	err := enc.EncodeFrames(context.Background(), EncodeRequest{
		Output: filepath.Join(t.TempDir(), "x.mp4"), Frame: []byte{1}, Width: 4, Height: 2, FPS: 30, Frames: 1,
	})
	if err == nil {
		t.Fatal("expected frame size error")
	}
}

func TestMuxArgsLimit(t *testing.T) {
	args := MuxArgs(MuxRequest{Video: "v.mp4", Audio: "a.wav", Output: "out.mp4", Limit: 15 * time.Second})
	idx := slices.Index(args, "-t")
	if idx < 0 || args[idx+1] != "15.000" {
		t.Fatalf("expected -t 15.000 in %v", args)
	}
	if slices.Contains(args, "-shortest") {
		t.Fatalf("shorter audio must not cut the video")
	}

	unlimited := MuxArgs(MuxRequest{Video: "v.mp4", Audio: "a.wav", Output: "out.mp4"})
	if slices.Contains(unlimited, "-t") {
		t.Fatalf("did not expect -t without a limit: %v", unlimited)
	}
}

func TestMuxPropagatesRunnerError(t *testing.T) {
	enc := New("ffmpeg", nil).WithRunner(func(_ context.Context, stdin io.Reader, _ string, _ ...string) error {
		if stdin != nil {
			t.Fatal("mux must not use stdin")
		}
		return errors.New("exit status 1")
	})
	err := enc.Mux(context.Background(), MuxRequest{Video: "v.mp4", Audio: "a.wav", Output: filepath.Join(t.TempDir(), "o.mp4")})
	if err == nil || !strings.Contains(err.Error(), "ffmpeg mux") {
		t.Fatalf("expected wrapped mux error, got %v", err)
	}
	if err := enc.Mux(context.Background(), MuxRequest{Video: "v.mp4"}); err == nil {
		t.Fatal("expected validation error")
	}
}
