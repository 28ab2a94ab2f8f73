// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Key types:
//   - Prober: runs ffprobe through an injectable Runner
//   - Result: parsed streams and format metadata
//
// Duration is the entry point used for narration audio, where the probed
// length decides whether the track must be cut to fit the video.
package ffprobe
