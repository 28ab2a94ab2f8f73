// Package video builds the narrated reminder video attached to the evening
// email.
//
// Generation runs four steps: render a single gradient frame with the script
// text, encode that frame repeatedly into a silent MP4, synthesize the
// narration, and mux the narration onto the video. The first two steps are
// required and fail the run with services.ErrGeneration. The last two are
// best effort: when either fails, Generate still returns the silent video with
// Result.Degraded set and a human-readable reason.
//
// Narration longer than the video is cut to the video length; shorter
// narration leaves the remainder silent.
package video
