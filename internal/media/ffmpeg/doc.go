// Package ffmpeg drives the ffmpeg CLI for the two steps of building a
// reminder video: encoding a repeated raw RGBA frame into a silent MP4, and
// muxing a narration track onto that video.
//
// Command execution goes through a Runner so tests can capture arguments and
// stdin without spawning processes.
package ffmpeg
