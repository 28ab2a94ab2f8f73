// Package main hosts the nudge CLI entrypoint and command graph.
//
// The Cobra-based command tree runs the reminder daemon, fires single
// reminders on demand, drives the interactive progress tracker, and renders
// run history and preflight status. It centralizes configuration resolution
// and runtime wiring so subcommands can focus on user experience instead of
// plumbing.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
