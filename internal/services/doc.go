// Package services defines shared error markers and context helpers consumed
// by the reminder jobs and their collaborators.
//
// Key responsibilities:
//   - Context helpers that stamp job names and run identifiers for logging.
//   - Structured error markers plus the Wrap helper so callers can classify
//     failures (configuration, transport, generation, persistence) with
//     errors.Is instead of string matching.
//
// Use these helpers when wiring new job logic so error handling and
// observability stay uniform across the daemon and the CLI.
package services
