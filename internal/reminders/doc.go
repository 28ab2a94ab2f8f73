// Package reminders implements the scheduled jobs: the morning and midday
// motivation emails, the evening summary with its narrated video, and the
// one-shot delivery test.
//
// Each job composes a message, hands it to the dispatcher and records the
// invocation in run history and metrics. Jobs return the dispatch error so
// the scheduler can log it; they never retry.
package reminders
