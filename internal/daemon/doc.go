// Package daemon coordinates the long-running nudge process.
//
// It binds the morning, midday and evening reminder jobs to their configured
// times, runs the scheduler, and exposes the metrics endpoint when one is
// configured. A flock on the state directory prevents a second instance from
// sending duplicate reminders.
//
// Keep orchestration logic here: composing, rendering and dispatching belong
// to the reminders package while the daemon focuses on startup, shutdown and
// status.
package daemon
