// Package scheduler fires named jobs once per calendar day at fixed local
// times.
//
// Each binding moves between pending-today and fired-today; the state resets
// when the local date changes. Due times come from a standard cron expression
// so daylight-saving transitions follow cron semantics. The loop polls on a
// fixed interval and runs due jobs synchronously in registration order. A
// failing or panicking job is logged and never stops the loop.
package scheduler
