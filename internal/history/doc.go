// Package history records every scheduled or manual job invocation in a small
// SQLite database so operators can see when reminders went out and why one
// did not.
//
// Schema changes ship as numbered files under migrations/ and are applied in
// order on Open inside a single transaction.
package history
