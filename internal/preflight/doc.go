// Package preflight provides readiness checks for the binaries, directories
// and mail settings nudge depends on.
//
// The daemon runs RunAll at startup and logs failures without refusing to
// start, since a missing speech engine only degrades the evening video. The
// CLI "nudge status" command renders the same results as a table.
package preflight
