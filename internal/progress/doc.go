// Package progress persists the task and milestone tracker document.
//
// The whole document lives in one JSON file. Every mutation rebuilds the full
// document in memory and writes it through a temp file that is renamed over
// the target, so readers never observe a partial write. A Store is an explicit
// handle shared by the reminder jobs and the tracker commands; it guards its
// state with a mutex but does not coordinate with other processes.
package progress
