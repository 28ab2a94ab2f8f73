// Package notifications delivers composed reminders to the configured
// recipient.
//
// The primary dispatcher sends multipart email (HTML plus a plain-text
// alternative) over SMTP with STARTTLS using go-mail. An optional ntfy mirror
// posts the subject and plain text to a push topic. Callers depend only on the
// Dispatcher interface; Fanout combines a primary dispatcher with mirrors and
// reports the primary's outcome.
//
// Missing sender, credential or recipient is reported as
// services.ErrConfiguration before any connection is attempted. Transport
// failures are wrapped with services.ErrTransport and are never retried.
package notifications
