// Package compose builds the reminder messages and the narration script.
//
// Message variants live in named pools; Pick selects one uniformly using an
// injected random source so tests are deterministic. Compose renders the chosen
// variant into an HTML layout and derives a plain-text alternative from that
// HTML. Built-in pools cover the morning and reminder messages; a YAML file can
// override them by name.
package compose
