// Package metrics exposes Prometheus counters for reminder jobs and an
// optional /metrics listener.
//
// Recorder owns a private registry so tests and multiple daemons never clash
// on the global default registry.
package metrics
