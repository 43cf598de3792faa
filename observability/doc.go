// Package observability wires OpenTelemetry tracing and metrics for
// the adjudication pipeline. Init functions are called once at process
// start; the rest of the codebase uses the helpers against the global
// providers.
package observability
