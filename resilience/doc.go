// Package resilience provides the fault-tolerance primitives used by
// every stage that calls an external capability.
//
//   - Retry: bounded retry with linear or exponential backoff and an
//     observer hook. Terminal failure is reported as *ExhaustedError.
//   - Bulkhead: limits concurrent access; the transcription service
//     uses it to cap in-flight chunk calls.
//
// Retry has no operation-specific knowledge. Stages pick their own
// budgets: judge evaluations retry hardest (they are the most expensive
// calls and the most valuable to save), moderation and formatting get
// two attempts each.
package resilience
