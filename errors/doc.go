// Package errors provides unified error handling for the adjudication
// pipeline. It implements structured error types with machine-readable
// codes, HTTP status mapping for the external HTTP caller, and
// retryable detection.
//
// The domain taxonomy covers the pipeline's failure modes: moderation
// rejection, insufficient council quorum, chunk transcription failure,
// and invalid adjudication input. Retry exhaustion is reported by the
// resilience package as *resilience.ExhaustedError and typically
// wrapped into one of these.
package errors
