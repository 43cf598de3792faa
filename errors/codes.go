package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Connection/Availability errors (retryable)
const (
	// ErrCodeServiceUnavailable indicates the service is temporarily unavailable.
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	// ErrCodeTimeout indicates the request timed out.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeRateLimited indicates the client is rate limited.
	ErrCodeRateLimited ErrorCode = "RATE_LIMITED"
	// ErrCodeExternalService indicates an error from an external capability.
	ErrCodeExternalService ErrorCode = "EXTERNAL_SERVICE_ERROR"
)

// Validation errors
const (
	// ErrCodeInvalidInput indicates the adjudication input is invalid
	// (missing transcript and audio, or missing topic).
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeMissingField indicates a required field is missing.
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"
)

// Pipeline errors
const (
	// ErrCodeRetryExhausted indicates an operation failed after all retry attempts.
	ErrCodeRetryExhausted ErrorCode = "RETRY_EXHAUSTED"
	// ErrCodeModerationRejected indicates the transcript failed content moderation.
	ErrCodeModerationRejected ErrorCode = "MODERATION_REJECTED"
	// ErrCodeInsufficientQuorum indicates too few judges produced a valid evaluation.
	ErrCodeInsufficientQuorum ErrorCode = "INSUFFICIENT_QUORUM"
	// ErrCodeChunkTranscription indicates an audio chunk could not be transcribed.
	ErrCodeChunkTranscription ErrorCode = "CHUNK_TRANSCRIPTION_FAILED"
	// ErrCodeFormatting indicates the transcript could not be normalized.
	ErrCodeFormatting ErrorCode = "TRANSCRIPT_FORMATTING_FAILED"
	// ErrCodeInternal indicates an internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeServiceUnavailable: true,
	ErrCodeTimeout:            true,
	ErrCodeRateLimited:        true,
	ErrCodeExternalService:    true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
