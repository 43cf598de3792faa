package errors

import (
	"fmt"
	"net/http"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// HTTPStatus is the recommended HTTP status code for this error.
	HTTPStatus int `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Retryable:  IsRetryableCode(code),
	}
}

// --- Domain Error Constructors ---

// InvalidInput creates a new AppError for an invalid adjudication request.
func InvalidInput(reason string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidInput, Message: fmt.Sprintf("Invalid input: %s", reason),
		HTTPStatus: http.StatusBadRequest, Retryable: false,
	}
}

// MissingField creates a new AppError for a missing required field.
func MissingField(field string) *AppError {
	return &AppError{
		Code: ErrCodeMissingField, Message: fmt.Sprintf("Missing required field: %s", field),
		HTTPStatus: http.StatusBadRequest, Retryable: false,
		Details: map[string]any{"field": field},
	}
}

// ModerationRejected creates a new AppError for content that failed moderation.
// Rejection is a terminal outcome: the pipeline stops, the caller decides
// how to present it.
func ModerationRejected(reason string, flags []string) *AppError {
	if reason == "" {
		reason = "Content flagged as inappropriate."
	}
	return &AppError{
		Code: ErrCodeModerationRejected, Message: reason,
		HTTPStatus: http.StatusUnprocessableEntity, Retryable: false,
		Details: map[string]any{"flags": flags},
	}
}

// InsufficientQuorum creates a new AppError for a council run where too few
// judges succeeded to produce a verdict.
func InsufficientQuorum(succeeded, required, total int) *AppError {
	return &AppError{
		Code: ErrCodeInsufficientQuorum,
		Message: fmt.Sprintf("Insufficient quorum: only %d of %d judges succeeded (minimum %d required)",
			succeeded, total, required),
		HTTPStatus: http.StatusBadGateway, Retryable: true,
		Details: map[string]any{"succeeded": succeeded, "required": required, "total": total},
	}
}

// ChunkTranscription creates a new AppError for a chunk that could not be
// transcribed after retries. A hole in the middle of a transcript is worse
// than a total failure, so this aborts the whole transcription.
func ChunkTranscription(chunkIndex int, cause error) *AppError {
	return &AppError{
		Code:       ErrCodeChunkTranscription,
		Message:    fmt.Sprintf("Transcription of audio chunk %d failed", chunkIndex),
		HTTPStatus: http.StatusBadGateway, Retryable: true,
		Details:    map[string]any{"chunk_index": chunkIndex},
		Cause:      cause,
	}
}

// RetryExhausted creates a new AppError for an operation that failed on
// every attempt of its retry budget.
func RetryExhausted(operation string, attempts int, cause error) *AppError {
	return &AppError{
		Code:       ErrCodeRetryExhausted,
		Message:    fmt.Sprintf("%s failed after %d attempts", operation, attempts),
		HTTPStatus: http.StatusBadGateway, Retryable: false,
		Details:    map[string]any{"operation": operation, "attempts": attempts},
		Cause:      cause,
	}
}

// Formatting creates a new AppError for a transcript that could not be
// normalized into a structured form.
func Formatting(cause error) *AppError {
	return &AppError{
		Code:       ErrCodeFormatting,
		Message:    "Failed to format transcript into structured form",
		HTTPStatus: http.StatusBadGateway, Retryable: true,
		Cause:      cause,
	}
}

// ExternalService creates a new AppError for a failed external capability call.
func ExternalService(service string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeExternalService, Message: fmt.Sprintf("Call to %s failed", service),
		HTTPStatus: http.StatusBadGateway, Retryable: true,
		Details:    map[string]any{"service": service},
		Cause:      cause,
	}
}

// Internal creates a new AppError for an unexpected internal failure.
func Internal(message string) *AppError {
	if message == "" {
		message = "An unexpected error occurred."
	}
	return &AppError{
		Code: ErrCodeInternal, Message: message,
		HTTPStatus: http.StatusInternalServerError, Retryable: false,
	}
}
