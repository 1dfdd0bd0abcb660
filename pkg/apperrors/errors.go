package apperrors

import (
	"errors"
	"fmt"
)

var (
	// ErrTokenNotFound is returned when a query token is unknown, expired,
	// or already consumed by a previous execution.
	ErrTokenNotFound = errors.New("query token not found")

	// ErrSchemaUnavailable is returned when the backing store cannot provide
	// schema information. Fatal for a generation request.
	ErrSchemaUnavailable = errors.New("schema unavailable")

	// ErrInvalidFeedbackVerdict indicates a caller passed an unrecognized
	// feedback verdict. This is a programming error, not a runtime condition.
	ErrInvalidFeedbackVerdict = errors.New("invalid feedback verdict")

	// ErrRateLimited signals the caller exceeded its request window.
	ErrRateLimited = errors.New("rate limited")

	// ErrEmptyInput indicates the natural-language input was empty after
	// sanitization.
	ErrEmptyInput = errors.New("natural language input is empty")
)

// UnsafeQueryError indicates generated SQL failed the safety validation and
// must never be stored as executable or executed.
type UnsafeQueryError struct {
	Keyword string // offending keyword, if a deny-set keyword triggered the rejection
	Reason  string
}

func (e *UnsafeQueryError) Error() string {
	if e.Keyword != "" {
		return fmt.Sprintf("unsafe SQL rejected: statement contains %s", e.Keyword)
	}
	return "unsafe SQL rejected: " + e.Reason
}

// ExecutionTimeoutError indicates a query exceeded the bounded execution
// timeout. Distinct from ExecutionError so callers can render it separately.
type ExecutionTimeoutError struct {
	Timeout string
}

func (e *ExecutionTimeoutError) Error() string {
	return "query execution timed out after " + e.Timeout
}

// ExecutionError wraps a backend failure during query execution.
type ExecutionError struct {
	Cause error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("query execution failed: %v", e.Cause)
}

func (e *ExecutionError) Unwrap() error {
	return e.Cause
}

// CompletionError wraps a failure from the completion provider. The core does
// not retry these; they surface to the caller as a generation error.
type CompletionError struct {
	Cause error
}

func (e *CompletionError) Error() string {
	return fmt.Sprintf("completion request failed: %v", e.Cause)
}

func (e *CompletionError) Unwrap() error {
	return e.Cause
}
