package apperrors

import "fmt"

// ValidationError is caller input the pipeline refuses to act on: an
// unknown template placeholder, an empty rejection note. Never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func NewValidation(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// ProviderError wraps a failure from an external capability (content
// generation, media storage, publish platform). Jobs failing with it are
// eligible for the queue's retry policy.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s provider: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

func NewProvider(provider string, err error) error {
	return &ProviderError{Provider: provider, Err: err}
}

// TimeoutError marks a long-running provider operation that exceeded its
// max wait. Handled the same way as ProviderError.
type TimeoutError struct {
	Provider string
	Op       string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s: %s timed out", e.Provider, e.Op)
}

// QuotaExceededError means the user hit their tier's monthly post limit.
// Skipped with a log, not a system failure.
type QuotaExceededError struct {
	UserID int64
	Limit  int
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("user %d reached monthly limit of %d posts", e.UserID, e.Limit)
}

// SkipError marks a race-guard no-op: the weekly record is already
// completed, or an item is no longer in the expected status when a job
// fires. Logged at info level, never retried.
type SkipError struct {
	Reason string
}

func (e *SkipError) Error() string { return e.Reason }

func NewSkip(reason string) error {
	return &SkipError{Reason: reason}
}
