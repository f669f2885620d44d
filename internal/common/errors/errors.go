// Package errors provides the structured error type shared by the bridge,
// the remote API client, the stores and the delivery providers.
package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeNotificationFetchFailed ErrorCode = "NOTIFICATION_FETCH_FAILED"
	ErrCodeNotificationParseFailed ErrorCode = "NOTIFICATION_PARSE_FAILED"

	ErrCodeLedgerLoadFailed ErrorCode = "LEDGER_LOAD_FAILED"
	ErrCodeLedgerSaveFailed ErrorCode = "LEDGER_SAVE_FAILED"

	ErrCodeEmailValidationFailed ErrorCode = "EMAIL_VALIDATION_FAILED"
	ErrCodeEmailSendFailed       ErrorCode = "EMAIL_SEND_FAILED"

	ErrCodeAPIRequestFailed     ErrorCode = "API_REQUEST_FAILED"
	ErrCodeAuthenticationFailed ErrorCode = "AUTHENTICATION_FAILED"

	ErrCodeSessionStoreFailed ErrorCode = "SESSION_STORE_FAILED"
	ErrCodeSessionNotFound    ErrorCode = "SESSION_NOT_FOUND"
	ErrCodeSessionInvalid     ErrorCode = "SESSION_INVALID"

	ErrCodeAuditFailed   ErrorCode = "AUDIT_FAILED"
	ErrCodeInternalError ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Err       error                  `json:"-"`
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.Err
}

// WithMetadata attaches a key/value pair and returns the same error.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

func newError(code ErrorCode, message string, err error, retryable bool) *StandardError {
	details := ""
	if err != nil {
		details = err.Error()
	}
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		Err:       err,
	}
}

// NewNotificationFetchFailedError is returned when the notification feed
// cannot be retrieved. The next poll retries it.
func NewNotificationFetchFailedError(userID string, err error) *StandardError {
	return newError(ErrCodeNotificationFetchFailed, "Failed to fetch notifications", err, true).
		WithMetadata("userId", userID)
}

// NewNotificationParseFailedError is returned when the feed body does not
// decode or does not match the feed schema.
func NewNotificationParseFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationParseFailed,
		Message:   "Notification feed could not be parsed",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewLedgerLoadFailedError(userID string, err error) *StandardError {
	return newError(ErrCodeLedgerLoadFailed, "Failed to load sent-notification ledger", err, true).
		WithMetadata("userId", userID)
}

func NewLedgerSaveFailedError(userID string, err error) *StandardError {
	return newError(ErrCodeLedgerSaveFailed, "Failed to persist sent-notification ledger", err, true).
		WithMetadata("userId", userID)
}

// NewEmailValidationFailedError is not retryable: the same input fails again.
func NewEmailValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeEmailValidationFailed,
		Message:   "Email validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewEmailSendFailedError(provider string, err error) *StandardError {
	return newError(ErrCodeEmailSendFailed, "Failed to send email", err, true).
		WithMetadata("provider", provider)
}

// NewAPIRequestFailedError maps a non-2xx response or transport failure.
// 5xx and 429 responses, and transport errors (status 0), are retryable.
func NewAPIRequestFailedError(method, path string, status int, err error) *StandardError {
	retryable := status == 0 || status >= 500 || status == 429
	e := newError(ErrCodeAPIRequestFailed, fmt.Sprintf("%s %s failed", method, path), err, retryable)
	if status != 0 {
		e.WithMetadata("status", status)
	}
	return e
}

func NewAuthenticationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAuthenticationFailed,
		Message:   "Authentication failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewSessionStoreFailedError(err error) *StandardError {
	return newError(ErrCodeSessionStoreFailed, "Session store operation failed", err, true)
}

func NewSessionNotFoundError(userID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSessionNotFound,
		Message:   "Session not found",
		Details:   fmt.Sprintf("userId: %s", userID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSessionInvalidError rejects a user record a bridge cannot run for.
func NewSessionInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSessionInvalid,
		Message:   "Invalid session user",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewAuditFailedError(err error) *StandardError {
	return newError(ErrCodeAuditFailed, "Failed to record dispatch audit entry", err, true)
}

// ==========================
// Utility Functions
// ==========================

// AsStandardError unwraps err looking for a *StandardError.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// HasCode reports whether err carries the given code anywhere in its chain.
func HasCode(err error, code ErrorCode) bool {
	stdErr, ok := AsStandardError(err)
	return ok && stdErr.Code == code
}

// IsRetryable reports whether err is worth retrying on the next cycle.
// Errors that are not StandardErrors are treated as retryable.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if stdErr, ok := AsStandardError(err); ok {
		return stdErr.Retryable
	}
	return true
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.HasPrefix(codeStr, "NOTIFICATION"):
		return "FEED"
	case strings.HasPrefix(codeStr, "LEDGER"):
		return "LEDGER"
	case strings.HasPrefix(codeStr, "EMAIL"):
		return "DELIVERY"
	case strings.HasPrefix(codeStr, "API") || strings.HasPrefix(codeStr, "AUTHENTICATION"):
		return "REMOTE_API"
	case strings.HasPrefix(codeStr, "SESSION"):
		return "SESSION"
	default:
		return "OTHER"
	}
}
