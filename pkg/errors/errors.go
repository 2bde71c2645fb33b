package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrNotFound     ErrorCode = "NOT_FOUND"

	// Platform integration errors
	ErrUnsupportedPlatform  ErrorCode = "UNSUPPORTED_PLATFORM"
	ErrMetadataUnresolvable ErrorCode = "METADATA_UNRESOLVABLE"
	ErrAccessDenied         ErrorCode = "ACCESS_DENIED"
	ErrInvalidApplication   ErrorCode = "INVALID_APPLICATION"
	ErrPlatformFailure      ErrorCode = "PLATFORM_FAILURE"
	ErrPartialSync          ErrorCode = "PARTIAL_SYNC"

	// Lifecycle errors
	ErrNothingToRemove   ErrorCode = "NOTHING_TO_REMOVE"
	ErrAlreadyExists     ErrorCode = "ALREADY_EXISTS"
	ErrInvalidTransition ErrorCode = "INVALID_TRANSITION"
	ErrOfferInUse        ErrorCode = "OFFER_IN_USE"

	// Store errors
	ErrStoreLoad  ErrorCode = "STORE_LOAD"
	ErrStoreSave  ErrorCode = "STORE_SAVE"
	ErrStoreParse ErrorCode = "STORE_PARSE"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"
)

// DibsError represents a structured error with code and details
type DibsError struct {
	Code    ErrorCode
	Message string
	Hint    string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *DibsError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *DibsError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *DibsError) Is(target error) bool {
	var targetErr *DibsError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new DibsError with the given code and message
func New(code ErrorCode, message string) *DibsError {
	return &DibsError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new DibsError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *DibsError {
	return &DibsError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a DibsError
func Wrap(err error, code ErrorCode, message string) *DibsError {
	if err == nil {
		return nil
	}
	return &DibsError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *DibsError {
	if err == nil {
		return nil
	}
	return &DibsError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *DibsError) WithDetail(key string, value interface{}) *DibsError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithHint attaches a recovery hint shown to the user alongside the message
func (e *DibsError) WithHint(hint string) *DibsError {
	e.Hint = hint
	return e
}

// IsCode checks if an error has a specific error code
func IsCode(err error, code ErrorCode) bool {
	var dibsErr *DibsError
	if errors.As(err, &dibsErr) {
		return dibsErr.Code == code
	}
	return false
}

// CodeOf returns the error code from an error, or ErrUnknown if not a DibsError
func CodeOf(err error) ErrorCode {
	var dibsErr *DibsError
	if errors.As(err, &dibsErr) {
		return dibsErr.Code
	}
	return ErrUnknown
}

// HintOf returns the recovery hint from an error, or "" when none is attached
func HintOf(err error) string {
	var dibsErr *DibsError
	if errors.As(err, &dibsErr) {
		return dibsErr.Hint
	}
	return ""
}

// DetailsOf returns the details from an error, or nil if not a DibsError
func DetailsOf(err error) map[string]interface{} {
	var dibsErr *DibsError
	if errors.As(err, &dibsErr) {
		return dibsErr.Details
	}
	return nil
}
