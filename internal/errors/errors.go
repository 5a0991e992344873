package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// ScanFailure indicates a single file or function failed to parse.
	// Always recoverable: the scanner returns empty results for the file
	// and the run continues.
	ScanFailure ErrorCode = "SCAN_FAILURE"
	// UnknownRepository indicates a request named a repository absent
	// from the dependency graph
	UnknownRepository ErrorCode = "UNKNOWN_REPOSITORY"
	// UnknownCommit indicates a request named a commit the commit source
	// cannot resolve
	UnknownCommit ErrorCode = "UNKNOWN_COMMIT"
	// ManifestInvalid indicates the repository manifest could not be parsed
	ManifestInvalid ErrorCode = "MANIFEST_INVALID"
	// StoreFailure indicates the analysis history store failed
	StoreFailure ErrorCode = "STORE_FAILURE"
	// InternalError indicates an unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// RippleError carries a stable code alongside the message so callers can
// distinguish rejected requests (unknown repository, unknown commit) from
// recoverable conditions without string matching.
type RippleError struct {
	Code    ErrorCode
	Message string
	cause   error
}

// New creates a RippleError with the given code and message
func New(code ErrorCode, message string) *RippleError {
	return &RippleError{Code: code, Message: message}
}

// Newf creates a RippleError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *RippleError {
	return &RippleError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a RippleError wrapping an underlying cause
func Wrap(code ErrorCode, message string, cause error) *RippleError {
	return &RippleError{Code: code, Message: message, cause: cause}
}

// Error implements the error interface
func (e *RippleError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *RippleError) Unwrap() error {
	return e.cause
}

// CodeOf extracts the error code from err, or InternalError if err is not
// a RippleError.
func CodeOf(err error) ErrorCode {
	var re *RippleError
	if errors.As(err, &re) {
		return re.Code
	}
	return InternalError
}

// IsCode reports whether err carries the given code
func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}
