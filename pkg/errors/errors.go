// Package errors provides structured error types for cdnm.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the extractor, updater and CLI
//   - Machine-readable error codes for programmatic handling
//   - Per-package attribution of resolver failures
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures
//   - *_NOT_FOUND: Resource not found
//   - RESOLVER_*: Version resolution failures
//   - MALFORMED_* / CONFLICTING_*: Document extraction failures
//
// # Usage
//
//	err := errors.New(errors.ErrCodeConflictingVersions, "%s must not have multiple versions", name)
//	if errors.Is(err, errors.ErrCodeConflictingVersions) {
//	    // Handle conflict
//	}
//
//	// Wrap existing errors and attribute them to a package
//	err := errors.ForPackage(name, errors.Wrap(errors.ErrCodeResolverUnavailable, origErr, "resolve %s", name))
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput   Code = "INVALID_INPUT"
	ErrCodeInvalidPackage Code = "INVALID_PACKAGE"
	ErrCodeInvalidPath    Code = "INVALID_PATH"
	ErrCodeInvalidConfig  Code = "INVALID_CONFIG"
	ErrCodeInvalidVersion Code = "INVALID_VERSION"
	ErrCodeInvalidFormat  Code = "INVALID_FORMAT"

	// Extraction errors
	ErrCodeMalformedReference  Code = "MALFORMED_REFERENCE"
	ErrCodeConflictingVersions Code = "CONFLICTING_VERSIONS"

	// Resolution errors
	ErrCodePackageNotFound     Code = "PACKAGE_NOT_FOUND"
	ErrCodeResolverUnavailable Code = "RESOLVER_UNAVAILABLE"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Package string // Package the error applies to (optional)
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// ForPackage attributes err to the named package.
// If err is already an *Error it is annotated in place; otherwise it is
// wrapped as RESOLVER_UNAVAILABLE, the catch-all for resolution failures.
// Returns nil if err is nil.
func ForPackage(name string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		if e.Package == "" {
			e.Package = name
		}
		return err
	}
	return &Error{
		Code:    ErrCodeResolverUnavailable,
		Message: fmt.Sprintf("resolve %s", name),
		Package: name,
		Cause:   err,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// PackageOf returns the package an error was attributed to, or "".
func PackageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Package
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Cause != nil {
			return fmt.Sprintf("%s: %v", e.Message, e.Cause)
		}
		return e.Message
	}
	return err.Error()
}
