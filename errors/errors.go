// Package errors provides error handling for crdb.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - Hints and details for users
//   - Marks, so one error can answer errors.Is for several sentinels
//
// Usage:
//
//	// Create new error
//	err := errors.New("something went wrong")
//
//	// Wrap with context
//	if err := doSomething(); err != nil {
//	    return errors.Wrap(err, "failed to do something")
//	}
//
//	// Add hints for users
//	return errors.WithHint(err, "try increasing the timeout")
//
//	// Check errors
//	if errors.Is(err, errors.ErrInvalidOption) {
//	    // caller error, never retried
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
	Mark         = crdb.Mark
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is             = crdb.Is
	IsAny          = crdb.IsAny
	As             = crdb.As
	Unwrap         = crdb.Unwrap
	UnwrapAll      = crdb.UnwrapAll
	GetAllHints    = crdb.GetAllHints
	GetAllDetails  = crdb.GetAllDetails
	FlattenHints   = crdb.FlattenHints
	FlattenDetails = crdb.FlattenDetails
)

// GetStack is an alias for GetReportableStackTrace for convenience.
var GetStack = crdb.GetReportableStackTrace

// Sentinel errors for the crdb error taxonomy.
// Use these with errors.Is(); constructors below attach context while
// preserving the sentinel.
var (
	// ErrInvalidOption indicates a caller error: a malformed quantity, an
	// out-of-range enum or numeric option. Raised before any network access.
	ErrInvalidOption = New("invalid option")

	// ErrInvalidQuantity indicates a malformed quantity name or ratio.
	// Every ErrInvalidQuantity is also an ErrInvalidOption.
	ErrInvalidQuantity = New("invalid quantity")

	// ErrServerError indicates the service answered with a one-line error
	// message instead of data. Also an ErrInvalidOption.
	ErrServerError = New("server error")

	// ErrEmptyResponse indicates the service answered without data rows.
	// Also an ErrInvalidOption.
	ErrEmptyResponse = New("empty server response")

	// ErrMalformedRow indicates a data line does not fit the active schema
	ErrMalformedRow = New("malformed row")

	// ErrConnection indicates the service could not be reached
	ErrConnection = New("connection failed")

	// ErrTimeout indicates the service did not respond within the timeout
	ErrTimeout = New("operation timed out")

	// ErrNotFound indicates the requested resource does not exist
	ErrNotFound = New("not found")

	// ErrUnavailable indicates an optional collaborator is not configured
	ErrUnavailable = New("unavailable")
)

// IssueTracker is where users are asked to report service-side breakage.
const IssueTracker = "https://github.com/crdb-project/crdb/issues"

// NewInvalidOptionError creates an invalid-option error with a formatted message
func NewInvalidOptionError(format string, args ...interface{}) error {
	return Mark(Newf(format, args...), ErrInvalidOption)
}

// NewInvalidQuantityError creates an invalid-quantity error with a formatted message
func NewInvalidQuantityError(format string, args ...interface{}) error {
	return Mark(Mark(Newf(format, args...), ErrInvalidQuantity), ErrInvalidOption)
}

// NewServerError wraps the literal one-line message of the service.
// Error() returns msg unchanged.
func NewServerError(msg string) error {
	return Mark(Mark(New(msg), ErrServerError), ErrInvalidOption)
}

// NewEmptyResponseError reports a response without data rows
func NewEmptyResponseError() error {
	return Mark(WithStack(ErrEmptyResponse), ErrInvalidOption)
}

// NewMalformedRowError creates a malformed-row error for a 1-based line number
func NewMalformedRowError(line int, format string, args ...interface{}) error {
	return Wrapf(ErrMalformedRow, "line %d: %s", line, Newf(format, args...).Error())
}

// NewConnectionError reports that url could not be reached
func NewConnectionError(cause error, url string) error {
	err := Mark(Wrapf(cause, "could not connect to url=%s", url), ErrConnection)
	return WithHintf(err,
		"Please check if you can connect to the server with your browser. "+
			"If that works, something is wrong with url = '%s', please report this as an issue at %s",
		url, IssueTracker)
}

// NewTimeoutError reports that url did not answer within timeoutSeconds
func NewTimeoutError(url string, timeoutSeconds float64) error {
	return Wrapf(ErrTimeout, "server did not respond within timeout=%g to url=%s", timeoutSeconds, url)
}

// IsInvalidOption checks if an error is or wraps ErrInvalidOption
func IsInvalidOption(err error) bool {
	return err != nil && Is(err, ErrInvalidOption)
}

// IsTimeout checks if an error is or wraps ErrTimeout
func IsTimeout(err error) bool {
	return err != nil && Is(err, ErrTimeout)
}

// IsConnection checks if an error is or wraps ErrConnection
func IsConnection(err error) bool {
	return err != nil && Is(err, ErrConnection)
}

// IsMalformedRow checks if an error is or wraps ErrMalformedRow
func IsMalformedRow(err error) bool {
	return err != nil && Is(err, ErrMalformedRow)
}

// IsNotFoundError checks if an error is or wraps ErrNotFound
func IsNotFoundError(err error) bool {
	return err != nil && Is(err, ErrNotFound)
}
