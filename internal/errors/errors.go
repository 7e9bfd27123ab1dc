// Package errors provides centralized error definitions and error handling utilities
// for taskboard. It defines the error taxonomy shared by the store backends, the
// form controller and the user interfaces, plus classification helpers.
//
// # Error Types
//
// Domain-specific errors represent failures at the store boundary:
//   - RemoteOperationError: a create, update or delete call against the store failed
//   - SubscriptionError: the push channel of a subscription failed
//
// Semantic errors represent common error conditions:
//   - NotFoundError: resource not found
//   - ValidationError: invalid user input, carries the offending field
//
// # Usage
//
// Creating errors:
//
//	err := errors.NewRemoteOperationError(errors.OpUpdate, cause).WithTaskID(id)
//	err := errors.NewValidationError("title is required").WithField("title")
//
// Checking errors:
//
//	if errors.Is(err, errors.ErrTaskNotFound) { ... }
//
//	var remoteErr *errors.RemoteOperationError
//	if errors.As(err, &remoteErr) { ... }
//
//	if errors.IsUserFacing(err) { ... }
//
// # Error Classification
//
// Errors can be classified by severity and behavior:
//   - Retryable: transient errors that may succeed on retry
//   - UserFacing: errors safe to display to users (vs internal errors)
//   - Severity: Debug, Info, Warning, Error, Critical
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Severity represents the severity level of an error.
type Severity int

const (
	// SeverityDebug is for errors that are useful for debugging but not critical.
	SeverityDebug Severity = iota
	// SeverityInfo is for informational errors that don't indicate a problem.
	SeverityInfo
	// SeverityWarning is for errors that might indicate a problem but aren't critical.
	SeverityWarning
	// SeverityError is for errors that indicate a real problem.
	SeverityError
	// SeverityCritical is for errors that require immediate attention.
	SeverityCritical
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

// Store-related sentinel errors
var (
	// ErrTaskNotFound indicates that no record exists for the given task ID.
	ErrTaskNotFound = New("task not found")
	// ErrStoreClosed indicates that the store has been closed.
	ErrStoreClosed = New("store closed")
	// ErrCorruptRecord indicates that a stored record could not be decoded.
	ErrCorruptRecord = New("corrupt task record")
	// ErrUnknownBackend indicates a store backend name that is not supported.
	ErrUnknownBackend = New("unknown store backend")
)

// General sentinel errors
var (
	// ErrInvalidInput indicates that input validation failed.
	ErrInvalidInput = New("invalid input")
	// ErrCanceled indicates that an operation was canceled.
	ErrCanceled = New("operation canceled")
)

// -----------------------------------------------------------------------------
// Base Error Interface
// -----------------------------------------------------------------------------

// TaskboardError is the base interface for all taskboard errors.
// It extends the standard error interface with additional methods for
// error handling and classification.
type TaskboardError interface {
	error

	// Unwrap returns the underlying error, if any.
	Unwrap() error

	// Is reports whether this error matches the target error.
	Is(target error) bool

	// Severity returns the severity level of this error.
	Severity() Severity

	// IsRetryable returns true if the error is transient and the operation
	// may succeed on retry.
	IsRetryable() bool

	// IsUserFacing returns true if the error message is safe to display
	// to end users.
	IsUserFacing() bool
}

// -----------------------------------------------------------------------------
// Base Error Implementation
// -----------------------------------------------------------------------------

type baseError struct {
	message    string
	cause      error
	severity   Severity
	retryable  bool
	userFacing bool
}

func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

func (e *baseError) Unwrap() error {
	return e.cause
}

func (e *baseError) Is(target error) bool {
	if e.cause != nil {
		return errors.Is(e.cause, target)
	}
	return false
}

func (e *baseError) Severity() Severity {
	return e.severity
}

func (e *baseError) IsRetryable() bool {
	return e.retryable
}

func (e *baseError) IsUserFacing() bool {
	return e.userFacing
}

// -----------------------------------------------------------------------------
// Domain-Specific Errors
// -----------------------------------------------------------------------------

// Op names a mutating store operation.
type Op string

// Store operations reported by RemoteOperationError.
const (
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// RemoteOperationError represents a failed create, update or delete call.
// The initiating caller is responsible for reporting it to the user.
//
// Example:
//
//	err := errors.NewRemoteOperationError(errors.OpDelete, errors.ErrTaskNotFound).WithTaskID("abc")
//	fmt.Println(err) // "delete failed [task=abc]: task not found"
type RemoteOperationError struct {
	baseError
	Op      Op
	TaskID  string
	Backend string
}

// NewRemoteOperationError creates a new RemoteOperationError for op.
func NewRemoteOperationError(op Op, cause error) *RemoteOperationError {
	return &RemoteOperationError{
		baseError: baseError{
			message:    fmt.Sprintf("%s failed", op),
			cause:      cause,
			severity:   SeverityError,
			retryable:  false,
			userFacing: true,
		},
		Op: op,
	}
}

// WithTaskID adds the task ID to the error context.
func (e *RemoteOperationError) WithTaskID(id string) *RemoteOperationError {
	e.TaskID = id
	return e
}

// WithBackend adds the store backend name to the error context.
func (e *RemoteOperationError) WithBackend(backend string) *RemoteOperationError {
	e.Backend = backend
	return e
}

// WithRetryable sets whether the error is retryable.
func (e *RemoteOperationError) WithRetryable(r bool) *RemoteOperationError {
	e.retryable = r
	return e
}

// Error returns the formatted error message.
func (e *RemoteOperationError) Error() string {
	var parts []string
	if e.TaskID != "" {
		parts = append(parts, fmt.Sprintf("task=%s", e.TaskID))
	}
	if e.Backend != "" {
		parts = append(parts, fmt.Sprintf("backend=%s", e.Backend))
	}

	prefix := e.message
	if len(parts) > 0 {
		prefix = fmt.Sprintf("%s [%s]", e.message, strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %v", prefix, e.cause)
	}
	return prefix
}

// Is checks if this error matches the target.
func (e *RemoteOperationError) Is(target error) bool {
	if _, ok := target.(*RemoteOperationError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// SubscriptionError represents a failure on a subscription push channel.
// It is logged and does not tear the channel down.
type SubscriptionError struct {
	baseError
	Backend    string
	Collection string
}

// NewSubscriptionError creates a new SubscriptionError.
func NewSubscriptionError(message string, cause error) *SubscriptionError {
	return &SubscriptionError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityError,
			retryable:  true,
			userFacing: false,
		},
	}
}

// WithBackend adds the store backend name to the error context.
func (e *SubscriptionError) WithBackend(backend string) *SubscriptionError {
	e.Backend = backend
	return e
}

// WithCollection adds the collection name to the error context.
func (e *SubscriptionError) WithCollection(name string) *SubscriptionError {
	e.Collection = name
	return e
}

// Error returns the formatted error message.
func (e *SubscriptionError) Error() string {
	var parts []string
	if e.Backend != "" {
		parts = append(parts, fmt.Sprintf("backend=%s", e.Backend))
	}
	if e.Collection != "" {
		parts = append(parts, fmt.Sprintf("collection=%s", e.Collection))
	}

	prefix := "subscription error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("subscription error [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *SubscriptionError) Is(target error) bool {
	if _, ok := target.(*SubscriptionError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Semantic Errors
// -----------------------------------------------------------------------------

// NotFoundError represents a resource that could not be found.
//
// Example:
//
//	err := errors.NewNotFoundError("task", "abc123")
//	fmt.Println(err) // "task 'abc123' not found"
type NotFoundError struct {
	baseError
	ResourceType string
	ResourceID   string
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(resourceType, resourceID string) *NotFoundError {
	return &NotFoundError{
		baseError: baseError{
			message:    fmt.Sprintf("%s '%s' not found", resourceType, resourceID),
			severity:   SeverityWarning,
			retryable:  false,
			userFacing: true,
		},
		ResourceType: resourceType,
		ResourceID:   resourceID,
	}
}

// WithCause adds a cause to the error.
func (e *NotFoundError) WithCause(cause error) *NotFoundError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *NotFoundError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s '%s' not found: %v", e.ResourceType, e.ResourceID, e.cause)
	}
	return fmt.Sprintf("%s '%s' not found", e.ResourceType, e.ResourceID)
}

// Is checks if this error matches the target. Task lookups also match
// ErrTaskNotFound.
func (e *NotFoundError) Is(target error) bool {
	if _, ok := target.(*NotFoundError); ok {
		return true
	}
	if e.ResourceType == "task" && target == ErrTaskNotFound {
		return true
	}
	return e.baseError.Is(target)
}

// ValidationError represents invalid user input for a single field.
//
// Example:
//
//	err := errors.NewValidationError("title must be 100 characters or fewer").WithField("title")
type ValidationError struct {
	baseError
	Field string
	Value any
}

// NewValidationError creates a new ValidationError.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{
		baseError: baseError{
			message:    message,
			severity:   SeverityWarning,
			retryable:  false,
			userFacing: true,
		},
	}
}

// WithField adds a field name to the error context.
func (e *ValidationError) WithField(field string) *ValidationError {
	e.Field = field
	return e
}

// WithValue adds the invalid value to the error context.
func (e *ValidationError) WithValue(value any) *ValidationError {
	e.Value = value
	return e
}

// WithCause adds a cause to the error.
func (e *ValidationError) WithCause(cause error) *ValidationError {
	e.cause = cause
	return e
}

// Message returns the bare message without field context, suitable for
// rendering next to the field.
func (e *ValidationError) Message() string {
	return e.message
}

// Error returns the formatted error message.
func (e *ValidationError) Error() string {
	var parts []string
	if e.Field != "" {
		parts = append(parts, fmt.Sprintf("field=%s", e.Field))
	}
	if e.Value != nil {
		parts = append(parts, fmt.Sprintf("value=%v", e.Value))
	}

	prefix := "validation error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("validation error [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *ValidationError) Is(target error) bool {
	if _, ok := target.(*ValidationError); ok {
		return true
	}
	if errors.Is(target, ErrInvalidInput) {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Error Classification Helpers
// -----------------------------------------------------------------------------

// IsRetryable returns true if the error represents a transient condition
// that may succeed on retry.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var tbErr TaskboardError
	if As(err, &tbErr) {
		return tbErr.IsRetryable()
	}
	return false
}

// IsUserFacing returns true if the error message is safe to display to end users.
//
// Example:
//
//	if errors.IsUserFacing(err) {
//	    showNotice(err.Error())
//	} else {
//	    showNotice("An internal error occurred")
//	    log.Error("internal error", "err", err)
//	}
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}

	var tbErr TaskboardError
	if As(err, &tbErr) {
		return tbErr.IsUserFacing()
	}
	return false
}

// GetSeverity returns the severity level of the error.
// Returns SeverityError for errors that don't implement TaskboardError.
func GetSeverity(err error) Severity {
	if err == nil {
		return SeverityDebug
	}

	var tbErr TaskboardError
	if As(err, &tbErr) {
		return tbErr.Severity()
	}
	return SeverityError
}

// IsNotFound reports whether err describes a missing task record.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	var notFound *NotFoundError
	return Is(err, ErrTaskNotFound) || As(err, &notFound)
}

// -----------------------------------------------------------------------------
// Convenience Constructors
// -----------------------------------------------------------------------------

// Wrap wraps an error with additional context message.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted context message.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
