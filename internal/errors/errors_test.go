package errors

import (
	"errors"
	"fmt"
	"testing"
)

// -----------------------------------------------------------------------------
// Severity Tests
// -----------------------------------------------------------------------------

func TestSeverity_String(t *testing.T) {
	tests := []struct {
		severity Severity
		want     string
	}{
		{SeverityDebug, "debug"},
		{SeverityInfo, "info"},
		{SeverityWarning, "warning"},
		{SeverityError, "error"},
		{SeverityCritical, "critical"},
		{Severity(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.severity.String(); got != tt.want {
				t.Errorf("Severity.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

// -----------------------------------------------------------------------------
// RemoteOperationError Tests
// -----------------------------------------------------------------------------

func TestNewRemoteOperationError(t *testing.T) {
	err := NewRemoteOperationError(OpUpdate, ErrTaskNotFound)

	if err.Op != OpUpdate {
		t.Errorf("Op = %q, want %q", err.Op, OpUpdate)
	}
	if err.Severity() != SeverityError {
		t.Errorf("Severity() = %v, want %v", err.Severity(), SeverityError)
	}
	if err.IsRetryable() {
		t.Error("IsRetryable() = true, want false")
	}
	if !err.IsUserFacing() {
		t.Error("IsUserFacing() = false, want true")
	}
}

func TestRemoteOperationError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *RemoteOperationError
		want string
	}{
		{
			name: "bare",
			err:  NewRemoteOperationError(OpCreate, nil),
			want: "create failed",
		},
		{
			name: "with cause",
			err:  NewRemoteOperationError(OpDelete, ErrTaskNotFound),
			want: "delete failed: task not found",
		},
		{
			name: "with context",
			err:  NewRemoteOperationError(OpUpdate, ErrStoreClosed).WithTaskID("abc").WithBackend("file"),
			want: "update failed [task=abc, backend=file]: store closed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRemoteOperationError_Is(t *testing.T) {
	err := NewRemoteOperationError(OpDelete, ErrTaskNotFound).WithTaskID("x")
	wrapped := fmt.Errorf("remove: %w", err)

	if !Is(wrapped, ErrTaskNotFound) {
		t.Error("expected wrapped error to match ErrTaskNotFound")
	}
	if !Is(wrapped, &RemoteOperationError{}) {
		t.Error("expected wrapped error to match *RemoteOperationError")
	}
	if Is(wrapped, ErrStoreClosed) {
		t.Error("did not expect match with ErrStoreClosed")
	}

	var remoteErr *RemoteOperationError
	if !As(wrapped, &remoteErr) {
		t.Fatal("As() failed")
	}
	if remoteErr.TaskID != "x" {
		t.Errorf("TaskID = %q, want %q", remoteErr.TaskID, "x")
	}
}

// -----------------------------------------------------------------------------
// SubscriptionError Tests
// -----------------------------------------------------------------------------

func TestSubscriptionError(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewSubscriptionError("receive failed", cause).WithBackend("redis").WithCollection("todos")

	want := "subscription error [backend=redis, collection=todos]: receive failed: connection reset"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !Is(err, cause) {
		t.Error("expected error to match its cause")
	}
	if err.IsUserFacing() {
		t.Error("IsUserFacing() = true, want false")
	}
	if !err.IsRetryable() {
		t.Error("IsRetryable() = false, want true")
	}
}

// -----------------------------------------------------------------------------
// Semantic Error Tests
// -----------------------------------------------------------------------------

func TestNotFoundError(t *testing.T) {
	err := NewNotFoundError("task", "abc123")

	if got, want := err.Error(), "task 'abc123' not found"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !Is(err, ErrTaskNotFound) {
		t.Error("task NotFoundError should match ErrTaskNotFound")
	}
	if Is(NewNotFoundError("collection", "todos"), ErrTaskNotFound) {
		t.Error("collection NotFoundError should not match ErrTaskNotFound")
	}
	if !IsNotFound(NewRemoteOperationError(OpUpdate, err)) {
		t.Error("IsNotFound() should see through RemoteOperationError")
	}
}

func TestValidationError(t *testing.T) {
	tests := []struct {
		name string
		err  *ValidationError
		want string
	}{
		{
			name: "message only",
			err:  NewValidationError("title is required"),
			want: "validation error: title is required",
		},
		{
			name: "with field",
			err:  NewValidationError("title is required").WithField("title"),
			want: "validation error [field=title]: title is required",
		},
		{
			name: "with field and value",
			err:  NewValidationError("unknown priority").WithField("priority").WithValue("urgent"),
			want: "validation error [field=priority, value=urgent]: unknown priority",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
			if !Is(tt.err, ErrInvalidInput) {
				t.Error("ValidationError should match ErrInvalidInput")
			}
		})
	}

	if got := NewValidationError("too long").WithField("title").Message(); got != "too long" {
		t.Errorf("Message() = %q, want %q", got, "too long")
	}
}

// -----------------------------------------------------------------------------
// Classification Helper Tests
// -----------------------------------------------------------------------------

func TestClassificationHelpers(t *testing.T) {
	plain := errors.New("boom")

	tests := []struct {
		name       string
		err        error
		retryable  bool
		userFacing bool
		severity   Severity
	}{
		{"nil", nil, false, false, SeverityDebug},
		{"plain", plain, false, false, SeverityError},
		{"remote", NewRemoteOperationError(OpCreate, plain), false, true, SeverityError},
		{"remote retryable", NewRemoteOperationError(OpCreate, plain).WithRetryable(true), true, true, SeverityError},
		{"subscription", NewSubscriptionError("watch failed", plain), true, false, SeverityError},
		{"validation", NewValidationError("bad"), false, true, SeverityWarning},
		{"wrapped", Wrap(NewValidationError("bad"), "submit"), false, true, SeverityWarning},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.retryable {
				t.Errorf("IsRetryable() = %v, want %v", got, tt.retryable)
			}
			if got := IsUserFacing(tt.err); got != tt.userFacing {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.userFacing)
			}
			if got := GetSeverity(tt.err); got != tt.severity {
				t.Errorf("GetSeverity() = %v, want %v", got, tt.severity)
			}
		})
	}
}

func TestWrap(t *testing.T) {
	if Wrap(nil, "x") != nil {
		t.Error("Wrap(nil) should return nil")
	}
	if Wrapf(nil, "x %d", 1) != nil {
		t.Error("Wrapf(nil) should return nil")
	}

	err := Wrapf(ErrStoreClosed, "open %s", "todos")
	if got, want := err.Error(), "open todos: store closed"; got != want {
		t.Errorf("Wrapf() = %q, want %q", got, want)
	}
	if !Is(err, ErrStoreClosed) {
		t.Error("Wrapf() should preserve the chain")
	}
}
