package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestTrackerError_Error(t *testing.T) {
	err := NewUnknownTypeError("nope@1")
	expected := `[REGISTRY:UNKNOWN_TYPE] unknown column type "nope@1"`
	if err.Error() != expected {
		t.Errorf("got %q, want %q", err.Error(), expected)
	}
}

func TestTrackerError_ErrorWithCause(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := NewSaveError("save view prefs", cause)
	expected := "[PERSISTENCE:SAVE_FAILED] save view prefs: disk full"
	if err.Error() != expected {
		t.Errorf("got %q, want %q", err.Error(), expected)
	}
	if !errors.Is(err, cause) {
		t.Error("Unwrap should allow errors.Is to find the cause")
	}
}

func TestTrackerError_Is(t *testing.T) {
	a := NewUnknownTypeError("a")
	b := NewUnknownTypeError("b")
	c := NewValidationError("bad")
	if !errors.Is(a, b) {
		t.Error("errors with same category+code should match via Is")
	}
	if errors.Is(a, c) {
		t.Error("errors with different categories should not match")
	}
}

func TestClassifiers(t *testing.T) {
	wrapped := fmt.Errorf("resolve: %w", NewUnknownTypeError("x"))
	if !IsUnknownType(wrapped) {
		t.Error("IsUnknownType should see through fmt wrapping")
	}
	if IsPersistence(wrapped) {
		t.Error("registry error is not a persistence error")
	}
	if !IsPersistence(NewLoadError("load", nil)) {
		t.Error("load error should be a persistence error")
	}
	if GetCategory(fmt.Errorf("plain")) != "" {
		t.Error("plain error should have no category")
	}
	if !IsNotFound(fmt.Errorf("get: %w", NewNotFoundError("view"))) {
		t.Error("IsNotFound should see through fmt wrapping")
	}
	if IsNotFound(NewLoadError("load", nil)) {
		t.Error("load error is not a not-found error")
	}
	if GetCode(NewInternalError("boom", nil)) != CodeUnexpected {
		t.Error("internal error should carry CodeUnexpected")
	}
}
