// Package errors provides the structured error type shared by the tracker
// packages. Only registry resolution and storage report errors across package
// boundaries; parsing degrades silently and validation returns results.
package errors

import (
	"errors"
	"fmt"
)

// Category classifies errors by the layer that raised them.
type Category string

const (
	CategoryParse       Category = "PARSE"
	CategoryValidation  Category = "VALIDATION"
	CategoryPersistence Category = "PERSISTENCE"
	CategoryRegistry    Category = "REGISTRY"
	CategoryInternal    Category = "INTERNAL"
)

// Error codes for each category.
const (
	// Parse codes
	CodeDegraded = "DEGRADED"

	// Validation codes
	CodeInvalidValue = "INVALID_VALUE"

	// Persistence codes
	CodeLoadFailed  = "LOAD_FAILED"
	CodeSaveFailed  = "SAVE_FAILED"
	CodeStoreClosed = "STORE_CLOSED"
	CodeNotFound    = "NOT_FOUND"

	// Registry codes
	CodeUnknownType = "UNKNOWN_TYPE"

	// Internal codes
	CodeUnexpected = "UNEXPECTED"
)

// TrackerError is the structured error type used throughout the module.
type TrackerError struct {
	Category Category
	Code     string
	Message  string
	Cause    error
}

func (e *TrackerError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Category, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Category, e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *TrackerError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches this error's category and code.
func (e *TrackerError) Is(target error) bool {
	var t *TrackerError
	if errors.As(target, &t) {
		return e.Category == t.Category && e.Code == t.Code
	}
	return false
}

// New creates a new TrackerError.
func New(category Category, code, message string) *TrackerError {
	return &TrackerError{Category: category, Code: code, Message: message}
}

// Wrap creates a new TrackerError wrapping cause.
func Wrap(category Category, code, message string, cause error) *TrackerError {
	return &TrackerError{Category: category, Code: code, Message: message, Cause: cause}
}

// GetCategory extracts the category from an error chain.
// Returns an empty string if the chain holds no TrackerError.
func GetCategory(err error) Category {
	var te *TrackerError
	if errors.As(err, &te) {
		return te.Category
	}
	return ""
}

// GetCode extracts the code from an error chain.
func GetCode(err error) string {
	var te *TrackerError
	if errors.As(err, &te) {
		return te.Code
	}
	return ""
}

// IsUnknownType reports whether err is a registry lookup failure.
func IsUnknownType(err error) bool {
	return GetCategory(err) == CategoryRegistry && GetCode(err) == CodeUnknownType
}

// IsNotFound reports whether err names a stored record that does not exist.
func IsNotFound(err error) bool {
	return GetCategory(err) == CategoryPersistence && GetCode(err) == CodeNotFound
}

// IsPersistence reports whether err came from a storage read or write.
func IsPersistence(err error) bool {
	return GetCategory(err) == CategoryPersistence
}

func NewUnknownTypeError(typeID string) *TrackerError {
	return New(CategoryRegistry, CodeUnknownType, fmt.Sprintf("unknown column type %q", typeID))
}

func NewValidationError(reason string) *TrackerError {
	return New(CategoryValidation, CodeInvalidValue, reason)
}

func NewLoadError(message string, cause error) *TrackerError {
	return Wrap(CategoryPersistence, CodeLoadFailed, message, cause)
}

func NewSaveError(message string, cause error) *TrackerError {
	return Wrap(CategoryPersistence, CodeSaveFailed, message, cause)
}

func NewNotFoundError(message string) *TrackerError {
	return New(CategoryPersistence, CodeNotFound, message)
}

func NewInternalError(message string, cause error) *TrackerError {
	return Wrap(CategoryInternal, CodeUnexpected, message, cause)
}
