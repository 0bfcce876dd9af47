// Package errors provides the error definitions shared by the timeline
// packages: sentinel errors, a dependency-edit error type carrying the edge
// that was rejected, and classification helpers.
//
// # Usage
//
//	err := errors.NewDependencyError("add", "a", "b", errors.ErrCycle)
//
//	if errors.Is(err, errors.ErrCycle) { ... }
//
//	var depErr *errors.DependencyError
//	if errors.As(err, &depErr) { ... }
//
//	if errors.IsUserFacing(err) { showNotice(err) }
//
// # Classification
//
// User-facing errors are advisory: they are shown as a notice and leave the
// timeline interactive. Everything else is an internal error.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Re-export standard library functions so callers only import this package.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Dependency edit sentinel errors
var (
	// ErrCycle indicates that a dependency edge would close a cycle.
	ErrCycle = New("dependency would create a cycle")
	// ErrDuplicateEdge indicates that the dependency edge already exists.
	ErrDuplicateEdge = New("dependency already exists")
	// ErrSelfDependency indicates an edge from a task to itself.
	ErrSelfDependency = New("task cannot depend on itself")
	// ErrEdgeNotFound indicates removal of an edge that does not exist.
	ErrEdgeNotFound = New("dependency not found")
)

// Task and gesture sentinel errors
var (
	// ErrTaskNotFound indicates an unknown task id.
	ErrTaskNotFound = New("task not found")
	// ErrGestureActive indicates a pointer-down while another gesture is in progress.
	ErrGestureActive = New("another gesture is already in progress")
	// ErrNoGesture indicates a move/up/cancel without an active gesture.
	ErrNoGesture = New("no gesture in progress")
	// ErrNoDates indicates a drag on a task that has neither a start nor a due date.
	ErrNoDates = New("task has no dates")
)

// Document sentinel errors
var (
	// ErrInvalidDate indicates a date string that could not be parsed.
	ErrInvalidDate = New("invalid date")
	// ErrDocumentInvalid indicates a task document that could not be decoded.
	ErrDocumentInvalid = New("invalid task document")
	// ErrUnsupportedFormat indicates a document extension with no codec.
	ErrUnsupportedFormat = New("unsupported document format")
)

// DependencyError describes a rejected dependency edit.
type DependencyError struct {
	Op       string // "add" or "remove"
	SourceID string // predecessor
	TargetID string // successor (the task whose depends_on changes)
	Err      error
}

// NewDependencyError creates a DependencyError.
func NewDependencyError(op, sourceID, targetID string, err error) *DependencyError {
	return &DependencyError{Op: op, SourceID: sourceID, TargetID: targetID, Err: err}
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("%s dependency %s -> %s: %v", e.Op, e.SourceID, e.TargetID, e.Err)
}

func (e *DependencyError) Unwrap() error {
	return e.Err
}

// ValidationError represents an invalid input value.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

// NewValidationError creates a ValidationError.
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []*ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:\n", len(e))
	for i, err := range e {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}

// IsUserFacing reports whether err is an advisory error that should be shown
// to the user as a notice rather than treated as a failure.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	for _, target := range []error{
		ErrCycle, ErrDuplicateEdge, ErrSelfDependency, ErrEdgeNotFound,
		ErrGestureActive, ErrNoDates,
	} {
		if Is(err, target) {
			return true
		}
	}
	var ve *ValidationError
	return As(err, &ve)
}

// UserMessage returns a short message suitable for a notice.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case Is(err, ErrCycle):
		return "Cannot add dependency: it would create a circular dependency"
	case Is(err, ErrDuplicateEdge):
		return "This dependency already exists"
	case Is(err, ErrSelfDependency):
		return "A task cannot depend on itself"
	case Is(err, ErrEdgeNotFound):
		return "That dependency no longer exists"
	case Is(err, ErrGestureActive):
		return "Finish the current drag first"
	case Is(err, ErrNoDates):
		return "Set a start or due date before dragging this task"
	default:
		return err.Error()
	}
}
