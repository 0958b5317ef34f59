package topology

import (
	"errors"
	"fmt"
)

// Precondition violations. Any of these aborts the call before the live
// topology is touched.
var (
	ErrParallelSwitch     = errors.New("switch is parallel to an existing switch")
	ErrSelfLoopSwitch     = errors.New("switch connects a bus to itself")
	ErrDuplicateSwitch    = errors.New("switch name already exists")
	ErrMissingBus         = errors.New("switch endpoint bus does not exist")
	ErrUnknownSwitch      = errors.New("switch not found")
	ErrInvalidSwitch      = errors.New("invalid switch")
	ErrAlreadyInitialized = errors.New("switches already initialized")
)

var preconditions = []error{
	ErrParallelSwitch,
	ErrSelfLoopSwitch,
	ErrDuplicateSwitch,
	ErrMissingBus,
	ErrUnknownSwitch,
	ErrInvalidSwitch,
	ErrAlreadyInitialized,
}

// IsPreconditionViolation reports whether err stems from a rejected precondition.
func IsPreconditionViolation(err error) bool {
	for _, p := range preconditions {
		if errors.Is(err, p) {
			return true
		}
	}
	return false
}

// TopologyError provides structured error information for engine operations.
type TopologyError struct {
	Op      string // Operation that failed (e.g., "AddSwitch", "OpenSwitches")
	Entity  string // Entity type ("switch", "bus")
	ID      string // Entity id (if applicable)
	Cause   error
	Context string
}

// Error implements the error interface.
func (e *TopologyError) Error() string {
	msg := e.Op
	if e.Entity != "" {
		msg += " " + e.Entity
	}
	if e.ID != "" {
		msg += fmt.Sprintf(" %q", e.ID)
	}
	if e.Context != "" {
		msg += " (" + e.Context + ")"
	}
	return fmt.Sprintf("%s: %v", msg, e.Cause)
}

// Unwrap returns the underlying cause for error chain support.
func (e *TopologyError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target error matches this error's cause.
func (e *TopologyError) Is(target error) bool {
	if target == nil {
		return false
	}
	return errors.Is(e.Cause, target)
}

// ErrorBuilder provides a fluent interface for building TopologyErrors.
type ErrorBuilder struct {
	err TopologyError
}

// NewError creates a new error builder with the given operation.
func NewError(op string) *ErrorBuilder {
	return &ErrorBuilder{err: TopologyError{Op: op}}
}

// Switch sets the entity to "switch" with the given id.
func (b *ErrorBuilder) Switch(id string) *ErrorBuilder {
	b.err.Entity = "switch"
	b.err.ID = id
	return b
}

// Bus sets the entity to "bus" with the given id.
func (b *ErrorBuilder) Bus(id string) *ErrorBuilder {
	b.err.Entity = "bus"
	b.err.ID = id
	return b
}

// Context sets additional context information.
func (b *ErrorBuilder) Context(format string, args ...any) *ErrorBuilder {
	b.err.Context = fmt.Sprintf(format, args...)
	return b
}

// Cause sets the underlying error cause.
func (b *ErrorBuilder) Cause(err error) *ErrorBuilder {
	b.err.Cause = err
	return b
}

// Err returns the constructed error.
func (b *ErrorBuilder) Err() error {
	e := b.err
	return &e
}
