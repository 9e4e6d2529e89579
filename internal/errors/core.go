package errors

import "fmt"

// Typed errors raised by the lifecycle engine. They carry enough structure
// (kind + offending entity) for the HTTP layer to render a meaningful
// message, and map onto APIError at the service boundary.

// ValidationError means the input to a transition is malformed and the
// mutation must not be applied.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation: " + e.Reason
}

// Validation creates a ValidationError.
func Validation(reason string) *ValidationError {
	return &ValidationError{Reason: reason}
}

// InvalidStateError means the attempted transition violates an invariant.
// The state is left untouched.
type InvalidStateError struct {
	Reason string
}

func (e *InvalidStateError) Error() string {
	return "invalid state: " + e.Reason
}

// InvalidState creates an InvalidStateError.
func InvalidState(reason string) *InvalidStateError {
	return &InvalidStateError{Reason: reason}
}

// NotFoundError means the direct target of a mutation does not exist.
// Lookups that only feed derivations degrade to "no match" instead.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.ID)
}

// EntityNotFound creates a NotFoundError.
func EntityNotFound(entity, id string) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}
