package domain

import "fmt"

// NotFoundError represents a missing resource.
type NotFoundError struct {
	Resource string
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// Is enables errors.Is matching on NotFoundError.
func (e NotFoundError) Is(target error) bool {
	_, ok := target.(NotFoundError)
	if ok {
		return true
	}
	_, ok = target.(*NotFoundError)
	return ok
}

// ErrNotFound is the sentinel error for missing resources.
var ErrNotFound = NotFoundError{}

// InvalidEditorError means the acting editor could not be resolved to a
// known user.
type InvalidEditorError struct {
	UserID int64
}

func (e InvalidEditorError) Error() string {
	if e.UserID == 0 {
		return "invalid editor"
	}
	return fmt.Sprintf("invalid editor %d", e.UserID)
}

func (e InvalidEditorError) Is(target error) bool {
	_, ok := target.(InvalidEditorError)
	if ok {
		return true
	}
	_, ok = target.(*InvalidEditorError)
	return ok
}

// ErrInvalidEditor is the sentinel error for unresolvable editors.
var ErrInvalidEditor = InvalidEditorError{}

// ConflictError means the backing transaction lost against a concurrent
// modification and nothing was persisted. Callers may retry.
type ConflictError struct {
	Cause string
}

func (e ConflictError) Error() string {
	if e.Cause == "" {
		return "conflict"
	}
	return fmt.Sprintf("conflict: %s", e.Cause)
}

func (e ConflictError) Is(target error) bool {
	_, ok := target.(ConflictError)
	if ok {
		return true
	}
	_, ok = target.(*ConflictError)
	return ok
}

// ErrConflict is the sentinel error for concurrent-modification failures.
var ErrConflict = ConflictError{}

// ValidationError carries a user-facing message about a malformed request.
type ValidationError struct {
	Message string
}

func (e ValidationError) Error() string {
	if e.Message == "" {
		return "invalid request"
	}
	return e.Message
}

func (e ValidationError) Is(target error) bool {
	_, ok := target.(ValidationError)
	if ok {
		return true
	}
	_, ok = target.(*ValidationError)
	return ok
}

// ErrValidation is the sentinel error for malformed requests.
var ErrValidation = ValidationError{}
