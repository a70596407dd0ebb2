package board

import (
	"errors"
	"fmt"
	"strings"

	"task-board/internal/models"
)

var (
	// ErrTaskNotFound is returned when a task id is not in the current snapshot.
	ErrTaskNotFound = errors.New("task not found")
	// ErrIllegalTransition matches every TransitionError.
	ErrIllegalTransition = errors.New("illegal status transition")
	// ErrNotConfigured matches every ConfigurationError.
	ErrNotConfigured = errors.New("document store is not configured")
)

// ValidationError is a local input error detected before any store call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// AdapterError wraps a failure reported by the document store.
type AdapterError struct {
	Op  string
	Err error
}

func (e *AdapterError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *AdapterError) Unwrap() error { return e.Err }

// ConfigurationError means no document store is available at all.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Reason == "" {
		return ErrNotConfigured.Error()
	}
	return fmt.Sprintf("%s: %s", ErrNotConfigured, e.Reason)
}

func (e *ConfigurationError) Is(target error) bool { return target == ErrNotConfigured }

// TransitionError rejects an operation the task's current status does not allow.
type TransitionError struct {
	TaskID string
	Op     string
	From   models.TaskStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s task %s: status is %s", e.Op, e.TaskID, e.From)
}

func (e *TransitionError) Is(target error) bool { return target == ErrIllegalTransition }

// DecodeError reports a raw document that could not be normalized.
type DecodeError struct {
	Collection string
	ID         string
	Problems   []string
}

func (e *DecodeError) Error() string {
	id := e.ID
	if id == "" {
		id = "<no id>"
	}
	return fmt.Sprintf("decode %s/%s: %s", e.Collection, id, strings.Join(e.Problems, "; "))
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsAdapter reports whether err is an AdapterError.
func IsAdapter(err error) bool {
	var a *AdapterError
	return errors.As(err, &a)
}
