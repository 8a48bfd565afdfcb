package service

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrScheduleNotFound is returned when an operation references an unknown schedule id.
	ErrScheduleNotFound = errors.New("schedule not found")
	// ErrExecutionNotFound is returned when an execution history id is unknown.
	ErrExecutionNotFound = errors.New("execution not found")
	// ErrStoreUnavailable marks a tick that was skipped because the store could not be read.
	ErrStoreUnavailable = errors.New("schedule store unavailable")
	// ErrScheduleConflict is returned when a schedule kept changing underneath an update.
	ErrScheduleConflict = errors.New("schedule was modified concurrently, retry the request")
	// ErrScheduleNotRunnable is returned by RunNow for disabled or exhausted schedules.
	ErrScheduleNotRunnable = errors.New("schedule is disabled or exhausted")
)

// Violation is one failed validation rule.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every rule a schedule definition violated.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		msgs = append(msgs, v.Message)
	}
	return fmt.Sprintf("invalid schedule: %s", strings.Join(msgs, "; "))
}

func (e *ValidationError) add(field, format string, args ...interface{}) {
	e.Violations = append(e.Violations, Violation{Field: field, Message: fmt.Sprintf(format, args...)})
}

// Has reports whether a violation was recorded for field.
func (e *ValidationError) Has(field string) bool {
	for _, v := range e.Violations {
		if v.Field == field {
			return true
		}
	}
	return false
}
