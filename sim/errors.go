package sim

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidAmount is returned when progress is negative or not a number.
	ErrInvalidAmount = errors.New("invalid progress amount")
	// ErrAlreadyCompleted is returned when progress reaches a finished Source or Subject.
	ErrAlreadyCompleted = errors.New("already completed")
	// ErrAlreadyRun is returned by Engine.Run on a second call.
	ErrAlreadyRun = errors.New("simulation already run")
)

// ValidationError reports a malformed or incomplete plan configuration.
// It is always returned before the first simulated day.
type ValidationError struct {
	Constraint string
}

func (e *ValidationError) Error() string {
	return "invalid plan: " + e.Constraint
}

func validationErrorf(format string, args ...any) error {
	return &ValidationError{Constraint: fmt.Sprintf(format, args...)}
}
