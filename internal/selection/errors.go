package selection

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTransition is returned when a facet value is not among the
	// currently valid options or a level above it is still unset.
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrUnknownRecord is returned when opening a record that is not in the
	// current matching set.
	ErrUnknownRecord = errors.New("unknown record")
)

// TransitionError describes a rejected facet choice. It matches
// ErrInvalidTransition under errors.Is.
type TransitionError struct {
	Level  Level
	Value  string
	Reason string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("choose %s %q: %s", e.Level, e.Value, e.Reason)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}
