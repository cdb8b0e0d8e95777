package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyInput is returned for blank or whitespace-only lines.
	ErrEmptyInput = errors.New("empty input")

	// ErrUnknownCommand is returned when the first token is not a recognized command name.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrMissingArgument is returned when move or reverse has no distance.
	ErrMissingArgument = errors.New("missing argument")

	// ErrBadNumber is returned when a distance is not an integer.
	ErrBadNumber = errors.New("bad number format")

	// ErrOutOfRange is returned when a distance falls outside [MinDistance, MaxDistance].
	ErrOutOfRange = errors.New("distance out of range")

	// ErrPersistence wraps every save/load failure.
	ErrPersistence = errors.New("persistence failure")
)

var (
	// ErrScriptNotFound is returned when a named script does not exist in the store.
	ErrScriptNotFound = errors.New("script not found")

	// ErrImageNotFound is returned when a named image does not exist in the store.
	ErrImageNotFound = errors.New("image not found")

	// ErrNoStore is returned when a persistence command runs without a configured store.
	ErrNoStore = errors.New("no store configured")

	// ErrSessionNotFound is returned when a named session does not exist.
	ErrSessionNotFound = errors.New("session not found")

	// ErrNestingTooDeep is returned when loadcommands replays exceed the configured depth.
	ErrNestingTooDeep = errors.New("script nesting too deep")

	// ErrScriptCycle is returned when loadcommands names a script that is already being replayed.
	ErrScriptCycle = errors.New("script loads itself")

	// ErrReplayTooLong is returned when one submitted line replays more lines than the configured budget.
	ErrReplayTooLong = errors.New("script replay too long")
)

// ParseError describes why a line was rejected by the interpreter.
// Its Error text is the message shown to the user.
type ParseError struct {
	Kind error  // One of the interpreter sentinels (ErrEmptyInput, ErrUnknownCommand, ...).
	Name string // Lower-cased command name, when one was recognized.
	Line string // The original line.
}

func (e *ParseError) Error() string {
	switch e.Kind {
	case ErrEmptyInput:
		return "No command entered."
	case ErrUnknownCommand:
		return "Invalid command: " + e.Line
	case ErrMissingArgument:
		return fmt.Sprintf("Missing distance for %s.", e.Name)
	case ErrBadNumber:
		return "Invalid number format in command: " + e.Line
	case ErrOutOfRange:
		return fmt.Sprintf("%s distance must be between %d and %d.", capitalize(e.Name), MinDistance, MaxDistance)
	default:
		return fmt.Sprintf("invalid command %q", e.Line)
	}
}

func (e *ParseError) Unwrap() error {
	return e.Kind
}

// PersistenceError reports a failed save or load. It unwraps to both ErrPersistence and the cause.
type PersistenceError struct {
	Op     Kind
	Target string
	Err    error
}

func (e *PersistenceError) Error() string {
	if e.Target == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %q: %v", e.Op, e.Target, e.Err)
}

func (e *PersistenceError) Unwrap() []error {
	return []error{ErrPersistence, e.Err}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
