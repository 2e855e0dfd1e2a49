package hook

import (
	"errors"
	"fmt"
)

// Errors returned by the hook engine.
var (
	// ErrClosed is returned when operating on a closed engine.
	ErrClosed = errors.New("hook engine is closed")

	// ErrUnknownEvent is returned when a script registers an unknown event.
	ErrUnknownEvent = errors.New("unknown hook event")
)

// ScriptError reports a failure while loading a script or running one of
// its handlers.
type ScriptError struct {
	// Script is the script path or chunk name.
	Script string
	// Event is set when a handler failed.
	Event string
	Err   error
}

// Error implements the error interface.
func (e *ScriptError) Error() string {
	if e.Event != "" {
		return fmt.Sprintf("hook %s: %s handler: %v", e.Script, e.Event, e.Err)
	}
	return fmt.Sprintf("hook %s: %v", e.Script, e.Err)
}

// Unwrap returns the underlying error.
func (e *ScriptError) Unwrap() error {
	return e.Err
}
