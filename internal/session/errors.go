package session

import "errors"

// Sentinel errors for the runner.
var (
	// ErrNotRunning is returned when intents are dispatched to a runner that
	// was never started or has been closed.
	ErrNotRunning = errors.New("session runner is not running")

	// ErrAlreadyRunning is returned when Start is called twice.
	ErrAlreadyRunning = errors.New("session runner is already running")

	// ErrNilIntent is returned when a nil intent is dispatched.
	ErrNilIntent = errors.New("intent cannot be nil")
)
