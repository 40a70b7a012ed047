package container

import "errors"

// Operation failure kinds. Each is terminal for the operation it occurs in;
// the engine never retries. Callers match with errors.Is. Missing-container
// failures surface store.ErrNotFound.
var (
	ErrInvalidName    = errors.New("invalid container name")
	ErrAlreadyExists  = errors.New("container already exists")
	ErrAlreadyRunning = errors.New("container already running")
	ErrAlreadyStopped = errors.New("container already stopped")
	ErrScriptNotFound = errors.New("script not found")
	ErrLaunch         = errors.New("launch failed")
	ErrRemoveRunning  = errors.New("cannot remove running container")
)
