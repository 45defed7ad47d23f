package engine

import "errors"

// Sentinel errors for engine operations. Check with errors.Is.
var (
	// ErrClosed indicates the engine has been closed.
	ErrClosed = errors.New("engine: closed")

	// ErrAlreadyStarted indicates Start was called twice.
	ErrAlreadyStarted = errors.New("engine: already started")

	// ErrDiscoveryActive indicates a discovery session is already running.
	ErrDiscoveryActive = errors.New("engine: discovery session already active")
)
