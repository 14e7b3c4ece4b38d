package newstrack

import "errors"

// Pipeline error taxonomy. Handlers map these onto HTTP statuses; anything
// else is an internal error.
var (
	// ErrNoInput means the caller supplied neither a URL nor an outlet
	// name. Reported immediately, never retried.
	ErrNoInput = errors.New("no URL or outlet name provided")

	// ErrUnreachable means the target site could not be resolved or
	// reached after the configured retries.
	ErrUnreachable = errors.New("target website unreachable")

	// ErrNoJournalists means the full cascade ran and zero valid records
	// survived cleaning. A valid terminal state, not a crash.
	ErrNoJournalists = errors.New("no journalist profiles found")
)
