package dataagent

import "errors"

// Sentinel errors for common failure modes.
var (
	// ErrValidation indicates a request, message or configuration failed validation.
	ErrValidation = errors.New("validation error")

	// ErrStreamNotReady indicates Message() was called before Next().
	ErrStreamNotReady = errors.New("stream not ready: call Next() first")

	// ErrStreamClosed indicates an operation on a closed stream.
	ErrStreamClosed = errors.New("stream closed")

	// ErrUnknownTool indicates a tool name that no handler implements.
	ErrUnknownTool = errors.New("unknown tool")

	// ErrStoreUnavailable indicates the data store could not be opened.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrTableNotFound indicates a table that does not exist in the store.
	ErrTableNotFound = errors.New("table not found")

	// ErrNoDestination indicates no destination table could be inferred
	// from a user request.
	ErrNoDestination = errors.New("no destination table")
)
