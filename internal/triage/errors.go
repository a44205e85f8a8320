package triage

import "errors"

// Error taxonomy surfaced to callers. All operations fail with one of these
// (wrapped with context); no retries or recovery happen at this layer.
var (
	// ErrInvalidLabel means a label or category name could not be resolved
	// against the store's catalog.
	ErrInvalidLabel = errors.New("invalid label")

	// ErrNotFound means the message does not exist or is not accessible.
	ErrNotFound = errors.New("message not found")

	// ErrUpstreamUnavailable means the mail store could not be reached or
	// answered with a server-side failure.
	ErrUpstreamUnavailable = errors.New("mail store unavailable")
)
