// Package common defines shared sentinel errors used across the scanner,
// the state manager and the approval service. Callers should use errors.Is
// to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Concurrency errors. ErrStaleVersion means a concurrent writer
	// committed first; the operation may be retried after a re-read.
	ErrStaleVersion = errors.New("stale version")

	// Collector errors.
	ErrPathUnavailable   = errors.New("path unavailable")
	ErrMalformedSnapshot = errors.New("malformed snapshot")

	// Approval workflow misuse errors. Returned to the caller as-is,
	// never retried.
	ErrUnknownRequest = errors.New("unknown approval request")
	ErrAlreadyDecided = errors.New("approval request already decided")
	ErrConflict       = errors.New("pending approval request already exists")

	// Configuration errors (invalid thresholds, unknown tier or device).
	ErrConfiguration = errors.New("configuration error")

	// Auth errors.
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidToken = errors.New("invalid token")
)
