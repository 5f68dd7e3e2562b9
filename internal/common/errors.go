// Package common defines shared constants and sentinel errors used across
// the moodstream layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Storage-level errors.
	ErrorNotFound = errors.New("not found")
	ErrClosed     = errors.New("store is closed")

	// Precondition errors, raised before any backend call.
	ErrValidation       = errors.New("validation error")
	ErrAlreadyPersisted = errors.New("entity already has a persisted id")
	ErrNotPersisted     = errors.New("entity has no persisted id")

	// ErrCorruptState marks a record required by an invariant (credential or
	// follower document) that is missing or malformed. It signals a data
	// integrity bug, never a transient fault.
	ErrCorruptState = errors.New("corrupt backend state")
)
