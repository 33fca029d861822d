package session

import "errors"

// Session errors.
var (
	// ErrNotFound is returned by a Store when nothing has been persisted yet.
	ErrNotFound = errors.New("session: not found")

	// ErrInvalidCredential is returned when a credential is missing either token.
	ErrInvalidCredential = errors.New("session: credential must carry both access and refresh tokens")

	// ErrCredentialChanged is returned by ReplaceCredential when the token pair
	// it was meant to replace is no longer current.
	ErrCredentialChanged = errors.New("session: credential changed concurrently")

	// ErrInvalidSelection is returned when a device selection has no device ID.
	ErrInvalidSelection = errors.New("session: selection must reference a device id")

	// ErrPersist is returned when the backing store rejects a write.
	ErrPersist = errors.New("session: failed to persist state")

	// ErrCorrupted is returned when persisted state cannot be decoded.
	ErrCorrupted = errors.New("session: persisted state is corrupted")
)
