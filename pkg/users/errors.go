package users

import "errors"

var (
	// ErrInvalidCredentials is returned when the username is unknown or the password does not match.
	ErrInvalidCredentials = errors.New("users: invalid username or password")

	// ErrNoUsers is returned by New when no user is configured.
	ErrNoUsers = errors.New("users: at least one user is required")

	// ErrInvalidAccount is returned by New for an account without username or password.
	ErrInvalidAccount = errors.New("users: username and password are required")

	// ErrDuplicateUser is returned by New when a username appears twice.
	ErrDuplicateUser = errors.New("users: duplicate username")
)
