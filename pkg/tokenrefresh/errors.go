package tokenrefresh

import "errors"

var (
	// ErrSessionExpired is returned to every waiter when the refresh token is
	// missing, rejected or the refresh call fails. The session has been torn
	// down by the time a caller sees it.
	ErrSessionExpired = errors.New("tokenrefresh: session expired")

	// ErrNoCredential is returned by EnsureFresh when nobody is logged in.
	ErrNoCredential = errors.New("tokenrefresh: not logged in")
)
