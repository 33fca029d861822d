// Package tokenrefresh owns the single refresh operation of the system session.
//
// A [Coordinator] reads the current token pair from a [session.Session] and,
// when asked, exchanges the refresh token for a new pair through a
// caller-supplied [RefreshFunc]. Concurrent callers share one in-flight
// refresh (golang.org/x/sync/singleflight), so the backend sees exactly one
// refresh call per expiry event no matter how many requests observed the
// expired token.
//
// Callers pass the access token they were using when they hit the failure.
// If that token has already been replaced by a completed refresh, the
// current pair is returned without another network call:
//
//	cred, err := coord.Refresh(ctx, staleAccessToken)
//	if errors.Is(err, tokenrefresh.ErrSessionExpired) {
//	    // the session is gone; show the login screen
//	}
//
// On failure the coordinator tears the session down and runs every hook
// registered with [Coordinator.OnExpired] once per failure.
//
// The refresh itself is detached from the caller's cancellation. A caller
// that stops waiting gets ctx.Err() while the refresh runs to completion for
// the others.
package tokenrefresh
