// Package apiclient is the console's gateway to the speakerhub backend.
//
// Every call goes through [Client.Do], which attaches the current access
// token from a [session.Session] as a bearer credential. When a protected
// request comes back 401 the client asks its [tokenrefresh.Coordinator] for a
// new token and re-sends the identical request once. Concurrent requests
// that hit the same expiry share one refresh. A second 401 after a fresh
// token ends the session.
//
//	sess, _ := session.Open(ctx, session.NewFileStore(path))
//	client := apiclient.New("http://localhost:8000", sess,
//	    apiclient.WithTimeout(10*time.Second),
//	)
//	devices, err := client.Devices(ctx)
//	switch {
//	case errors.Is(err, apiclient.ErrAuthExpired):
//	    // log in again
//	case errors.Is(err, apiclient.ErrVendorNotConnected):
//	    // vendor account is logged out
//	case errors.Is(err, apiclient.ErrTransientNetwork):
//	    // try again later
//	}
//
// Responses are decoded into typed structs and checked with pkg/validator.
// A payload that does not match is reported as [ErrValidation].
// Error replies ({"detail", "code"}) surface as [*ResponseError], which
// unwraps to the matching sentinel.
package apiclient
