// Package middlewares provides the HTTP middleware stack of the speakerhub gateway.
//
// # Request ID
//
// RequestID tags each request with an upstream X-Request-ID (or
// X-Correlation-ID) or a fresh UUID and echoes it in the response.
// RequestIDExtractor adds it to every log record:
//
//	app := speakerhub.New(
//	    speakerhub.WithCustomLogger(log),
//	    speakerhub.WithMiddleware(middlewares.RequestID()),
//	)
//
// # Recover and Timeout
//
// Recover converts panics into *PanicError; Timeout installs a deadline on the
// request context and returns *TimeoutError when it fires first. Both are
// rendered by ErrorHandler.
//
// # Auth
//
// JWT accepts access tokens only and stores the claims and subject in the
// context. Route groups that need a system user wrap their routes with it:
//
//	r.Group(func(r speakerhub.Router) {
//	    r.Use(middlewares.JWT(tokens))
//	    r.GET("/devices", h.devices)
//	})
//
// # Headers
//
// CORS answers preflight requests for the configured origins. NoCache marks
// responses uncacheable.
//
// # Errors
//
// ErrorHandler renders every handler error as
//
//	{"detail": "vendor account is not connected", "code": "vendor_not_connected"}
//
// with the status carried by the error.
package middlewares
