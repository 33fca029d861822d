// Package internal provides the core HTTP runtime of the speakerhub gateway.
//
// This package is internal and should not be used directly. Import
// "github.com/dmitrymomot/speakerhub" instead, which re-exports the public API.
//
// # Core Types
//
//   - App: Orchestrates HTTP routing, middleware, health probes and graceful shutdown
//   - Context: Provides request/response access, the authenticated subject and helpers
//   - Router: Interface handlers use to declare routes with HTTP methods and grouping
//   - Handler: Interface implemented by types that declare routes on a router
//   - HandlerFunc: Signature for individual route handlers that return errors
//   - Middleware: Wraps handlers to add cross-cutting concerns like auth or logging
//   - ErrorHandler: Custom error handling function for handler errors
//   - HTTPError: Status, user-facing message and machine code of a failed request
//
// # Context as context.Context
//
// Context embeds context.Context, so it can be passed directly to any function
// that expects a standard library context:
//
//	func (h *Vendor) devices(c speakerhub.Context) error {
//	    list, err := h.provider.Devices(c)
//	    if err != nil {
//	        return err
//	    }
//	    return c.JSON(http.StatusOK, list)
//	}
//
// # Application Structure
//
//	app := internal.New(
//	    internal.WithHandlers(authHandler, vendorHandler),
//	    internal.WithMiddleware(requestID, recoverer),
//	    internal.WithErrorHandler(errorHandler),
//	    internal.WithHealthChecks(internal.WithReadinessCheck("redis", redisCheck)),
//	)
//	err := app.Run(":8000", internal.StartupHook(start), internal.ShutdownHook(stop))
//
// Handlers receive dependencies via constructor injection, not context helpers.
//
// # Error Handling
//
// Handlers return errors. The error handler configured with WithErrorHandler
// renders them; without one, HTTPError values are written as
// {"detail": message} with their status and anything else becomes a 500.
package internal
