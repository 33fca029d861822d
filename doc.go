// Package speakerhub is an HTTP gateway that lets authenticated operators
// drive cloud-connected smart speakers: play media URLs, control playback
// and volume, and make a device speak text.
//
// The package is a thin facade over the internal application core. Handlers
// live in the handlers package, middlewares in middlewares, and the vendor
// integration in pkg/vendor.
//
// # Quick Start
//
//	app := speakerhub.New(
//	    speakerhub.WithCustomLogger(log),
//	    speakerhub.WithMiddleware(
//	        middlewares.RequestID(),
//	        middlewares.Recover(),
//	    ),
//	    speakerhub.WithErrorHandler(middlewares.ErrorHandler(log)),
//	    speakerhub.WithHandlers(
//	        handlers.NewAuth(directory, tokens),
//	        handlers.NewVendor(provider, tokens),
//	    ),
//	    speakerhub.WithHealthChecks(),
//	)
//
//	if err := app.Run(":8000", speakerhub.Logger(log)); err != nil {
//	    log.Error("server stopped", "error", err)
//	}
//
// # Handlers
//
// Handlers implement the [Handler] interface to declare routes:
//
//	type InfoHandler struct{ name, version string }
//
//	func (h *InfoHandler) Routes(r speakerhub.Router) {
//	    r.GET("/", h.index)
//	}
//
//	func (h *InfoHandler) index(c speakerhub.Context) error {
//	    return c.JSON(http.StatusOK, map[string]string{"version": h.version})
//	}
//
// # Errors
//
// Handlers return errors instead of writing failures themselves. An
// [HTTPError] carries the status, message, and machine-readable code; the
// error handler installed with [WithErrorHandler] turns it into the JSON body
// {"detail": "...", "code": "..."}.
//
// # Lifecycle
//
// [App.Run] binds the address, runs startup hooks, serves until SIGINT or
// SIGTERM, then shuts the server down and runs shutdown hooks in order.
package speakerhub
