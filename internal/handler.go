package internal

// Handler declares routes on a router.
//
// Example:
//
//	type AuthHandler struct {
//	    users  *users.Directory
//	    tokens *jwt.Service
//	}
//
//	func (h *AuthHandler) Routes(r speakerhub.Router) {
//	    r.POST("/auth/login", h.login)
//	    r.POST("/auth/refresh", h.refresh)
//	}
type Handler interface {
	Routes(r Router)
}

// HandlerFunc is the signature for route handlers.
// It receives a Context and returns an error.
// Returning a non-nil error triggers the error handling middleware.
type HandlerFunc func(c Context) error

// Middleware wraps a HandlerFunc to add cross-cutting concerns.
// Middleware can inspect/modify the request, short-circuit processing,
// or wrap the response.
//
// Example:
//
//	func RequireUser(next speakerhub.HandlerFunc) speakerhub.HandlerFunc {
//	    return func(c speakerhub.Context) error {
//	        if !c.IsAuthenticated() {
//	            return speakerhub.ErrUnauthorized("not authenticated")
//	        }
//	        return next(c)
//	    }
//	}
type Middleware func(next HandlerFunc) HandlerFunc

// ErrorHandler handles errors returned from handlers.
type ErrorHandler func(Context, error) error
