package middlewares

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrymomot/speakerhub/internal"
)

// DefaultCORSMaxAge is the default preflight cache duration.
const DefaultCORSMaxAge = 12 * time.Hour

// CORSOption configures the CORS middleware.
type CORSOption func(*corsPolicy)

type corsPolicy struct {
	allowOrigin func(origin string) bool
	origins     []string
	methods     []string
	headers     []string
	expose      []string
	maxAge      time.Duration
	credentials bool
	wildcard    bool
}

// WithAllowOrigins sets the allowed origins. "*" allows any origin.
// An empty list keeps the default.
func WithAllowOrigins(origins ...string) CORSOption {
	return func(p *corsPolicy) {
		if len(origins) > 0 {
			p.origins = origins
		}
	}
}

// WithAllowOriginFunc replaces the origin list with a predicate.
func WithAllowOriginFunc(fn func(origin string) bool) CORSOption {
	return func(p *corsPolicy) {
		p.allowOrigin = fn
		p.origins = nil
	}
}

// WithAllowHeaders sets the request headers allowed in preflight.
func WithAllowHeaders(headers ...string) CORSOption {
	return func(p *corsPolicy) {
		p.headers = headers
	}
}

// WithExposeHeaders sets the response headers readable by the browser.
func WithExposeHeaders(headers ...string) CORSOption {
	return func(p *corsPolicy) {
		p.expose = headers
	}
}

// WithAllowCredentials makes the response echo the origin and allow credentials.
func WithAllowCredentials() CORSOption {
	return func(p *corsPolicy) {
		p.credentials = true
	}
}

// WithMaxAge sets the preflight cache duration.
func WithMaxAge(d time.Duration) CORSOption {
	return func(p *corsPolicy) {
		p.maxAge = d
	}
}

// CORS returns middleware that answers preflight requests and adds
// Access-Control headers for allowed origins. Requests from other origins
// pass through untouched and are blocked by the browser.
//
// The gateway reads its origin list from api.cors_origins:
//
//	middlewares.CORS(middlewares.WithAllowOrigins(cfg.API.CORSOrigins...))
func CORS(opts ...CORSOption) internal.Middleware {
	p := &corsPolicy{
		origins: []string{"*"},
		methods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		headers: []string{"Origin", "Content-Type", "Accept", "Authorization", RequestIDHeader},
		expose:  []string{RequestIDHeader},
		maxAge:  DefaultCORSMaxAge,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.wildcard = p.allowOrigin == nil && slices.Contains(p.origins, "*")

	methods := strings.Join(p.methods, ", ")
	headers := strings.Join(p.headers, ", ")
	expose := strings.Join(p.expose, ", ")
	maxAge := strconv.Itoa(int(p.maxAge.Seconds()))

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			origin := c.Header("Origin")
			if origin == "" || !p.allowed(origin) {
				return next(c)
			}

			h := c.Response().Header()
			h.Add("Vary", "Origin")
			if p.credentials || !p.wildcard {
				h.Set("Access-Control-Allow-Origin", origin)
			} else {
				h.Set("Access-Control-Allow-Origin", "*")
			}
			if p.credentials {
				h.Set("Access-Control-Allow-Credentials", "true")
			}
			if expose != "" {
				h.Set("Access-Control-Expose-Headers", expose)
			}

			if c.Request().Method != http.MethodOptions {
				return next(c)
			}

			h.Add("Vary", "Access-Control-Request-Method")
			h.Add("Vary", "Access-Control-Request-Headers")
			h.Set("Access-Control-Allow-Methods", methods)
			h.Set("Access-Control-Allow-Headers", headers)
			if p.maxAge > 0 {
				h.Set("Access-Control-Max-Age", maxAge)
			}
			return c.NoContent(http.StatusNoContent)
		}
	}
}

func (p *corsPolicy) allowed(origin string) bool {
	if p.allowOrigin != nil {
		return p.allowOrigin(origin)
	}
	return p.wildcard || slices.Contains(p.origins, origin)
}
