package middlewares

import "github.com/dmitrymomot/speakerhub/internal"

// NoCache returns middleware that marks every response as uncacheable.
// Gateway responses carry tokens and live device state.
func NoCache() internal.Middleware {
	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			c.SetHeader("Cache-Control", "no-store, no-cache, must-revalidate")
			c.SetHeader("Pragma", "no-cache")
			c.SetHeader("Expires", "0")
			return next(c)
		}
	}
}
