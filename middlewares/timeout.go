package middlewares

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrymomot/speakerhub/internal"
)

// DefaultTimeout is the request timeout used when none is configured.
const DefaultTimeout = 30 * time.Second

// Timeout returns middleware that bounds each request by d.
// The deadline is installed on the request context so vendor calls made with
// the Context observe it. When it fires first, a *TimeoutError is returned and
// the handler goroutine is left to finish on its own.
func Timeout(d time.Duration) internal.Middleware {
	if d <= 0 {
		d = DefaultTimeout
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			ctx, cancel := context.WithTimeout(c.Context(), d)
			defer cancel()
			c.SetContext(ctx)

			done := make(chan error, 1)
			go func() {
				done <- next(c)
			}()

			select {
			case err := <-done:
				return err
			case <-ctx.Done():
				if errors.Is(ctx.Err(), context.DeadlineExceeded) {
					c.LogWarn("request timeout", "timeout", d.String(), "path", c.Request().URL.Path)
					return &TimeoutError{Duration: d}
				}
				return ctx.Err()
			}
		}
	}
}
