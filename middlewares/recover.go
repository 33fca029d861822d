package middlewares

import (
	"log/slog"
	"runtime"

	"github.com/dmitrymomot/speakerhub/internal"
)

// DefaultStackSize is the default maximum stack trace size in bytes.
const DefaultStackSize = 4096

// RecoverOption configures the recover middleware.
type RecoverOption func(*recoverConfig)

type recoverConfig struct {
	stackSize int
	noStack   bool
}

// WithRecoverStackSize sets the maximum captured stack trace size.
func WithRecoverStackSize(size int) RecoverOption {
	return func(cfg *recoverConfig) {
		if size > 0 {
			cfg.stackSize = size
		}
	}
}

// WithoutStack disables stack capture. Panics are still logged and converted.
func WithoutStack() RecoverOption {
	return func(cfg *recoverConfig) {
		cfg.noStack = true
	}
}

// Recover returns middleware that turns a panic in a handler into a
// *PanicError, which ErrorHandler renders as a 500. The panic is logged
// with the request method and path.
func Recover(opts ...RecoverOption) internal.Middleware {
	cfg := &recoverConfig{stackSize: DefaultStackSize}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}

				attrs := []any{
					slog.Any("panic", r),
					slog.String("method", c.Request().Method),
					slog.String("path", c.Request().URL.Path),
				}

				var stack []byte
				if !cfg.noStack {
					stack = make([]byte, cfg.stackSize)
					stack = stack[:runtime.Stack(stack, false)]
					attrs = append(attrs, slog.String("stack", string(stack)))
				}

				c.LogError("panic recovered", attrs...)
				err = &PanicError{Value: r, Stack: stack}
			}()

			return next(c)
		}
	}
}
