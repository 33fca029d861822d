package middlewares

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dmitrymomot/speakerhub/internal"
	"github.com/dmitrymomot/speakerhub/pkg/logger"
)

type requestIDKey struct{}

// RequestIDHeader is the response header carrying the request ID.
const RequestIDHeader = "X-Request-ID"

// RequestIDOption configures the request ID middleware.
type RequestIDOption func(*requestIDConfig)

type requestIDConfig struct {
	generator func() string
	extractor internal.Extractor
}

// WithRequestIDHeaders sets the request headers checked, in order, for an
// upstream ID. Defaults to X-Request-ID then X-Correlation-ID.
func WithRequestIDHeaders(headers ...string) RequestIDOption {
	return func(cfg *requestIDConfig) {
		sources := make([]internal.ExtractorSource, 0, len(headers))
		for _, h := range headers {
			sources = append(sources, internal.FromHeader(h))
		}
		cfg.extractor = internal.NewExtractor(sources...)
	}
}

// WithRequestIDGenerator sets the generator used when no upstream ID is present.
func WithRequestIDGenerator(gen func() string) RequestIDOption {
	return func(cfg *requestIDConfig) {
		if gen != nil {
			cfg.generator = gen
		}
	}
}

// RequestID returns middleware that tags every request with an ID.
// An upstream ID is preserved; otherwise a UUID is generated. The ID is
// stored in the request context and echoed in the X-Request-ID header.
func RequestID(opts ...RequestIDOption) internal.Middleware {
	cfg := &requestIDConfig{
		generator: uuid.NewString,
		extractor: internal.NewExtractor(
			internal.FromHeader(RequestIDHeader),
			internal.FromHeader("X-Correlation-ID"),
		),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			reqID, ok := cfg.extractor.Extract(c)
			if !ok {
				reqID = cfg.generator()
			}

			c.Set(requestIDKey{}, reqID)
			c.SetHeader(RequestIDHeader, reqID)

			return next(c)
		}
	}
}

// GetRequestID returns the request ID, or "" when RequestID is not applied.
func GetRequestID(c internal.Context) string {
	return internal.ContextValue[string](c, requestIDKey{})
}

// RequestIDExtractor adds "request_id" to log records written with the request context.
func RequestIDExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if v, ok := ctx.Value(requestIDKey{}).(string); ok && v != "" {
			return slog.String("request_id", v), true
		}
		return slog.Attr{}, false
	}
}
