package middlewares

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dmitrymomot/speakerhub/internal"
	"github.com/dmitrymomot/speakerhub/pkg/jwt"
	"github.com/dmitrymomot/speakerhub/pkg/logger"
)

// JWTOption configures the JWT middleware.
type JWTOption func(*jwtConfig)

type jwtConfig struct {
	extractor internal.Extractor
}

// WithJWTExtractor sets a custom token extractor chain.
// Defaults to the Bearer token of the Authorization header.
func WithJWTExtractor(ext internal.Extractor) JWTOption {
	return func(cfg *jwtConfig) {
		cfg.extractor = ext
	}
}

// JWT returns middleware that accepts only valid access tokens issued by svc.
// The parsed claims are stored under internal.JWTClaimsKey and the subject
// under internal.SubjectKey, so Context.UserID reports the system user.
// Refresh tokens are rejected here; they are only good for /auth/refresh.
func JWT(svc *jwt.Service, opts ...JWTOption) internal.Middleware {
	cfg := &jwtConfig{
		extractor: internal.NewExtractor(internal.FromBearerToken()),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			token, ok := cfg.extractor.Extract(c)
			if !ok {
				return internal.ErrUnauthorized("missing authentication token",
					internal.WithErrorCode("token_missing"))
			}

			claims, err := svc.Parse(token, jwt.TokenAccess)
			if err != nil {
				return TokenError(err)
			}

			c.Set(internal.JWTClaimsKey{}, claims)
			c.Set(internal.SubjectKey{}, claims.Subject)

			return next(c)
		}
	}
}

// TokenError maps a pkg/jwt failure to a 401 with a detail the client can show.
func TokenError(err error) *internal.HTTPError {
	switch {
	case errors.Is(err, jwt.ErrExpiredToken):
		return internal.ErrUnauthorized("token has expired",
			internal.WithErrorCode("token_expired"), internal.WithError(err))
	case errors.Is(err, jwt.ErrWrongTokenType):
		return internal.ErrUnauthorized("wrong token type",
			internal.WithErrorCode("token_wrong_type"), internal.WithError(err))
	default:
		return internal.ErrUnauthorized("invalid token",
			internal.WithErrorCode("token_invalid"), internal.WithError(err))
	}
}

// GetJWTClaims returns the claims stored by JWT, or nil when the middleware
// did not run for this request.
func GetJWTClaims(c internal.Context) *jwt.Claims {
	return internal.ContextValue[*jwt.Claims](c, internal.JWTClaimsKey{})
}

// UserExtractor adds "user" to log records of authenticated requests.
func UserExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if v, ok := ctx.Value(internal.SubjectKey{}).(string); ok && v != "" {
			return slog.String("user", v), true
		}
		return slog.Attr{}, false
	}
}
