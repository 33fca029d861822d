package jwt

import (
	"errors"
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenType tells access and refresh tokens apart.
type TokenType string

const (
	TokenAccess  TokenType = "access"
	TokenRefresh TokenType = "refresh"
)

// Claims are the claims carried by both token types.
type Claims struct {
	Type TokenType `json:"type"`
	gojwt.RegisteredClaims
}

// Pair is an access/refresh token pair. Lifetimes are in seconds.
type Pair struct {
	AccessToken      string
	RefreshToken     string
	ExpiresIn        int64
	RefreshExpiresIn int64
}

// Option configures a Service.
type Option func(*Service)

// WithAccessTTL sets the access token lifetime. Default: 60 minutes.
func WithAccessTTL(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.accessTTL = d
		}
	}
}

// WithRefreshTTL sets the refresh token lifetime. Default: 7 days.
func WithRefreshTTL(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.refreshTTL = d
		}
	}
}

// WithRefreshThreshold sets the window used by ShouldRefresh. Default: 10 minutes.
func WithRefreshThreshold(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.threshold = d
		}
	}
}

// WithIssuer sets the iss claim.
func WithIssuer(iss string) Option {
	return func(s *Service) {
		s.issuer = iss
	}
}

// WithClock overrides the time source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// Service issues and verifies HS256 tokens.
type Service struct {
	now        func() time.Time
	issuer     string
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	threshold  time.Duration
}

// New creates a token service signing with secret.
func New(secret string, opts ...Option) (*Service, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	s := &Service{
		now:        time.Now,
		issuer:     "speakerhub",
		secret:     []byte(secret),
		accessTTL:  60 * time.Minute,
		refreshTTL: 7 * 24 * time.Hour,
		threshold:  10 * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// AccessTTL returns the access token lifetime.
func (s *Service) AccessTTL() time.Duration { return s.accessTTL }

// RefreshTTL returns the refresh token lifetime.
func (s *Service) RefreshTTL() time.Duration { return s.refreshTTL }

// Issue creates a new pair for subject.
func (s *Service) Issue(subject string) (Pair, error) {
	now := s.now()

	access, err := s.sign(subject, TokenAccess, now, s.accessTTL)
	if err != nil {
		return Pair{}, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := s.sign(subject, TokenRefresh, now, s.refreshTTL)
	if err != nil {
		return Pair{}, fmt.Errorf("sign refresh token: %w", err)
	}

	return Pair{
		AccessToken:      access,
		RefreshToken:     refresh,
		ExpiresIn:        int64(s.accessTTL / time.Second),
		RefreshExpiresIn: int64(s.refreshTTL / time.Second),
	}, nil
}

// Parse verifies token and checks that it is of type want.
func (s *Service) Parse(token string, want TokenType) (*Claims, error) {
	claims := &Claims{}
	_, err := gojwt.ParseWithClaims(token, claims, func(t *gojwt.Token) (any, error) {
		return s.secret, nil
	},
		gojwt.WithValidMethods([]string{gojwt.SigningMethodHS256.Alg()}),
		gojwt.WithTimeFunc(s.now),
		gojwt.WithExpirationRequired(),
	)
	if err != nil {
		switch {
		case errors.Is(err, gojwt.ErrTokenExpired):
			return nil, errors.Join(ErrExpiredToken, err)
		case errors.Is(err, gojwt.ErrTokenSignatureInvalid):
			return nil, errors.Join(ErrInvalidSignature, err)
		default:
			return nil, errors.Join(ErrInvalidToken, err)
		}
	}

	if claims.Type != want {
		return nil, ErrWrongTokenType
	}
	if claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Refresh verifies a refresh token and rotates both tokens.
func (s *Service) Refresh(refreshToken string) (Pair, error) {
	claims, err := s.Parse(refreshToken, TokenRefresh)
	if err != nil {
		return Pair{}, err
	}
	return s.Issue(claims.Subject)
}

// ShouldRefresh reports whether the access token behind claims expires
// within the refresh threshold.
func (s *Service) ShouldRefresh(claims *Claims) bool {
	if claims == nil || claims.ExpiresAt == nil {
		return false
	}
	return !s.now().Add(s.threshold).Before(claims.ExpiresAt.Time)
}

func (s *Service) sign(subject string, typ TokenType, now time.Time, ttl time.Duration) (string, error) {
	claims := &Claims{
		Type: typ,
		RegisteredClaims: gojwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Subject:   subject,
			IssuedAt:  gojwt.NewNumericDate(now),
			NotBefore: gojwt.NewNumericDate(now),
			ExpiresAt: gojwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString(s.secret)
}
