package jwt

import "errors"

var (
	// ErrMissingSecret is returned by New when no signing secret is configured.
	ErrMissingSecret = errors.New("jwt: signing secret is required")

	// ErrExpiredToken is returned for tokens past their expiry.
	ErrExpiredToken = errors.New("jwt: token expired")

	// ErrInvalidSignature is returned when the signature does not verify.
	ErrInvalidSignature = errors.New("jwt: invalid signature")

	// ErrInvalidToken is returned for malformed tokens and unexpected algorithms.
	ErrInvalidToken = errors.New("jwt: invalid token")

	// ErrWrongTokenType is returned when a refresh token is used as an access
	// token or the other way around.
	ErrWrongTokenType = errors.New("jwt: wrong token type")
)
