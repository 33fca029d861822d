package apiclient

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/speakerhub/pkg/tokenrefresh"
)

var (
	// ErrAuthExpired means the access token was rejected and the refresh failed
	// too. The local session has been torn down.
	ErrAuthExpired = tokenrefresh.ErrSessionExpired

	// ErrTransientNetwork wraps transport failures. The caller may retry.
	ErrTransientNetwork = errors.New("apiclient: network failure")

	// ErrValidation is returned for rejected requests (4xx) and for response
	// payloads that do not match the expected shape.
	ErrValidation = errors.New("apiclient: validation failed")

	// ErrVendorNotConnected is returned when the vendor account is logged out
	// or no device can be targeted.
	ErrVendorNotConnected = errors.New("apiclient: vendor account not connected")

	// ErrUnauthorized is returned when a public endpoint such as /auth/login
	// rejects the supplied credentials.
	ErrUnauthorized = errors.New("apiclient: unauthorized")

	// ErrServer is returned for 5xx and otherwise unexpected statuses.
	ErrServer = errors.New("apiclient: server error")
)

// CodeVendorNotConnected is the machine code the gateway sends with a 403
// when the vendor session is missing.
const CodeVendorNotConnected = "vendor_not_connected"

// ResponseError is a non-2xx reply from the gateway.
// It unwraps to one of the package sentinels.
type ResponseError struct {
	kind       error
	Detail     string
	Code       string
	StatusCode int
}

func (e *ResponseError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return http.StatusText(e.StatusCode)
}

func (e *ResponseError) Unwrap() error {
	return e.kind
}

func classify(status int, code string) error {
	switch {
	case status == http.StatusUnauthorized:
		return ErrUnauthorized
	case status == http.StatusForbidden && code == CodeVendorNotConnected:
		return ErrVendorNotConnected
	case status >= 400 && status < 500:
		return ErrValidation
	default:
		return ErrServer
	}
}
