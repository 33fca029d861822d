package console

import (
	"errors"

	"github.com/dmitrymomot/speakerhub/pkg/apiclient"
)

var (
	// ErrNotAuthenticated is returned when an operation needs a system session.
	ErrNotAuthenticated = errors.New("console: not logged in")

	// ErrVendorNotConnected is returned before any request is made when the
	// vendor account is logged out or no device can be targeted.
	ErrVendorNotConnected = apiclient.ErrVendorNotConnected

	// ErrInvalidInput is returned for command arguments rejected locally.
	ErrInvalidInput = apiclient.ErrValidation
)
