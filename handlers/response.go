package handlers

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/speakerhub"
	"github.com/dmitrymomot/speakerhub/pkg/vendor"
)

// Response is the envelope of every vendor and device endpoint.
type Response struct {
	Data    any    `json:"data,omitempty"`
	Message string `json:"message"`
	Success bool   `json:"success"`
}

// CommandData is the payload of device commands.
type CommandData struct {
	Result   any    `json:"result"`
	DeviceID string `json:"device_id"`
}

func success(c speakerhub.Context, message string, data any) error {
	return c.JSON(http.StatusOK, Response{Success: true, Message: message, Data: data})
}

// vendorError maps pkg/vendor failures to HTTP errors. The missing vendor
// session is a 403 so clients can tell it apart from an expired system token.
func vendorError(err error) error {
	switch {
	case errors.Is(err, vendor.ErrNotLoggedIn):
		return speakerhub.ErrForbidden("vendor account is not connected",
			speakerhub.WithErrorCode("vendor_not_connected"), speakerhub.WithError(err))
	case errors.Is(err, vendor.ErrDeviceNotFound):
		return speakerhub.ErrBadRequest("device not found",
			speakerhub.WithErrorCode("device_not_found"), speakerhub.WithError(err))
	case errors.Is(err, vendor.ErrNoDevices):
		return speakerhub.ErrBadRequest("no devices available",
			speakerhub.WithErrorCode("no_devices"), speakerhub.WithError(err))
	case errors.Is(err, vendor.ErrInvalidVolume):
		return speakerhub.ErrBadRequest("volume must be between 0 and 100",
			speakerhub.WithErrorCode("invalid_volume"), speakerhub.WithError(err))
	case errors.Is(err, vendor.ErrVolumeUnavailable):
		return speakerhub.ErrInternal("failed to get volume",
			speakerhub.WithErrorCode("volume_unavailable"), speakerhub.WithError(err))
	case errors.Is(err, vendor.ErrUnsupportedCommand):
		return speakerhub.ErrBadRequest("unsupported command",
			speakerhub.WithErrorCode("unsupported_command"), speakerhub.WithError(err))
	default:
		return err
	}
}
