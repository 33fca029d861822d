package apiclient

import (
	"time"

	"github.com/dmitrymomot/speakerhub/pkg/session"
)

// envelope is the {success, message, data} wrapper used by most endpoints.
type envelope[T any] struct {
	Data    T      `json:"data"`
	Message string `json:"message"`
	Success bool   `json:"success"`
}

func (e *envelope[T]) payload() any {
	return &e.Data
}

type errorBody struct {
	Detail string `json:"detail"`
	Code   string `json:"code"`
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse is returned by /auth/login and /auth/refresh.
type TokenResponse struct {
	Message          string `json:"message"`
	AccessToken      string `json:"access_token" validate:"required"`
	RefreshToken     string `json:"refresh_token"`
	TokenType        string `json:"token_type"`
	ExpiresIn        int    `json:"expires_in" validate:"gte=0"`
	RefreshExpiresIn int    `json:"refresh_expires_in" validate:"gte=0"`
	Success          bool   `json:"success"`
}

// Credential converts the response into a session credential.
func (r TokenResponse) Credential() session.Credential {
	return session.Credential{
		AccessToken:  r.AccessToken,
		RefreshToken: r.RefreshToken,
		AccessTTL:    time.Duration(r.ExpiresIn) * time.Second,
		RefreshTTL:   time.Duration(r.RefreshExpiresIn) * time.Second,
	}
}

// AuthStatus is returned by /auth/status.
type AuthStatus struct {
	Detail        string `json:"detail"`
	User          string `json:"user" validate:"required"`
	ShouldRefresh bool   `json:"should_refresh"`
}

// VendorStatus is the data of /mi/account/status.
type VendorStatus struct {
	UserID       string `json:"user_id,omitempty"`
	DevicesCount int    `json:"devices_count" validate:"gte=0"`
	LoggedIn     bool   `json:"logged_in"`
}

// VendorLogin is the data of /mi/account/login.
type VendorLogin struct {
	DevicesCount int `json:"devices_count" validate:"gte=0"`
}

// DeviceInfo is one entry of /devices.
type DeviceInfo struct {
	Capabilities map[string]any `json:"capabilities,omitempty"`
	DeviceID     string         `json:"deviceID" validate:"required"`
	Name         string         `json:"name,omitempty"`
	Alias        string         `json:"alias,omitempty"`
	MiotDID      string         `json:"miotDID,omitempty"`
	Hardware     string         `json:"hardware,omitempty"`
}

// CommandResult is the data of every device command.
type CommandResult struct {
	Result   any    `json:"result"`
	DeviceID string `json:"device_id" validate:"required"`
}

// PlaybackStatus is the data of /mi/device/playback/status.
type PlaybackStatus struct {
	Status   map[string]any `json:"status"`
	DeviceID string         `json:"device_id" validate:"required"`
}

// Volume is the data of GET /mi/device/volume.
type Volume struct {
	DeviceID string `json:"device_id" validate:"required"`
	Volume   int    `json:"volume" validate:"gte=0,lte=100"`
}

type selectorRequest struct {
	DeviceSelector string `json:"device_selector"`
}

type playURLRequest struct {
	DeviceSelector string `json:"device_selector"`
	URL            string `json:"url"`
	Type           int    `json:"type"`
}

type volumeRequest struct {
	DeviceSelector string `json:"device_selector"`
	Volume         int    `json:"volume"`
}

type speakRequest struct {
	DeviceSelector string `json:"device_selector"`
	Text           string `json:"text"`
}
