package apiclient

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"reflect"

	"github.com/dmitrymomot/speakerhub/pkg/validator"
)

// Login exchanges system credentials for a token pair.
// It does not touch the session; the caller decides where to keep the pair.
func (c *Client) Login(ctx context.Context, username, password string) (TokenResponse, error) {
	var out TokenResponse
	err := c.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Body:   credentials{Username: username, Password: password},
		Public: true,
	}, &out)
	if err != nil {
		return TokenResponse{}, err
	}
	if out.RefreshToken == "" {
		return TokenResponse{}, errors.Join(ErrValidation, validator.ValidationErrors{
			{Field: "refresh_token", Message: "refresh_token is required"},
		})
	}
	return out, nil
}

// AuthStatus returns the system user behind the current token.
func (c *Client) AuthStatus(ctx context.Context) (AuthStatus, error) {
	var out AuthStatus
	err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/auth/status"}, &out)
	return out, err
}

// VendorLogin signs the gateway into the vendor account.
// Empty credentials ask the gateway to use its configured account.
func (c *Client) VendorLogin(ctx context.Context, username, password string) (VendorLogin, error) {
	return call[VendorLogin](ctx, c, Request{
		Method: http.MethodPost,
		Path:   "/mi/account/login",
		Body:   credentials{Username: username, Password: password},
	})
}

// VendorLogout drops the vendor session on the gateway.
func (c *Client) VendorLogout(ctx context.Context) error {
	_, err := call[any](ctx, c, Request{Method: http.MethodPost, Path: "/mi/account/logout"})
	return err
}

// VendorStatus queries the vendor session explicitly.
func (c *Client) VendorStatus(ctx context.Context) (VendorStatus, error) {
	return call[VendorStatus](ctx, c, Request{Method: http.MethodGet, Path: "/mi/account/status"})
}

// Devices lists the speakers of the vendor account.
func (c *Client) Devices(ctx context.Context) ([]DeviceInfo, error) {
	return call[[]DeviceInfo](ctx, c, Request{Method: http.MethodGet, Path: "/devices"})
}

// PlayURL starts streaming url on the device. kind follows the gateway:
// 1 is music, 2 is anything else.
func (c *Client) PlayURL(ctx context.Context, selector, rawURL string, kind int) (CommandResult, error) {
	if kind == 0 {
		kind = 2
	}
	return call[CommandResult](ctx, c, Request{
		Method: http.MethodPost,
		Path:   "/mi/device/playback/play-url",
		Body:   playURLRequest{DeviceSelector: selector, URL: rawURL, Type: kind},
	})
}

// Play resumes playback.
func (c *Client) Play(ctx context.Context, selector string) (CommandResult, error) {
	return c.playback(ctx, "play", selector)
}

// Pause pauses playback.
func (c *Client) Pause(ctx context.Context, selector string) (CommandResult, error) {
	return c.playback(ctx, "pause", selector)
}

// Stop stops playback.
func (c *Client) Stop(ctx context.Context, selector string) (CommandResult, error) {
	return c.playback(ctx, "stop", selector)
}

func (c *Client) playback(ctx context.Context, action, selector string) (CommandResult, error) {
	return call[CommandResult](ctx, c, Request{
		Method: http.MethodPost,
		Path:   "/mi/device/playback/" + action,
		Body:   selectorRequest{DeviceSelector: selector},
	})
}

// PlaybackStatus returns the raw player status of the device.
func (c *Client) PlaybackStatus(ctx context.Context, selector string) (PlaybackStatus, error) {
	return call[PlaybackStatus](ctx, c, Request{
		Method: http.MethodGet,
		Path:   "/mi/device/playback/status",
		Query:  url.Values{"device_selector": {selector}},
	})
}

// Volume reads the device volume.
func (c *Client) Volume(ctx context.Context, selector string) (Volume, error) {
	return call[Volume](ctx, c, Request{
		Method: http.MethodGet,
		Path:   "/mi/device/volume",
		Query:  url.Values{"device_selector": {selector}},
	})
}

// SetVolume sets the device volume (0..100).
func (c *Client) SetVolume(ctx context.Context, selector string, level int) (CommandResult, error) {
	return call[CommandResult](ctx, c, Request{
		Method: http.MethodPost,
		Path:   "/mi/device/volume",
		Body:   volumeRequest{DeviceSelector: selector, Volume: level},
	})
}

// Speak reads text aloud on the device.
func (c *Client) Speak(ctx context.Context, selector, text string) (CommandResult, error) {
	return call[CommandResult](ctx, c, Request{
		Method: http.MethodPost,
		Path:   "/mi/device/tts",
		Body:   speakRequest{DeviceSelector: selector, Text: text},
	})
}

func call[T any](ctx context.Context, c *Client, req Request) (T, error) {
	var env envelope[T]
	if err := c.Do(ctx, req, &env); err != nil {
		var zero T
		return zero, err
	}
	return env.Data, nil
}

// check validates decoded payloads: structs directly, slices element by element.
func check(v any) error {
	if env, ok := v.(interface{ payload() any }); ok {
		return check(env.payload())
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Struct:
		return validator.ValidateStruct(rv.Interface())
	case reflect.Slice:
		for i := range rv.Len() {
			if err := check(rv.Index(i).Interface()); err != nil {
				return err
			}
		}
	}
	return nil
}
