package console

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/dmitrymomot/speakerhub/pkg/apiclient"
	"github.com/dmitrymomot/speakerhub/pkg/validator"
)

// Device commands take an optional selector. An empty selector targets the
// selected device. Every command is refused before any request when the
// vendor account is logged out or nothing can be targeted.

// PlayURL streams rawURL on the device.
func (c *Console) PlayURL(ctx context.Context, selector, rawURL string) (apiclient.CommandResult, error) {
	if err := validator.Var("url", rawURL, "required,url"); err != nil {
		return apiclient.CommandResult{}, errors.Join(ErrInvalidInput, err)
	}
	return guarded(ctx, c, selector, func(sel string) (apiclient.CommandResult, error) {
		return c.api.PlayURL(ctx, sel, rawURL, 2)
	})
}

// Play resumes playback.
func (c *Console) Play(ctx context.Context, selector string) (apiclient.CommandResult, error) {
	return guarded(ctx, c, selector, func(sel string) (apiclient.CommandResult, error) {
		return c.api.Play(ctx, sel)
	})
}

// Pause pauses playback.
func (c *Console) Pause(ctx context.Context, selector string) (apiclient.CommandResult, error) {
	return guarded(ctx, c, selector, func(sel string) (apiclient.CommandResult, error) {
		return c.api.Pause(ctx, sel)
	})
}

// Stop stops playback.
func (c *Console) Stop(ctx context.Context, selector string) (apiclient.CommandResult, error) {
	return guarded(ctx, c, selector, func(sel string) (apiclient.CommandResult, error) {
		return c.api.Stop(ctx, sel)
	})
}

// PlaybackStatus returns the player status of the device.
func (c *Console) PlaybackStatus(ctx context.Context, selector string) (apiclient.PlaybackStatus, error) {
	return guarded(ctx, c, selector, func(sel string) (apiclient.PlaybackStatus, error) {
		return c.api.PlaybackStatus(ctx, sel)
	})
}

// Volume reads the device volume.
func (c *Console) Volume(ctx context.Context, selector string) (apiclient.Volume, error) {
	return guarded(ctx, c, selector, func(sel string) (apiclient.Volume, error) {
		return c.api.Volume(ctx, sel)
	})
}

// SetVolume sets the device volume (0..100).
func (c *Console) SetVolume(ctx context.Context, selector string, level int) (apiclient.CommandResult, error) {
	if err := validator.Var("volume", level, "min=0,max=100"); err != nil {
		return apiclient.CommandResult{}, errors.Join(ErrInvalidInput, err)
	}
	return guarded(ctx, c, selector, func(sel string) (apiclient.CommandResult, error) {
		return c.api.SetVolume(ctx, sel, level)
	})
}

// Speak reads text aloud on the device.
func (c *Console) Speak(ctx context.Context, selector, text string) (apiclient.CommandResult, error) {
	if err := validator.Var("text", text, "notblank,max=500"); err != nil {
		return apiclient.CommandResult{}, errors.Join(ErrInvalidInput, err)
	}
	return guarded(ctx, c, selector, func(sel string) (apiclient.CommandResult, error) {
		return c.api.Speak(ctx, sel, text)
	})
}

// Target returns the selector a command would use, or ErrVendorNotConnected.
func (c *Console) Target(selector string) (string, error) {
	if !c.IsAuthenticated() {
		return "", ErrNotAuthenticated
	}
	if !c.tracker.State().LoggedIn {
		return "", ErrVendorNotConnected
	}
	if s := strings.TrimSpace(selector); s != "" {
		return s, nil
	}
	if s := c.dir.ResolveSelector(nil); s != "" {
		return s, nil
	}
	return "", ErrVendorNotConnected
}

func guarded[T any](ctx context.Context, c *Console, selector string, fn func(string) (T, error)) (T, error) {
	var zero T

	sel, err := c.Target(selector)
	if err != nil {
		return zero, err
	}

	res, err := fn(sel)
	if errors.Is(err, ErrVendorNotConnected) {
		// The gateway says the vendor session is gone; believe it.
		if merr := c.tracker.MarkLoggedOut(ctx); merr != nil {
			c.logger.WarnContext(ctx, "failed to record vendor logout", slog.Any("error", merr))
		}
	}
	if err != nil {
		return zero, err
	}
	return res, nil
}
