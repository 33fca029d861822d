package handlers

import (
	"fmt"
	"net/http"

	"github.com/dmitrymomot/speakerhub"
	"github.com/dmitrymomot/speakerhub/middlewares"
	"github.com/dmitrymomot/speakerhub/pkg/jwt"
	"github.com/dmitrymomot/speakerhub/pkg/validator"
	"github.com/dmitrymomot/speakerhub/pkg/vendor"
)

// PlaybackStatus is the payload of /mi/device/playback/status.
type PlaybackStatus struct {
	Status   map[string]any `json:"status"`
	DeviceID string         `json:"device_id"`
}

// VolumeData is the payload of GET /mi/device/volume.
type VolumeData struct {
	DeviceID string `json:"device_id"`
	Volume   int    `json:"volume"`
}

// DeviceHandler lists speakers and sends them commands.
type DeviceHandler struct {
	provider *vendor.Provider
	tokens   *jwt.Service
}

// NewDevice creates the device handler.
func NewDevice(provider *vendor.Provider, tokens *jwt.Service) *DeviceHandler {
	return &DeviceHandler{provider: provider, tokens: tokens}
}

// Routes declares /devices and the /mi/device command routes behind the JWT middleware.
func (h *DeviceHandler) Routes(r speakerhub.Router) {
	r.Group(func(r speakerhub.Router) {
		r.Use(middlewares.JWT(h.tokens))

		r.GET("/devices", h.list)
		r.Route("/mi/device", func(r speakerhub.Router) {
			r.POST("/playback/play-url", h.playURL)
			r.POST("/playback/play", h.playback(vendor.ActionPlay, "resume command sent"))
			r.POST("/playback/pause", h.playback(vendor.ActionPause, "pause command sent"))
			r.POST("/playback/stop", h.playback(vendor.ActionStop, "stop command sent"))
			r.GET("/playback/status", h.playbackStatus)
			r.GET("/volume", h.volume)
			r.POST("/volume", h.setVolume)
			r.POST("/tts", h.speak)
		})
	})
}

func (h *DeviceHandler) list(c speakerhub.Context) error {
	list, err := h.provider.Devices(c.Context())
	if err != nil {
		return vendorError(err)
	}
	return success(c, fmt.Sprintf("found %d devices", len(list)), list)
}

func (h *DeviceHandler) playURL(c speakerhub.Context) error {
	var req playURLRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.Type == 0 {
		req.Type = vendor.PlayKindOther
	}

	res, err := h.provider.PlayURL(c.Context(), req.DeviceSelector, req.URL, req.Type)
	if err != nil {
		return vendorError(err)
	}
	return success(c, "play command sent", CommandData{Result: res.Result, DeviceID: res.DeviceID})
}

func (h *DeviceHandler) playback(action, message string) speakerhub.HandlerFunc {
	return func(c speakerhub.Context) error {
		var req selectorRequest
		if err := bind(c, &req); err != nil {
			return err
		}

		res, err := h.provider.Playback(c.Context(), req.DeviceSelector, action)
		if err != nil {
			return vendorError(err)
		}
		return success(c, message, CommandData{Result: res.Result, DeviceID: res.DeviceID})
	}
}

func (h *DeviceHandler) playbackStatus(c speakerhub.Context) error {
	selector, err := selectorQuery(c)
	if err != nil {
		return err
	}

	st, err := h.provider.PlaybackStatus(c.Context(), selector)
	if err != nil {
		return vendorError(err)
	}
	return c.JSON(http.StatusOK, Response{
		Success: st.OK,
		Message: "playback status",
		Data:    PlaybackStatus{Status: st.Raw, DeviceID: st.DeviceID},
	})
}

func (h *DeviceHandler) volume(c speakerhub.Context) error {
	selector, err := selectorQuery(c)
	if err != nil {
		return err
	}

	level, deviceID, err := h.provider.Volume(c.Context(), selector)
	if err != nil {
		return vendorError(err)
	}
	return success(c, "current volume", VolumeData{Volume: level, DeviceID: deviceID})
}

func (h *DeviceHandler) setVolume(c speakerhub.Context) error {
	var req volumeRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	res, err := h.provider.SetVolume(c.Context(), req.DeviceSelector, *req.Volume)
	if err != nil {
		return vendorError(err)
	}
	return success(c, fmt.Sprintf("volume set to %d", *req.Volume),
		CommandData{Result: res.Result, DeviceID: res.DeviceID})
}

func (h *DeviceHandler) speak(c speakerhub.Context) error {
	var req speakRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	res, err := h.provider.Speak(c.Context(), req.DeviceSelector, req.Text)
	if err != nil {
		return vendorError(err)
	}
	return success(c, fmt.Sprintf("text-to-speech command sent (%s)", res.Channel),
		CommandData{Result: res.Result, DeviceID: res.DeviceID})
}

// bind decodes and validates a JSON body, returning validation failures as the error.
func bind(c speakerhub.Context, v any) error {
	verrs, err := c.BindJSON(v)
	if err != nil {
		return err
	}
	if len(verrs) > 0 {
		return verrs
	}
	return nil
}

func selectorQuery(c speakerhub.Context) (string, error) {
	selector := c.Query("device_selector")
	if err := validator.Var("device_selector", selector, "selector"); err != nil {
		return "", err
	}
	return selector, nil
}
