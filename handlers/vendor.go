package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrymomot/speakerhub"
	"github.com/dmitrymomot/speakerhub/middlewares"
	"github.com/dmitrymomot/speakerhub/pkg/jwt"
	"github.com/dmitrymomot/speakerhub/pkg/vendor"
)

// VendorStatus is the payload of /mi/account/status.
type VendorStatus struct {
	UserID       string `json:"user_id,omitempty"`
	DevicesCount int    `json:"devices_count,omitempty"`
	LoggedIn     bool   `json:"logged_in"`
}

// VendorOption configures the vendor account handler.
type VendorOption func(*VendorHandler)

// WithDefaultAccount sets the vendor account used when a login request
// carries no credentials.
func WithDefaultAccount(username, password string) VendorOption {
	return func(h *VendorHandler) {
		h.defaultUser = username
		h.defaultPass = password
	}
}

// VendorHandler manages the gateway's vendor session.
type VendorHandler struct {
	provider    *vendor.Provider
	tokens      *jwt.Service
	defaultUser string
	defaultPass string
}

// NewVendor creates the vendor account handler.
func NewVendor(provider *vendor.Provider, tokens *jwt.Service, opts ...VendorOption) *VendorHandler {
	h := &VendorHandler{provider: provider, tokens: tokens}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Routes declares the /mi/account routes behind the JWT middleware.
func (h *VendorHandler) Routes(r speakerhub.Router) {
	r.Group(func(r speakerhub.Router) {
		r.Use(middlewares.JWT(h.tokens))

		r.Route("/mi/account", func(r speakerhub.Router) {
			r.POST("/login", h.login)
			r.POST("/logout", h.logout)
			r.GET("/status", h.status)
		})
	})
}

func (h *VendorHandler) login(c speakerhub.Context) error {
	var req vendorLoginRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	username, password := strings.TrimSpace(req.Username), req.Password
	if username == "" && password == "" {
		username, password = h.defaultUser, h.defaultPass
	}
	if username == "" || password == "" {
		return speakerhub.ErrBadRequest("vendor username and password are required",
			speakerhub.WithErrorCode("vendor_credentials_required"))
	}

	if err := h.provider.Login(c.Context(), username, password); err != nil {
		if errors.Is(err, vendor.ErrLoginFailed) || errors.Is(err, vendor.ErrCredentialsRequired) {
			c.LogWarn("vendor login failed", "vendor_user", username, "error", err)
			return speakerhub.ErrBadRequest("vendor login failed",
				speakerhub.WithErrorCode("vendor_login_failed"), speakerhub.WithError(err))
		}
		return err
	}

	list, err := h.provider.Devices(c.Context())
	if err != nil {
		return vendorError(err)
	}
	return success(c, "vendor login successful", map[string]int{"devices_count": len(list)})
}

func (h *VendorHandler) logout(c speakerhub.Context) error {
	if err := h.provider.Logout(c.Context()); err != nil {
		return err
	}
	return success(c, "vendor account logged out", nil)
}

func (h *VendorHandler) status(c speakerhub.Context) error {
	sess, err := h.provider.Session()
	if err != nil {
		return c.JSON(http.StatusOK, Response{
			Success: false,
			Message: "vendor account is not logged in",
			Data:    VendorStatus{LoggedIn: false},
		})
	}

	list, err := h.provider.Devices(c.Context())
	if err != nil {
		return vendorError(err)
	}
	return success(c, "vendor account is logged in", VendorStatus{
		LoggedIn:     true,
		DevicesCount: len(list),
		UserID:       sess.UserID(),
	})
}
