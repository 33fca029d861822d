package handlers

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/speakerhub"
	"github.com/dmitrymomot/speakerhub/middlewares"
	"github.com/dmitrymomot/speakerhub/pkg/jwt"
	"github.com/dmitrymomot/speakerhub/pkg/users"
)

const tokenTypeBearer = "bearer"

// TokenResponse is returned by login and refresh.
type TokenResponse struct {
	Message          string `json:"message"`
	AccessToken      string `json:"access_token"`
	RefreshToken     string `json:"refresh_token"`
	TokenType        string `json:"token_type"`
	ExpiresIn        int64  `json:"expires_in"`
	RefreshExpiresIn int64  `json:"refresh_expires_in"`
	Success          bool   `json:"success"`
}

// AuthStatusResponse describes the caller's system session.
type AuthStatusResponse struct {
	Detail        string `json:"detail"`
	User          string `json:"user"`
	ShouldRefresh bool   `json:"should_refresh"`
}

// AuthHandler serves the system login endpoints.
type AuthHandler struct {
	users  *users.Directory
	tokens *jwt.Service
}

// NewAuth creates the system auth handler.
func NewAuth(directory *users.Directory, tokens *jwt.Service) *AuthHandler {
	return &AuthHandler{users: directory, tokens: tokens}
}

// Routes declares the /auth routes. Only /auth/status needs an access token.
func (h *AuthHandler) Routes(r speakerhub.Router) {
	r.POST("/auth/login", h.login)
	r.POST("/auth/refresh", h.refresh)
	r.GET("/auth/status", h.status, middlewares.JWT(h.tokens))
}

func (h *AuthHandler) login(c speakerhub.Context) error {
	var req credentialsRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	subject, err := h.users.Authenticate(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, users.ErrInvalidCredentials) {
			c.LogWarn("system login rejected", "username", req.Username)
			return speakerhub.ErrUnauthorized("invalid username or password",
				speakerhub.WithErrorCode("invalid_credentials"))
		}
		return err
	}

	pair, err := h.tokens.Issue(subject)
	if err != nil {
		return err
	}

	c.LogInfo("system user logged in", "user", subject)
	return c.JSON(http.StatusOK, tokenResponse("login successful", pair))
}

func (h *AuthHandler) refresh(c speakerhub.Context) error {
	var req refreshRequest
	verrs, err := c.BindJSON(&req)
	if err != nil {
		return err
	}
	if len(verrs) > 0 {
		return speakerhub.ErrUnauthorized("refresh token is required",
			speakerhub.WithErrorCode("token_missing"), speakerhub.WithError(verrs))
	}

	pair, err := h.tokens.Refresh(req.RefreshToken)
	if err != nil {
		return middlewares.TokenError(err)
	}
	return c.JSON(http.StatusOK, tokenResponse("token refreshed", pair))
}

func (h *AuthHandler) status(c speakerhub.Context) error {
	claims := middlewares.GetJWTClaims(c)
	if claims == nil {
		return speakerhub.ErrUnauthorized("missing authentication token",
			speakerhub.WithErrorCode("token_missing"))
	}
	return c.JSON(http.StatusOK, AuthStatusResponse{
		Detail:        "logged in",
		User:          claims.Subject,
		ShouldRefresh: h.tokens.ShouldRefresh(claims),
	})
}

func tokenResponse(message string, pair jwt.Pair) TokenResponse {
	return TokenResponse{
		Success:          true,
		Message:          message,
		AccessToken:      pair.AccessToken,
		RefreshToken:     pair.RefreshToken,
		TokenType:        tokenTypeBearer,
		ExpiresIn:        pair.ExpiresIn,
		RefreshExpiresIn: pair.RefreshExpiresIn,
	}
}
