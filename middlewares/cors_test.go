package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/speakerhub/middlewares"
)

func TestCORS(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		opts        []middlewares.CORSOption
		origin      string
		method      string
		status      int
		allowOrigin string
	}{
		{"no origin", nil, "", http.MethodGet, http.StatusOK, ""},
		{"wildcard", nil, "https://app.example.com", http.MethodGet, http.StatusOK, "*"},
		{
			"listed origin is echoed",
			[]middlewares.CORSOption{middlewares.WithAllowOrigins("https://app.example.com")},
			"https://app.example.com", http.MethodGet, http.StatusOK, "https://app.example.com",
		},
		{
			"unlisted origin gets no headers",
			[]middlewares.CORSOption{middlewares.WithAllowOrigins("https://app.example.com")},
			"https://evil.example.com", http.MethodGet, http.StatusOK, "",
		},
		{
			"credentials echo origin",
			[]middlewares.CORSOption{middlewares.WithAllowCredentials()},
			"https://app.example.com", http.MethodGet, http.StatusOK, "https://app.example.com",
		},
		{
			"origin func",
			[]middlewares.CORSOption{middlewares.WithAllowOriginFunc(func(o string) bool {
				return strings.HasSuffix(o, ".local")
			})},
			"http://speaker.local", http.MethodGet, http.StatusOK, "http://speaker.local",
		},
		{
			"origin func rejects",
			[]middlewares.CORSOption{middlewares.WithAllowOriginFunc(func(o string) bool {
				return strings.HasSuffix(o, ".local")
			})},
			"https://app.example.com", http.MethodGet, http.StatusOK, "",
		},
		{
			"origin func wins over later origin list",
			[]middlewares.CORSOption{
				middlewares.WithAllowOriginFunc(func(o string) bool { return o == "http://speaker.local" }),
				middlewares.WithAllowOrigins("*"),
			},
			"http://speaker.local", http.MethodGet, http.StatusOK, "http://speaker.local",
		},
		{"preflight", nil, "https://app.example.com", http.MethodOptions, http.StatusNoContent, "*"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(tt.method, "/", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}

			w := serve(t, req, ok, middlewares.CORS(tt.opts...))

			require.Equal(t, tt.status, w.Code)
			require.Equal(t, tt.allowOrigin, w.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestCORS_Preflight(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	w := serve(t, req, ok, middlewares.CORS(
		middlewares.WithAllowOrigins("https://app.example.com"),
		middlewares.WithAllowCredentials(),
		middlewares.WithMaxAge(time.Hour),
	))

	require.Equal(t, http.StatusNoContent, w.Code)
	require.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
	require.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Authorization")
	require.Equal(t, "3600", w.Header().Get("Access-Control-Max-Age"))
	require.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	require.Equal(t, middlewares.RequestIDHeader, w.Header().Get("Access-Control-Expose-Headers"))
}
