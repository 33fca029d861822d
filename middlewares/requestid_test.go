package middlewares_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/speakerhub/internal"
	"github.com/dmitrymomot/speakerhub/middlewares"
	"github.com/dmitrymomot/speakerhub/pkg/logger"
)

func echoRequestID(c internal.Context) error {
	return c.String(http.StatusOK, middlewares.GetRequestID(c))
}

func TestRequestID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		headers map[string]string
		opts    []middlewares.RequestIDOption
		want    string
	}{
		{"preserves X-Request-ID", map[string]string{"X-Request-ID": "upstream"}, nil, "upstream"},
		{"falls back to X-Correlation-ID", map[string]string{"X-Correlation-ID": "corr"}, nil, "corr"},
		{"X-Request-ID wins", map[string]string{"X-Request-ID": "a", "X-Correlation-ID": "b"}, nil, "a"},
		{"custom generator", nil, []middlewares.RequestIDOption{middlewares.WithRequestIDGenerator(func() string { return "gen" })}, "gen"},
		{
			"custom headers",
			map[string]string{"X-Trace": "trace", "X-Request-ID": "ignored"},
			[]middlewares.RequestIDOption{middlewares.WithRequestIDHeaders("X-Trace")},
			"trace",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}

			w := serve(t, req, echoRequestID, middlewares.RequestID(tt.opts...))

			require.Equal(t, tt.want, w.Body.String())
			require.Equal(t, tt.want, w.Header().Get(middlewares.RequestIDHeader))
		})
	}
}

func TestRequestID_Generated(t *testing.T) {
	t.Parallel()

	first := serve(t, httptest.NewRequest(http.MethodGet, "/", nil), echoRequestID, middlewares.RequestID())
	second := serve(t, httptest.NewRequest(http.MethodGet, "/", nil), echoRequestID, middlewares.RequestID())

	require.Len(t, first.Body.String(), 36)
	require.NotEqual(t, first.Body.String(), second.Body.String())
}

func TestRequestIDExtractor(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(logger.Config{Format: "json", Output: &buf}, middlewares.RequestIDExtractor(), middlewares.UserExtractor())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-7")

	serve(t, req, func(c internal.Context) error {
		c.Set(internal.SubjectKey{}, "alice")
		log.InfoContext(c.Context(), "handled")
		return c.NoContent(http.StatusNoContent)
	}, middlewares.RequestID())

	require.Contains(t, buf.String(), `"request_id":"req-7"`)
	require.Contains(t, buf.String(), `"user":"alice"`)

	_, ok := middlewares.RequestIDExtractor()(context.Background())
	require.False(t, ok)

	_, ok = middlewares.UserExtractor()(context.Background())
	require.False(t, ok)

}
