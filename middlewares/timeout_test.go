package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/speakerhub/internal"
	"github.com/dmitrymomot/speakerhub/middlewares"
)

func TestTimeout(t *testing.T) {
	t.Parallel()

	t.Run("fast handler", func(t *testing.T) {
		t.Parallel()

		w := serve(t, httptest.NewRequest(http.MethodGet, "/", nil), ok, middlewares.Timeout(time.Second))
		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, "ok", w.Body.String())
	})

	t.Run("slow handler times out", func(t *testing.T) {
		t.Parallel()

		release := make(chan struct{})
		defer close(release)

		w := serve(t, httptest.NewRequest(http.MethodGet, "/", nil), func(c internal.Context) error {
			select {
			case <-c.Done():
			case <-release:
			}
			return nil
		}, middlewares.Timeout(20*time.Millisecond))

		require.Equal(t, http.StatusGatewayTimeout, w.Code)
		require.JSONEq(t, `{"detail":"request timed out","code":"timeout"}`, w.Body.String())
	})

	t.Run("deadline reaches handler", func(t *testing.T) {
		t.Parallel()

		w := serve(t, httptest.NewRequest(http.MethodGet, "/", nil), func(c internal.Context) error {
			deadline, ok := c.Deadline()
			if !ok || time.Until(deadline) > time.Second {
				return c.String(http.StatusOK, "no deadline")
			}
			return c.String(http.StatusOK, "deadline")
		}, middlewares.Timeout(time.Second))

		require.Equal(t, "deadline", w.Body.String())
	})

	t.Run("non-positive duration uses default", func(t *testing.T) {
		t.Parallel()

		w := serve(t, httptest.NewRequest(http.MethodGet, "/", nil), func(c internal.Context) error {
			deadline, _ := c.Deadline()
			if time.Until(deadline) > middlewares.DefaultTimeout-time.Second {
				return c.String(http.StatusOK, "default")
			}
			return c.String(http.StatusOK, "other")
		}, middlewares.Timeout(0))

		require.Equal(t, "default", w.Body.String())
	})
}
