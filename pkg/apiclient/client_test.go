package apiclient_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/speakerhub/pkg/apiclient"
	"github.com/dmitrymomot/speakerhub/pkg/session"
)

type backend struct {
	validToken    atomic.Value
	refreshCalls  atomic.Int32
	devicesCalls  atomic.Int32
	rejectRefresh atomic.Bool
	always401     atomic.Bool
	refreshDelay  time.Duration
}

func newBackend(t *testing.T, valid string) (*backend, *httptest.Server) {
	t.Helper()

	b := &backend{}
	b.validToken.Store(valid)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req struct{ Username, Password string }
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Password != "secret" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "invalid username or password"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true, "message": "ok", "token_type": "bearer",
			"access_token": valid, "refresh_token": "refresh-1",
			"expires_in": 3600, "refresh_expires_in": 604800,
		})
	})
	mux.HandleFunc("POST /auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		n := b.refreshCalls.Add(1)
		time.Sleep(b.refreshDelay)
		if b.rejectRefresh.Load() {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "refresh token expired"})
			return
		}
		var req struct {
			RefreshToken string `json:"refresh_token"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.RefreshToken == "" {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": "refresh_token is required"})
			return
		}
		token := "access-" + string(rune('1'+n))
		b.validToken.Store(token)
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true, "access_token": token, "refresh_token": "refresh-" + string(rune('1'+n)),
			"expires_in": 3600, "refresh_expires_in": 604800,
		})
	})
	mux.HandleFunc("GET /devices", func(w http.ResponseWriter, r *http.Request) {
		b.devicesCalls.Add(1)
		if b.always401.Load() || r.Header.Get("Authorization") != "Bearer "+b.validToken.Load().(string) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "token expired"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"data": []map[string]any{
				{"deviceID": "dev-1", "name": "Speaker-07", "alias": "Living Room", "hardware": "LX06"},
			},
		})
	})
	mux.HandleFunc("GET /mi/device/volume", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("device_selector") {
		case "offline":
			writeJSON(w, http.StatusForbidden, map[string]string{"detail": "vendor account not logged in", "code": "vendor_not_connected"})
		case "broken":
			writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "failed to get volume"})
		case "unknown":
			writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "device not found: unknown"})
		case "malformed":
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": map[string]any{"volume": 40}})
		default:
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": map[string]any{"volume": 40, "device_id": "dev-1"}})
		}
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return b, srv
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func loggedIn(t *testing.T, access string) *session.Session {
	t.Helper()

	sess, err := session.Open(context.Background(), session.NewMemoryStore())
	require.NoError(t, err)
	require.NoError(t, sess.SetCredential(context.Background(), session.Credential{
		AccessToken:  access,
		RefreshToken: "refresh-1",
	}))
	return sess
}

func TestDo_AttachesBearerToken(t *testing.T) {
	t.Parallel()

	b, srv := newBackend(t, "access-1")
	client := apiclient.New(srv.URL, loggedIn(t, "access-1"))

	devices, err := client.Devices(context.Background())
	require.NoError(t, err)
	require.Len(t, devices, 1)
	assert.Equal(t, "Living Room", devices[0].Alias)
	assert.Zero(t, b.refreshCalls.Load())
}

func TestDo_ConcurrentUnauthorizedRefreshOnce(t *testing.T) {
	t.Parallel()

	b, srv := newBackend(t, "access-fresh")
	b.refreshDelay = 30 * time.Millisecond
	sess := loggedIn(t, "access-stale")
	client := apiclient.New(srv.URL, sess)

	const callers = 10
	var wg sync.WaitGroup
	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			devices, err := client.Devices(context.Background())
			assert.NoError(t, err)
			assert.Len(t, devices, 1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), b.refreshCalls.Load())

	cred, ok := sess.Credential()
	require.True(t, ok)
	assert.Equal(t, "access-2", cred.AccessToken)
	assert.Equal(t, "refresh-2", cred.RefreshToken)
	assert.Equal(t, time.Hour, cred.AccessTTL)
}

func TestDo_SecondUnauthorizedIsFatal(t *testing.T) {
	t.Parallel()

	b, srv := newBackend(t, "access-1")
	b.always401.Store(true)
	sess := loggedIn(t, "access-1")
	client := apiclient.New(srv.URL, sess)

	var expired atomic.Int32
	client.Coordinator().OnExpired(func(context.Context, error) { expired.Add(1) })

	_, err := client.Devices(context.Background())
	require.ErrorIs(t, err, apiclient.ErrAuthExpired)

	assert.Equal(t, int32(1), b.refreshCalls.Load())
	assert.Equal(t, int32(2), b.devicesCalls.Load())
	assert.Equal(t, int32(1), expired.Load())

	_, ok := sess.Credential()
	assert.False(t, ok)
}

func TestDo_RefreshFailureExpiresSession(t *testing.T) {
	t.Parallel()

	b, srv := newBackend(t, "access-fresh")
	b.rejectRefresh.Store(true)
	sess := loggedIn(t, "access-stale")
	client := apiclient.New(srv.URL, sess)

	_, err := client.Devices(context.Background())
	require.ErrorIs(t, err, apiclient.ErrAuthExpired)
	assert.Equal(t, int32(1), b.devicesCalls.Load())

	_, ok := sess.Credential()
	assert.False(t, ok)

	// Without a credential the next call goes out anonymously and expires again
	// without reaching the refresh endpoint.
	_, err = client.Devices(context.Background())
	require.ErrorIs(t, err, apiclient.ErrAuthExpired)
	assert.Equal(t, int32(1), b.refreshCalls.Load())
}

func TestDo_FailuresPassThroughWithoutRetry(t *testing.T) {
	t.Parallel()

	tests := []struct {
		selector string
		want     error
		detail   string
	}{
		{selector: "offline", want: apiclient.ErrVendorNotConnected, detail: "vendor account not logged in"},
		{selector: "broken", want: apiclient.ErrServer, detail: "failed to get volume"},
		{selector: "unknown", want: apiclient.ErrValidation, detail: "device not found: unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.selector, func(t *testing.T) {
			t.Parallel()

			b, srv := newBackend(t, "access-1")
			client := apiclient.New(srv.URL, loggedIn(t, "access-1"))

			_, err := client.Volume(context.Background(), tt.selector)
			require.ErrorIs(t, err, tt.want)
			assert.Equal(t, tt.detail, err.Error())

			var re *apiclient.ResponseError
			require.ErrorAs(t, err, &re)
			assert.Zero(t, b.refreshCalls.Load())
		})
	}
}

func TestDo_MalformedPayload(t *testing.T) {
	t.Parallel()

	_, srv := newBackend(t, "access-1")
	client := apiclient.New(srv.URL, loggedIn(t, "access-1"))

	_, err := client.Volume(context.Background(), "malformed")
	require.ErrorIs(t, err, apiclient.ErrValidation)
	assert.Contains(t, err.Error(), "device_id is required")
}

func TestDo_NetworkFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	sess := loggedIn(t, "access-1")
	client := apiclient.New(url, sess, apiclient.WithTimeout(time.Second))

	_, err := client.Devices(context.Background())
	require.ErrorIs(t, err, apiclient.ErrTransientNetwork)

	_, ok := sess.Credential()
	assert.True(t, ok, "network failures leave the session alone")
}

func TestLogin(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		_, srv := newBackend(t, "access-1")
		sess, err := session.Open(context.Background(), session.NewMemoryStore())
		require.NoError(t, err)
		client := apiclient.New(srv.URL, sess)

		resp, err := client.Login(context.Background(), "admin", "secret")
		require.NoError(t, err)

		cred := resp.Credential()
		assert.Equal(t, "access-1", cred.AccessToken)
		assert.Equal(t, "refresh-1", cred.RefreshToken)
		assert.Equal(t, time.Hour, cred.AccessTTL)
		assert.Equal(t, 7*24*time.Hour, cred.RefreshTTL)
	})

	t.Run("bad password is not refreshed", func(t *testing.T) {
		t.Parallel()

		b, srv := newBackend(t, "access-1")
		client := apiclient.New(srv.URL, loggedIn(t, "access-1"))

		_, err := client.Login(context.Background(), "admin", "nope")
		require.ErrorIs(t, err, apiclient.ErrUnauthorized)
		assert.True(t, strings.Contains(err.Error(), "invalid username"))
		assert.Zero(t, b.refreshCalls.Load())
	})
}

func TestDo_ProactiveRefresh(t *testing.T) {
	t.Parallel()

	b, srv := newBackend(t, "access-1")

	issued := time.Now().Add(-55 * time.Minute)
	sess, err := session.Open(context.Background(), session.NewMemoryStore())
	require.NoError(t, err)
	require.NoError(t, sess.SetCredential(context.Background(), session.Credential{
		IssuedAt:     issued,
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		AccessTTL:    time.Hour,
	}))

	client := apiclient.New(srv.URL, sess, apiclient.WithRefreshThreshold(10*time.Minute))

	_, err = client.Devices(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), b.refreshCalls.Load())
	assert.Equal(t, int32(1), b.devicesCalls.Load(), "token was refreshed before the first call")
}
