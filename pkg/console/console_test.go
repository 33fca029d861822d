package console_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/speakerhub/pkg/apiclient"
	"github.com/dmitrymomot/speakerhub/pkg/console"
	"github.com/dmitrymomot/speakerhub/pkg/session"
)

// gateway is a minimal stand-in for the speakerhub server.
type gateway struct {
	mu             sync.Mutex
	access         string
	vendorLoggedIn bool
	devices        []map[string]any
	failVendorOut  bool
	rejectRefresh  bool
	commands       atomic.Int32
	vendorLogouts  atomic.Int32
	lastSelector   atomic.Value
}

func (g *gateway) authorized(r *http.Request) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return r.Header.Get("Authorization") == "Bearer "+g.access
}

func (g *gateway) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req struct{ Username, Password string }
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Password != "secret" {
			reply(w, http.StatusUnauthorized, map[string]string{"detail": "invalid username or password"})
			return
		}
		g.mu.Lock()
		g.access = "access-1"
		g.mu.Unlock()
		reply(w, http.StatusOK, map[string]any{
			"success": true, "access_token": "access-1", "refresh_token": "refresh-1",
			"token_type": "bearer", "expires_in": 3600, "refresh_expires_in": 604800,
		})
	})

	mux.HandleFunc("POST /auth/refresh", func(w http.ResponseWriter, _ *http.Request) {
		g.mu.Lock()
		defer g.mu.Unlock()
		if g.rejectRefresh {
			reply(w, http.StatusUnauthorized, map[string]string{"detail": "refresh token expired"})
			return
		}
		g.access = "access-2"
		reply(w, http.StatusOK, map[string]any{"success": true, "access_token": "access-2", "refresh_token": "refresh-2", "expires_in": 3600})
	})

	protected := func(fn http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if !g.authorized(r) {
				reply(w, http.StatusUnauthorized, map[string]string{"detail": "token expired"})
				return
			}
			fn(w, r)
		}
	}
	vendorOnly := func(fn http.HandlerFunc) http.HandlerFunc {
		return protected(func(w http.ResponseWriter, r *http.Request) {
			g.mu.Lock()
			in := g.vendorLoggedIn
			g.mu.Unlock()
			if !in {
				reply(w, http.StatusForbidden, map[string]string{"detail": "vendor account not logged in", "code": "vendor_not_connected"})
				return
			}
			fn(w, r)
		})
	}

	mux.HandleFunc("POST /mi/account/login", protected(func(w http.ResponseWriter, _ *http.Request) {
		g.mu.Lock()
		g.vendorLoggedIn = true
		n := len(g.devices)
		g.mu.Unlock()
		reply(w, http.StatusOK, map[string]any{"success": true, "data": map[string]any{"devices_count": n}})
	}))
	mux.HandleFunc("POST /mi/account/logout", protected(func(w http.ResponseWriter, _ *http.Request) {
		g.vendorLogouts.Add(1)
		g.mu.Lock()
		defer g.mu.Unlock()
		if g.failVendorOut {
			reply(w, http.StatusInternalServerError, map[string]string{"detail": "vendor unreachable"})
			return
		}
		g.vendorLoggedIn = false
		reply(w, http.StatusOK, map[string]any{"success": true})
	}))
	mux.HandleFunc("GET /mi/account/status", protected(func(w http.ResponseWriter, _ *http.Request) {
		g.mu.Lock()
		defer g.mu.Unlock()
		if !g.vendorLoggedIn {
			reply(w, http.StatusOK, map[string]any{"success": false, "data": map[string]any{"logged_in": false}})
			return
		}
		reply(w, http.StatusOK, map[string]any{"success": true, "data": map[string]any{"logged_in": true, "devices_count": len(g.devices)}})
	}))
	mux.HandleFunc("GET /devices", vendorOnly(func(w http.ResponseWriter, _ *http.Request) {
		g.mu.Lock()
		defer g.mu.Unlock()
		reply(w, http.StatusOK, map[string]any{"success": true, "data": g.devices})
	}))
	mux.HandleFunc("POST /mi/device/volume", vendorOnly(func(w http.ResponseWriter, r *http.Request) {
		g.commands.Add(1)
		var req struct {
			DeviceSelector string `json:"device_selector"`
			Volume         int    `json:"volume"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		g.lastSelector.Store(req.DeviceSelector)
		reply(w, http.StatusOK, map[string]any{"success": true, "data": map[string]any{"result": "ok", "device_id": "dev-1"}})
	}))
	mux.HandleFunc("POST /mi/device/tts", vendorOnly(func(w http.ResponseWriter, _ *http.Request) {
		g.commands.Add(1)
		reply(w, http.StatusOK, map[string]any{"success": true, "data": map[string]any{"result": "ok", "device_id": "dev-1"}})
	}))

	return mux
}

func reply(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func setup(t *testing.T, g *gateway) (*console.Console, *session.Session) {
	t.Helper()

	if g.devices == nil {
		g.devices = []map[string]any{
			{"deviceID": "dev-1", "name": "Speaker-07", "alias": "Living Room", "hardware": "LX06"},
			{"deviceID": "dev-2", "name": "Speaker-08"},
		}
	}
	srv := httptest.NewServer(g.handler())
	t.Cleanup(srv.Close)

	sess, err := session.Open(context.Background(), session.NewMemoryStore())
	require.NoError(t, err)
	return console.New(sess, apiclient.New(srv.URL, sess)), sess
}

func TestLogin(t *testing.T) {
	t.Parallel()

	t.Run("system only when vendor is logged out", func(t *testing.T) {
		t.Parallel()

		con, _ := setup(t, &gateway{})
		assert.Equal(t, console.Unauthenticated, con.Status())

		status, err := con.Login(context.Background(), "admin", "secret")
		require.NoError(t, err)
		assert.Equal(t, console.SystemOnly, status)
		assert.True(t, con.IsAuthenticated())
		assert.False(t, con.VendorLoggedIn())
	})

	t.Run("existing vendor session is picked up", func(t *testing.T) {
		t.Parallel()

		con, sess := setup(t, &gateway{vendorLoggedIn: true})

		status, err := con.Login(context.Background(), "admin", "secret")
		require.NoError(t, err)
		assert.Equal(t, console.FullyConnected, status)
		assert.Len(t, con.Directory().Devices(), 2)

		sel, ok := sess.Selection()
		require.True(t, ok)
		assert.Equal(t, "dev-1", sel.DeviceID)
	})

	t.Run("bad password", func(t *testing.T) {
		t.Parallel()

		con, _ := setup(t, &gateway{})

		status, err := con.Login(context.Background(), "admin", "wrong")
		require.ErrorIs(t, err, apiclient.ErrUnauthorized)
		assert.Equal(t, console.Unauthenticated, status)
	})
}

func TestVendorLogin(t *testing.T) {
	t.Parallel()

	t.Run("connects and loads devices", func(t *testing.T) {
		t.Parallel()

		con, _ := setup(t, &gateway{})
		_, err := con.Login(context.Background(), "admin", "secret")
		require.NoError(t, err)

		status, err := con.VendorLogin(context.Background(), "mi-user", "mi-pass")
		require.NoError(t, err)
		assert.Equal(t, console.FullyConnected, status)
		assert.Equal(t, 2, con.Vendor().DeviceCount)
		assert.Equal(t, "Living Room", con.Directory().ResolveSelector(nil))
	})

	t.Run("requires system session", func(t *testing.T) {
		t.Parallel()

		con, _ := setup(t, &gateway{})
		_, err := con.VendorLogin(context.Background(), "mi-user", "mi-pass")
		require.ErrorIs(t, err, console.ErrNotAuthenticated)
	})
}

func TestVendorLogout(t *testing.T) {
	t.Parallel()

	con, sess := setup(t, &gateway{vendorLoggedIn: true})
	_, err := con.Login(context.Background(), "admin", "secret")
	require.NoError(t, err)

	require.NoError(t, con.VendorLogout(context.Background()))
	assert.Equal(t, console.SystemOnly, con.Status())
	assert.Empty(t, con.Directory().Devices())

	_, ok := sess.Selection()
	assert.True(t, ok, "selection survives a vendor logout")
}

func TestLogout(t *testing.T) {
	t.Parallel()

	t.Run("clears tokens even when vendor logout fails", func(t *testing.T) {
		t.Parallel()

		g := &gateway{vendorLoggedIn: true, failVendorOut: true}
		con, sess := setup(t, g)
		_, err := con.Login(context.Background(), "admin", "secret")
		require.NoError(t, err)
		require.Equal(t, console.FullyConnected, con.Status())

		require.NoError(t, con.Logout(context.Background()))

		assert.Equal(t, int32(1), g.vendorLogouts.Load())
		_, ok := sess.Credential()
		assert.False(t, ok)
		_, ok = sess.Vendor()
		assert.False(t, ok)
		assert.Equal(t, console.Unauthenticated, con.Status())
	})

	t.Run("system only skips vendor logout", func(t *testing.T) {
		t.Parallel()

		g := &gateway{}
		con, _ := setup(t, g)
		_, err := con.Login(context.Background(), "admin", "secret")
		require.NoError(t, err)

		require.NoError(t, con.Logout(context.Background()))
		assert.Zero(t, g.vendorLogouts.Load())
		assert.False(t, con.IsAuthenticated())
	})
}

func TestExpiry(t *testing.T) {
	t.Parallel()

	g := &gateway{vendorLoggedIn: true}
	con, sess := setup(t, g)
	_, err := con.Login(context.Background(), "admin", "secret")
	require.NoError(t, err)
	require.Equal(t, console.FullyConnected, con.Status())

	// The server forgets the token and refuses to refresh it.
	g.mu.Lock()
	g.access = "rotated-elsewhere"
	g.rejectRefresh = true
	g.mu.Unlock()

	err = con.Sync(context.Background())
	require.ErrorIs(t, err, apiclient.ErrAuthExpired)

	assert.Equal(t, console.Unauthenticated, con.Status())
	assert.False(t, con.VendorLoggedIn())
	_, ok := sess.Vendor()
	assert.False(t, ok)
	assert.Empty(t, con.Directory().Devices())
}

func TestCommands(t *testing.T) {
	t.Parallel()

	t.Run("vendor logged out is refused locally", func(t *testing.T) {
		t.Parallel()

		g := &gateway{}
		con, _ := setup(t, g)
		_, err := con.Login(context.Background(), "admin", "secret")
		require.NoError(t, err)

		_, err = con.SetVolume(context.Background(), "Living Room", 30)
		require.ErrorIs(t, err, console.ErrVendorNotConnected)
		assert.Zero(t, g.commands.Load())
	})

	t.Run("no resolvable device is refused locally", func(t *testing.T) {
		t.Parallel()

		g := &gateway{vendorLoggedIn: true, devices: []map[string]any{}}
		con, _ := setup(t, g)
		_, err := con.Login(context.Background(), "admin", "secret")
		require.NoError(t, err)

		_, err = con.Speak(context.Background(), "", "hello")
		require.ErrorIs(t, err, console.ErrVendorNotConnected)
		assert.Zero(t, g.commands.Load())
	})

	t.Run("targets selected device", func(t *testing.T) {
		t.Parallel()

		g := &gateway{vendorLoggedIn: true}
		con, _ := setup(t, g)
		_, err := con.Login(context.Background(), "admin", "secret")
		require.NoError(t, err)

		res, err := con.SetVolume(context.Background(), "", 30)
		require.NoError(t, err)
		assert.Equal(t, "dev-1", res.DeviceID)
		assert.Equal(t, "Living Room", g.lastSelector.Load())
	})

	t.Run("restored session targets the selected id", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		g := &gateway{vendorLoggedIn: true}
		con, sess := setup(t, g)
		_, err := con.Login(ctx, "admin", "secret")
		require.NoError(t, err)

		srv := httptest.NewServer(g.handler())
		t.Cleanup(srv.Close)
		store := session.NewMemoryStore()
		require.NoError(t, store.Save(ctx, sess.Snapshot()))
		restored, err := session.Open(ctx, store)
		require.NoError(t, err)
		next := console.New(restored, apiclient.New(srv.URL, restored))

		_, err = next.SetVolume(ctx, "", 30)
		require.NoError(t, err)
		assert.Equal(t, "dev-1", g.lastSelector.Load())
	})

	t.Run("explicit selector wins", func(t *testing.T) {
		t.Parallel()

		g := &gateway{vendorLoggedIn: true}
		con, _ := setup(t, g)
		_, err := con.Login(context.Background(), "admin", "secret")
		require.NoError(t, err)

		_, err = con.SetVolume(context.Background(), "Speaker-08", 30)
		require.NoError(t, err)
		assert.Equal(t, "Speaker-08", g.lastSelector.Load())
	})

	t.Run("invalid volume never reaches the gateway", func(t *testing.T) {
		t.Parallel()

		g := &gateway{vendorLoggedIn: true}
		con, _ := setup(t, g)
		_, err := con.Login(context.Background(), "admin", "secret")
		require.NoError(t, err)

		_, err = con.SetVolume(context.Background(), "", 150)
		require.ErrorIs(t, err, console.ErrInvalidInput)
		assert.Zero(t, g.commands.Load())
	})

	t.Run("gateway vendor rejection marks vendor logged out", func(t *testing.T) {
		t.Parallel()

		g := &gateway{vendorLoggedIn: true}
		con, _ := setup(t, g)
		_, err := con.Login(context.Background(), "admin", "secret")
		require.NoError(t, err)
		require.True(t, con.VendorLoggedIn())

		g.mu.Lock()
		g.vendorLoggedIn = false
		g.mu.Unlock()

		_, err = con.Speak(context.Background(), "", "hello")
		require.ErrorIs(t, err, console.ErrVendorNotConnected)
		assert.False(t, con.VendorLoggedIn())
	})

	t.Run("unauthenticated", func(t *testing.T) {
		t.Parallel()

		con, _ := setup(t, &gateway{})
		_, err := con.Play(context.Background(), "dev-1")
		require.ErrorIs(t, err, console.ErrNotAuthenticated)
	})
}
