package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/speakerhub"
	"github.com/dmitrymomot/speakerhub/handlers"
	"github.com/dmitrymomot/speakerhub/middlewares"
	"github.com/dmitrymomot/speakerhub/pkg/jwt"
	"github.com/dmitrymomot/speakerhub/pkg/logger"
	"github.com/dmitrymomot/speakerhub/pkg/users"
	"github.com/dmitrymomot/speakerhub/pkg/vendor"
)

const testSecret = "handlers-test-secret-with-enough-length"

type fixture struct {
	app      *speakerhub.App
	tokens   *jwt.Service
	platform *vendor.MemoryPlatform
	provider *vendor.Provider
}

type fixtureConfig struct {
	jwtOpts    []jwt.Option
	vendorOpts []handlers.VendorOption
}

type fixtureOption func(*fixtureConfig)

func withJWT(opts ...jwt.Option) fixtureOption {
	return func(c *fixtureConfig) { c.jwtOpts = append(c.jwtOpts, opts...) }
}

func withVendor(opts ...handlers.VendorOption) fixtureOption {
	return func(c *fixtureConfig) { c.vendorOpts = append(c.vendorOpts, opts...) }
}

func testDevices() []vendor.Device {
	return []vendor.Device{
		{DeviceID: "aa-111", Name: "Speaker-07", Alias: "Living Room", MiotDID: "1001", Hardware: "LX06"},
		{DeviceID: "bb-222", Name: "Kitchen", Hardware: "UNKNOWN"},
	}
}

func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()

	cfg := &fixtureConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	directory, err := users.New([]users.Account{{Username: "admin", Password: "admin123"}})
	require.NoError(t, err)

	tokens, err := jwt.New(testSecret, cfg.jwtOpts...)
	require.NoError(t, err)

	platform := vendor.NewMemoryPlatform(map[string]string{"alice": "pw"}, testDevices())
	provider := vendor.NewProvider(platform, vendor.WithDeviceCacheTTL(time.Minute))

	log := logger.NewNope()
	app := speakerhub.New(
		speakerhub.WithCustomLogger(log),
		speakerhub.WithMiddleware(middlewares.RequestID()),
		speakerhub.WithErrorHandler(middlewares.ErrorHandler(log)),
		speakerhub.WithHandlers(
			handlers.NewInfo("speakerhub", "1.2.3"),
			handlers.NewAuth(directory, tokens),
			handlers.NewVendor(provider, tokens, cfg.vendorOpts...),
			handlers.NewDevice(provider, tokens),
		),
	)

	return &fixture{app: app, tokens: tokens, platform: platform, provider: provider}
}

// do sends a request; body is JSON encoded unless it is a string.
func (f *fixture) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	f.app.ServeHTTP(w, req)
	return w
}

// token returns an access token for the admin user.
func (f *fixture) token(t *testing.T) string {
	t.Helper()
	pair, err := f.tokens.Issue("admin")
	require.NoError(t, err)
	return pair.AccessToken
}

// connect logs the provider into the demo vendor account.
func (f *fixture) connect(t *testing.T) {
	t.Helper()
	require.NoError(t, f.provider.Login(t.Context(), "alice", "pw"))
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

type envelope[T any] struct {
	Data    T      `json:"data"`
	Message string `json:"message"`
	Success bool   `json:"success"`
}

type errorBody struct {
	Detail    string `json:"detail"`
	Code      string `json:"code"`
	RequestID string `json:"request_id"`
	Errors    []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"errors"`
}

func requireError(t *testing.T, w *httptest.ResponseRecorder, status int, code string) errorBody {
	t.Helper()
	require.Equal(t, status, w.Code, w.Body.String())
	body := decode[errorBody](t, w)
	require.Equal(t, code, body.Code)
	return body
}
