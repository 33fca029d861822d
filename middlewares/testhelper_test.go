package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dmitrymomot/speakerhub/internal"
	"github.com/dmitrymomot/speakerhub/middlewares"
	"github.com/dmitrymomot/speakerhub/pkg/logger"
)

type routes func(r internal.Router)

func (f routes) Routes(r internal.Router) { f(r) }

// serve runs req through an App whose "/" route is h wrapped in mws,
// with the gateway error handler installed.
func serve(t *testing.T, req *http.Request, h internal.HandlerFunc, mws ...internal.Middleware) *httptest.ResponseRecorder {
	t.Helper()

	app := internal.New(
		internal.WithErrorHandler(middlewares.ErrorHandler(logger.NewNope())),
		internal.WithHandlers(routes(func(r internal.Router) {
			r.Group(func(r internal.Router) {
				r.Use(mws...)
				r.GET("/", h)
				r.POST("/", h)
				r.OPTIONS("/", h)
			})
		})),
	)

	w := httptest.NewRecorder()
	app.ServeHTTP(w, req)
	return w
}

func ok(c internal.Context) error {
	return c.String(http.StatusOK, "ok")
}
