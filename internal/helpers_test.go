package internal_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/speakerhub/internal"
)

func TestParam(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/volume/42/true", nil)
	routeVia(t, "/volume/{level}/{flag}", req, nil, func(c internal.Context) error {
		require.Equal(t, "42", internal.Param[string](c, "level"))
		require.Equal(t, 42, internal.Param[int](c, "level"))
		require.Equal(t, int64(42), internal.Param[int64](c, "level"))
		require.InDelta(t, 42.0, internal.Param[float64](c, "level"), 0.001)
		require.True(t, internal.Param[bool](c, "flag"))
		require.Zero(t, internal.Param[int](c, "flag"))
		return nil
	})
}

func TestQuery(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"positive", "volume=70", 70},
		{"negative", "volume=-1", -1},
		{"empty returns zero", "volume=", 0},
		{"invalid returns zero", "volume=loud", 0},
		{"missing returns zero", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/?"+tt.query, nil)
			requestVia(t, req, nil, func(c internal.Context) {
				require.Equal(t, tt.want, internal.Query[int](c, "volume"))
			})
		})
	}
}

func TestQueryDefault(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		query string
		want  bool
	}{
		{"missing uses default", "", true},
		{"invalid uses default", "refresh=maybe", true},
		{"explicit false", "refresh=false", false},
		{"explicit true", "refresh=1", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/?"+tt.query, nil)
			requestVia(t, req, nil, func(c internal.Context) {
				require.Equal(t, tt.want, internal.QueryDefault(c, "refresh", true))
			})
		})
	}
}

func TestContextValue(t *testing.T) {
	t.Parallel()

	type key struct{}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	requestVia(t, req, nil, func(c internal.Context) {
		require.Empty(t, internal.ContextValue[string](c, key{}))

		c.Set(key{}, "alice")
		require.Equal(t, "alice", internal.ContextValue[string](c, key{}))
		require.Zero(t, internal.ContextValue[int](c, key{}))
	})
}
