package server

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MachineKe/spa-console/internal/identity"
	"github.com/MachineKe/spa-console/pkg/sdk"
)

func newTestShell(loginPath string) *Shell {
	api := sdk.NewClient("http://127.0.0.1:0", sdk.WithTimeout(time.Second))
	return NewShell(api, identity.NewResolver(api), nil, loginPath)
}

func TestPanelLoaderCacheIsBounded(t *testing.T) {
	s := newTestShell("")

	for i := 0; i < loaderCacheSize+64; i++ {
		s.loader(fmt.Sprintf("tok-%d", i), "admin/overview")
	}
	assert.LessOrEqual(t, s.loaders.Len(), loaderCacheSize,
		"loader cache must not grow past its capacity")
}

func TestPanelLoaderIsStablePerSessionAndPanel(t *testing.T) {
	s := newTestShell("")

	first := s.loader("tok-a", "admin/sales")
	require.Same(t, first, s.loader("tok-a", "admin/sales"))
	assert.NotSame(t, first, s.loader("tok-b", "admin/sales"))
	assert.NotSame(t, first, s.loader("tok-a", "admin/stores"))
}

func TestUpstreamUnauthorizedRedirectsToConfiguredLogin(t *testing.T) {
	s := newTestShell("/signin")
	dead := &sdk.APIError{Status: http.StatusUnauthorized, Message: "invalid token"}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/dashboard/sales", nil)
	s.handleUpstreamError(rec, req, "tok-dead", dead)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/signin", rec.Header().Get("Location"))
}

func TestUpstreamUnauthorizedAnswersJSONClientsWith401(t *testing.T) {
	s := newTestShell("/signin")
	dead := &sdk.APIError{Status: http.StatusUnauthorized, Message: "invalid token"}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/dashboard/sales", nil)
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	s.handleUpstreamError(rec, req, "tok-dead", dead)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "session expired")
}
