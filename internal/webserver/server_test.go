package webserver

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/talkincode/stockboard/config"
	"github.com/talkincode/stockboard/internal/app"
	"github.com/talkincode/stockboard/internal/repository"
)

func newTestServer(t *testing.T) *app.Application {
	t.Helper()
	cfg := *config.DefaultAppConfig
	cfg.Storage.Type = config.StorageMemory
	application := app.NewApplication(&cfg)
	application.OverrideStore(repository.NewMemoryStore())
	Init(application)
	return application
}

func TestHealth(t *testing.T) {
	newTestServer(t)
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
}

func TestApiRoutesSeeAppContext(t *testing.T) {
	application := newTestServer(t)
	ApiGET("/ping", func(c echo.Context) error {
		require.Same(t, application, GetAppContext(c))
		return c.String(http.StatusOK, "pong")
	})

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/ping", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pong", rec.Body.String())
}

func TestMetrics(t *testing.T) {
	newTestServer(t)
	Handler().ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "stockboard_requests_total")
}
