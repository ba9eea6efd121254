package router_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pandeptwidyaop/hostbridge/internal/config"
	"github.com/pandeptwidyaop/hostbridge/internal/database"
	"github.com/pandeptwidyaop/hostbridge/internal/router"
	"github.com/pandeptwidyaop/hostbridge/internal/services"
	"github.com/pandeptwidyaop/hostbridge/internal/system"
)

func newRouter(t *testing.T, mutate func(*config.Config)) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Default()
	cfg.Auth.Token = "s3cret"
	cfg.Server.PathPrefix = "/bridge"
	if mutate != nil {
		mutate(cfg)
	}

	db, err := database.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Migrate())

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	audit := services.NewAuditService(db)
	d := services.NewDispatcher(system.New(), services.NewAppInfo(cfg.App), nil, services.WithRecorder(audit))
	return router.New(ctx, cfg, d, audit)
}

func do(r http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestRouter_PublicRoutes(t *testing.T) {
	r := newRouter(t, nil)

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/bridge/healthz", "", "").Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/bridge/api/version", "", "").Code)
}

func TestRouter_ProtectedRoutes(t *testing.T) {
	r := newRouter(t, nil)

	for _, path := range []string{"/bridge/api/allowlist", "/bridge/api/status", "/bridge/api/audit"} {
		assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, path, "", "").Code, path)
		assert.Equal(t, http.StatusOK, do(r, http.MethodGet, path, "s3cret", "").Code, path)
	}

	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodPost, "/bridge/api/invoke/get_app_version", "", "{}").Code)
	w := do(r, http.MethodPost, "/bridge/api/invoke/get_app_version", "s3cret", "{}")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRouter_BodyLimit(t *testing.T) {
	r := newRouter(t, func(cfg *config.Config) { cfg.Server.MaxBodyBytes = 16 })

	w := do(r, http.MethodPost, "/bridge/api/invoke/system_write_file", "s3cret",
		`{"path":"/tmp/x","content":"far too long for the limit"}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestRouter_NoRoute(t *testing.T) {
	r := newRouter(t, nil)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/api/version", "", "").Code)
}
