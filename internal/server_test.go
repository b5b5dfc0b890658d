package internal

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/elleandro/studio-admin/internal/auth"
	"github.com/elleandro/studio-admin/internal/config"
	"github.com/elleandro/studio-admin/internal/praxis"
	"github.com/elleandro/studio-admin/internal/telemetry/metrics"

	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, redismock.ClientMock) {
	t.Helper()

	rdb, rdbMock := redismock.NewClientMock()
	t.Cleanup(func() {
		assert.NoError(t, rdbMock.ExpectationsWereMet())
	})

	mm := metrics.NewTestManager()
	return &Server{
		config: &config.Config{
			LoginRateLimitAllowedPerMin: 15,
		},
		versionInfo:    "test-version",
		redisClient:    rdb,
		sessions:       auth.NewService(auth.DefaultTTL, rdb),
		praxisClient:   praxis.NewAPI("http://localhost:1", time.Second, auth.TokenFromContext, mm),
		metricsManager: mm,
	}, rdbMock
}

func TestRouterSetup_routesRegistered(t *testing.T) {
	server, _ := newTestServer(t)

	router, err := server.routerSetup()
	require.NoError(t, err)
	require.NotNil(t, router)

	for _, routeName := range []string{
		"home",
		"login-page", "login-submit", "logout",
		"clients-list", "client-new-page", "client-create",
		"client-detail", "client-edit-page", "client-update",
		"client-delete-page", "client-delete",
		"anamnesis-page", "anamnesis-save",
		"session-new-page", "session-create",
		"session-edit-page", "session-update",
		"session-delete-page", "session-delete",
		"evolution-page", "evolution-data",
		"report-page", "report-pdf",
		"version",
	} {
		assert.NotNil(t, router.GetRoute(routeName), "route %s not registered", routeName)
	}
}

func TestRouterSetup_sessionGateRedirectsAnonymous(t *testing.T) {
	server, _ := newTestServer(t)

	router, err := server.routerSetup()
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/clientes", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/login", rr.Header().Get("Location"))
}

func TestRouterSetup_versionEndpointIsPublic(t *testing.T) {
	server, _ := newTestServer(t)

	router, err := server.routerSetup()
	require.NoError(t, err)

	// no session cookie: /version stays reachable for ops checks
	req := httptest.NewRequest(http.MethodGet, "/version", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "test-version", rr.Body.String())
}
