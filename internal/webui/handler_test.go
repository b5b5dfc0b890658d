package webui_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/elleandro/studio-admin/internal/auth"
	"github.com/elleandro/studio-admin/internal/praxis"
	"github.com/elleandro/studio-admin/internal/telemetry/metrics"
	"github.com/elleandro/studio-admin/internal/webui"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/go-redis/redis_rate/v9"
	"github.com/go-redis/redismock/v8"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type allowAllLimiter struct{}

func (allowAllLimiter) Allow(_ context.Context, _ string, _ redis_rate.Limit) (*redis_rate.Result, error) {
	return &redis_rate.Result{Allowed: 1}, nil
}

// fakeUpstream records requests and serves canned responses per path.
type fakeUpstream struct {
	t         *testing.T
	responses map[string]any
	requests  []string
}

func (f *fakeUpstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := r.Method + " " + r.URL.Path
	f.requests = append(f.requests, key)

	resp, ok := f.responses[key]
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	require.NoError(f.t, json.NewEncoder(w).Encode(resp))
}

func (f *fakeUpstream) countOf(key string) int {
	count := 0
	for _, req := range f.requests {
		if req == key {
			count++
		}
	}
	return count
}

type testEnv struct {
	router   *mux.Router
	upstream *fakeUpstream
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	upstream := &fakeUpstream{t: t, responses: map[string]any{}}
	upstreamServer := httptest.NewServer(upstream)
	t.Cleanup(upstreamServer.Close)

	praxisClient := praxis.NewAPI(
		upstreamServer.URL,
		5*time.Second,
		auth.TokenFromContext,
		metrics.NewTestManager(),
	)

	rdb, _ := redismock.NewClientMock()
	t.Cleanup(func() { _ = rdb.Close() })
	sessions := auth.NewService(time.Hour, rdb)

	handler, err := webui.NewHandler(praxisClient, sessions, metrics.NewTestManager())
	require.NoError(t, err)

	router := mux.NewRouter()
	handler.SetupRoutes(router, allowAllLimiter{}, 10)

	return &testEnv{router: router, upstream: upstream}
}

func loggedInRequest(method, target string, form url.Values) *http.Request {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	session := &auth.Session{Token: "tok-123", Name: "Eliane", CreatedAt: time.Now()}
	return req.WithContext(auth.ContextWithSession(req.Context(), "sid", session))
}

func TestClientsList(t *testing.T) {
	env := newTestEnv(t)
	name := gofakeit.Name()
	env.upstream.responses["GET /clientes"] = []praxis.Client{
		{ID: 1, Name: name, Status: praxis.ClientStatusActive},
		{ID: 2, Name: "Outra Cliente", Status: praxis.ClientStatusInactive},
	}

	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, loggedInRequest("GET", "/clientes", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, name)
	assert.Contains(t, body, "Outra Cliente")
}

func TestClientsList_StatusFilter(t *testing.T) {
	env := newTestEnv(t)
	env.upstream.responses["GET /clientes"] = []praxis.Client{
		{ID: 1, Name: "Ativa Silva", Status: praxis.ClientStatusActive},
		{ID: 2, Name: "Inativa Souza", Status: praxis.ClientStatusInactive},
	}

	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, loggedInRequest("GET", "/clientes?status=ativa", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "Ativa Silva")
	assert.NotContains(t, body, "Inativa Souza")
}

func TestClientDetail_NotFound(t *testing.T) {
	env := newTestEnv(t)
	// upstream has no client 99, both parallel reads come back 404

	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, loggedInRequest("GET", "/clientes/99", nil))

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "não encontrado")
}

func TestClientDetail(t *testing.T) {
	env := newTestEnv(t)
	env.upstream.responses["GET /clientes/5"] = praxis.Client{
		ID: 5, Name: "maria da silva", Phone: "11987654321", Status: praxis.ClientStatusActive,
	}
	env.upstream.responses["GET /clientes/5/sessoes"] = []praxis.Session{
		{ID: 1, Date: "2026-08-01T10:00:00Z"},
	}

	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, loggedInRequest("GET", "/clientes/5", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "Maria Da Silva")
	assert.Contains(t, body, "(11) 98765-4321")
	assert.Contains(t, body, "01/08/2026")
}

func TestClientCreate(t *testing.T) {
	env := newTestEnv(t)
	env.upstream.responses["POST /clientes"] = map[string]any{"id": 10}

	form := url.Values{}
	form.Set("nome", "nova CLIENTE")
	form.Set("telefone", "(11) 98765-4321")
	form.Set("status", "ativa")

	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, loggedInRequest("POST", "/clientes/novo", form))

	require.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/clientes", rr.Header().Get("Location"))
	assert.Equal(t, 1, env.upstream.countOf("POST /clientes"))
}

func TestClientCreate_NameRequired(t *testing.T) {
	env := newTestEnv(t)

	form := url.Values{}
	form.Set("nome", "   ")

	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, loggedInRequest("POST", "/clientes/novo", form))

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, rr.Body.String(), "Nome é obrigatório")
	assert.Zero(t, env.upstream.countOf("POST /clientes"))
}

func TestSessionCreate_TwoStep(t *testing.T) {
	env := newTestEnv(t)
	env.upstream.responses["POST /clientes/5/sessoes"] = praxis.Session{ID: 77}
	env.upstream.responses["PUT /sessoes/77/medidas"] = map[string]any{"ok": true}

	form := url.Values{}
	form.Set("data_sessao", "2026-08-20T14:30")
	form.Set("dor", "3")
	form.Set("antes_perna_direita", "51.5")
	form.Set("depois_perna_direita", "50")

	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, loggedInRequest("POST", "/clientes/5/sessoes/nova", form))

	require.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/clientes/5", rr.Header().Get("Location"))
	assert.Equal(t, 1, env.upstream.countOf("POST /clientes/5/sessoes"))
	assert.Equal(t, 1, env.upstream.countOf("PUT /sessoes/77/medidas"))
}

func TestSessionDelete(t *testing.T) {
	env := newTestEnv(t)
	env.upstream.responses["DELETE /sessoes/8"] = map[string]any{"ok": true}

	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, loggedInRequest("POST", "/clientes/5/sessoes/8/excluir", url.Values{}))

	require.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/clientes/5", rr.Header().Get("Location"))
	assert.Equal(t, 1, env.upstream.countOf("DELETE /sessoes/8"))
}

func TestEvolutionData(t *testing.T) {
	env := newTestEnv(t)
	before := 10.0
	after := 8.0
	lastAfter := 6.0
	env.upstream.responses["GET /clientes/5"] = praxis.Client{ID: 5, Name: "Maria"}
	env.upstream.responses["GET /clientes/5/evolucao"] = praxis.Evolution{
		TotalSessions: 3,
		Sessions: []praxis.EvolutionSession{
			{
				Session: praxis.Session{ID: 1, Date: "2026-01-10T10:00:00Z"},
				Measurements: []praxis.Measurement{
					{Point: "perna_direita", Before: &before, After: &after},
				},
			},
			{
				Session: praxis.Session{ID: 2, Date: "2026-01-17T10:00:00Z"},
			},
			{
				Session: praxis.Session{ID: 3, Date: "2026-01-24T10:00:00Z"},
				Measurements: []praxis.Measurement{
					{Point: "perna_direita", After: &lastAfter},
				},
			},
		},
	}

	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, loggedInRequest(
		"GET", "/clientes/5/evolucao/data.json?ponto=perna_direita", nil))

	require.Equal(t, http.StatusOK, rr.Code)

	var data struct {
		Point     string   `json:"ponto"`
		Variation *float64 `json:"variacao"`
		Rows      []struct {
			Before *float64 `json:"antes"`
			After  *float64 `json:"depois"`
		} `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &data))
	assert.Equal(t, "perna_direita", data.Point)
	require.Len(t, data.Rows, 3)
	require.NotNil(t, data.Variation)
	assert.Equal(t, -4.0, *data.Variation)
}

func TestReportPage(t *testing.T) {
	env := newTestEnv(t)
	firstBefore := 52.0
	lastBefore := 49.0
	env.upstream.responses["GET /clientes/5"] = praxis.Client{ID: 5, Name: "Maria da Silva"}
	env.upstream.responses["GET /clientes/5/anamnese"] = praxis.Anamnesis{}
	env.upstream.responses["GET /clientes/5/sessoes"] = []praxis.Session{
		{ID: 1, Date: "2026-01-10T10:00:00Z"},
		{ID: 2, Date: "2026-02-10T10:00:00Z"},
	}
	env.upstream.responses["GET /sessoes/1/detalhe"] = praxis.SessionDetail{
		Session: praxis.Session{ID: 1, Date: "2026-01-10T10:00:00Z"},
		Measurements: []praxis.Measurement{
			{Point: "quadril", Before: &firstBefore},
		},
	}
	env.upstream.responses["GET /sessoes/2/detalhe"] = praxis.SessionDetail{
		Session: praxis.Session{ID: 2, Date: "2026-02-10T10:00:00Z"},
		Measurements: []praxis.Measurement{
			{Point: "quadril", Before: &lastBefore},
		},
	}

	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, loggedInRequest("GET", "/clientes/5/relatorio", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "Maria Da Silva")
	assert.Contains(t, body, "Quadril")
	// 49 - 52 = -3 on the "antes" column
	assert.Contains(t, body, "-3")
	// both session details fetched
	assert.Equal(t, 1, env.upstream.countOf("GET /sessoes/1/detalhe"))
	assert.Equal(t, 1, env.upstream.countOf("GET /sessoes/2/detalhe"))
}

func TestReportPDF(t *testing.T) {
	upstreamPDF := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/clientes/5/relatorio.pdf", r.URL.Path)
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.4 fake"))
	}))
	defer upstreamPDF.Close()

	praxisClient := praxis.NewAPI(
		upstreamPDF.URL, 5*time.Second, auth.TokenFromContext, metrics.NewTestManager())
	rdb, _ := redismock.NewClientMock()
	defer rdb.Close()
	handler, err := webui.NewHandler(praxisClient, auth.NewService(time.Hour, rdb), metrics.NewTestManager())
	require.NoError(t, err)
	router := mux.NewRouter()
	handler.SetupRoutes(router, allowAllLimiter{}, 10)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, loggedInRequest("GET", "/clientes/5/relatorio.pdf", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/pdf", rr.Header().Get("Content-Type"))
	assert.Equal(t,
		"attachment; filename=relatorio_cliente_5.pdf",
		rr.Header().Get("Content-Disposition"),
	)
	assert.Equal(t, "%PDF-1.4 fake", rr.Body.String())
}

func TestLoginAndLogout(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/login", r.URL.Path)
		_ = json.NewEncoder(w).Encode(praxis.LoginResult{Token: "tok-999", Name: "Eliane"})
	}))
	defer upstream.Close()

	praxisClient := praxis.NewAPI(
		upstream.URL, 5*time.Second, auth.TokenFromContext, metrics.NewTestManager())

	rdb, redisMock := redismock.NewClientMock()
	defer rdb.Close()
	sessions := auth.NewService(time.Hour, rdb)
	sessions.RandStringFunc = func(n int) (string, error) { return "fixed-session-id", nil }

	handler, err := webui.NewHandler(praxisClient, sessions, metrics.NewTestManager())
	require.NoError(t, err)
	router := mux.NewRouter()
	handler.SetupRoutes(router, allowAllLimiter{}, 10)

	redisMock.CustomMatch(func(expected, actual []interface{}) error {
		return nil
	}).ExpectSet("studio-admin-session||fixed-session-id", nil, 0).SetVal("OK")
	redisMock.ExpectSAdd("studio-admin-sessions", "fixed-session-id").SetVal(1)

	form := url.Values{}
	form.Set("usuario", "eliane")
	form.Set("senha", "s3cret")
	req := httptest.NewRequest("POST", "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/clientes", rr.Header().Get("Location"))

	var sessionCookie *http.Cookie
	for _, c := range rr.Result().Cookies() {
		if c.Name == auth.SessionCookieName {
			sessionCookie = c
		}
	}
	require.NotNil(t, sessionCookie)
	assert.Equal(t, "fixed-session-id", sessionCookie.Value)
	assert.True(t, sessionCookie.HttpOnly)

	// logout destroys the session and expires the cookie
	redisMock.ExpectDel("studio-admin-session||fixed-session-id").SetVal(1)
	redisMock.ExpectSRem("studio-admin-sessions", "fixed-session-id").SetVal(1)

	logoutReq := httptest.NewRequest("GET", "/logout", nil)
	logoutReq.AddCookie(sessionCookie)
	logoutRR := httptest.NewRecorder()
	router.ServeHTTP(logoutRR, logoutReq)

	require.Equal(t, http.StatusFound, logoutRR.Code)
	assert.Equal(t, "/login", logoutRR.Header().Get("Location"))
}

func TestLogin_InvalidCredentials(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"detail":"usuário ou senha inválidos"}`)
	}))
	defer upstream.Close()

	praxisClient := praxis.NewAPI(
		upstream.URL, 5*time.Second, auth.TokenFromContext, metrics.NewTestManager())
	rdb, _ := redismock.NewClientMock()
	defer rdb.Close()
	handler, err := webui.NewHandler(praxisClient, auth.NewService(time.Hour, rdb), metrics.NewTestManager())
	require.NoError(t, err)
	router := mux.NewRouter()
	handler.SetupRoutes(router, allowAllLimiter{}, 10)

	form := url.Values{}
	form.Set("usuario", "eliane")
	form.Set("senha", "wrong")
	req := httptest.NewRequest("POST", "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, rr.Body.String(), "usuário ou senha inválidos")
}
