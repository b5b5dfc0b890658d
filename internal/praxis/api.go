package praxis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/elleandro/studio-admin/internal/telemetry/metrics"
	"github.com/elleandro/studio-admin/internal/telemetry/tracing"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/codes"
)

// TokenFunc extracts the upstream bearer token for a request, usually
// from the logged-in session in the request context.
type TokenFunc func(ctx context.Context) string

// API talks to the practice management API - the single upstream
// behind every page of the admin UI. It holds no entity state of its
// own; pages always re-read server-confirmed data after a mutation.
type API struct {
	baseURL        string
	httpClient     *http.Client
	tokenFromCtx   TokenFunc
	metricsManager *metrics.Manager

	// OnAuthExpired is invoked once per upstream 401, before the error
	// is returned to the caller. The server wires it to session teardown.
	OnAuthExpired func(ctx context.Context)
}

func NewAPI(
	baseURL string,
	timeout time.Duration,
	tokenFromCtx TokenFunc,
	metricsManager *metrics.Manager,
) *API {
	return &API{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		tokenFromCtx:   tokenFromCtx,
		metricsManager: metricsManager,
	}
}

type upstreamErrorBody struct {
	Detail string `json:"detail"`
	Error  string `json:"error"`
}

// isBlankToken reports whether an Authorization header must be omitted:
// a stale browser store can hand us the literals "null" or "undefined"
// in place of a missing token, and none of those may reach the wire
func isBlankToken(token string) bool {
	switch token {
	case "", "null", "undefined":
		return true
	}
	return false
}

// do runs one upstream call: marshals the body, attaches the bearer
// token, maps 401/404 to sentinel errors and decodes the response into
// out (when non-nil).
func (c *API) do(ctx context.Context, operation, method, path string, body, out any) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "praxisApi."+operation)
	defer span.End()
	defer func() {
		outcome := "ok"
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			outcome = "error"
		} else {
			span.SetStatus(codes.Ok, "ok")
		}
		if c.metricsManager != nil {
			c.metricsManager.CounterPraxisRequests.With(prometheus.Labels{
				"operation": operation,
				"outcome":   outcome,
			}).Inc()
		}
	}()

	var reqBody io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if token := strings.TrimSpace(c.tokenFromCtx(ctx)); !isBlankToken(token) {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		if c.OnAuthExpired != nil {
			c.OnAuthExpired(ctx)
		}
		// keep the upstream detail reachable via DetailOf alongside
		// the sentinel
		return fmt.Errorf("%w: %w", ErrUnauthorized, &APIError{
			Status: http.StatusUnauthorized,
			Detail: errorDetail(respBytes),
		})
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode >= 400:
		return &APIError{
			Status: resp.StatusCode,
			Detail: errorDetail(respBytes),
		}
	}

	if out == nil || len(respBytes) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBytes, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

func errorDetail(respBytes []byte) string {
	var errBody upstreamErrorBody
	if err := json.Unmarshal(respBytes, &errBody); err != nil {
		return ""
	}
	if errBody.Detail != "" {
		return errBody.Detail
	}
	return errBody.Error
}

func (c *API) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	credentials := struct {
		Username string `json:"usuario"`
		Password string `json:"senha"`
	}{username, password}

	var result LoginResult
	if err := c.do(ctx, "login", http.MethodPost, "/auth/login", credentials, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *API) ListClients(ctx context.Context) ([]Client, error) {
	var clients []Client
	if err := c.do(ctx, "listClients", http.MethodGet, "/clientes", nil, &clients); err != nil {
		return nil, err
	}
	return clients, nil
}

func (c *API) GetClient(ctx context.Context, clientID int64) (*Client, error) {
	var client Client
	if err := c.do(ctx, "getClient", http.MethodGet, fmt.Sprintf("/clientes/%d", clientID), nil, &client); err != nil {
		return nil, err
	}
	return &client, nil
}

func (c *API) CreateClient(ctx context.Context, payload ClientPayload) error {
	return c.do(ctx, "createClient", http.MethodPost, "/clientes", payload, nil)
}

func (c *API) UpdateClient(ctx context.Context, clientID int64, payload ClientPayload) error {
	return c.do(ctx, "updateClient", http.MethodPatch, fmt.Sprintf("/clientes/%d", clientID), payload, nil)
}

// DeleteClient removes the client; the upstream cascades the delete to
// the anamnesis record and all sessions.
func (c *API) DeleteClient(ctx context.Context, clientID int64) error {
	return c.do(ctx, "deleteClient", http.MethodDelete, fmt.Sprintf("/clientes/%d", clientID), nil, nil)
}

// GetAnamnesis returns the questionnaire, or an empty one when the
// client has not filled it in yet (upstream sends null).
func (c *API) GetAnamnesis(ctx context.Context, clientID int64) (*Anamnesis, error) {
	var anamnesis *Anamnesis
	path := fmt.Sprintf("/clientes/%d/anamnese", clientID)
	if err := c.do(ctx, "getAnamnesis", http.MethodGet, path, nil, &anamnesis); err != nil {
		return nil, err
	}
	if anamnesis == nil {
		anamnesis = &Anamnesis{}
	}
	return anamnesis, nil
}

func (c *API) PutAnamnesis(ctx context.Context, clientID int64, anamnesis Anamnesis) error {
	path := fmt.Sprintf("/clientes/%d/anamnese", clientID)
	return c.do(ctx, "putAnamnesis", http.MethodPut, path, anamnesis, nil)
}

func (c *API) ListSessions(ctx context.Context, clientID int64) ([]Session, error) {
	var sessions []Session
	path := fmt.Sprintf("/clientes/%d/sessoes", clientID)
	if err := c.do(ctx, "listSessions", http.MethodGet, path, nil, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

func (c *API) GetSessionDetail(ctx context.Context, sessionID int64) (*SessionDetail, error) {
	var detail SessionDetail
	path := fmt.Sprintf("/sessoes/%d/detalhe", sessionID)
	if err := c.do(ctx, "getSessionDetail", http.MethodGet, path, nil, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

func (c *API) CreateSession(ctx context.Context, clientID int64, payload SessionPayload) (*Session, error) {
	var session Session
	path := fmt.Sprintf("/clientes/%d/sessoes", clientID)
	if err := c.do(ctx, "createSession", http.MethodPost, path, payload, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *API) UpdateSession(ctx context.Context, sessionID int64, payload SessionPayload) error {
	return c.do(ctx, "updateSession", http.MethodPut, fmt.Sprintf("/sessoes/%d", sessionID), payload, nil)
}

// PutMeasurements replaces the whole measurement set of a session, all
// eight body points at once.
func (c *API) PutMeasurements(ctx context.Context, sessionID int64, measurements []Measurement) error {
	path := fmt.Sprintf("/sessoes/%d/medidas", sessionID)
	return c.do(ctx, "putMeasurements", http.MethodPut, path, measurements, nil)
}

// DeleteSession removes the session; the upstream cascades the delete
// to its measurements.
func (c *API) DeleteSession(ctx context.Context, sessionID int64) error {
	return c.do(ctx, "deleteSession", http.MethodDelete, fmt.Sprintf("/sessoes/%d", sessionID), nil, nil)
}

func (c *API) GetEvolution(ctx context.Context, clientID int64) (*Evolution, error) {
	var evolution Evolution
	path := fmt.Sprintf("/clientes/%d/evolucao", clientID)
	if err := c.do(ctx, "getEvolution", http.MethodGet, path, nil, &evolution); err != nil {
		return nil, err
	}
	return &evolution, nil
}

// DownloadReportPDF streams the server-rendered client report.
func (c *API) DownloadReportPDF(ctx context.Context, clientID int64) (pdf []byte, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "praxisApi.downloadReportPDF")
	defer span.End()
	defer func() {
		outcome := "ok"
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			outcome = "error"
		} else {
			span.SetStatus(codes.Ok, "ok")
		}
		if c.metricsManager != nil {
			c.metricsManager.CounterPraxisRequests.With(prometheus.Labels{
				"operation": "downloadReportPDF",
				"outcome":   outcome,
			}).Inc()
		}
	}()

	url := fmt.Sprintf("%s/clientes/%d/relatorio.pdf", c.baseURL, clientID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if token := strings.TrimSpace(c.tokenFromCtx(ctx)); !isBlankToken(token) {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		if c.OnAuthExpired != nil {
			c.OnAuthExpired(ctx)
		}
		return nil, fmt.Errorf("%w: %w", ErrUnauthorized, &APIError{
			Status: http.StatusUnauthorized,
			Detail: errorDetail(respBytes),
		})
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode >= 400:
		return nil, &APIError{Status: resp.StatusCode, Detail: errorDetail(respBytes)}
	}

	log.Debugf("praxis api: report pdf for client %d: %d bytes", clientID, len(respBytes))
	return respBytes, nil
}
