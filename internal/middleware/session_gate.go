package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/elleandro/studio-admin/internal/auth"
	"github.com/elleandro/studio-admin/internal/telemetry/tracing"
	"github.com/elleandro/studio-admin/pkg"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
)

// SessionGateHandler guards every page behind a logged-in session. The
// session ID travels in a cookie; the session itself (with the upstream
// API token) lives in redis and gets attached to the request context.
type SessionGateHandler struct {
	sessions             *auth.Service
	allowedPaths         map[string]bool
	allowedPathsPrefixes []string
}

func NewSessionGateHandler(sessions *auth.Service) *SessionGateHandler {
	return &SessionGateHandler{
		sessions: sessions,
		allowedPaths: map[string]bool{
			"/login":       true,
			"/logout":      true,
			"/favicon.ico": true,
			"/version":     true,
		},
		allowedPathsPrefixes: []string{
			"/static/",
		},
	}
}

func (h *SessionGateHandler) pathIsAlwaysAllowed(path string) bool {
	if h.allowedPaths[path] {
		return true
	}
	for _, prefix := range h.allowedPathsPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func (h *SessionGateHandler) Gate() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := tracing.GlobalTracer.Start(r.Context(), "middleware.sessionGate")
			defer span.End()

			if h.pathIsAlwaysAllowed(r.URL.Path) {
				span.SetStatus(codes.Ok, "ok")
				next.ServeHTTP(w, r)
				return
			}

			cookie, err := r.Cookie(auth.SessionCookieName)
			if err != nil {
				log.Tracef("[no session cookie] unauthorized => %s", r.URL.Path)
				span.SetStatus(codes.Error, "missing-session-cookie")
				h.rejectUnauthorized(w, r)
				return
			}

			session, err := h.sessions.Get(ctx, cookie.Value)
			if err != nil {
				if errors.Is(err, auth.ErrNoSession) {
					log.Tracef("[invalid session] unauthorized => %s", r.URL.Path)
					span.SetStatus(codes.Error, "no-session")
				} else {
					log.Errorf("[failed session check] => %s: %s", r.URL.Path, err)
					span.SetStatus(codes.Error, "session-check-err")
					span.RecordError(err)
				}
				h.rejectUnauthorized(w, r)
				return
			}

			span.SetStatus(codes.Ok, "ok")
			ctx = auth.ContextWithSession(ctx, cookie.Value, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// rejectUnauthorized sends data endpoints a 401 and page requests to the
// login form, so a stale browser tab degrades to the login screen instead
// of a wall of JSON errors
func (h *SessionGateHandler) rejectUnauthorized(w http.ResponseWriter, r *http.Request) {
	if strings.HasSuffix(r.URL.Path, ".json") {
		pkg.WriteResponseBytes(
			w, pkg.ContentType.JSON,
			[]byte(`{"error":"not logged in"}`),
			http.StatusUnauthorized,
		)
		return
	}
	http.Redirect(w, r, "/login", http.StatusFound)
}
