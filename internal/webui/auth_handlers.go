package webui

import (
	"errors"
	"net/http"
	"time"

	"github.com/elleandro/studio-admin/internal/auth"
	"github.com/elleandro/studio-admin/internal/praxis"
	"github.com/elleandro/studio-admin/pkg"

	log "github.com/sirupsen/logrus"
)

type loginPage struct {
	basePage
	Error    string
	Username string
}

func (handler *Handler) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	// already logged in - nothing to do here
	if _, ok := auth.SessionFromContext(r.Context()); ok {
		http.Redirect(w, r, "/clientes", http.StatusFound)
		return
	}
	handler.render(w, "login.gohtml", loginPage{
		basePage: handler.basePage(r, "Entrar"),
	})
}

func (handler *Handler) handleLoginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "parse form error", http.StatusBadRequest)
		return
	}

	username := r.Form.Get("usuario")
	password := r.Form.Get("senha")
	if username == "" || password == "" {
		handler.renderLoginError(w, r, username, "Informe usuário e senha.")
		return
	}

	result, err := handler.praxisClient.Login(r.Context(), username, password)
	if err != nil {
		userIP, ipErr := pkg.ReadUserIP(r)
		if ipErr != nil {
			userIP = "unknown"
		}
		log.Warnf("login failed for user %s [ip: %s]: %s", username, userIP, err)
		message := "Usuário ou senha inválidos."
		if detail := praxis.DetailOf(err); detail != "" {
			message = detail
		} else if !errors.Is(err, praxis.ErrUnauthorized) {
			message = "Não foi possível entrar. Tente novamente."
		}
		handler.renderLoginError(w, r, username, message)
		return
	}

	sessionID, err := handler.sessions.Create(r.Context(), auth.Session{
		Token:     result.Token,
		Name:      result.Name,
		CreatedAt: time.Now(),
	})
	if err != nil {
		log.Errorf("login: create session: %s", err)
		handler.renderLoginError(w, r, username, "Não foi possível entrar. Tente novamente.")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    sessionID,
		Path:     "/",
		MaxAge:   int(auth.DefaultTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	handler.metricsManager.CounterLogins.Inc()
	log.Tracef("new login, user: %s", result.Name)

	http.Redirect(w, r, "/clientes", http.StatusFound)
}

func (handler *Handler) renderLoginError(w http.ResponseWriter, r *http.Request, username, message string) {
	w.WriteHeader(http.StatusUnprocessableEntity)
	handler.render(w, "login.gohtml", loginPage{
		basePage: handler.basePage(r, "Entrar"),
		Error:    message,
		Username: username,
	})
}

func (handler *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(auth.SessionCookieName); err == nil {
		if err := handler.sessions.Destroy(r.Context(), cookie.Value); err != nil {
			log.Errorf("logout: destroy session: %s", err)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, "/login", http.StatusFound)
}
