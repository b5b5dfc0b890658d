package webui

import (
	"errors"
	"html/template"
	"net/http"
	"strconv"

	"github.com/elleandro/studio-admin/internal/auth"
	"github.com/elleandro/studio-admin/internal/middleware"
	"github.com/elleandro/studio-admin/internal/praxis"
	"github.com/elleandro/studio-admin/internal/telemetry/metrics"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

// Handler serves the whole admin UI: server-rendered pages over the
// practice API, one handler method per page or form action.
type Handler struct {
	praxisClient   *praxis.API
	sessions       *auth.Service
	metricsManager *metrics.Manager
	templates      *template.Template
}

func NewHandler(
	praxisClient *praxis.API,
	sessions *auth.Service,
	metricsManager *metrics.Manager,
) (*Handler, error) {
	templates, err := loadTemplates()
	if err != nil {
		return nil, err
	}
	return &Handler{
		praxisClient:   praxisClient,
		sessions:       sessions,
		metricsManager: metricsManager,
		templates:      templates,
	}, nil
}

func (handler *Handler) SetupRoutes(
	r *mux.Router,
	rateLimiter middleware.RequestRateLimiter,
	loginRateLimitAllowedPerMin int,
) {
	r.HandleFunc("/", handler.handleHome).Methods("GET").Name("home")
	r.PathPrefix("/static/").Handler(http.FileServer(http.FS(staticFS))).Methods("GET")

	loginRouter := r.PathPrefix("/login").Subrouter()
	loginRouter.HandleFunc("", handler.handleLoginPage).Methods("GET").Name("login-page")
	loginRouter.HandleFunc("", handler.handleLoginSubmit).Methods("POST").Name("login-submit")
	loginRouter.Use(middleware.RateLimit(
		rateLimiter, "login", loginRateLimitAllowedPerMin, handler.metricsManager,
	))

	r.HandleFunc("/logout", handler.handleLogout).Methods("GET", "POST").Name("logout")

	r.HandleFunc("/clientes", handler.handleClientsList).Methods("GET").Name("clients-list")
	r.HandleFunc("/clientes/novo", handler.handleClientNewPage).Methods("GET").Name("client-new-page")
	r.HandleFunc("/clientes/novo", handler.handleClientCreate).Methods("POST").Name("client-create")
	r.HandleFunc("/clientes/{id}", handler.handleClientDetail).Methods("GET").Name("client-detail")
	r.HandleFunc("/clientes/{id}/editar", handler.handleClientEditPage).Methods("GET").Name("client-edit-page")
	r.HandleFunc("/clientes/{id}/editar", handler.handleClientUpdate).Methods("POST").Name("client-update")
	r.HandleFunc("/clientes/{id}/excluir", handler.handleClientDeletePage).Methods("GET").Name("client-delete-page")
	r.HandleFunc("/clientes/{id}/excluir", handler.handleClientDelete).Methods("POST").Name("client-delete")

	r.HandleFunc("/clientes/{id}/anamnese", handler.handleAnamnesisPage).Methods("GET").Name("anamnesis-page")
	r.HandleFunc("/clientes/{id}/anamnese", handler.handleAnamnesisSave).Methods("POST").Name("anamnesis-save")

	r.HandleFunc("/clientes/{id}/sessoes/nova", handler.handleSessionNewPage).Methods("GET").Name("session-new-page")
	r.HandleFunc("/clientes/{id}/sessoes/nova", handler.handleSessionCreate).Methods("POST").Name("session-create")
	r.HandleFunc("/clientes/{id}/sessoes/{sid}/editar", handler.handleSessionEditPage).Methods("GET").Name("session-edit-page")
	r.HandleFunc("/clientes/{id}/sessoes/{sid}/editar", handler.handleSessionUpdate).Methods("POST").Name("session-update")
	r.HandleFunc("/clientes/{id}/sessoes/{sid}/excluir", handler.handleSessionDeletePage).Methods("GET").Name("session-delete-page")
	r.HandleFunc("/clientes/{id}/sessoes/{sid}/excluir", handler.handleSessionDelete).Methods("POST").Name("session-delete")

	r.HandleFunc("/clientes/{id}/evolucao", handler.handleEvolutionPage).Methods("GET").Name("evolution-page")
	r.HandleFunc("/clientes/{id}/evolucao/data.json", handler.handleEvolutionData).Methods("GET").Name("evolution-data")

	r.HandleFunc("/clientes/{id}/relatorio", handler.handleReportPage).Methods("GET").Name("report-page")
	r.HandleFunc("/clientes/{id}/relatorio.pdf", handler.handleReportPDF).Methods("GET").Name("report-pdf")
}

func (handler *Handler) handleHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/clientes", http.StatusFound)
}

// basePage carries what every page template needs.
type basePage struct {
	Title    string
	UserName string
}

func (handler *Handler) basePage(r *http.Request, title string) basePage {
	page := basePage{Title: title}
	if session, ok := auth.SessionFromContext(r.Context()); ok {
		page.UserName = session.Name
	}
	return page
}

func (handler *Handler) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := handler.templates.ExecuteTemplate(w, name, data); err != nil {
		log.Errorf("render %s: %s", name, err)
	}
}

type errorPage struct {
	basePage
	Message  string
	RetryURL string
}

type notFoundPage struct {
	basePage
	Message string
	BackURL string
}

// renderReadError maps a failed upstream read to one of the page-level
// states: back to login on an expired token, a distinct not-found page,
// or an error page with a retry action.
func (handler *Handler) renderReadError(w http.ResponseWriter, r *http.Request, err error, what string) {
	if errors.Is(err, praxis.ErrUnauthorized) {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}
	if errors.Is(err, praxis.ErrNotFound) {
		log.Tracef("%s: not found", what)
		w.WriteHeader(http.StatusNotFound)
		handler.render(w, "not_found.gohtml", notFoundPage{
			basePage: handler.basePage(r, "Não encontrado"),
			Message:  "Cliente não encontrado.",
			BackURL:  "/clientes",
		})
		return
	}

	log.Errorf("%s: %s", what, err)
	w.WriteHeader(http.StatusBadGateway)
	message := "Não foi possível carregar os dados."
	if detail := praxis.DetailOf(err); detail != "" {
		message = detail
	}
	handler.render(w, "error.gohtml", errorPage{
		basePage: handler.basePage(r, "Erro"),
		Message:  message,
		RetryURL: r.URL.RequestURI(),
	})
}

func pathID(r *http.Request, name string) (int64, error) {
	vars := mux.Vars(r)
	return strconv.ParseInt(vars[name], 10, 64)
}

func clientPath(clientID int64) string {
	return "/clientes/" + strconv.FormatInt(clientID, 10)
}
