package webui

import (
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/elleandro/studio-admin/internal/format"
	"github.com/elleandro/studio-admin/internal/praxis"
	"github.com/elleandro/studio-admin/internal/progress"

	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

type clientsListPage struct {
	basePage
	Clients      []praxis.Client
	Search       string
	StatusFilter string
	TotalCount   int
}

func (handler *Handler) handleClientsList(w http.ResponseWriter, r *http.Request) {
	clients, err := handler.praxisClient.ListClients(r.Context())
	if err != nil {
		handler.renderReadError(w, r, err, "clients list")
		return
	}

	search := strings.TrimSpace(r.URL.Query().Get("q"))
	statusFilter := r.URL.Query().Get("status")
	totalCount := len(clients)

	filtered := clients[:0]
	for _, c := range clients {
		if statusFilter != "" && c.Status != statusFilter {
			continue
		}
		if search != "" && !matchesSearch(c, search) {
			continue
		}
		filtered = append(filtered, c)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return strings.ToLower(filtered[i].Name) < strings.ToLower(filtered[j].Name)
	})

	handler.render(w, "clients_list.gohtml", clientsListPage{
		basePage:     handler.basePage(r, "Clientes"),
		Clients:      filtered,
		Search:       search,
		StatusFilter: statusFilter,
		TotalCount:   totalCount,
	})
}

func matchesSearch(c praxis.Client, search string) bool {
	needle := strings.ToLower(search)
	if strings.Contains(strings.ToLower(c.Name), needle) {
		return true
	}
	if digits := format.DigitsOnly(search); digits != "" {
		if strings.Contains(format.DigitsOnly(c.Phone), digits) ||
			strings.Contains(format.DigitsOnly(c.CPF), digits) {
			return true
		}
	}
	return strings.Contains(strings.ToLower(c.Email), needle)
}

type clientFormPage struct {
	basePage
	Client praxis.Client
	IsEdit bool
	Error  string
}

func (handler *Handler) handleClientNewPage(w http.ResponseWriter, r *http.Request) {
	handler.render(w, "client_form.gohtml", clientFormPage{
		basePage: handler.basePage(r, "Novo Cliente"),
		Client:   praxis.Client{Status: praxis.ClientStatusActive},
	})
}

func (handler *Handler) handleClientCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "parse form error", http.StatusBadRequest)
		return
	}

	payload := clientPayloadFromForm(r.Form)
	if payload.Name == "" {
		handler.renderClientFormError(w, r, payload, 0, "Nome é obrigatório.")
		return
	}

	if err := handler.praxisClient.CreateClient(r.Context(), payload); err != nil {
		log.Errorf("create client: %s", err)
		handler.renderClientFormError(w, r, payload, 0, mutationErrorMessage(err, "Erro ao salvar cliente."))
		return
	}

	http.Redirect(w, r, "/clientes", http.StatusFound)
}

func (handler *Handler) handleClientEditPage(w http.ResponseWriter, r *http.Request) {
	clientID, err := pathID(r, "id")
	if err != nil {
		http.NotFound(w, r)
		return
	}

	client, err := handler.praxisClient.GetClient(r.Context(), clientID)
	if err != nil {
		handler.renderReadError(w, r, err, "client edit page")
		return
	}

	handler.render(w, "client_form.gohtml", clientFormPage{
		basePage: handler.basePage(r, "Editar Cliente"),
		Client:   *client,
		IsEdit:   true,
	})
}

func (handler *Handler) handleClientUpdate(w http.ResponseWriter, r *http.Request) {
	clientID, err := pathID(r, "id")
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "parse form error", http.StatusBadRequest)
		return
	}

	payload := clientPayloadFromForm(r.Form)
	if payload.Name == "" {
		handler.renderClientFormError(w, r, payload, clientID, "Nome é obrigatório.")
		return
	}

	if err := handler.praxisClient.UpdateClient(r.Context(), clientID, payload); err != nil {
		log.Errorf("update client %d: %s", clientID, err)
		handler.renderClientFormError(w, r, payload, clientID, mutationErrorMessage(err, "Erro ao salvar cliente."))
		return
	}

	http.Redirect(w, r, clientPath(clientID), http.StatusFound)
}

func (handler *Handler) renderClientFormError(
	w http.ResponseWriter, r *http.Request,
	payload praxis.ClientPayload, clientID int64, message string,
) {
	client := praxis.Client{
		ID:     clientID,
		Name:   payload.Name,
		Status: payload.Status,
	}
	if payload.RG != nil {
		client.RG = *payload.RG
	}
	if payload.Phone != nil {
		client.Phone = *payload.Phone
	}
	if payload.Email != nil {
		client.Email = *payload.Email
	}
	if payload.CPF != nil {
		client.CPF = *payload.CPF
	}
	if payload.Notes != nil {
		client.Notes = *payload.Notes
	}

	title := "Novo Cliente"
	if clientID != 0 {
		title = "Editar Cliente"
	}
	w.WriteHeader(http.StatusUnprocessableEntity)
	handler.render(w, "client_form.gohtml", clientFormPage{
		basePage: handler.basePage(r, title),
		Client:   client,
		IsEdit:   clientID != 0,
		Error:    message,
	})
}

type clientDetailPage struct {
	basePage
	Client   praxis.Client
	Sessions []praxis.Session
}

// handleClientDetail loads the client record and its session list in
// parallel; both must land before the page renders.
func (handler *Handler) handleClientDetail(w http.ResponseWriter, r *http.Request) {
	clientID, err := pathID(r, "id")
	if err != nil {
		http.NotFound(w, r)
		return
	}

	var (
		client     *praxis.Client
		sessions   []praxis.Session
		clientErr  error
		sessionErr error
		wg         sync.WaitGroup
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		client, clientErr = handler.praxisClient.GetClient(r.Context(), clientID)
	}()
	go func() {
		defer wg.Done()
		sessions, sessionErr = handler.praxisClient.ListSessions(r.Context(), clientID)
	}()
	wg.Wait()

	if err := multierr.Combine(clientErr, sessionErr); err != nil {
		// a missing client wins over a failed session fetch, so the
		// user sees the not-found state rather than a retry banner
		if clientErr != nil {
			handler.renderReadError(w, r, clientErr, "client detail")
		} else {
			handler.renderReadError(w, r, sessionErr, "client detail sessions")
		}
		return
	}

	sort.SliceStable(sessions, func(i, j int) bool {
		return progress.ParseDate(sessions[i].Date).After(progress.ParseDate(sessions[j].Date))
	})

	handler.render(w, "client_detail.gohtml", clientDetailPage{
		basePage: handler.basePage(r, client.Name),
		Client:   *client,
		Sessions: sessions,
	})
}

type clientDeletePage struct {
	basePage
	Client       praxis.Client
	SessionCount int
}

// handleClientDeletePage shows the cascade warning before anything is
// removed: the anamnesis record and all sessions go with the client.
func (handler *Handler) handleClientDeletePage(w http.ResponseWriter, r *http.Request) {
	clientID, err := pathID(r, "id")
	if err != nil {
		http.NotFound(w, r)
		return
	}

	client, err := handler.praxisClient.GetClient(r.Context(), clientID)
	if err != nil {
		handler.renderReadError(w, r, err, "client delete page")
		return
	}

	sessions, err := handler.praxisClient.ListSessions(r.Context(), clientID)
	if err != nil {
		handler.renderReadError(w, r, err, "client delete page sessions")
		return
	}

	handler.render(w, "client_confirm_delete.gohtml", clientDeletePage{
		basePage:     handler.basePage(r, "Excluir Cliente"),
		Client:       *client,
		SessionCount: len(sessions),
	})
}

func (handler *Handler) handleClientDelete(w http.ResponseWriter, r *http.Request) {
	clientID, err := pathID(r, "id")
	if err != nil {
		http.NotFound(w, r)
		return
	}

	if err := handler.praxisClient.DeleteClient(r.Context(), clientID); err != nil {
		handler.renderReadError(w, r, err, "client delete")
		return
	}

	log.Tracef("client %d deleted", clientID)
	http.Redirect(w, r, "/clientes", http.StatusFound)
}

func mutationErrorMessage(err error, fallback string) string {
	if detail := praxis.DetailOf(err); detail != "" {
		return detail
	}
	return fallback
}
