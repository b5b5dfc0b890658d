package webui

import (
	"net/http"
	"sync"

	"github.com/elleandro/studio-admin/internal/praxis"
	"github.com/elleandro/studio-admin/internal/progress"

	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

// measurementRow is one before/after input pair in the session form.
type measurementRow struct {
	Point  progress.Point
	Label  string
	Before *float64
	After  *float64
}

type sessionFormPage struct {
	basePage
	Client       praxis.Client
	Session      praxis.Session
	DateValue    string
	Measurements []measurementRow
	IsEdit       bool
	Error        string
}

func emptyMeasurementRows() []measurementRow {
	points := progress.Points()
	rows := make([]measurementRow, 0, len(points))
	for _, p := range points {
		rows = append(rows, measurementRow{Point: p, Label: p.Label()})
	}
	return rows
}

func measurementRowsFrom(measurements []praxis.Measurement) []measurementRow {
	byPoint := make(map[progress.Point]praxis.Measurement, len(measurements))
	for _, m := range measurements {
		byPoint[progress.Point(m.Point)] = m
	}
	rows := emptyMeasurementRows()
	for i := range rows {
		if m, ok := byPoint[rows[i].Point]; ok {
			rows[i].Before = m.Before
			rows[i].After = m.After
		}
	}
	return rows
}

func (handler *Handler) handleSessionNewPage(w http.ResponseWriter, r *http.Request) {
	clientID, err := pathID(r, "id")
	if err != nil {
		http.NotFound(w, r)
		return
	}

	client, err := handler.praxisClient.GetClient(r.Context(), clientID)
	if err != nil {
		handler.renderReadError(w, r, err, "session new page")
		return
	}

	handler.render(w, "session_form.gohtml", sessionFormPage{
		basePage:     handler.basePage(r, "Nova Sessão"),
		Client:       *client,
		DateValue:    nowDatetimeLocal(),
		Measurements: emptyMeasurementRows(),
	})
}

// handleSessionCreate persists the session record first, then replaces
// its measurement set, mirroring the two-step upstream contract.
func (handler *Handler) handleSessionCreate(w http.ResponseWriter, r *http.Request) {
	clientID, err := pathID(r, "id")
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "parse form error", http.StatusBadRequest)
		return
	}

	payload := sessionPayloadFromForm(r.Form)
	measurements := measurementsFromForm(r.Form)

	session, err := handler.praxisClient.CreateSession(r.Context(), clientID, payload)
	if err != nil {
		log.Errorf("create session for client %d: %s", clientID, err)
		handler.renderSessionFormError(w, r, clientID, 0, payload, measurements,
			mutationErrorMessage(err, "Erro ao salvar sessão."))
		return
	}

	if err := handler.praxisClient.PutMeasurements(r.Context(), session.ID, measurements); err != nil {
		log.Errorf("save measurements for session %d: %s", session.ID, err)
		handler.renderSessionFormError(w, r, clientID, session.ID, payload, measurements,
			mutationErrorMessage(err, "Sessão criada, mas houve erro ao salvar as medidas."))
		return
	}

	http.Redirect(w, r, clientPath(clientID), http.StatusFound)
}

// handleSessionEditPage loads the client and the session detail in
// parallel before rendering the edit form.
func (handler *Handler) handleSessionEditPage(w http.ResponseWriter, r *http.Request) {
	clientID, err := pathID(r, "id")
	if err != nil {
		http.NotFound(w, r)
		return
	}
	sessionID, err := pathID(r, "sid")
	if err != nil {
		http.NotFound(w, r)
		return
	}

	var (
		client    *praxis.Client
		detail    *praxis.SessionDetail
		clientErr error
		detailErr error
		wg        sync.WaitGroup
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		client, clientErr = handler.praxisClient.GetClient(r.Context(), clientID)
	}()
	go func() {
		defer wg.Done()
		detail, detailErr = handler.praxisClient.GetSessionDetail(r.Context(), sessionID)
	}()
	wg.Wait()

	if err := multierr.Combine(clientErr, detailErr); err != nil {
		if clientErr != nil {
			handler.renderReadError(w, r, clientErr, "session edit page client")
		} else {
			handler.renderReadError(w, r, detailErr, "session edit page detail")
		}
		return
	}

	handler.render(w, "session_form.gohtml", sessionFormPage{
		basePage:     handler.basePage(r, "Editar Sessão"),
		Client:       *client,
		Session:      detail.Session,
		DateValue:    datetimeLocalValue(detail.Session.Date),
		Measurements: measurementRowsFrom(detail.Measurements),
		IsEdit:       true,
	})
}

func (handler *Handler) handleSessionUpdate(w http.ResponseWriter, r *http.Request) {
	clientID, err := pathID(r, "id")
	if err != nil {
		http.NotFound(w, r)
		return
	}
	sessionID, err := pathID(r, "sid")
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "parse form error", http.StatusBadRequest)
		return
	}

	payload := sessionPayloadFromForm(r.Form)
	measurements := measurementsFromForm(r.Form)

	if err := handler.praxisClient.UpdateSession(r.Context(), sessionID, payload); err != nil {
		log.Errorf("update session %d: %s", sessionID, err)
		handler.renderSessionFormError(w, r, clientID, sessionID, payload, measurements,
			mutationErrorMessage(err, "Erro ao salvar sessão."))
		return
	}

	if err := handler.praxisClient.PutMeasurements(r.Context(), sessionID, measurements); err != nil {
		log.Errorf("save measurements for session %d: %s", sessionID, err)
		handler.renderSessionFormError(w, r, clientID, sessionID, payload, measurements,
			mutationErrorMessage(err, "Erro ao salvar as medidas."))
		return
	}

	http.Redirect(w, r, clientPath(clientID), http.StatusFound)
}

func (handler *Handler) renderSessionFormError(
	w http.ResponseWriter, r *http.Request,
	clientID, sessionID int64,
	payload praxis.SessionPayload,
	measurements []praxis.Measurement,
	message string,
) {
	client, err := handler.praxisClient.GetClient(r.Context(), clientID)
	if err != nil {
		handler.renderReadError(w, r, err, "session form client")
		return
	}

	title := "Nova Sessão"
	if sessionID != 0 {
		title = "Editar Sessão"
	}
	w.WriteHeader(http.StatusUnprocessableEntity)
	handler.render(w, "session_form.gohtml", sessionFormPage{
		basePage: handler.basePage(r, title),
		Client:   *client,
		Session: praxis.Session{
			ID:        sessionID,
			Date:      payload.Date,
			Pain:      payload.Pain,
			Swelling:  payload.Swelling,
			LegWeight: payload.LegWeight,
		},
		DateValue:    datetimeLocalValue(payload.Date),
		Measurements: measurementRowsFrom(measurements),
		IsEdit:       sessionID != 0,
		Error:        message,
	})
}

type sessionDeletePage struct {
	basePage
	Client  praxis.Client
	Session praxis.Session
}

// handleSessionDeletePage shows the cascade warning: the measurements
// go with the session.
func (handler *Handler) handleSessionDeletePage(w http.ResponseWriter, r *http.Request) {
	clientID, err := pathID(r, "id")
	if err != nil {
		http.NotFound(w, r)
		return
	}
	sessionID, err := pathID(r, "sid")
	if err != nil {
		http.NotFound(w, r)
		return
	}

	client, err := handler.praxisClient.GetClient(r.Context(), clientID)
	if err != nil {
		handler.renderReadError(w, r, err, "session delete page client")
		return
	}
	detail, err := handler.praxisClient.GetSessionDetail(r.Context(), sessionID)
	if err != nil {
		handler.renderReadError(w, r, err, "session delete page detail")
		return
	}

	handler.render(w, "session_confirm_delete.gohtml", sessionDeletePage{
		basePage: handler.basePage(r, "Excluir Sessão"),
		Client:   *client,
		Session:  detail.Session,
	})
}

func (handler *Handler) handleSessionDelete(w http.ResponseWriter, r *http.Request) {
	clientID, err := pathID(r, "id")
	if err != nil {
		http.NotFound(w, r)
		return
	}
	sessionID, err := pathID(r, "sid")
	if err != nil {
		http.NotFound(w, r)
		return
	}

	if err := handler.praxisClient.DeleteSession(r.Context(), sessionID); err != nil {
		handler.renderReadError(w, r, err, "session delete")
		return
	}

	log.Tracef("session %d of client %d deleted", sessionID, clientID)
	http.Redirect(w, r, clientPath(clientID), http.StatusFound)
}
