package webui

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/elleandro/studio-admin/internal/praxis"
	"github.com/elleandro/studio-admin/internal/progress"
	"github.com/elleandro/studio-admin/pkg"

	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

const defaultEvolutionPoint = progress.PointRightLeg

type evolutionPage struct {
	basePage
	Client        praxis.Client
	Point         progress.Point
	History       progress.History
	FirstValid    *progress.Row
	LastValid     *progress.Row
	Variation     *float64
	TotalSessions int
	Period        *praxis.Period
}

func selectedPoint(r *http.Request) progress.Point {
	if p, ok := progress.ParsePoint(r.URL.Query().Get("ponto")); ok {
		return p
	}
	return defaultEvolutionPoint
}

func (handler *Handler) loadEvolution(r *http.Request, clientID int64) (*praxis.Client, *praxis.Evolution, error) {
	var (
		client       *praxis.Client
		evolution    *praxis.Evolution
		clientErr    error
		evolutionErr error
		wg           sync.WaitGroup
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		client, clientErr = handler.praxisClient.GetClient(r.Context(), clientID)
	}()
	go func() {
		defer wg.Done()
		evolution, evolutionErr = handler.praxisClient.GetEvolution(r.Context(), clientID)
	}()
	wg.Wait()

	if err := multierr.Combine(clientErr, evolutionErr); err != nil {
		// a missing client wins over a failed evolution fetch
		if clientErr != nil {
			return nil, nil, clientErr
		}
		return nil, nil, err
	}
	return client, evolution, nil
}

// handleEvolutionPage renders the per-point progress view. The derived
// values (first/last valid, variation, per-row deltas) are computed
// here from the raw session list; the upstream's own precomputed
// summary supplies only the header (period, total count).
func (handler *Handler) handleEvolutionPage(w http.ResponseWriter, r *http.Request) {
	clientID, err := pathID(r, "id")
	if err != nil {
		http.NotFound(w, r)
		return
	}

	client, evolution, err := handler.loadEvolution(r, clientID)
	if err != nil {
		handler.renderReadError(w, r, err, "evolution page")
		return
	}

	point := selectedPoint(r)
	history := progress.BuildHistory(evolution.Sessions, point)

	totalSessions := evolution.TotalSessions
	if totalSessions == 0 {
		totalSessions = len(history.Rows)
	}

	handler.render(w, "evolution.gohtml", evolutionPage{
		basePage:      handler.basePage(r, "Evolução"),
		Client:        *client,
		Point:         point,
		History:       history,
		FirstValid:    history.FirstValid(),
		LastValid:     history.LastValid(),
		Variation:     history.Variation(),
		TotalSessions: totalSessions,
		Period:        evolution.Period,
	})
}

type evolutionDataRow struct {
	Date      string   `json:"data"`
	Before    *float64 `json:"antes"`
	After     *float64 `json:"depois"`
	Delta     *float64 `json:"delta"`
	Pain      *float64 `json:"dor"`
	Swelling  *float64 `json:"inchaco"`
	LegWeight *float64 `json:"peso_pernas"`
}

type evolutionData struct {
	Point     string             `json:"ponto"`
	Label     string             `json:"label"`
	Rows      []evolutionDataRow `json:"rows"`
	Variation *float64           `json:"variacao"`
}

// handleEvolutionData feeds the chart on the evolution page.
func (handler *Handler) handleEvolutionData(w http.ResponseWriter, r *http.Request) {
	clientID, err := pathID(r, "id")
	if err != nil {
		http.NotFound(w, r)
		return
	}

	_, evolution, err := handler.loadEvolution(r, clientID)
	if err != nil {
		handler.renderJSONError(w, err)
		return
	}

	point := selectedPoint(r)
	history := progress.BuildHistory(evolution.Sessions, point)

	data := evolutionData{
		Point:     string(point),
		Label:     point.Label(),
		Rows:      make([]evolutionDataRow, 0, len(history.Rows)),
		Variation: history.Variation(),
	}
	for _, row := range history.Rows {
		data.Rows = append(data.Rows, evolutionDataRow{
			Date:      row.DateRaw,
			Before:    row.Before,
			After:     row.After,
			Delta:     row.Delta(),
			Pain:      row.Pain,
			Swelling:  row.Swelling,
			LegWeight: row.LegWeight,
		})
	}

	dataBytes, err := json.Marshal(data)
	if err != nil {
		log.Errorf("marshal evolution data: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteJSONResponseOK(w, pkg.BytesToString(dataBytes))
}

func (handler *Handler) renderJSONError(w http.ResponseWriter, err error) {
	status := http.StatusBadGateway
	switch {
	case errors.Is(err, praxis.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, praxis.ErrUnauthorized):
		status = http.StatusUnauthorized
	}
	log.Errorf("evolution data: %s", err)
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, []byte(`{"error":"upstream error"}`), status)
}
