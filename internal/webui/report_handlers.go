package webui

import (
	"fmt"
	"net/http"
	"sort"
	"sync"

	"github.com/elleandro/studio-admin/internal/praxis"
	"github.com/elleandro/studio-admin/internal/progress"
	"github.com/elleandro/studio-admin/pkg"

	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

// anamnesisAnswer is one printable line of the questionnaire section.
type anamnesisAnswer struct {
	Label   string
	Answer  *bool
	Details string
}

type reportPage struct {
	basePage
	Client       praxis.Client
	Answers      []anamnesisAnswer
	SessionCount int
	FirstSession *praxis.Session
	LastSession  *praxis.Session
	Compare      []progress.CompareRow
	HasCompare   bool
}

// handleReportPage assembles the printable report: client record,
// questionnaire and session list are fetched in parallel, then the
// first and last session details in a second parallel round.
func (handler *Handler) handleReportPage(w http.ResponseWriter, r *http.Request) {
	clientID, err := pathID(r, "id")
	if err != nil {
		http.NotFound(w, r)
		return
	}

	var (
		client       *praxis.Client
		anamnesis    *praxis.Anamnesis
		sessions     []praxis.Session
		clientErr    error
		anamnesisErr error
		sessionsErr  error
		wg           sync.WaitGroup
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		client, clientErr = handler.praxisClient.GetClient(r.Context(), clientID)
	}()
	go func() {
		defer wg.Done()
		anamnesis, anamnesisErr = handler.praxisClient.GetAnamnesis(r.Context(), clientID)
	}()
	go func() {
		defer wg.Done()
		sessions, sessionsErr = handler.praxisClient.ListSessions(r.Context(), clientID)
	}()
	wg.Wait()

	if err := multierr.Combine(clientErr, anamnesisErr, sessionsErr); err != nil {
		if clientErr != nil {
			handler.renderReadError(w, r, clientErr, "report page client")
		} else {
			handler.renderReadError(w, r, err, "report page")
		}
		return
	}

	sort.SliceStable(sessions, func(i, j int) bool {
		return progress.ParseDate(sessions[i].Date).Before(progress.ParseDate(sessions[j].Date))
	})

	page := reportPage{
		basePage:     handler.basePage(r, "Relatório"),
		Client:       *client,
		Answers:      anamnesisAnswers(*anamnesis),
		SessionCount: len(sessions),
	}

	if len(sessions) > 0 {
		firstID := sessions[0].ID
		lastID := sessions[len(sessions)-1].ID

		var (
			firstDetail *praxis.SessionDetail
			lastDetail  *praxis.SessionDetail
			firstErr    error
			lastErr     error
			detailWg    sync.WaitGroup
		)
		detailWg.Add(2)
		go func() {
			defer detailWg.Done()
			firstDetail, firstErr = handler.praxisClient.GetSessionDetail(r.Context(), firstID)
		}()
		go func() {
			defer detailWg.Done()
			lastDetail, lastErr = handler.praxisClient.GetSessionDetail(r.Context(), lastID)
		}()
		detailWg.Wait()

		if err := multierr.Combine(firstErr, lastErr); err != nil {
			handler.renderReadError(w, r, err, "report page session details")
			return
		}

		page.FirstSession = &firstDetail.Session
		page.LastSession = &lastDetail.Session
		page.Compare = progress.Compare(firstDetail, lastDetail)
		page.HasCompare = true
	}

	handler.metricsManager.CounterReportsRendered.Inc()
	handler.render(w, "report.gohtml", page)
}

// handleReportPDF proxies the upstream server-rendered PDF, attaching
// the derived download filename.
func (handler *Handler) handleReportPDF(w http.ResponseWriter, r *http.Request) {
	clientID, err := pathID(r, "id")
	if err != nil {
		http.NotFound(w, r)
		return
	}

	pdf, err := handler.praxisClient.DownloadReportPDF(r.Context(), clientID)
	if err != nil {
		handler.renderReadError(w, r, err, "report pdf")
		return
	}

	handler.metricsManager.CounterReportsRendered.Inc()
	log.Tracef("report pdf for client %d: %d bytes", clientID, len(pdf))

	w.Header().Set(
		"Content-Disposition",
		fmt.Sprintf("attachment; filename=relatorio_cliente_%d.pdf", clientID),
	)
	pkg.WriteResponseBytesOK(w, pkg.ContentType.PDF, pdf)
}

func anamnesisAnswers(a praxis.Anamnesis) []anamnesisAnswer {
	return []anamnesisAnswer{
		{Label: "Gestante", Answer: a.Pregnant, Details: a.PregnantWeeks},
		{Label: "Lactante", Answer: a.Breastfeeding},
		{Label: "Diabetes", Answer: a.Diabetes},
		{Label: "Faz uso de medicamento", Answer: a.OnMedication, Details: a.MedicationName},
		{Label: "Hipo / Hipertensão", Answer: a.BloodPressureIssues},
		{Label: "Distúrbio circulatório", Answer: a.CirculatoryDisorder, Details: a.CirculatoryDisorderDetails},
		{Label: "Cirurgia recente", Answer: a.RecentSurgery, Details: a.RecentSurgeryDetails},
		{Label: "Problemas de pele", Answer: a.SkinProblems, Details: a.SkinProblemsDetails},
		{Label: "Alergia a cosmético", Answer: a.CosmeticAllergy, Details: a.CosmeticAllergyName},
		{Label: "Prótese corporal/facial", Answer: a.Prosthesis, Details: a.ProsthesisDetails},
		{Label: "Marcapasso", Answer: a.Pacemaker},
		{Label: "Está em tratamento médico", Answer: a.UnderMedicalTreatment},
		{Label: "Tratamento dermatológico recente", Answer: a.RecentDermatology},
		{Label: "Tumor ou lesão pré-cancerosa", Answer: a.TumorOrPrecancerLesion},
		{Label: "Varizes / trombose / lesão", Answer: a.VaricoseThrombosis, Details: a.VaricoseThrombosisDetails},
		{Label: "Inflamação aguda", Answer: a.AcuteInflammation, Details: a.AcuteInflammationDetails},
		{Label: "Problemas ortopédicos", Answer: a.OrthopedicProblems, Details: a.OrthopedicProblemsDetails},
		{Label: "Fumante", Answer: a.Smoker},
		{Label: "Pratica atividade física", Answer: a.PhysicallyActive},
		{Label: "Ciclo menstrual regular", Answer: a.RegularMenstrualCycle},
	}
}
