package webui

import (
	"net/http"
	"sync"

	"github.com/elleandro/studio-admin/internal/praxis"

	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

type anamnesisPage struct {
	basePage
	Client praxis.Client
	Fields []anamnesisField
	Saved  bool
	Error  string
}

// anamnesisField is one yes/no question of the intake form, optionally
// paired with a free-text elaboration input.
type anamnesisField struct {
	Key        string
	Label      string
	Value      *bool
	ExtraKey   string
	ExtraLabel string
	ExtraValue string
}

func anamnesisFields(a praxis.Anamnesis) []anamnesisField {
	return []anamnesisField{
		{Key: "gestante", Label: "Gestante", Value: a.Pregnant,
			ExtraKey: "semanas", ExtraLabel: "Semanas", ExtraValue: a.PregnantWeeks},
		{Key: "lactante", Label: "Lactante", Value: a.Breastfeeding},
		{Key: "diabetes", Label: "Diabetes", Value: a.Diabetes},
		{Key: "uso_medicamento", Label: "Faz uso de medicamento", Value: a.OnMedication,
			ExtraKey: "medicamento_qual", ExtraLabel: "Qual medicamento", ExtraValue: a.MedicationName},
		{Key: "hipo_hipertensao", Label: "Hipo / Hipertensão", Value: a.BloodPressureIssues},
		{Key: "disturbio_circulatorio", Label: "Distúrbio circulatório", Value: a.CirculatoryDisorder,
			ExtraKey: "disturbio_especifique", ExtraLabel: "Especifique", ExtraValue: a.CirculatoryDisorderDetails},
		{Key: "cirurgia_recente", Label: "Cirurgia recente", Value: a.RecentSurgery,
			ExtraKey: "cirurgia_especifique", ExtraLabel: "Especifique", ExtraValue: a.RecentSurgeryDetails},
		{Key: "problemas_pele", Label: "Problemas de pele", Value: a.SkinProblems,
			ExtraKey: "pele_especifique", ExtraLabel: "Especifique", ExtraValue: a.SkinProblemsDetails},
		{Key: "alergia_cosmetico", Label: "Alergia a cosmético", Value: a.CosmeticAllergy,
			ExtraKey: "alergia_qual", ExtraLabel: "Qual", ExtraValue: a.CosmeticAllergyName},
		{Key: "protese", Label: "Prótese corporal / facial", Value: a.Prosthesis,
			ExtraKey: "protese_especifique", ExtraLabel: "Especifique", ExtraValue: a.ProsthesisDetails},
		{Key: "marcapasso", Label: "Marcapasso", Value: a.Pacemaker},
		{Key: "em_tratamento_medico", Label: "Está em tratamento médico", Value: a.UnderMedicalTreatment},
		{Key: "tratamento_dermatologico_recente", Label: "Tratamento dermatológico recente", Value: a.RecentDermatology},
		{Key: "tumor_lesao_pre_cancerosa", Label: "Tumor ou lesão pré-cancerosa", Value: a.TumorOrPrecancerLesion},
		{Key: "varizes_trombose_lesao", Label: "Varizes / trombose / lesão", Value: a.VaricoseThrombosis,
			ExtraKey: "varizes_especifique", ExtraLabel: "Especifique", ExtraValue: a.VaricoseThrombosisDetails},
		{Key: "inflamacao_aguda", Label: "Inflamação aguda", Value: a.AcuteInflammation,
			ExtraKey: "inflamacao_especifique", ExtraLabel: "Especifique", ExtraValue: a.AcuteInflammationDetails},
		{Key: "problemas_ortopedicos", Label: "Problemas ortopédicos", Value: a.OrthopedicProblems,
			ExtraKey: "ortopedicos_especifique", ExtraLabel: "Especifique", ExtraValue: a.OrthopedicProblemsDetails},
		{Key: "fumante", Label: "Fumante", Value: a.Smoker},
		{Key: "pratica_atividade_fisica", Label: "Pratica atividade física", Value: a.PhysicallyActive},
		{Key: "ciclo_menstrual_regular", Label: "Ciclo menstrual regular", Value: a.RegularMenstrualCycle},
	}
}

func (handler *Handler) handleAnamnesisPage(w http.ResponseWriter, r *http.Request) {
	clientID, err := pathID(r, "id")
	if err != nil {
		http.NotFound(w, r)
		return
	}

	var (
		client       *praxis.Client
		anamnesis    *praxis.Anamnesis
		clientErr    error
		anamnesisErr error
		wg           sync.WaitGroup
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		client, clientErr = handler.praxisClient.GetClient(r.Context(), clientID)
	}()
	go func() {
		defer wg.Done()
		anamnesis, anamnesisErr = handler.praxisClient.GetAnamnesis(r.Context(), clientID)
	}()
	wg.Wait()

	if err := multierr.Combine(clientErr, anamnesisErr); err != nil {
		if clientErr != nil {
			handler.renderReadError(w, r, clientErr, "anamnesis page client")
		} else {
			handler.renderReadError(w, r, anamnesisErr, "anamnesis page")
		}
		return
	}

	handler.render(w, "anamnesis.gohtml", anamnesisPage{
		basePage: handler.basePage(r, "Anamnese"),
		Client:   *client,
		Fields:   anamnesisFields(*anamnesis),
		Saved:    r.URL.Query().Get("salvo") == "1",
	})
}

func (handler *Handler) handleAnamnesisSave(w http.ResponseWriter, r *http.Request) {
	clientID, err := pathID(r, "id")
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "parse form error", http.StatusBadRequest)
		return
	}

	anamnesis := anamnesisFromForm(r.Form)
	if err := handler.praxisClient.PutAnamnesis(r.Context(), clientID, anamnesis); err != nil {
		log.Errorf("save anamnesis for client %d: %s", clientID, err)

		client, clientErr := handler.praxisClient.GetClient(r.Context(), clientID)
		if clientErr != nil {
			handler.renderReadError(w, r, clientErr, "anamnesis save client")
			return
		}
		w.WriteHeader(http.StatusUnprocessableEntity)
		handler.render(w, "anamnesis.gohtml", anamnesisPage{
			basePage: handler.basePage(r, "Anamnese"),
			Client:   *client,
			Fields:   anamnesisFields(anamnesis),
			Error:    mutationErrorMessage(err, "Erro ao salvar anamnese."),
		})
		return
	}

	http.Redirect(w, r, clientPath(clientID)+"/anamnese?salvo=1", http.StatusFound)
}
