package webui

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/elleandro/studio-admin/internal/format"
	"github.com/elleandro/studio-admin/internal/praxis"
	"github.com/elleandro/studio-admin/internal/progress"
)

// optionalString trims the form value and returns nil for empty, so
// cleared fields reach the upstream as explicit nulls.
func optionalString(form url.Values, key string) *string {
	v := strings.TrimSpace(form.Get(key))
	if v == "" {
		return nil
	}
	return &v
}

// optionalDigits is optionalString plus digit stripping, for masked
// phone/CPF inputs.
func optionalDigits(form url.Values, key string) *string {
	v := format.DigitsOnly(form.Get(key))
	if v == "" {
		return nil
	}
	return &v
}

// optionalNumber parses an optional numeric form value. Out-of-range
// and odd-but-numeric input passes through untouched; the upstream owns
// validation.
func optionalNumber(form url.Values, key string) *float64 {
	v := strings.TrimSpace(form.Get(key))
	if v == "" {
		return nil
	}
	n, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", "."), 64)
	if err != nil {
		return nil
	}
	return &n
}

// optionalBool reads a yes/no radio group: "sim" -> true, "nao" ->
// false, unanswered -> nil.
func optionalBool(form url.Values, key string) *bool {
	switch form.Get(key) {
	case "sim":
		v := true
		return &v
	case "nao":
		v := false
		return &v
	default:
		return nil
	}
}

func clientPayloadFromForm(form url.Values) praxis.ClientPayload {
	status := form.Get("status")
	if status != praxis.ClientStatusInactive {
		status = praxis.ClientStatusActive
	}
	return praxis.ClientPayload{
		Name:   format.CapitalizeName(form.Get("nome")),
		RG:     optionalString(form, "rg"),
		Phone:  optionalDigits(form, "telefone"),
		Email:  optionalString(form, "email"),
		CPF:    optionalDigits(form, "cpf"),
		Status: status,
		Notes:  optionalString(form, "observacoes"),
	}
}

func sessionPayloadFromForm(form url.Values) praxis.SessionPayload {
	date := strings.TrimSpace(form.Get("data_sessao"))
	if t, err := time.ParseInLocation("2006-01-02T15:04", date, time.Local); err == nil {
		date = t.UTC().Format(time.RFC3339)
	}
	return praxis.SessionPayload{
		Date:      date,
		Pain:      optionalNumber(form, "dor"),
		Swelling:  optionalNumber(form, "inchaco"),
		LegWeight: optionalNumber(form, "peso_pernas"),
	}
}

// measurementsFromForm reads the eight before/after input pairs, named
// antes_<point> and depois_<point>. Every point is always submitted,
// mirroring the full-set replace the upstream expects.
func measurementsFromForm(form url.Values) []praxis.Measurement {
	points := progress.Points()
	measurements := make([]praxis.Measurement, 0, len(points))
	for _, p := range points {
		measurements = append(measurements, praxis.Measurement{
			Point:  string(p),
			Before: optionalNumber(form, "antes_"+string(p)),
			After:  optionalNumber(form, "depois_"+string(p)),
		})
	}
	return measurements
}

func anamnesisFromForm(form url.Values) praxis.Anamnesis {
	text := func(key string) string { return strings.TrimSpace(form.Get(key)) }
	return praxis.Anamnesis{
		Pregnant:      optionalBool(form, "gestante"),
		PregnantWeeks: text("semanas"),

		Breastfeeding: optionalBool(form, "lactante"),
		Diabetes:      optionalBool(form, "diabetes"),

		OnMedication:   optionalBool(form, "uso_medicamento"),
		MedicationName: text("medicamento_qual"),

		BloodPressureIssues: optionalBool(form, "hipo_hipertensao"),

		CirculatoryDisorder:        optionalBool(form, "disturbio_circulatorio"),
		CirculatoryDisorderDetails: text("disturbio_especifique"),

		RecentSurgery:        optionalBool(form, "cirurgia_recente"),
		RecentSurgeryDetails: text("cirurgia_especifique"),

		SkinProblems:        optionalBool(form, "problemas_pele"),
		SkinProblemsDetails: text("pele_especifique"),

		CosmeticAllergy:     optionalBool(form, "alergia_cosmetico"),
		CosmeticAllergyName: text("alergia_qual"),

		Prosthesis:        optionalBool(form, "protese"),
		ProsthesisDetails: text("protese_especifique"),

		Pacemaker:              optionalBool(form, "marcapasso"),
		UnderMedicalTreatment:  optionalBool(form, "em_tratamento_medico"),
		RecentDermatology:      optionalBool(form, "tratamento_dermatologico_recente"),
		TumorOrPrecancerLesion: optionalBool(form, "tumor_lesao_pre_cancerosa"),

		VaricoseThrombosis:        optionalBool(form, "varizes_trombose_lesao"),
		VaricoseThrombosisDetails: text("varizes_especifique"),

		AcuteInflammation:        optionalBool(form, "inflamacao_aguda"),
		AcuteInflammationDetails: text("inflamacao_especifique"),

		OrthopedicProblems:        optionalBool(form, "problemas_ortopedicos"),
		OrthopedicProblemsDetails: text("ortopedicos_especifique"),

		Smoker:                optionalBool(form, "fumante"),
		PhysicallyActive:      optionalBool(form, "pratica_atividade_fisica"),
		RegularMenstrualCycle: optionalBool(form, "ciclo_menstrual_regular"),
	}
}
