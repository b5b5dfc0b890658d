package praxis

// Upstream practice API wire types. Field names follow the API's own
// (Portuguese) JSON contract; optional fields are pointers so that an
// absent value round-trips as JSON null instead of a zero.

type LoginResult struct {
	Token string `json:"token"`
	Name  string `json:"nome"`
}

const (
	ClientStatusActive   = "ativa"
	ClientStatusInactive = "inativa"
)

type Client struct {
	ID     int64  `json:"id"`
	Name   string `json:"nome"`
	RG     string `json:"rg"`
	Phone  string `json:"telefone"`
	Email  string `json:"email"`
	CPF    string `json:"cpf"`
	Status string `json:"status"`
	Notes  string `json:"observacoes"`
}

// ClientPayload is the create/update body. The upstream expects explicit
// nulls for cleared optional fields, hence the pointers.
type ClientPayload struct {
	Name   string  `json:"nome"`
	RG     *string `json:"rg"`
	Phone  *string `json:"telefone"`
	Email  *string `json:"email"`
	CPF    *string `json:"cpf"`
	Status string  `json:"status"`
	Notes  *string `json:"observacoes"`
}

type Session struct {
	ID        int64    `json:"id"`
	Date      string   `json:"data_sessao"`
	Pain      *float64 `json:"dor"`
	Swelling  *float64 `json:"inchaco"`
	LegWeight *float64 `json:"peso_pernas"`
}

type SessionPayload struct {
	Date      string   `json:"data_sessao"`
	Pain      *float64 `json:"dor"`
	Swelling  *float64 `json:"inchaco"`
	LegWeight *float64 `json:"peso_pernas"`
}

type Measurement struct {
	Point  string   `json:"ponto"`
	Before *float64 `json:"antes"`
	After  *float64 `json:"depois"`
}

type SessionDetail struct {
	Session      Session       `json:"sessao"`
	Measurements []Measurement `json:"medidas"`
}

// EvolutionSession is a session as returned by the evolution summary
// endpoint, with its measurements inlined.
type EvolutionSession struct {
	Session
	Measurements []Measurement `json:"medidas"`
}

type Period struct {
	Start string `json:"inicio"`
	End   string `json:"fim"`
}

type Evolution struct {
	Sessions      []EvolutionSession `json:"sessoes"`
	TotalSessions int                `json:"total_sessoes"`
	Period        *Period            `json:"periodo"`
}

// Anamnesis is the client intake questionnaire: yes/no answers, several
// paired with a free-text elaboration shown only when the answer is yes.
// Saving overwrites the whole record, there is no answer history.
type Anamnesis struct {
	Pregnant      *bool  `json:"gestante"`
	PregnantWeeks string `json:"semanas,omitempty"`

	Breastfeeding *bool `json:"lactante"`
	Diabetes      *bool `json:"diabetes"`

	OnMedication   *bool  `json:"uso_medicamento"`
	MedicationName string `json:"medicamento_qual,omitempty"`

	BloodPressureIssues *bool `json:"hipo_hipertensao"`

	CirculatoryDisorder        *bool  `json:"disturbio_circulatorio"`
	CirculatoryDisorderDetails string `json:"disturbio_especifique,omitempty"`

	RecentSurgery        *bool  `json:"cirurgia_recente"`
	RecentSurgeryDetails string `json:"cirurgia_especifique,omitempty"`

	SkinProblems        *bool  `json:"problemas_pele"`
	SkinProblemsDetails string `json:"pele_especifique,omitempty"`

	CosmeticAllergy     *bool  `json:"alergia_cosmetico"`
	CosmeticAllergyName string `json:"alergia_qual,omitempty"`

	Prosthesis        *bool  `json:"protese"`
	ProsthesisDetails string `json:"protese_especifique,omitempty"`

	Pacemaker              *bool `json:"marcapasso"`
	UnderMedicalTreatment  *bool `json:"em_tratamento_medico"`
	RecentDermatology      *bool `json:"tratamento_dermatologico_recente"`
	TumorOrPrecancerLesion *bool `json:"tumor_lesao_pre_cancerosa"`

	VaricoseThrombosis        *bool  `json:"varizes_trombose_lesao"`
	VaricoseThrombosisDetails string `json:"varizes_especifique,omitempty"`

	AcuteInflammation        *bool  `json:"inflamacao_aguda"`
	AcuteInflammationDetails string `json:"inflamacao_especifique,omitempty"`

	OrthopedicProblems        *bool  `json:"problemas_ortopedicos"`
	OrthopedicProblemsDetails string `json:"ortopedicos_especifique,omitempty"`

	Smoker                *bool `json:"fumante"`
	PhysicallyActive      *bool `json:"pratica_atividade_fisica"`
	RegularMenstrualCycle *bool `json:"ciclo_menstrual_regular"`
}
