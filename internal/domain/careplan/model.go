package careplan

import (
	"time"

	"github.com/google/uuid"
)

// CarePlan is the generated narrative for one medication order. Plans are
// immutable once written.
type CarePlan struct {
	ID        uuid.UUID `json:"id"`
	OrderID   uuid.UUID `json:"order_id"`
	Narrative string    `json:"narrative"`
	Model     string    `json:"model"`
	CreatedAt time.Time `json:"created_at"`
}

// ExportRow is one line of the pharma-reporting CSV, joining the plan with
// its order, patient, and provider.
type ExportRow struct {
	ID                  uuid.UUID
	PatientMRN          string
	PatientFirstName    string
	PatientLastName     string
	ProviderName        string
	ProviderNPI         string
	MedicationName      string
	PrimaryDiagnosis    string
	AdditionalDiagnoses []string
	MedicationHistory   []string
	Narrative           string
	CreatedAt           time.Time
}
