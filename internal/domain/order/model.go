package order

import (
	"time"

	"github.com/google/uuid"
)

// MedicationOrder links a patient and referring provider to a requested
// medication. Diagnosis and history lists ride along for prompt building
// and export; orders are immutable once written.
type MedicationOrder struct {
	ID                  uuid.UUID `json:"id"`
	PatientID           uuid.UUID `json:"patient_id"`
	ProviderID          uuid.UUID `json:"provider_id"`
	MedicationName      string    `json:"medication_name"`
	PrimaryDiagnosis    string    `json:"primary_diagnosis"`
	AdditionalDiagnoses []string  `json:"additional_diagnoses"`
	MedicationHistory   []string  `json:"medication_history"`
	PatientRecords      string    `json:"patient_records,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
}
