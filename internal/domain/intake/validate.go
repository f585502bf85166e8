package intake

import (
	"regexp"
	"strings"
	"time"
)

// Submission is the raw intake form as received over the wire. List fields
// accept both array entries and comma-separated values.
type Submission struct {
	PatientFirstName     string   `json:"patient_first_name"`
	PatientLastName      string   `json:"patient_last_name"`
	PatientMRN           string   `json:"patient_mrn"`
	PatientBirthDate     string   `json:"patient_birth_date,omitempty"`
	ReferringProvider    string   `json:"referring_provider"`
	ReferringProviderNPI string   `json:"referring_provider_npi"`
	PrimaryDiagnosis     string   `json:"primary_diagnosis"`
	MedicationName       string   `json:"medication_name"`
	AdditionalDiagnoses  []string `json:"additional_diagnoses,omitempty"`
	MedicationHistory    []string `json:"medication_history,omitempty"`
	PatientRecords       string   `json:"patient_records,omitempty"`
}

// Normalized is a submission that passed every validation rule. Names are
// whitespace-collapsed, the diagnosis code is uppercased, and list fields
// are split and trimmed.
type Normalized struct {
	PatientFirstName     string
	PatientLastName      string
	PatientMRN           string
	PatientBirthDate     *time.Time
	ReferringProvider    string
	ReferringProviderNPI string
	PrimaryDiagnosis     string
	MedicationName       string
	AdditionalDiagnoses  []string
	MedicationHistory    []string
	PatientRecords       string
}

var (
	mrnPattern   = regexp.MustCompile(`^\d{6}$`)
	npiPattern   = regexp.MustCompile(`^\d{10}$`)
	icd10Pattern = regexp.MustCompile(`^[A-Z]\d{2}(\.\d{1,4})?$`)
	spacePattern = regexp.MustCompile(`\s+`)
)

const birthDateLayout = "2006-01-02"

func collapse(s string) string {
	return spacePattern.ReplaceAllString(strings.TrimSpace(s), " ")
}

// splitList flattens comma-separated entries, trims each value, and drops
// empties.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

// Validate checks every field and accumulates all failures rather than
// stopping at the first. Validation is deterministic and idempotent:
// re-validating a normalized submission changes nothing.
func Validate(sub Submission) (*Normalized, *ValidationError) {
	var fields []FieldError
	fail := func(field, rule, message string) {
		fields = append(fields, FieldError{Field: field, Rule: rule, Message: message})
	}

	n := &Normalized{
		PatientFirstName:     collapse(sub.PatientFirstName),
		PatientLastName:      collapse(sub.PatientLastName),
		PatientMRN:           strings.TrimSpace(sub.PatientMRN),
		ReferringProvider:    collapse(sub.ReferringProvider),
		ReferringProviderNPI: strings.TrimSpace(sub.ReferringProviderNPI),
		PrimaryDiagnosis:     strings.ToUpper(strings.TrimSpace(sub.PrimaryDiagnosis)),
		MedicationName:       collapse(sub.MedicationName),
		AdditionalDiagnoses:  splitList(sub.AdditionalDiagnoses),
		MedicationHistory:    splitList(sub.MedicationHistory),
		PatientRecords:       strings.TrimSpace(sub.PatientRecords),
	}

	if n.PatientFirstName == "" {
		fail("patient_first_name", "required", "Patient first name is required")
	}
	if n.PatientLastName == "" {
		fail("patient_last_name", "required", "Patient last name is required")
	}
	if !mrnPattern.MatchString(n.PatientMRN) {
		fail("patient_mrn", "format", "MRN must be exactly 6 digits")
	}
	if n.ReferringProvider == "" {
		fail("referring_provider", "required", "Referring provider is required")
	}
	if !npiPattern.MatchString(n.ReferringProviderNPI) {
		fail("referring_provider_npi", "format", "NPI must be exactly 10 digits")
	}
	if !icd10Pattern.MatchString(n.PrimaryDiagnosis) {
		fail("primary_diagnosis", "format", "Primary diagnosis must be a valid ICD-10 code (e.g., E11.9)")
	}
	if n.MedicationName == "" {
		fail("medication_name", "required", "Medication name is required")
	}
	if bd := strings.TrimSpace(sub.PatientBirthDate); bd != "" {
		t, err := time.Parse(birthDateLayout, bd)
		if err != nil {
			fail("patient_birth_date", "format", "Birth date must be in YYYY-MM-DD format")
		} else {
			n.PatientBirthDate = &t
		}
	}

	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}
	return n, nil
}
