package intake

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rxintake/rxintake/internal/domain/order"
	"github.com/rxintake/rxintake/internal/domain/patient"
	"github.com/rxintake/rxintake/internal/domain/provider"
)

// Warning severities.
const (
	SeverityHigh = "high"
	SeverityLow  = "low"
)

// Warning codes.
const (
	CodePatientMRNExists     = "patient_mrn_exists"
	CodePatientNameSimilar   = "patient_name_similar"
	CodeDuplicateOrder       = "duplicate_order"
	CodeProviderNPIMismatch  = "provider_npi_mismatch"
	CodeProviderNameMismatch = "provider_name_mismatch"
)

// Warning is an advisory duplicate or conflict finding. Warnings never
// block a submission.
type Warning struct {
	Code     string `json:"code"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// DuplicateChecker runs the read-only duplicate and conflict checks against
// the store.
type DuplicateChecker struct {
	patients  patient.Repository
	providers provider.Repository
	orders    order.Repository
}

func NewDuplicateChecker(p patient.Repository, pr provider.Repository, o order.Repository) *DuplicateChecker {
	return &DuplicateChecker{patients: p, providers: pr, orders: o}
}

// Check returns every applicable warning for the submission. A store error
// aborts the whole check; warnings are advisory but must be computed from a
// consistent read.
func (d *DuplicateChecker) Check(ctx context.Context, n *Normalized) ([]Warning, error) {
	warnings := []Warning{}

	existing, err := d.patients.GetByMRN(ctx, n.PatientMRN)
	switch {
	case err == nil:
		warnings = append(warnings, Warning{
			Code:     CodePatientMRNExists,
			Severity: SeverityHigh,
			Message:  fmt.Sprintf("Patient with MRN %s already exists in the system.", n.PatientMRN),
		})
	case errors.Is(err, patient.ErrNotFound):
		// Name check only runs when the MRN did not match, so a known
		// patient produces a single warning.
		_, nameErr := d.patients.GetByName(ctx, n.PatientFirstName, n.PatientLastName)
		if nameErr == nil {
			warnings = append(warnings, Warning{
				Code:     CodePatientNameSimilar,
				Severity: SeverityLow,
				Message:  fmt.Sprintf("Patient with name %s %s may already exist.", n.PatientFirstName, n.PatientLastName),
			})
		} else if !errors.Is(nameErr, patient.ErrNotFound) {
			return nil, fmt.Errorf("patient name check: %w", nameErr)
		}
	default:
		return nil, fmt.Errorf("patient mrn check: %w", err)
	}

	if existing != nil {
		_, orderErr := d.orders.FindMatching(ctx, existing.ID, n.MedicationName, n.PrimaryDiagnosis)
		if orderErr == nil {
			warnings = append(warnings, Warning{
				Code:     CodeDuplicateOrder,
				Severity: SeverityHigh,
				Message: fmt.Sprintf("An order for %s with diagnosis %s already exists for this patient.",
					n.MedicationName, n.PrimaryDiagnosis),
			})
		} else if !errors.Is(orderErr, order.ErrNotFound) {
			return nil, fmt.Errorf("order check: %w", orderErr)
		}
	}

	providerWarnings, err := d.checkProviderConflicts(ctx, n.ReferringProvider, n.ReferringProviderNPI)
	if err != nil {
		return nil, err
	}
	warnings = append(warnings, providerWarnings...)

	return warnings, nil
}

// checkProviderConflicts warns when the NPI is registered under a different
// name or the name under a different NPI, one warning per direction.
func (d *DuplicateChecker) checkProviderConflicts(ctx context.Context, name, npi string) ([]Warning, error) {
	var warnings []Warning

	byNPI, err := d.providers.GetByNPI(ctx, npi)
	if err == nil {
		if !strings.EqualFold(byNPI.Name, name) {
			warnings = append(warnings, Warning{
				Code:     CodeProviderNPIMismatch,
				Severity: SeverityHigh,
				Message:  fmt.Sprintf("NPI %s is already registered to provider '%s'.", npi, byNPI.Name),
			})
		}
	} else if !errors.Is(err, provider.ErrNotFound) {
		return nil, fmt.Errorf("provider npi check: %w", err)
	}

	byName, err := d.providers.GetByName(ctx, name)
	if err == nil {
		if byName.NPI != npi {
			warnings = append(warnings, Warning{
				Code:     CodeProviderNameMismatch,
				Severity: SeverityHigh,
				Message:  fmt.Sprintf("Provider '%s' is already registered with a different NPI (%s).", name, byName.NPI),
			})
		}
	} else if !errors.Is(err, provider.ErrNotFound) {
		return nil, fmt.Errorf("provider name check: %w", err)
	}

	return warnings, nil
}
