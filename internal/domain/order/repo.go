package order

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("order not found")

type Repository interface {
	Create(ctx context.Context, o *MedicationOrder) error
	GetByID(ctx context.Context, id uuid.UUID) (*MedicationOrder, error)
	// FindMatching returns an existing order for the same patient with the
	// same medication and primary diagnosis, compared case-insensitively.
	FindMatching(ctx context.Context, patientID uuid.UUID, medicationName, primaryDiagnosis string) (*MedicationOrder, error)
	List(ctx context.Context, limit, offset int) ([]*MedicationOrder, int, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*MedicationOrder, int, error)
}
