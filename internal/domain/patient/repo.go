package patient

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound indicates the patient does not exist. Callers use it to tell
// an absent row apart from a store failure.
var ErrNotFound = errors.New("patient not found")

type Repository interface {
	// Upsert inserts the patient or, when the MRN already exists, refreshes
	// the name fields. The patient's ID is set either way.
	Upsert(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	GetByMRN(ctx context.Context, mrn string) (*Patient, error)
	// GetByName matches case-insensitively on both name fields.
	GetByName(ctx context.Context, firstName, lastName string) (*Patient, error)
	List(ctx context.Context, limit, offset int) ([]*Patient, int, error)
}
