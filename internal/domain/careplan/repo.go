package careplan

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("care plan not found")

type Repository interface {
	Create(ctx context.Context, cp *CarePlan) error
	GetByID(ctx context.Context, id uuid.UUID) (*CarePlan, error)
	GetByOrderID(ctx context.Context, orderID uuid.UUID) (*CarePlan, error)
	List(ctx context.Context, limit, offset int) ([]*CarePlan, int, error)
	// ExportRows returns every plan joined with its order, patient, and
	// provider, newest first.
	ExportRows(ctx context.Context) ([]ExportRow, error)
}
