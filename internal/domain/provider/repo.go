package provider

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("provider not found")

type Repository interface {
	// Upsert inserts the provider. When the NPI is already registered the
	// stored name is kept and only the ID is resolved; the first
	// registration wins.
	Upsert(ctx context.Context, p *Provider) error
	GetByID(ctx context.Context, id uuid.UUID) (*Provider, error)
	GetByNPI(ctx context.Context, npi string) (*Provider, error)
	// GetByName matches case-insensitively.
	GetByName(ctx context.Context, name string) (*Provider, error)
	List(ctx context.Context, limit, offset int) ([]*Provider, int, error)
}
