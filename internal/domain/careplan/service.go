package careplan

import (
	"context"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*CarePlan, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*CarePlan, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) ExportRows(ctx context.Context) ([]ExportRow, error) {
	return s.repo.ExportRows(ctx)
}
