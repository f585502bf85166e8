package provider

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

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Provider, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByNPI(ctx context.Context, npi string) (*Provider, error) {
	return s.repo.GetByNPI(ctx, npi)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Provider, int, error) {
	return s.repo.List(ctx, limit, offset)
}
