package producers

import (
	"context"
	"fmt"
	"strings"

	"github.com/hivemart/hivemart/internal/catalog/shared"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Producer, int, error) {
	return s.repo.List(ctx, filters.Normalize())
}

func (s *Service) Get(ctx context.Context, id int64) (Producer, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, input ProducerInput) (Producer, error) {
	input = trimInput(input)
	if input.Name == "" {
		return Producer{}, fmt.Errorf("%w: name required", ErrValidation)
	}
	created, err := s.repo.Create(ctx, input)
	if err != nil {
		return Producer{}, fmt.Errorf("create producer: %w", err)
	}
	return created, nil
}

func (s *Service) Update(ctx context.Context, id int64, input ProducerInput) (Producer, error) {
	input = trimInput(input)
	if input.Name == "" {
		return Producer{}, fmt.Errorf("%w: name required", ErrValidation)
	}
	if err := s.repo.Update(ctx, id, input); err != nil {
		return Producer{}, fmt.Errorf("update producer: %w", err)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func trimInput(input ProducerInput) ProducerInput {
	input.Name = strings.TrimSpace(input.Name)
	input.Country = strings.TrimSpace(input.Country)
	return input
}
