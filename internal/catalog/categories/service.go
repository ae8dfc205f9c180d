package categories

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/hivemart/hivemart/internal/catalog/shared"
)

// Service wraps category business rules.
type Service struct {
	repo  Repository
	caser cases.Caser
}

// NewService constructs a category service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, caser: cases.Title(language.Und)}
}

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Category, int, error) {
	return s.repo.List(ctx, filters.Normalize())
}

func (s *Service) Get(ctx context.Context, id int64) (Category, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, input CategoryInput) (Category, error) {
	input.Name = s.normalizeName(input.Name)
	if input.Name == "" {
		return Category{}, fmt.Errorf("%w: name required", ErrValidation)
	}
	created, err := s.repo.Create(ctx, input)
	if err != nil {
		return Category{}, fmt.Errorf("create category: %w", err)
	}
	return created, nil
}

func (s *Service) Update(ctx context.Context, id int64, input CategoryInput) (Category, error) {
	input.Name = s.normalizeName(input.Name)
	if input.Name == "" {
		return Category{}, fmt.Errorf("%w: name required", ErrValidation)
	}
	if err := s.repo.Update(ctx, id, input); err != nil {
		return Category{}, fmt.Errorf("update category: %w", err)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) normalizeName(name string) string {
	return s.caser.String(strings.TrimSpace(name))
}
