package category

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/neighbourlink-api/internal/domain"
	"github.com/neighbourlink-api/internal/pkg/id"
	"github.com/neighbourlink-api/internal/pkg/validate"
)

type Service interface {
	List(ctx context.Context) ([]domain.Category, error)
	Create(ctx context.Context, in domain.CategoryInput) (*domain.Category, error)
	Update(ctx context.Context, categoryID string, in domain.CategoryInput) (*domain.Category, error)
	Delete(ctx context.Context, categoryID string) error
}

type categoryStore interface {
	Put(ctx context.Context, c *domain.Category) error
	Get(ctx context.Context, categoryID string) (*domain.Category, error)
	Scan(ctx context.Context) ([]domain.Category, error)
	Update(ctx context.Context, categoryID string, updates map[string]interface{}) error
	HardDelete(ctx context.Context, categoryID string) error
}

type service struct {
	repo categoryStore
}

func NewService(repo categoryStore) Service {
	return &service{repo: repo}
}

func (s *service) List(ctx context.Context) ([]domain.Category, error) {
	categories, err := s.repo.Scan(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].Name < categories[j].Name })
	return categories, nil
}

func (s *service) Create(ctx context.Context, in domain.CategoryInput) (*domain.Category, error) {
	if err := validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%s: %w", err, domain.ErrBadRequest)
	}
	name := strings.ToLower(strings.TrimSpace(in.Name))
	existing, err := s.repo.Scan(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range existing {
		if c.Name == name {
			return nil, fmt.Errorf("category %q already exists: %w", name, domain.ErrConflict)
		}
	}
	c := &domain.Category{
		CategoryID:  id.New(),
		Name:        name,
		Description: in.Description,
	}
	if err := s.repo.Put(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) Update(ctx context.Context, categoryID string, in domain.CategoryInput) (*domain.Category, error) {
	if err := validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%s: %w", err, domain.ErrBadRequest)
	}
	if _, err := s.repo.Get(ctx, categoryID); err != nil {
		return nil, err
	}
	updates := map[string]interface{}{
		"name":        strings.ToLower(strings.TrimSpace(in.Name)),
		"description": in.Description,
	}
	if err := s.repo.Update(ctx, categoryID, updates); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, categoryID)
}

func (s *service) Delete(ctx context.Context, categoryID string) error {
	if _, err := s.repo.Get(ctx, categoryID); err != nil {
		return err
	}
	return s.repo.HardDelete(ctx, categoryID)
}
