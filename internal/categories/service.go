package category

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/amendez21/storefront-backend/pkg/db/models"
	pkgerrors "github.com/amendez21/storefront-backend/pkg/errors"
	"gorm.io/gorm"
)

// CategoryDTO is the category shape served to storefront clients.
type CategoryDTO struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Path      *string   `json:"path,omitempty"`
	ParentID  *uint     `json:"parentId,omitempty"`
	Slug      *string   `json:"slug,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Service exposes category read operations.
type Service interface {
	List(ctx context.Context) ([]CategoryDTO, error)
	GetByID(ctx context.Context, id uint) (*CategoryDTO, error)
	GetBySlug(ctx context.Context, slug string) (*CategoryDTO, error)
}

type categoryReader interface {
	List(ctx context.Context) ([]models.Category, error)
	FindByID(ctx context.Context, id uint) (*models.Category, error)
	FindBySlug(ctx context.Context, slug string) (*models.Category, error)
}

type service struct {
	repo categoryReader
}

// NewService constructs the category service.
func NewService(repo categoryReader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("category repository required")
	}
	return &service{repo: repo}, nil
}

// List returns all categories ordered by name.
func (s *service) List(ctx context.Context) ([]CategoryDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	out := make([]CategoryDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDTO(row))
	}
	return out, nil
}

// GetByID returns a single category.
func (s *service) GetByID(ctx context.Context, id uint) (*CategoryDTO, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapLookupErr(err)
	}
	dto := toDTO(*row)
	return &dto, nil
}

// GetBySlug returns a single category by slug.
func (s *service) GetBySlug(ctx context.Context, slug string) (*CategoryDTO, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "slug is required")
	}
	row, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, mapLookupErr(err)
	}
	dto := toDTO(*row)
	return &dto, nil
}

func mapLookupErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
}

func toDTO(c models.Category) CategoryDTO {
	return CategoryDTO{
		ID:        c.ID,
		Name:      c.Name,
		Path:      c.Path,
		ParentID:  c.ParentID,
		Slug:      c.Slug,
		CreatedAt: c.CreatedAt,
	}
}
