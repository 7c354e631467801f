package category

import (
	"context"
	"errors"
	"testing"

	"github.com/amendez21/storefront-backend/pkg/db/models"
	pkgerrors "github.com/amendez21/storefront-backend/pkg/errors"
	"gorm.io/gorm"
)

type stubRepo struct {
	rows    []models.Category
	listErr error
	byID    map[uint]*models.Category
	bySlug  map[string]*models.Category
}

func (s *stubRepo) List(context.Context) ([]models.Category, error) {
	return s.rows, s.listErr
}

func (s *stubRepo) FindByID(_ context.Context, id uint) (*models.Category, error) {
	if c, ok := s.byID[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepo) FindBySlug(_ context.Context, slug string) (*models.Category, error) {
	if c, ok := s.bySlug[slug]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func TestListMapsRows(t *testing.T) {
	t.Parallel()

	path := "/category/peripherals"
	slug := "peripherals"
	repo := &stubRepo{rows: []models.Category{
		{ID: 1, Name: "Peripherals", Path: &path, Slug: &slug},
		{ID: 2, Name: "Storage"},
	}}

	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(out))
	}
	if out[0].Path == nil || *out[0].Path != path {
		t.Fatalf("unexpected dto: %+v", out[0])
	}
	if out[1].Path != nil || out[1].Slug != nil {
		t.Fatalf("expected omitted optional fields, got %+v", out[1])
	}
}

func TestListWrapsRepoFailure(t *testing.T) {
	t.Parallel()

	svc, err := NewService(&stubRepo{listErr: errors.New("db down")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = svc.List(context.Background())
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestGetByIDNotFound(t *testing.T) {
	t.Parallel()

	svc, err := NewService(&stubRepo{byID: map[uint]*models.Category{}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = svc.GetByID(context.Background(), 404)
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestGetBySlug(t *testing.T) {
	t.Parallel()

	slug := "peripherals"
	repo := &stubRepo{bySlug: map[string]*models.Category{
		"peripherals": {ID: 1, Name: "Peripherals", Slug: &slug},
	}}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	dto, err := svc.GetBySlug(context.Background(), "peripherals")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dto.ID != 1 || dto.Name != "Peripherals" {
		t.Fatalf("unexpected dto: %+v", dto)
	}

	_, err = svc.GetBySlug(context.Background(), " ")
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
