package product

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/amendez21/storefront-backend/pkg/config"
	"github.com/amendez21/storefront-backend/pkg/db/models"
	pkgerrors "github.com/amendez21/storefront-backend/pkg/errors"
	"github.com/amendez21/storefront-backend/pkg/logger"
	"github.com/amendez21/storefront-backend/pkg/pagination"
	redisclient "github.com/amendez21/storefront-backend/pkg/redis"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type stubRepo struct {
	listRows    []models.Product
	listTotal   int64
	listErr     error
	gotFilters  ListFilters
	gotSort     Sort
	gotPage     pagination.Params
	byID        map[uint]*models.Product
	bySlug      map[string]*models.Product
	suggestRows []models.Product
	suggestErr  error
	gotQuery    string
	gotLimit    int
}

func (s *stubRepo) List(_ context.Context, filters ListFilters, sort Sort, page pagination.Params) ([]models.Product, int64, error) {
	s.gotFilters = filters
	s.gotSort = sort
	s.gotPage = page
	return s.listRows, s.listTotal, s.listErr
}

func (s *stubRepo) FindByID(_ context.Context, id uint) (*models.Product, error) {
	if p, ok := s.byID[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepo) FindBySlug(_ context.Context, slug string) (*models.Product, error) {
	if p, ok := s.bySlug[slug]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepo) SearchSuggestions(_ context.Context, query string, limit int) ([]models.Product, error) {
	s.gotQuery = query
	s.gotLimit = limit
	return s.suggestRows, s.suggestErr
}

type stubCache struct {
	entries  map[string]string
	getErr   error
	setErr   error
	setCalls int
	lastTTL  time.Duration
}

func newStubCache() *stubCache {
	return &stubCache{entries: map[string]string{}}
}

func (s *stubCache) SuggestionKey(query string) string { return "sf:suggest:" + query }

func (s *stubCache) Get(_ context.Context, key string) (string, error) {
	if s.getErr != nil {
		return "", s.getErr
	}
	if v, ok := s.entries[key]; ok {
		return v, nil
	}
	return "", redisclient.Nil
}

func (s *stubCache) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	if s.setErr != nil {
		return s.setErr
	}
	s.setCalls++
	s.lastTTL = ttl
	switch v := value.(type) {
	case []byte:
		s.entries[key] = string(v)
	case string:
		s.entries[key] = v
	}
	return nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: zerolog.ErrorLevel, Output: io.Discard})
}

func catalogProduct(id uint, name, price string, stock int) models.Product {
	slug := name
	path := "/product/" + name
	return models.Product{
		ID:          id,
		Name:        name,
		Description: name + " description",
		Price:       decimal.RequireFromString(price),
		Path:        path,
		Stock:       stock,
		CategoryID:  1,
		Slug:        &slug,
	}
}

func TestListReturnsPaginatedResult(t *testing.T) {
	t.Parallel()

	repo := &stubRepo{
		listRows:  []models.Product{catalogProduct(1, "keyboard", "79.99", 5), catalogProduct(2, "mouse", "29.99", 3)},
		listTotal: 45,
	}
	svc, err := NewService(repo, nil, config.CatalogConfig{}, testLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := svc.List(context.Background(), ListInput{Page: pagination.Params{Page: 2, Limit: 20}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(result.Products))
	}
	if result.Total != 45 || result.Page != 2 || result.Limit != 20 || result.TotalPages != 3 {
		t.Fatalf("unexpected pagination envelope: %+v", result)
	}
	if repo.gotSort.Field != SortByCreatedAt || repo.gotSort.Direction != SortDesc {
		t.Fatalf("expected default sort, got %+v", repo.gotSort)
	}
}

func TestListRejectsUnknownSort(t *testing.T) {
	t.Parallel()

	svc, err := NewService(&stubRepo{}, nil, config.CatalogConfig{}, testLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = svc.List(context.Background(), ListInput{Sort: Sort{Field: "stock"}})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	_, err = svc.List(context.Background(), ListInput{Sort: Sort{Field: SortByPrice, Direction: "sideways"}})
	appErr = pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGetByIDMapsNotFound(t *testing.T) {
	t.Parallel()

	svc, err := NewService(&stubRepo{byID: map[uint]*models.Product{}}, nil, config.CatalogConfig{}, testLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = svc.GetByID(context.Background(), 99)
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestGetBySlugIncludesCategoryPath(t *testing.T) {
	t.Parallel()

	categoryPath := "/category/peripherals"
	p := catalogProduct(7, "keyboard", "79.99", 5)
	p.Category = &models.Category{ID: 1, Name: "Peripherals", Path: &categoryPath}
	repo := &stubRepo{bySlug: map[string]*models.Product{"keyboard": &p}}

	svc, err := NewService(repo, nil, config.CatalogConfig{}, testLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	dto, err := svc.GetBySlug(context.Background(), "keyboard")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dto.ID != 7 || dto.CategoryPath == nil || *dto.CategoryPath != categoryPath {
		t.Fatalf("unexpected dto: %+v", dto)
	}
}

func TestGetBySlugRequiresSlug(t *testing.T) {
	t.Parallel()

	svc, err := NewService(&stubRepo{}, nil, config.CatalogConfig{}, testLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = svc.GetBySlug(context.Background(), "  ")
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSuggestionsCachesResults(t *testing.T) {
	t.Parallel()

	repo := &stubRepo{suggestRows: []models.Product{
		catalogProduct(1, "keyboard", "79.99", 5),
		catalogProduct(2, "Keyboard", "89.99", 2),
		catalogProduct(3, "keycaps", "19.99", 9),
	}}
	cache := newStubCache()
	cfg := config.CatalogConfig{SuggestionsCacheTTL: 5 * time.Minute, SuggestionsLimit: 8}

	svc, err := NewService(repo, cache, cfg, testLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	first, err := svc.Suggestions(context.Background(), "key")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(first) != 2 {
		t.Fatalf("expected case-insensitive dedupe to 2 suggestions, got %+v", first)
	}
	if repo.gotLimit != 8 {
		t.Fatalf("expected configured limit, got %d", repo.gotLimit)
	}
	if cache.setCalls != 1 || cache.lastTTL != 5*time.Minute {
		t.Fatalf("expected one cache write with configured ttl, got calls=%d ttl=%v", cache.setCalls, cache.lastTTL)
	}

	// Second call must be served from cache: poison the repo.
	repo.suggestErr = errors.New("db down")
	second, err := svc.Suggestions(context.Background(), "key")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(second) != len(first) || second[0].Name != first[0].Name {
		t.Fatalf("expected cached suggestions, got %+v", second)
	}
}

func TestSuggestionsEmptyQuery(t *testing.T) {
	t.Parallel()

	svc, err := NewService(&stubRepo{}, nil, config.CatalogConfig{}, testLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	suggestions, err := svc.Suggestions(context.Background(), "   ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(suggestions) != 0 {
		t.Fatalf("expected no suggestions, got %+v", suggestions)
	}
}

func TestSuggestionsSurvivesCacheFailure(t *testing.T) {
	t.Parallel()

	repo := &stubRepo{suggestRows: []models.Product{catalogProduct(1, "keyboard", "79.99", 5)}}
	cache := newStubCache()
	cache.getErr = errors.New("redis down")
	cache.setErr = errors.New("redis down")

	svc, err := NewService(repo, cache, config.CatalogConfig{}, testLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	suggestions, err := svc.Suggestions(context.Background(), "key")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(suggestions) != 1 {
		t.Fatalf("expected 1 suggestion, got %+v", suggestions)
	}
}

func TestSuggestionsIgnoresCorruptCacheEntry(t *testing.T) {
	t.Parallel()

	repo := &stubRepo{suggestRows: []models.Product{catalogProduct(1, "keyboard", "79.99", 5)}}
	cache := newStubCache()
	cache.entries[cache.SuggestionKey("key")] = "{not json"

	svc, err := NewService(repo, cache, config.CatalogConfig{}, testLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	suggestions, err := svc.Suggestions(context.Background(), "key")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(suggestions) != 1 || suggestions[0].Name != "keyboard" {
		t.Fatalf("expected repo results, got %+v", suggestions)
	}

	var cached []Suggestion
	if jsonErr := json.Unmarshal([]byte(cache.entries[cache.SuggestionKey("key")]), &cached); jsonErr != nil {
		t.Fatalf("expected cache overwritten with valid payload: %v", jsonErr)
	}
}
