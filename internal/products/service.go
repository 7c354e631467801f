package product

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/amendez21/storefront-backend/pkg/config"
	"github.com/amendez21/storefront-backend/pkg/db/models"
	pkgerrors "github.com/amendez21/storefront-backend/pkg/errors"
	"github.com/amendez21/storefront-backend/pkg/logger"
	"github.com/amendez21/storefront-backend/pkg/pagination"
	redisclient "github.com/amendez21/storefront-backend/pkg/redis"
	"gorm.io/gorm"
)

// Service exposes catalog read operations.
type Service interface {
	List(ctx context.Context, input ListInput) (*ListResult, error)
	GetByID(ctx context.Context, id uint) (*ProductDTO, error)
	GetBySlug(ctx context.Context, slug string) (*ProductDTO, error)
	Suggestions(ctx context.Context, query string) ([]Suggestion, error)
	Lookup(ctx context.Context, id uint) (*models.Product, error)
}

// ListInput carries the validated listing parameters.
type ListInput struct {
	Filters ListFilters
	Sort    Sort
	Page    pagination.Params
}

type catalogReader interface {
	List(ctx context.Context, filters ListFilters, sort Sort, page pagination.Params) ([]models.Product, int64, error)
	FindByID(ctx context.Context, id uint) (*models.Product, error)
	FindBySlug(ctx context.Context, slug string) (*models.Product, error)
	SearchSuggestions(ctx context.Context, query string, limit int) ([]models.Product, error)
}

type suggestionCache interface {
	SuggestionKey(query string) string
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

type service struct {
	repo  catalogReader
	cache suggestionCache
	cfg   config.CatalogConfig
	logg  *logger.Logger
}

// NewService constructs the catalog service. The cache is optional; without it
// suggestions always hit the database.
func NewService(repo catalogReader, cache suggestionCache, cfg config.CatalogConfig, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, cache: cache, cfg: cfg, logg: logg}, nil
}

// List returns a catalog page for the provided filters and sort.
func (s *service) List(ctx context.Context, input ListInput) (*ListResult, error) {
	sort, err := input.Sort.Normalize()
	if err != nil {
		return nil, err
	}
	page := input.Page.Normalize()

	rows, total, err := s.repo.List(ctx, input.Filters, sort, page)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}

	products := make([]ProductDTO, 0, len(rows))
	for _, row := range rows {
		products = append(products, toDTO(row))
	}
	return &ListResult{
		Products:   products,
		Total:      total,
		Page:       page.Page,
		Limit:      page.Limit,
		TotalPages: pagination.TotalPages(total, page.Limit),
	}, nil
}

// GetByID returns the product detail for the given catalog id.
func (s *service) GetByID(ctx context.Context, id uint) (*ProductDTO, error) {
	row, err := s.Lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := toDTO(*row)
	return &dto, nil
}

// GetBySlug returns the product detail for the given slug.
func (s *service) GetBySlug(ctx context.Context, slug string) (*ProductDTO, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "slug is required")
	}
	row, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	dto := toDTO(*row)
	return &dto, nil
}

// Lookup loads the raw product row. Cart and checkout paths use this to
// snapshot product data and check stock.
func (s *service) Lookup(ctx context.Context, id uint) (*models.Product, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return row, nil
}

// Suggestions returns search suggestions for the query, served from Redis
// when a fresh cache entry exists.
func (s *service) Suggestions(ctx context.Context, query string) ([]Suggestion, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []Suggestion{}, nil
	}

	limit := s.cfg.SuggestionsLimit
	if limit <= 0 {
		limit = 8
	}

	var cacheKey string
	if s.cache != nil {
		cacheKey = s.cache.SuggestionKey(query)
		if cached, err := s.cache.Get(ctx, cacheKey); err == nil {
			var suggestions []Suggestion
			if jsonErr := json.Unmarshal([]byte(cached), &suggestions); jsonErr == nil {
				return suggestions, nil
			}
		} else if !errors.Is(err, redisclient.Nil) {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "suggestion cache read failed")
		}
	}

	rows, err := s.repo.SearchSuggestions(ctx, query, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "search suggestions")
	}

	suggestions := make([]Suggestion, 0, len(rows))
	seen := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		key := strings.ToLower(row.Name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		suggestions = append(suggestions, toSuggestion(row))
	}

	if s.cache != nil {
		if blob, jsonErr := json.Marshal(suggestions); jsonErr == nil {
			if err := s.cache.Set(ctx, cacheKey, blob, s.cfg.SuggestionsCacheTTL); err != nil {
				s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "suggestion cache write failed")
			}
		}
	}
	return suggestions, nil
}
