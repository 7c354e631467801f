package product

import (
	"context"
	"fmt"
	"strings"

	"github.com/amendez21/storefront-backend/pkg/db/models"
	pkgerrors "github.com/amendez21/storefront-backend/pkg/errors"
	"github.com/amendez21/storefront-backend/pkg/pagination"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ListFilters holds the optional catalog filters. Nil fields are skipped.
type ListFilters struct {
	Search     string
	CategoryID *uint
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	InStock    *bool
}

// Sort column and direction for catalog listings.
type Sort struct {
	Field     string
	Direction string
}

const (
	SortByName      = "name"
	SortByPrice     = "price"
	SortByCreatedAt = "created_at"

	SortAsc  = "asc"
	SortDesc = "desc"
)

var sortColumns = map[string]string{
	SortByName:      "name",
	SortByPrice:     "price",
	SortByCreatedAt: "created_at",
}

// Normalize applies defaults and rejects unknown sort inputs.
func (s Sort) Normalize() (Sort, error) {
	out := s
	if out.Field == "" {
		out.Field = SortByCreatedAt
	}
	if out.Direction == "" {
		out.Direction = SortDesc
	}
	if _, ok := sortColumns[out.Field]; !ok {
		return Sort{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown sort field %q", s.Field))
	}
	if out.Direction != SortAsc && out.Direction != SortDesc {
		return Sort{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown sort direction %q", s.Direction))
	}
	return out, nil
}

// Repository wires catalog persistence to GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// List returns a catalog page plus the total row count for the filters.
func (r *Repository) List(ctx context.Context, filters ListFilters, sort Sort, page pagination.Params) ([]models.Product, int64, error) {
	page = page.Normalize()

	qb := r.db.WithContext(ctx).Model(&models.Product{})
	qb = applyFilters(qb, filters)

	var total int64
	if err := qb.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	column := sortColumns[sort.Field]
	if column == "" {
		column = "created_at"
		sort.Direction = SortDesc
	}

	var rows []models.Product
	err := qb.
		Preload("Category").
		Order(fmt.Sprintf("%s %s", column, strings.ToUpper(sort.Direction))).
		Order("id ASC").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&rows).
		Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func applyFilters(qb *gorm.DB, filters ListFilters) *gorm.DB {
	if search := strings.TrimSpace(filters.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		qb = qb.Where("(LOWER(name) LIKE ? OR LOWER(description) LIKE ?)", pattern, pattern)
	}
	if filters.CategoryID != nil {
		qb = qb.Where("category_id = ?", *filters.CategoryID)
	}
	if filters.MinPrice != nil {
		qb = qb.Where("price >= ?", *filters.MinPrice)
	}
	if filters.MaxPrice != nil {
		qb = qb.Where("price <= ?", *filters.MaxPrice)
	}
	if filters.InStock != nil {
		if *filters.InStock {
			qb = qb.Where("stock > 0")
		} else {
			qb = qb.Where("stock <= 0")
		}
	}
	return qb
}

// FindByID loads a product with its category preloaded.
func (r *Repository) FindByID(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	if err := r.db.WithContext(ctx).Preload("Category").First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// FindBySlug loads a product by its slug with its category preloaded.
func (r *Repository) FindBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var p models.Product
	if err := r.db.WithContext(ctx).Preload("Category").First(&p, "slug = ?", slug).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// SearchSuggestions returns products whose name or keywords start with the
// query, ordered by name.
func (r *Repository) SearchSuggestions(ctx context.Context, query string, limit int) ([]models.Product, error) {
	prefix := strings.ToLower(strings.TrimSpace(query)) + "%"
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Where("(LOWER(name) LIKE ? OR LOWER(array_to_string(keywords, ' ')) LIKE ?)", prefix, prefix).
		Order("name ASC").
		Limit(limit).
		Find(&rows).
		Error
	return rows, err
}

// DecrementStock atomically reduces stock, refusing to go below zero.
func (r *Repository) DecrementStock(ctx context.Context, productID uint, qty int) error {
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND stock >= ?", productID, qty).
		Update("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("insufficient stock for product %d", productID))
	}
	return nil
}
