package product

import (
	"time"

	"github.com/amendez21/storefront-backend/internal/cart"
	"github.com/amendez21/storefront-backend/pkg/db/models"
	"github.com/shopspring/decimal"
)

// ProductDTO is the catalog representation served to storefront clients.
type ProductDTO struct {
	ID           uint            `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	CreatedAt    time.Time       `json:"createdAt"`
	Updated      time.Time       `json:"updated"`
	Price        decimal.Decimal `json:"price"`
	Path         string          `json:"path"`
	Stock        int             `json:"stock"`
	CategoryID   uint            `json:"categoryId"`
	CategoryPath *string         `json:"categoryPath,omitempty"`
	Slug         *string         `json:"slug,omitempty"`
}

// ListResult is the paginated catalog response shape.
type ListResult struct {
	Products   []ProductDTO `json:"products"`
	Total      int64        `json:"total"`
	Page       int          `json:"page"`
	Limit      int          `json:"limit"`
	TotalPages int          `json:"totalPages"`
}

// Suggestion is a single search suggestion entry.
type Suggestion struct {
	ID   uint    `json:"id"`
	Name string  `json:"name"`
	Path string  `json:"path"`
	Slug *string `json:"slug,omitempty"`
}

func toDTO(p models.Product) ProductDTO {
	dto := ProductDTO{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		CreatedAt:   p.CreatedAt,
		Updated:     p.UpdatedAt,
		Price:       p.Price,
		Path:        p.Path,
		Stock:       p.Stock,
		CategoryID:  p.CategoryID,
		Slug:        p.Slug,
	}
	if p.Category != nil {
		dto.CategoryPath = p.Category.Path
	}
	return dto
}

func toSuggestion(p models.Product) Suggestion {
	return Suggestion{
		ID:   p.ID,
		Name: p.Name,
		Path: p.Path,
		Slug: p.Slug,
	}
}

// CartSnapshot captures the product fields the cart freezes at add time.
func CartSnapshot(p models.Product) cart.ProductSnapshot {
	return cart.ProductSnapshot{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Path:        p.Path,
		Stock:       p.Stock,
		CategoryID:  p.CategoryID,
		Slug:        p.Slug,
	}
}
