package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/amendez21/storefront-backend/api/responses"
	"github.com/amendez21/storefront-backend/api/validators"
	product "github.com/amendez21/storefront-backend/internal/products"
	pkgerrors "github.com/amendez21/storefront-backend/pkg/errors"
	"github.com/amendez21/storefront-backend/pkg/logger"
	"github.com/amendez21/storefront-backend/pkg/pagination"
	"github.com/go-chi/chi/v5"
)

const maxSearchLen = 120

// ProductList serves the filterable, sortable catalog listing.
func ProductList(products product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		input, err := parseListInput(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := products.List(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func parseListInput(r *http.Request) (product.ListInput, error) {
	page, err := validators.ParseQueryInt(r, "page", 1, 1, 1<<20)
	if err != nil {
		return product.ListInput{}, err
	}
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return product.ListInput{}, err
	}

	categoryID, err := validators.ParseQueryUint(r, "category_id")
	if err != nil {
		return product.ListInput{}, err
	}
	minPrice, err := validators.ParseQueryDecimal(r, "min_price")
	if err != nil {
		return product.ListInput{}, err
	}
	maxPrice, err := validators.ParseQueryDecimal(r, "max_price")
	if err != nil {
		return product.ListInput{}, err
	}
	inStock, err := validators.ParseQueryBool(r, "in_stock")
	if err != nil {
		return product.ListInput{}, err
	}

	return product.ListInput{
		Filters: product.ListFilters{
			Search:     validators.SanitizeString(r.URL.Query().Get("search"), maxSearchLen),
			CategoryID: categoryID,
			MinPrice:   minPrice,
			MaxPrice:   maxPrice,
			InStock:    inStock,
		},
		Sort: product.Sort{
			Field:     strings.ToLower(validators.SanitizeString(r.URL.Query().Get("sort"), 32)),
			Direction: strings.ToLower(validators.SanitizeString(r.URL.Query().Get("order"), 8)),
		},
		Page: pagination.Params{Page: page, Limit: limit},
	}, nil
}

// ProductDetail serves a single product by numeric id or slug.
func ProductDetail(products product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimSpace(chi.URLParam(r, "productId"))
		if raw == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "product id is required"))
			return
		}

		if id, err := strconv.ParseUint(raw, 10, 64); err == nil {
			dto, err := products.GetByID(r.Context(), uint(id))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, dto)
			return
		}

		dto, err := products.GetBySlug(r.Context(), raw)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// SearchSuggestions serves cached typeahead suggestions for the storefront
// search box.
func SearchSuggestions(products product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := validators.SanitizeString(r.URL.Query().Get("q"), maxSearchLen)
		suggestions, err := products.Suggestions(r.Context(), query)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"suggestions": suggestions})
	}
}
