package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/amendez21/storefront-backend/api/responses"
	category "github.com/amendez21/storefront-backend/internal/categories"
	pkgerrors "github.com/amendez21/storefront-backend/pkg/errors"
	"github.com/amendez21/storefront-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
)

// CategoryList serves all catalog categories.
func CategoryList(categories category.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := categories.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"categories": out})
	}
}

// CategoryDetail serves a single category by numeric id or slug.
func CategoryDetail(categories category.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimSpace(chi.URLParam(r, "categoryId"))
		if raw == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "category id is required"))
			return
		}

		if id, err := strconv.ParseUint(raw, 10, 64); err == nil {
			dto, err := categories.GetByID(r.Context(), uint(id))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, dto)
			return
		}

		dto, err := categories.GetBySlug(r.Context(), raw)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}
