package controllers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/amendez21/storefront-backend/api/middleware"
	"github.com/amendez21/storefront-backend/api/responses"
	"github.com/amendez21/storefront-backend/api/validators"
	cartsvc "github.com/amendez21/storefront-backend/internal/cart"
	product "github.com/amendez21/storefront-backend/internal/products"
	pkgerrors "github.com/amendez21/storefront-backend/pkg/errors"
	"github.com/amendez21/storefront-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
)

const (
	cartKeyHeader = "X-Cart-Key"

	// accountCartKeyPrefix namespaces signed-in carts; guest-supplied keys
	// must never land in it.
	accountCartKeyPrefix = "user-"
)

// cartKeyFromRequest resolves the storage key for the caller's cart. Signed-in
// users get a stable per-account key; guests supply their own via header.
func cartKeyFromRequest(r *http.Request) (string, error) {
	if userID := middleware.UserIDFromContext(r.Context()); userID != 0 {
		return fmt.Sprintf("%s%d", accountCartKeyPrefix, userID), nil
	}
	key := validators.SanitizeString(r.Header.Get(cartKeyHeader), 128)
	if key == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "cart key is required").
			WithDetails(map[string]any{"header": cartKeyHeader})
	}
	if strings.HasPrefix(key, accountCartKeyPrefix) {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "invalid cart key").
			WithDetails(map[string]any{"header": cartKeyHeader})
	}
	return key, nil
}

type addItemRequest struct {
	ProductID uint `json:"productId" validate:"required,min=1"`
	Quantity  int  `json:"quantity" validate:"omitempty,min=1"`
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// CartFetch returns the caller's cart, empty when nothing is stored.
func CartFetch(carts *cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, err := cartKeyFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		c, err := carts.Get(r.Context(), key)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, c)
	}
}

// CartAddItem snapshots the product at its current catalog state and merges it
// into the cart. Requests that would exceed available stock are rejected.
func CartAddItem(carts *cartsvc.Service, products product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, err := cartKeyFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload addItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		qty := payload.Quantity
		if qty <= 0 {
			qty = 1
		}

		row, err := products.Lookup(r.Context(), payload.ProductID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		current, err := carts.Quantity(r.Context(), key, payload.ProductID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if current+qty > row.Stock {
			responses.WriteError(r.Context(), logg, w, stockConflict(row.Name, current+qty, row.Stock))
			return
		}

		c, err := carts.AddItem(r.Context(), key, product.CartSnapshot(*row), qty)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, c)
	}
}

// CartUpdateItem sets an item's quantity; zero or below removes the line.
func CartUpdateItem(carts *cartsvc.Service, products product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, err := cartKeyFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		itemID := strings.TrimSpace(chi.URLParam(r, "itemId"))
		if itemID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "item id is required"))
			return
		}

		var payload updateQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if payload.Quantity > 0 {
			productID, ok := cartsvc.ProductIDFromLineItemID(itemID)
			if !ok {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid item id"))
				return
			}
			row, err := products.Lookup(r.Context(), productID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			if payload.Quantity > row.Stock {
				responses.WriteError(r.Context(), logg, w, stockConflict(row.Name, payload.Quantity, row.Stock))
				return
			}
		}

		c, err := carts.UpdateQuantity(r.Context(), key, itemID, payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, c)
	}
}

// CartRemoveItem drops a line item; unknown ids are a no-op.
func CartRemoveItem(carts *cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, err := cartKeyFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		itemID := strings.TrimSpace(chi.URLParam(r, "itemId"))
		if itemID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "item id is required"))
			return
		}

		c, err := carts.RemoveItem(r.Context(), key, itemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, c)
	}
}

// CartClear empties the cart.
func CartClear(carts *cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, err := cartKeyFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		c, err := carts.Clear(r.Context(), key)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, c)
	}
}

func stockConflict(name string, requested, available int) error {
	return pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("insufficient stock for %q", name)).
		WithDetails(map[string]any{"requested": requested, "available": available})
}
