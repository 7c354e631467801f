package controllers

import (
	"net/http"

	"github.com/amendez21/storefront-backend/api/middleware"
	"github.com/amendez21/storefront-backend/api/responses"
	checkoutsvc "github.com/amendez21/storefront-backend/internal/checkout"
	pkgerrors "github.com/amendez21/storefront-backend/pkg/errors"
	"github.com/amendez21/storefront-backend/pkg/logger"
)

// Checkout converts the authenticated user's cart into an order.
func Checkout(checkout checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())
		if userID == 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		key, err := cartKeyFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := checkout.Checkout(r.Context(), userID, key)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}
