package controllers

import (
	"net/http"

	"github.com/amendez21/storefront-backend/api/middleware"
	"github.com/amendez21/storefront-backend/api/responses"
	"github.com/amendez21/storefront-backend/api/validators"
	authsvc "github.com/amendez21/storefront-backend/internal/auth"
	userssvc "github.com/amendez21/storefront-backend/internal/users"
	pkgerrors "github.com/amendez21/storefront-backend/pkg/errors"
	"github.com/amendez21/storefront-backend/pkg/logger"
)

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,max=120"`
	Password string `json:"password" validate:"required,min=8,max=200"`
}

// AuthRegister creates the account and immediately signs the user in.
func AuthRegister(users userssvc.Service, auth authsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload registerRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if _, err := users.Register(r.Context(), userssvc.RegisterInput{
			Email:    payload.Email,
			Name:     payload.Name,
			Password: payload.Password,
		}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		login, err := auth.Login(r.Context(), authsvc.LoginRequest{
			Email:    payload.Email,
			Password: payload.Password,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, login)
	}
}

// AuthLogin exchanges credentials for an access/refresh token pair.
func AuthLogin(auth authsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload authsvc.LoginRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		login, err := auth.Login(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, login)
	}
}

// AuthRefresh rotates the refresh session and returns a fresh token pair.
func AuthRefresh(auth authsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload authsvc.RefreshRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		refreshed, err := auth.Refresh(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, refreshed)
	}
}

// AuthLogout revokes the session tied to the presented access token.
func AuthLogout(auth authsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accessID := middleware.AccessIDFromContext(r.Context())
		if accessID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session"))
			return
		}
		if err := auth.Logout(r.Context(), accessID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "logged_out"})
	}
}
