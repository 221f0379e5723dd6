package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dkhromov/user-directory/internal/logger"
	"github.com/dkhromov/user-directory/internal/models"
	"github.com/dkhromov/user-directory/internal/services"
)

// UserGetter defines the interface that the lookup service must implement.
type UserGetter interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// NewGetUserByEmailHandler returns an HTTP handler that looks a user up by
// the email query parameter.
// @Summary Get a user by email
// @Description Looks the user up through the email secondary index and returns the public view.
// @Tags users
// @Produce json
// @Param email query string true "Email to look up"
// @Success 200 {object} models.UserPublic "User found"
// @Failure 400 {object} handlers.ErrorResponse "Missing email parameter"
// @Failure 404 {object} handlers.ErrorResponse "No user with that email"
// @Router /users [get]
func NewGetUserByEmailHandler(svc UserGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email := r.URL.Query().Get("email")
		if email == "" {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(ErrorResponse{
				Error: "email query parameter is required",
			})
			return
		}

		user, err := svc.GetUserByEmail(r.Context(), email)
		if err != nil {
			writeLookupError(w, err)
			return
		}

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(user.Public())
	}
}

// NewGetUserByIDHandler returns an HTTP handler that reads a user by its
// primary key.
// @Summary Get a user by id
// @Description Reads the user record at its primary key and returns the public view.
// @Tags users
// @Produce json
// @Param id path string true "User id"
// @Success 200 {object} models.UserPublic "User found"
// @Failure 404 {object} handlers.ErrorResponse "No user with that id"
// @Router /users/{id} [get]
func NewGetUserByIDHandler(svc UserGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		user, err := svc.GetUserByID(r.Context(), id)
		if err != nil {
			writeLookupError(w, err)
			return
		}

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(user.Public())
	}
}

func writeLookupError(w http.ResponseWriter, err error) {
	if errors.Is(err, services.ErrUserNotFound) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(ErrorResponse{
			Error: "user not found",
		})
		return
	}

	logger.Log.Errorw("internal server error", "err", err)
	w.WriteHeader(http.StatusInternalServerError)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error: "Internal server error",
	})
}
