package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dkhromov/user-directory/internal/logger"
)

// UserDeleter defines the interface that the delete service must implement.
type UserDeleter interface {
	DeleteUser(ctx context.Context, id string) error
}

// NewDeleteUserHandler returns an HTTP handler that deletes the user at the
// path id. Deleting an unknown id is indistinguishable from success.
// @Summary Delete a user
// @Description Removes the record at id. Idempotent: deleting a missing user succeeds.
// @Tags users
// @Param id path string true "User id"
// @Success 204 "User deleted"
// @Failure 500 {object} handlers.ErrorResponse "Storage failure"
// @Router /users/{id} [delete]
func NewDeleteUserHandler(svc UserDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		if err := svc.DeleteUser(r.Context(), id); err != nil {
			logger.Log.Errorw("internal server error", "err", err)
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(ErrorResponse{
				Error: "Internal server error",
			})
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
