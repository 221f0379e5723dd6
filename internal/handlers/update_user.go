package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dkhromov/user-directory/internal/logger"
	"github.com/dkhromov/user-directory/internal/models"
)

// UserUpdater defines the interface that the update service must implement.
type UserUpdater interface {
	UpdateUser(ctx context.Context, user *models.User) (*models.User, error)
}

// UpdateUserRequest is the complete record to store at the given id. There
// is no partial merge: every field is overwritten, last writer wins.
// swagger:model UpdateUserRequest
type UpdateUserRequest struct {
	// Display name
	// required: true
	// example: Jane Doe
	Name string `json:"name"`

	// Email
	// required: true
	// example: jane@example.com
	Email string `json:"email"`

	// Password hash as previously read from the record
	// required: true
	Password string `json:"password"`

	// Per-user salt as previously read from the record
	// required: true
	Salt string `json:"salt"`

	// Original creation timestamp
	// required: true
	// example: 2024-05-01T10:00:00Z
	CreatedAt string `json:"createdAt"`
}

// NewUpdateUserHandler returns an HTTP handler that overwrites the user
// record at the path id with the supplied record.
// @Summary Update a user
// @Description Overwrites every mutable field of the record at id. The caller is trusted to supply the complete record.
// @Tags users
// @Accept json
// @Produce json
// @Param id path string true "User id"
// @Param updateUserRequest body handlers.UpdateUserRequest true "Complete user record"
// @Success 200 {object} models.UserPublic "User updated"
// @Failure 400 {object} handlers.ErrorResponse "Invalid request"
// @Router /users/{id} [put]
func NewUpdateUserHandler(svc UserUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var req UpdateUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(ErrorResponse{
				Error: "invalid request body",
			})
			return
		}

		if req.Name == "" || req.Email == "" {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(ErrorResponse{
				Error: "name and email are required",
			})
			return
		}

		user, err := svc.UpdateUser(r.Context(), &models.User{
			ID:        id,
			Name:      req.Name,
			Email:     req.Email,
			Password:  req.Password,
			Salt:      req.Salt,
			CreatedAt: req.CreatedAt,
		})
		if err != nil {
			logger.Log.Errorw("internal server error", "err", err)
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(ErrorResponse{
				Error: "Internal server error",
			})
			return
		}

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(user.Public())
	}
}
