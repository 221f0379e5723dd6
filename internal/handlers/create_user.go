package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dkhromov/user-directory/internal/logger"
	"github.com/dkhromov/user-directory/internal/models"
	"github.com/dkhromov/user-directory/internal/services"
)

// UserCreator defines the interface that the create service must implement.
type UserCreator interface {
	CreateUser(ctx context.Context, input models.UserInput) (*models.User, error)
}

// CreateUserRequest represents the JSON body for user creation
// swagger:model CreateUserRequest
type CreateUserRequest struct {
	// Display name
	// required: true
	// example: Jane Doe
	Name string `json:"name"`

	// Email, unique across all users
	// required: true
	// example: jane@example.com
	Email string `json:"email"`

	// Plaintext password
	// required: true
	// example: secret123
	Password string `json:"password"`

	// Must equal password
	// required: true
	// example: secret123
	PasswordConfirmation string `json:"passwordConfirmation"`
}

// NewCreateUserHandler returns an HTTP handler for user creation.
// @Summary Create a new user
// @Description Creates a user record. The email must not be in use; password and confirmation must match. The response never contains the password hash or salt.
// @Tags users
// @Accept json
// @Produce json
// @Param createUserRequest body handlers.CreateUserRequest true "User creation request"
// @Success 201 {object} models.UserPublic "User successfully created"
// @Failure 400 {object} handlers.ErrorResponse "Invalid request / password mismatch"
// @Failure 409 {object} handlers.ErrorResponse "Email already in use"
// @Router /users [post]
func NewCreateUserHandler(svc UserCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateUserRequest

		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(ErrorResponse{
				Error: "invalid request body",
			})
			return
		}

		if req.Name == "" || req.Email == "" || req.Password == "" || req.PasswordConfirmation == "" {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(ErrorResponse{
				Error: "name, email, password and passwordConfirmation are required",
			})
			return
		}

		user, err := svc.CreateUser(r.Context(), models.UserInput{
			Name:                 req.Name,
			Email:                req.Email,
			Password:             req.Password,
			PasswordConfirmation: req.PasswordConfirmation,
		})
		if err != nil {
			switch {
			case errors.Is(err, services.ErrDuplicateEmail):
				w.WriteHeader(http.StatusConflict)
				json.NewEncoder(w).Encode(ErrorResponse{
					Error: "user already exists with this email",
				})
			case errors.Is(err, services.ErrPasswordMismatch):
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(ErrorResponse{
					Error: "password and password confirmation do not match",
				})
			default:
				logger.Log.Errorw("internal server error", "err", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(ErrorResponse{
					Error: "Internal server error",
				})
			}
			return
		}

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(user.Public())
	}
}
