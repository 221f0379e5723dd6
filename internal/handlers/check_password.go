package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dkhromov/user-directory/internal/logger"
)

// PasswordChecker defines the interface that the verification service must
// implement.
type PasswordChecker interface {
	CheckPassword(ctx context.Context, email, password string) (bool, error)
}

// CheckPasswordRequest represents the JSON body for password verification
// swagger:model CheckPasswordRequest
type CheckPasswordRequest struct {
	// Email of the account to verify
	// required: true
	// example: jane@example.com
	Email string `json:"email"`

	// Plaintext password candidate
	// required: true
	// example: secret123
	Password string `json:"password"`
}

// CheckPasswordResponse represents the verification outcome
// swagger:model CheckPasswordResponse
type CheckPasswordResponse struct {
	// True iff the password matches the stored credential
	// example: true
	Valid bool `json:"valid"`
}

// NewCheckPasswordHandler returns an HTTP handler for password verification.
// An unknown email yields valid=false, not an error.
// @Summary Verify a password
// @Description Checks a plaintext password against the stored salted hash. Unknown emails yield valid=false.
// @Tags users
// @Accept json
// @Produce json
// @Param checkPasswordRequest body handlers.CheckPasswordRequest true "Verification request"
// @Success 200 {object} handlers.CheckPasswordResponse "Verification outcome"
// @Failure 400 {object} handlers.ErrorResponse "Invalid request"
// @Router /users/verify [post]
func NewCheckPasswordHandler(svc PasswordChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CheckPasswordRequest

		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(ErrorResponse{
				Error: "invalid request body",
			})
			return
		}

		if req.Email == "" || req.Password == "" {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(ErrorResponse{
				Error: "email and password are required",
			})
			return
		}

		valid, err := svc.CheckPassword(r.Context(), req.Email, req.Password)
		if err != nil {
			logger.Log.Errorw("internal server error", "err", err)
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(ErrorResponse{
				Error: "Internal server error",
			})
			return
		}

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(CheckPasswordResponse{
			Valid: valid,
		})
	}
}
