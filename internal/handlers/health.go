package handlers

import "net/http"

// NewHealthHandler returns a liveness probe handler.
// @Summary Health check
// @Tags health
// @Success 200 "Service is up"
// @Router /health [get]
func NewHealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}
}
