package handlers

// ErrorResponse is the JSON error body shared by all handlers
// swagger:model ErrorResponse
type ErrorResponse struct {
	// Error message
	// example: user not found
	Error string `json:"error"`
}
