package handler

import "github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/interfaces/http/dto"

// Swagger shapes of the dto envelope. Handlers never build these; they only
// name the data type in @Success lines.

// APIResponse is a success envelope; Meta is set on paginated lists.
type APIResponse[T any] struct {
	Success bool      `json:"success" example:"true"`
	Data    T         `json:"data,omitempty"`
	Meta    *dto.Meta `json:"meta,omitempty"`
}

// ErrorResponse is the failure envelope. Details lists field errors on 400.
type ErrorResponse struct {
	Success bool           `json:"success" example:"false"`
	Error   *dto.ErrorInfo `json:"error"`
}
