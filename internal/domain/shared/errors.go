package shared

import (
	"errors"
	"fmt"
)

// DomainError represents a domain-level error.
// Messages are user facing and kept in French.
type DomainError struct {
	Code    string        `json:"code"`
	Message string        `json:"message"`
	Details []ErrorDetail `json:"details,omitempty"`
}

// ErrorDetail describes a single field-level problem
type ErrorDetail struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is matches domain errors by code so wrapped sentinels compare equal
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// WithDetails returns a copy of the error carrying field details
func (e *DomainError) WithDetails(details ...ErrorDetail) *DomainError {
	return &DomainError{Code: e.Code, Message: e.Message, Details: append([]ErrorDetail(nil), details...)}
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewDomainErrorf creates a new domain error with a formatted message
func NewDomainErrorf(code, format string, args ...any) *DomainError {
	return NewDomainError(code, fmt.Sprintf(format, args...))
}

// NewValidationError creates a VALIDATION_FAILED error listing each failed rule
func NewValidationError(message string, details ...ErrorDetail) *DomainError {
	return &DomainError{Code: CodeValidationFailed, Message: message, Details: details}
}

// Error codes shared across bounded contexts
const (
	CodeNotFound         = "NOT_FOUND"
	CodeValidationFailed = "VALIDATION_FAILED"
	CodeDocumentLocked   = "DOCUMENT_LOCKED"
	CodeInvalidState     = "INVALID_STATE"
)

// Common domain errors
var (
	ErrNotFound            = NewDomainError(CodeNotFound, "Ressource introuvable")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "La ressource existe déjà")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Données invalides")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "La ressource a été modifiée par un autre processus")
	ErrUnauthorized        = NewDomainError("UNAUTHORIZED", "Authentification requise")
	ErrForbidden           = NewDomainError("FORBIDDEN", "Accès refusé")
	ErrInvalidState        = NewDomainError(CodeInvalidState, "Opération impossible dans l'état actuel")
	ErrInsufficientStock   = NewDomainError("INSUFFICIENT_STOCK", "Stock insuffisant")
	ErrDocumentLocked      = NewDomainError(CodeDocumentLocked, "Ce document a été émis et verrouillé. Il ne peut plus être modifié.")
)

// NotFound returns a NOT_FOUND error with a resource specific message
func NotFound(message string) *DomainError {
	return NewDomainError(CodeNotFound, message)
}

// IsNotFound reports whether err is a NOT_FOUND domain error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
