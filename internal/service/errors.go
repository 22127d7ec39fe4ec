package service

import (
	"fmt"
	"net/http"
)

// FieldError describes a single failed validation rule.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// AuthError standardizes flow-level failures surfaced to clients.
type AuthError struct {
	Status  int
	Message string
	Fields  []FieldError
}

func (e *AuthError) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("%s (%d field errors)", e.Message, len(e.Fields))
	}
	return e.Message
}

func hasFieldError(fields []FieldError, field string) bool {
	for _, fe := range fields {
		if fe.Field == field {
			return true
		}
	}
	return false
}

func newValidationError(fields []FieldError) *AuthError {
	return &AuthError{Status: http.StatusBadRequest, Message: "Validation Error.", Fields: fields}
}

func newUnauthorizedError(message string) *AuthError {
	return &AuthError{Status: http.StatusUnauthorized, Message: message}
}

// newFailureError covers business failures the source reported through its
// generic error response, such as an unknown company join code.
func newFailureError(message string) *AuthError {
	return &AuthError{Status: http.StatusInternalServerError, Message: message}
}
