package models

import "fmt"

// ValidationError represents a validation error with field-specific details
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// Error implements the error interface
func (ve *ValidationError) Error() string {
	return ve.Message
}

// MissingFieldError reports a required key absent from a new user request body
func MissingFieldError(field string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: fmt.Sprintf("New user request body did not contain field: '%s'", field),
	}
}
