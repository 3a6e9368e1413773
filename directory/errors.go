package directory

import (
	"errors"
	"strings"
)

var (
	ErrNotFound      = errors.New("cafe not found")
	ErrDuplicateName = errors.New("a cafe with this name already exists")
)

// FieldError describes one rejected form field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError is returned when a café form is incomplete or malformed.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return "invalid cafe: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}
