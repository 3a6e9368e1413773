package auth

import (
	"errors"
	"strings"
)

var (
	ErrDuplicateEmail = errors.New("email already registered")
	ErrUnknownEmail   = errors.New("email does not exist")
	ErrBadPassword    = errors.New("incorrect password")
	ErrForbidden      = errors.New("admin access required")
)

// ErrPasswordTooLong is returned for passwords bcrypt cannot hash.
var ErrPasswordTooLong = errors.New("password must be at most 72 bytes")

// ValidationError lists the form fields that were missing.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}
