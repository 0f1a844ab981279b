package services

import (
	"errors"
	"fmt"
	"strings"
)

// ErrStorage marks failures of the underlying collections. Handlers turn it
// into a generic server error.
var ErrStorage = errors.New("storage failure")

// ValidationError is returned for missing or invalid caller input. Message
// is safe to show to the caller.
type ValidationError struct {
	Fields  []string
	Message string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (%s)", e.Message, strings.Join(e.Fields, ", "))
}

func invalid(message string, fields ...string) error {
	return &ValidationError{Fields: fields, Message: message}
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%s: %w", op, errors.Join(ErrStorage, err))
}
