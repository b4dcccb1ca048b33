package schema

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrNotModel = errors.New("type is not a schema model")
	ErrNilModel = errors.New("model must not be nil")
	ErrInvalid  = errors.New("model validation failed")
)

// FieldError describes a single problem with one field of a model.
type FieldError struct {
	Field  string
	Reason string
}

func (fe FieldError) String() string {
	return fe.Field + ": " + fe.Reason
}

// ValidationError is returned when a mapping cannot be turned into a model.
type ValidationError struct {
	Model  reflect.Type
	Fields []FieldError
}

func (ve *ValidationError) add(field, format string, args ...interface{}) {
	ve.Fields = append(ve.Fields, FieldError{Field: field, Reason: fmt.Sprintf(format, args...)})
}

func (ve *ValidationError) Error() string {
	parts := make([]string, len(ve.Fields))
	for i, fe := range ve.Fields {
		parts[i] = fe.String()
	}

	return fmt.Sprintf("%d validation error(s) for %s: %s", len(ve.Fields), ve.Model, strings.Join(parts, "; "))
}

func (ve *ValidationError) Unwrap() error {
	return ErrInvalid
}

// Has reports whether one of the problems concerns the given field.
func (ve *ValidationError) Has(field string) bool {
	for _, fe := range ve.Fields {
		if fe.Field == field {
			return true
		}
	}

	return false
}
