// Package validator wraps go-playground struct validation behind a
// field->tag error map so handlers and services can report which field
// failed without importing the library everywhere.
package validator

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate checks the struct's `validate` tags and returns a map of
// field name to the failed rule, or nil when everything passes.
func Validate(v any) map[string]string {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	fields := make(map[string]string)
	for _, fe := range err.(validator.ValidationErrors) {
		fields[fe.Field()] = fe.Tag()
	}
	return fields
}
