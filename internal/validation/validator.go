// Package validation wraps validator/v10 and converts its failures into domain errors.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	domainerrors "github.com/vitrinelab/vitrine/internal/errors"
)

// Validator wraps go-playground/validator with domain error conversion.
type Validator struct {
	v *validator.Validate
}

// New creates a validator that reports fields by their JSON names and
// understands the custom tags used by product payloads.
func New() *Validator {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		switch name {
		case "":
			return fld.Name
		case "-":
			return ""
		}
		return name
	})

	// notblank rejects strings that are empty once surrounding whitespace is gone.
	// Pointers to strings pass when nil; use required to demand presence.
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		f := fl.Field()
		if f.Kind() != reflect.String {
			return true
		}
		return strings.TrimSpace(f.String()) != ""
	})

	return &Validator{v: v}
}

// Validate validates a struct and returns a domain error.
func (v *Validator) Validate(s any) error {
	if err := v.v.Struct(s); err != nil {
		return formatError(err)
	}
	return nil
}

// Var validates a single value against a tag expression, reporting it under field.
func (v *Validator) Var(field string, value any, tag string) error {
	err := v.v.Var(value, tag)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}
	return domainerrors.ValidationWithDetails("validation failed", map[string]string{
		field: friendlyMessage(fieldErrs[0]),
	})
}

func formatError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	details := make(map[string]string, len(fieldErrs))
	for _, e := range fieldErrs {
		details[e.Field()] = friendlyMessage(e)
	}
	return domainerrors.ValidationWithDetails("validation failed", details)
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "notblank":
		return "must not be blank"
	case "min":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", e.Param())
		}
		return "must be at least " + e.Param()
	case "max":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("must not exceed %s characters", e.Param())
		}
		return "must not exceed " + e.Param()
	case "url":
		return "must be a valid URL"
	case "oneof":
		return "must be one of: " + e.Param()
	case "gte":
		return "must be greater than or equal to " + e.Param()
	case "gt":
		return "must be greater than " + e.Param()
	case "ltefield":
		return "must be less than or equal to " + e.Param()
	default:
		return "is invalid"
	}
}
