// Package validation checks request DTOs with validator/v10 and converts failures to
// domain validation errors keyed by JSON field name.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/gdgscriet/studyjam-server/internal/domain"
	domainerrors "github.com/gdgscriet/studyjam-server/internal/errors"
)

// Validator wraps go-playground/validator with domain error conversion.
type Validator struct {
	v *validator.Validate
}

// custom holds the tracker's own tags.
var custom = map[string]validator.Func{
	// notblank: non-empty after trimming whitespace.
	"notblank": func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	},
	"scrapetype": func(fl validator.FieldLevel) bool {
		return domain.ScrapeType(fl.Field().String()).Valid()
	},
}

// messages maps a failed tag to the text shown next to the field. %s is the tag param.
var messages = map[string]string{
	"required":   "is required",
	"notblank":   "is required",
	"email":      "must be a valid email address",
	"url":        "must be a valid URL",
	"http_url":   "must be a valid URL",
	"oneof":      "must be one of: %s",
	"scrapetype": "must be one of: active inactive all",
	"gte":        "must be greater than or equal to %s",
	"lte":        "must be less than or equal to %s",
}

// New creates a validator with the custom tags registered.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(fieldName)
	for tag, fn := range custom {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("validation: register %s: %v", tag, err))
		}
	}
	return &Validator{v: v}
}

// fieldName reports the wire name: json, then query, then form tag.
func fieldName(fld reflect.StructField) string {
	for _, key := range [...]string{"json", "query", "form"} {
		name, _, _ := strings.Cut(fld.Tag.Get(key), ",")
		if name != "" && name != "-" {
			return name
		}
	}
	return fld.Name
}

// Validate returns a VALIDATION domain error with per-field details, or the
// validator's own error when s is not a struct.
func (v *Validator) Validate(s any) error {
	err := v.v.Struct(s)
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	details := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		details[fe.Field()] = message(fe)
	}
	return domainerrors.ValidationWithDetails("validation failed", details)
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "min", "max":
		bound := "at least"
		if fe.Tag() == "max" {
			bound = "at most"
		}
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be %s %s characters", bound, fe.Param())
		}
		return fmt.Sprintf("must be %s %s", bound, fe.Param())
	}
	tmpl, ok := messages[fe.Tag()]
	if !ok {
		return "is invalid"
	}
	if strings.Contains(tmpl, "%s") {
		return fmt.Sprintf(tmpl, fe.Param())
	}
	return tmpl
}
