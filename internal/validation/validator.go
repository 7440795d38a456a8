// Package validation checks drafts before they are sent to the backend,
// using a shared go-playground/validator instance. Failures come back as
// *domain.ErrValidation with one readable message per field.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/apedo/eglise-console/internal/domain"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the singleton validator. Field names in errors are the
// JSON names so messages line up with the form fields.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(jsonName)
	})
	return validate
}

// Struct validates s. It returns nil or a *domain.ErrValidation.
func Struct(s any) error {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &domain.ErrValidation{Fields: []domain.FieldError{{
			Field:   "unknown",
			Rule:    "unknown",
			Message: err.Error(),
		}}}
	}

	out := make([]domain.FieldError, len(fieldErrs))
	for i, fe := range fieldErrs {
		out[i] = domain.FieldError{
			Field:   fe.Field(),
			Rule:    fe.Tag(),
			Message: translateError(fe),
		}
	}
	return &domain.ErrValidation{Fields: out}
}

// Fail builds a single-field validation error for rules the tags cannot express.
func Fail(field, rule, message string) error {
	return &domain.ErrValidation{Fields: []domain.FieldError{{Field: field, Rule: rule, Message: message}}}
}

var errorMessageTemplates = map[string]string{
	"required": "%s is required",
	"email":    "%s must be a valid email address",
}

var errorMessageWithParam = map[string]string{
	"oneof":    "%s must be one of: %s",
	"gte":      "%s must be greater than or equal to %s",
	"lte":      "%s must be less than or equal to %s",
	"gt":       "%s must be greater than %s",
	"lt":       "%s must be less than %s",
	"eqfield":  "%s must match %s",
	"datetime": "%s must follow the %s layout",
}

func translateError(fe validator.FieldError) string {
	field, tag, param := fe.Field(), fe.Tag(), fe.Param()

	if template, ok := errorMessageTemplates[tag]; ok {
		return fmt.Sprintf(template, field)
	}
	if tag == "eqfield" {
		param = lowerFirst(param)
	}
	if template, ok := errorMessageWithParam[tag]; ok {
		return fmt.Sprintf(template, field, param)
	}

	isString := fe.Kind() == reflect.String
	switch tag {
	case "min":
		if isString {
			return fmt.Sprintf("%s must be at least %s characters", field, param)
		}
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		if isString {
			return fmt.Sprintf("%s must be at most %s characters", field, param)
		}
		return fmt.Sprintf("%s must be at most %s", field, param)
	}
	return fmt.Sprintf("%s failed %s validation", field, tag)
}

func jsonName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return lowerFirst(fld.Name)
	}
	return name
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}
