package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"regexp"
	"strings"

	"storefront-catalog/internal/apperror"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Validator instance
var validate *validator.Validate

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// report json names instead of Go field names
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	validate.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	})

	// decimals validate as their float value for gt/gte/lte
	validate.RegisterCustomTypeFunc(func(field reflect.Value) any {
		switch v := field.Interface().(type) {
		case decimal.Decimal:
			f, _ := v.Float64()
			return f
		case decimal.NullDecimal:
			if !v.Valid {
				return nil
			}
			f, _ := v.Decimal.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{}, decimal.NullDecimal{})
}

// ValidateRequest validates v against its validate tags and returns a
// Validation error with one detail per rejected field
func ValidateRequest(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		return apperror.FromValidation(FormatValidationErrors(validationErrors))
	}
	return apperror.NewValidation(err.Error(), nil)
}

// DecodeAndValidate decodes the JSON request body into v and validates it.
// Malformed JSON and unknown fields are Validation errors.
func DecodeAndValidate(r *http.Request, v any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		return apperror.NewValidation("Invalid request body", []apperror.FieldError{{
			Field:   "body",
			Message: err.Error(),
			Code:    "invalid_json",
		}})
	}
	return ValidateRequest(v)
}

// FormatValidationErrors converts validator errors to field details
func FormatValidationErrors(validationErrors validator.ValidationErrors) []apperror.FieldError {
	fields := make([]apperror.FieldError, 0, len(validationErrors))
	for _, e := range validationErrors {
		fields = append(fields, apperror.FieldError{
			Field:   fieldPath(e),
			Message: getErrorMessage(e),
			Code:    e.Tag(),
		})
	}
	return fields
}

// fieldPath drops the root struct name from the namespace
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return e.Field()
}

func getErrorMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "min":
		return "Value is too short"
	case "max":
		return "Value is too long"
	case "len":
		return fmt.Sprintf("Value must be exactly %s characters", e.Param())
	case "gte":
		return "Value must be greater than or equal to " + e.Param()
	case "lte":
		return "Value must be less than or equal to " + e.Param()
	case "gt":
		return "Value must be greater than " + e.Param()
	case "lt":
		return "Value must be less than " + e.Param()
	case "url", "http_url":
		return "Invalid URL"
	case "uuid", "uuid4":
		return "Invalid UUID"
	case "slug":
		return "Must contain only lowercase letters, digits and hyphens"
	case "oneof":
		return "Value must be one of: " + e.Param()
	default:
		return "Invalid value"
	}
}
