package apperror

import (
	"errors"
	"fmt"
	"strings"

	"storefront-catalog/internal/domain"

	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres SQLSTATE codes for constraint violations
const (
	SQLStateUniqueViolation     = "23505"
	SQLStateForeignKeyViolation = "23503"
	SQLStateNotNullViolation    = "23502"
)

// FromValidation builds a Validation error carrying one detail per field
func FromValidation(fields []FieldError) *Error {
	return NewValidation("Validation failed", fields)
}

// FromConstraint classifies a persistence constraint violation by its
// SQLSTATE code. Unknown codes are reported as a generic Database error.
func FromConstraint(code, detail string) *Error {
	var cause error
	if detail != "" {
		cause = fmt.Errorf("sqlstate %s: %s", code, detail)
	} else {
		cause = fmt.Errorf("sqlstate %s", code)
	}

	switch code {
	case SQLStateUniqueViolation:
		return Wrap(KindConflict, "Resource already exists", cause)
	case SQLStateForeignKeyViolation:
		return Wrap(KindBusinessLogic, "Referenced resource does not exist", cause)
	case SQLStateNotNullViolation:
		return Wrap(KindValidation, "Required field is missing", cause)
	default:
		return Wrap(KindDatabase, "Database operation failed", cause)
	}
}

// FromUnknown classifies any error. Errors already in the taxonomy are
// returned unchanged; catalog failures and Postgres errors map by identity;
// anything else falls back to message inspection and finally Internal.
func FromUnknown(err error) *Error {
	if err == nil {
		return NewInternal("An unexpected error occurred", nil)
	}

	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}

	if classified := fromDomain(err); classified != nil {
		return classified
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return FromConstraint(pgErr.Code, pgErr.Detail)
	}

	return fromMessage(err)
}

// FromPanic classifies a value recovered from a panic
func FromPanic(v any) *Error {
	if err, ok := v.(error); ok {
		return FromUnknown(err)
	}
	return NewInternal("An unexpected error occurred", fmt.Errorf("panic: %v", v))
}

func fromDomain(err error) *Error {
	switch {
	case errors.Is(err, domain.ErrProductNotFound):
		return Wrap(KindNotFound, "Product not found", err)
	case errors.Is(err, domain.ErrCategoryNotFound):
		return Wrap(KindNotFound, "Category not found", err)
	case errors.Is(err, domain.ErrSlugTaken):
		return Wrap(KindConflict, "Product with this slug already exists", err)
	case errors.Is(err, domain.ErrImageNotTracked):
		return Wrap(KindValidation, "Reorder list contains images not attached to the product", err)
	case errors.Is(err, domain.ErrDuplicateImage):
		return Wrap(KindValidation, "Reorder list contains duplicate images", err)
	}
	return nil
}

// fromMessage keeps the permissive keyword rules for errors raised outside
// the catalog packages.
func fromMessage(err error) *Error {
	msg := err.Error()
	lower := strings.ToLower(msg)

	switch {
	case strings.Contains(lower, "not found"):
		return Wrap(KindNotFound, msg, err)
	case strings.Contains(lower, "validation"):
		return Wrap(KindValidation, msg, err)
	case strings.Contains(lower, "unauthorized"), strings.Contains(lower, "authentication"):
		return Wrap(KindAuthentication, msg, err)
	case strings.Contains(lower, "forbidden"), strings.Contains(lower, "permission"):
		return Wrap(KindAuthorization, msg, err)
	default:
		return Wrap(KindInternal, msg, err)
	}
}
