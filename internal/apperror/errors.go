// Package apperror holds the closed set of failure kinds surfaced by the
// catalog API. Every error that reaches the HTTP layer is converted into an
// *Error, which fixes its status code, machine-readable code and whether it is
// an expected (operational) condition.
package apperror

import (
	"fmt"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

// Kind identifies one member of the taxonomy
type Kind int

const (
	KindValidation Kind = iota
	KindAuthentication
	KindAuthorization
	KindNotFound
	KindRouteNotFound
	KindConflict
	KindBusinessLogic
	KindRateLimit
	KindInternal
	KindDatabase
	KindExternalService
	KindServiceUnavailable
)

type kindInfo struct {
	status      int
	code        string
	operational bool
	message     string
}

var kinds = map[Kind]kindInfo{
	KindValidation:         {http.StatusBadRequest, "VALIDATION_ERROR", true, "Validation failed"},
	KindAuthentication:     {http.StatusUnauthorized, "AUTHENTICATION_ERROR", true, "Authentication required"},
	KindAuthorization:      {http.StatusForbidden, "AUTHORIZATION_ERROR", true, "Insufficient permissions"},
	KindNotFound:           {http.StatusNotFound, "NOT_FOUND", true, "Resource not found"},
	KindRouteNotFound:      {http.StatusNotFound, "ROUTE_NOT_FOUND", true, "Route not found"},
	KindConflict:           {http.StatusConflict, "CONFLICT", true, "Resource already exists"},
	KindBusinessLogic:      {http.StatusUnprocessableEntity, "BUSINESS_LOGIC_ERROR", true, "Business rule violated"},
	KindRateLimit:          {http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED", true, "Too many requests"},
	KindInternal:           {http.StatusInternalServerError, "INTERNAL_ERROR", false, "Internal server error"},
	KindDatabase:           {http.StatusInternalServerError, "DATABASE_ERROR", false, "Database operation failed"},
	KindExternalService:    {http.StatusBadGateway, "EXTERNAL_SERVICE_ERROR", false, "External service error"},
	KindServiceUnavailable: {http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", false, "Service temporarily unavailable"},
}

// StatusCode returns the HTTP status fixed for the kind
func (k Kind) StatusCode() int { return kinds[k].status }

// Code returns the stable machine-readable code of the kind
func (k Kind) Code() string { return kinds[k].code }

// Operational reports whether failures of this kind are expected and user-facing
func (k Kind) Operational() bool { return kinds[k].operational }

// DefaultMessage is used when a constructor receives an empty message
func (k Kind) DefaultMessage() string { return kinds[k].message }

func (k Kind) String() string { return k.Code() }

// FieldError describes one rejected input field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error is an immutable classified failure
type Error struct {
	kind      Kind
	message   string
	details   []FieldError
	timestamp time.Time
	cause     error
	stack     error
}

// New creates an error of the given kind. An empty message falls back to the
// kind's default.
func New(kind Kind, message string) *Error {
	return newError(kind, message, nil, nil)
}

// Wrap creates an error of the given kind that keeps cause for logging
func Wrap(kind Kind, message string, cause error) *Error {
	return newError(kind, message, nil, cause)
}

func newError(kind Kind, message string, details []FieldError, cause error) *Error {
	if message == "" {
		message = kind.DefaultMessage()
	}
	var stack error
	if cause == nil {
		stack = errors.New(message)
	} else {
		stack = errors.WithStack(cause)
	}
	var copied []FieldError
	if len(details) > 0 {
		copied = make([]FieldError, len(details))
		copy(copied, details)
	}
	return &Error{
		kind:      kind,
		message:   message,
		details:   copied,
		timestamp: time.Now().UTC(),
		cause:     cause,
		stack:     stack,
	}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.kind.Code(), e.message)
}

// Unwrap exposes the underlying cause
func (e *Error) Unwrap() error {
	return e.cause
}

func (e *Error) Kind() Kind { return e.kind }
func (e *Error) StatusCode() int { return e.kind.StatusCode() }
func (e *Error) Code() string { return e.kind.Code() }
func (e *Error) Message() string { return e.message }
func (e *Error) IsOperational() bool { return e.kind.Operational() }
func (e *Error) Timestamp() time.Time { return e.timestamp }

// Details returns a copy of the field errors; only Validation errors carry any
func (e *Error) Details() []FieldError {
	if len(e.details) == 0 {
		return nil
	}
	out := make([]FieldError, len(e.details))
	copy(out, e.details)
	return out
}

// Stack renders the cause with the stack captured at construction
func (e *Error) Stack() string {
	return fmt.Sprintf("%+v", e.stack)
}

func NewValidation(message string, details []FieldError) *Error {
	return newError(KindValidation, message, details, nil)
}

func NewAuthentication(message string) *Error { return New(KindAuthentication, message) }

func NewAuthorization(message string) *Error { return New(KindAuthorization, message) }

func NewNotFound(message string) *Error { return New(KindNotFound, message) }

func NewRouteNotFound(method, path string) *Error {
	return New(KindRouteNotFound, fmt.Sprintf("Route %s %s not found", method, path))
}

func NewConflict(message string) *Error { return New(KindConflict, message) }

func NewBusinessLogic(message string) *Error { return New(KindBusinessLogic, message) }

func NewRateLimit(message string) *Error { return New(KindRateLimit, message) }

func NewInternal(message string, cause error) *Error { return Wrap(KindInternal, message, cause) }

func NewDatabase(message string, cause error) *Error { return Wrap(KindDatabase, message, cause) }

func NewExternalService(service string, cause error) *Error {
	return Wrap(KindExternalService, fmt.Sprintf("External service %s failed", service), cause)
}

func NewServiceUnavailable(message string) *Error { return New(KindServiceUnavailable, message) }
