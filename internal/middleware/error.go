package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"storefront-catalog/internal/apperror"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// ErrorResponse is the failure envelope
type ErrorResponse struct {
	Success   bool        `json:"success"`
	Error     ErrorDetail `json:"error"`
	Timestamp string      `json:"timestamp"`
	Path      string      `json:"path"`
	RequestID string      `json:"requestId,omitempty"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string                `json:"code"`
	Message string                `json:"message"`
	Details []apperror.FieldError `json:"details,omitempty"`
	Stack   string                `json:"stack,omitempty"`
}

// SuccessResponse is the success envelope
type SuccessResponse struct {
	Success   bool   `json:"success"`
	Data      any    `json:"data"`
	Message   string `json:"message,omitempty"`
	Timestamp string `json:"timestamp"`
}

const internalErrorMessage = "Internal server error"

type rendererKey struct{}

// renderer carries the environment-dependent error rendering settings
// through the request context
type renderer struct {
	logger     *zap.Logger
	production bool
}

var defaultRenderer = renderer{logger: zap.NewNop(), production: true}

func rendererFrom(ctx context.Context) renderer {
	if rr, ok := ctx.Value(rendererKey{}).(renderer); ok {
		return rr
	}
	return defaultRenderer
}

// RespondWithError classifies err, logs it and writes the failure envelope.
// Requests that did not pass through ErrorHandlingMiddleware are rendered
// with production settings.
func RespondWithError(w http.ResponseWriter, r *http.Request, err error) {
	rr := rendererFrom(r.Context())
	appErr := apperror.FromUnknown(err)
	requestID := middleware.GetReqID(r.Context())

	fields := []zap.Field{
		zap.String("code", appErr.Code()),
		zap.Int("status", appErr.StatusCode()),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("request_id", requestID),
		zap.Error(appErr),
	}
	if appErr.IsOperational() {
		rr.logger.Warn("Request failed", fields...)
	} else {
		rr.logger.Error("Request failed", append(fields, zap.String("stack", appErr.Stack()))...)
	}

	detail := ErrorDetail{
		Code:    appErr.Code(),
		Message: appErr.Message(),
	}
	if appErr.Kind() == apperror.KindValidation {
		detail.Details = appErr.Details()
	}
	if rr.production {
		if !appErr.IsOperational() {
			detail.Message = internalErrorMessage
		}
	} else {
		detail.Stack = appErr.Stack()
	}

	writeJSON(w, appErr.StatusCode(), ErrorResponse{
		Success:   false,
		Error:     detail,
		Timestamp: appErr.Timestamp().UTC().Format(time.RFC3339),
		Path:      r.URL.Path,
		RequestID: requestID,
	})
}

// RespondWithJSON wraps payload in the success envelope
func RespondWithJSON(w http.ResponseWriter, statusCode int, payload any) {
	RespondWithMessage(w, statusCode, payload, "")
}

// RespondWithMessage wraps payload in the success envelope with a message
func RespondWithMessage(w http.ResponseWriter, statusCode int, payload any, message string) {
	writeJSON(w, statusCode, SuccessResponse{
		Success:   true,
		Data:      payload,
		Message:   message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

// ErrorHandlingMiddleware installs the error renderer for the request and
// converts panics into classified error responses
func ErrorHandlingMiddleware(logger *zap.Logger, production bool) func(http.Handler) http.Handler {
	rr := renderer{logger: logger, production: production}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r = r.WithContext(context.WithValue(r.Context(), rendererKey{}, rr))

			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}

					logger.Error("Panic recovered",
						zap.Any("error", rec),
						zap.String("path", r.URL.Path),
						zap.String("method", r.Method),
					)

					RespondWithError(w, r, apperror.FromPanic(rec))
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// NotFoundHandler renders unknown routes and unsupported methods
func NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	RespondWithError(w, r, apperror.NewRouteNotFound(r.Method, r.URL.Path))
}
