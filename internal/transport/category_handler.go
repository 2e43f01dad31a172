package transport

import (
	"context"
	"net/http"

	"storefront-catalog/internal/apperror"
	"storefront-catalog/internal/middleware"
	"storefront-catalog/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CategoryHandler serves category navigation
type CategoryHandler struct {
	categoryService service.CategoryService
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categoryService service.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// RegisterRoutes registers the category routes
func (h *CategoryHandler) RegisterRoutes(r chi.Router) {
	r.Get("/api/categories", h.List)
}

// List returns every category ordered by name
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categoryService.List(r.Context())
	if err != nil {
		middleware.RespondWithError(w, r, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, categories)
}

// HealthChecker reports the state of a backing store
type HealthChecker interface {
	Health(ctx context.Context) map[string]string
}

// HealthHandler answers liveness probes with the database state
func HealthHandler(db HealthChecker, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats := db.Health(r.Context())
		if stats["status"] != "up" {
			logger.Warn("Health check failed", zap.String("error", stats["error"]))
			middleware.RespondWithError(w, r, apperror.NewServiceUnavailable("Database is unavailable"))
			return
		}

		middleware.RespondWithJSON(w, http.StatusOK, map[string]any{
			"status":   "ok",
			"database": stats,
		})
	}
}
