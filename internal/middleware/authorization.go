package middleware

import (
	"net/http"
	"slices"

	"storefront-catalog/internal/apperror"

	"go.uber.org/zap"
)

// RoleAdmin is the role allowed to mutate the catalog
const RoleAdmin = "admin"

// RequireAdmin middleware ensures the user has admin role
func RequireAdmin(logger *zap.Logger) func(http.Handler) http.Handler {
	return RequireRole([]string{RoleAdmin}, logger)
}

// RequireRole middleware ensures the user has one of the specified roles
func RequireRole(allowedRoles []string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := GetUserRole(r.Context())
			if !ok {
				logger.Warn("Role not found in context")
				RespondWithError(w, r, apperror.NewAuthorization("Insufficient permissions"))
				return
			}

			if !slices.Contains(allowedRoles, role) {
				logger.Warn("User role not authorized",
					zap.String("role", role),
					zap.Strings("allowed_roles", allowedRoles),
				)
				RespondWithError(w, r, apperror.NewAuthorization("Insufficient permissions"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
