package middleware

import (
	"errors"
	"net/http"

	"github.com/sportsmanagency/backend/internal/auth/service"
	"github.com/sportsmanagency/backend/internal/models"
)

// RoleMiddleware checks that the identity attached by AuthMiddleware holds at least requiredRole.
// It must be mounted after AuthMiddleware.
func RoleMiddleware(requiredRole models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, _ := GetIdentity(r.Context())

			if err := service.Require(identity, requiredRole); err != nil {
				var appErr *models.Error
				if errors.As(err, &appErr) {
					writeError(w, statusFor(appErr.Kind), appErr.Code, appErr.Message)
					return
				}
				writeError(w, http.StatusInternalServerError, "internal", "internal server error")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
