package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/sportsmanagency/backend/internal/models"
	"go.uber.org/zap"
)

type contextKey string

const identityKey contextKey = "identity"

// Authenticator resolves a raw bearer token into the caller's identity
type Authenticator interface {
	// Method Authenticate validates the token and the account's session window.
	//
	// Session failures are *models.Error values of KindUnauthorized, anything else is internal.
	Authenticate(ctx context.Context, token string) (*models.Identity, error)
}

// AuthMiddleware validates the bearer token and attaches the caller's identity to the request context
func AuthMiddleware(authenticator Authenticator, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)

			identity, err := authenticator.Authenticate(r.Context(), token)
			if err != nil {
				var appErr *models.Error
				if errors.As(err, &appErr) {
					writeError(w, statusFor(appErr.Kind), appErr.Code, appErr.Message)
					return
				}
				logger.Error("failed to authenticate request", zap.String("path", r.URL.Path), zap.Error(err))
				writeError(w, http.StatusInternalServerError, "internal", "internal server error")
				return
			}

			ctx := WithIdentity(r.Context(), identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken returns the token of an "Authorization: Bearer <token>" header, or ""
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// WithIdentity returns a copy of ctx carrying identity
func WithIdentity(ctx context.Context, identity *models.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// GetIdentity retrieves the authenticated caller from context
func GetIdentity(ctx context.Context) (*models.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(*models.Identity)
	return identity, ok && identity != nil
}

func statusFor(kind models.ErrorKind) int {
	switch kind {
	case models.KindUnauthorized:
		return http.StatusUnauthorized
	case models.KindForbidden:
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
		"code":  code,
	})
}
