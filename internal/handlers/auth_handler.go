package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sportsmanagency/backend/internal/auth/middleware"
	"github.com/sportsmanagency/backend/internal/models"
	"go.uber.org/zap"
)

// AuthService is the interface that wraps methods for login business logic.
type AuthService interface {
	// Method Login validates credentials and issues a session token.
	//
	// "req" parameter contains email and password.
	//
	// If the request is invalid, or the credentials do not match, or some other error occurs, the error will be returned together with nil response.
	Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error)
}

// VerifyResponse is the body returned by GET /auth/verify
type VerifyResponse struct {
	User *models.Identity `json:"user"`
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	BaseHandler
	authService AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler: BaseHandler{Logger: logger},
		authService: authService,
	}
}

// RegisterLoginRoutes registers the public login route
func (h *AuthHandler) RegisterLoginRoutes(r chi.Router) {
	r.Post("/auth/login", h.Login)
}

// RegisterSessionRoutes registers routes that require an authenticated session
// Note: the router must already carry the auth middleware
func (h *AuthHandler) RegisterSessionRoutes(r chi.Router) {
	r.Get("/auth/verify", h.Verify)
}

// Login handles POST /auth/login
// @Summary Log in
// @Description Validate email and password and return a bearer token together with the user identity
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Login credentials"
// @Success 200 {object} models.LoginResponse
// @Failure 400 {object} ErrorResponse "Invalid request body or validation failed"
// @Failure 401 {object} ErrorResponse "Invalid credentials"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, resp)
}

// Verify handles GET /auth/verify
// @Summary Verify session
// @Description Check the bearer token and session activity, refresh the activity window and return the caller
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} VerifyResponse
// @Failure 401 {object} ErrorResponse "Missing, invalid or expired session"
// @Router /auth/verify [get]
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "no_token", "authentication required")
		return
	}

	h.RespondJSON(w, http.StatusOK, VerifyResponse{User: identity})
}
