package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sportsmanagency/backend/internal/auth/middleware"
	"github.com/sportsmanagency/backend/internal/models"
	"go.uber.org/zap"
)

// UserService is the interface that wraps methods for user administration business logic.
type UserService interface {
	// Method List returns all users, newest first.
	List(ctx context.Context) ([]models.User, error)
	// Method Get returns a user by id.
	//
	// If the user does not exist, or some other error occurs, the error will be returned together with nil user.
	Get(ctx context.Context, userID int) (*models.User, error)
	// Method Create validates the request, hashes the password and stores a new user.
	//
	// "req" parameter contains username, email, password and optional role (editor by default).
	//
	// If the request is invalid, or the username or email is taken, or some other error occurs, the error will be returned together with nil user.
	Create(ctx context.Context, req *models.CreateUserRequest) (*models.User, error)
	// Method Update applies the provided fields to a user. A new password is re-hashed.
	//
	// If the request is invalid, or the user does not exist, or the username or email is taken, the error will be returned together with nil user.
	Update(ctx context.Context, userID int, req *models.UpdateUserRequest) (*models.User, error)
	// Method Delete removes a user.
	//
	// "actor" parameter is the caller. Deleting its own account is rejected.
	//
	// If the actor targets itself, or the user does not exist, or some other error occurs, the error will be returned.
	Delete(ctx context.Context, actor *models.Identity, userID int) error
}

// UserHandler handles user administration HTTP requests
type UserHandler struct {
	BaseHandler
	userService UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		BaseHandler: BaseHandler{Logger: logger},
		userService: userService,
	}
}

// RegisterRoutes registers all user handler routes
// Note: the router must already carry the auth and admin role middleware
func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.Get("/users", h.List)
	r.Post("/users", h.Create)
	r.Get("/users/{id}", h.Get)
	r.Put("/users/{id}", h.Update)
	r.Delete("/users/{id}", h.Delete)
}

// List handles GET /users
// @Summary List users
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.User
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /users [get]
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.List(r.Context())
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, users)
}

// Get handles GET /users/{id}
// @Summary Get user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} models.User
// @Failure 400 {object} ErrorResponse "Invalid user ID"
// @Failure 404 {object} ErrorResponse "User not found"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /users/{id} [get]
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	user, err := h.userService.Get(r.Context(), userID)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, user)
}

// Create handles POST /users
// @Summary Create user
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CreateUserRequest true "User"
// @Success 201 {object} models.User
// @Failure 400 {object} ErrorResponse "Invalid request body or validation failed"
// @Failure 409 {object} ErrorResponse "Username or email already exists"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /users [post]
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateUserRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	user, err := h.userService.Create(r.Context(), &req)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusCreated, user)
}

// Update handles PUT /users/{id}
// @Summary Update user
// @Description Update the provided fields of a user
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body models.UpdateUserRequest true "Fields to update"
// @Success 200 {object} models.User
// @Failure 400 {object} ErrorResponse "Invalid request body or validation failed"
// @Failure 404 {object} ErrorResponse "User not found"
// @Failure 409 {object} ErrorResponse "Username or email already exists"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /users/{id} [put]
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	var req models.UpdateUserRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	user, err := h.userService.Update(r.Context(), userID, &req)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, user)
}

// Delete handles DELETE /users/{id}
// @Summary Delete user
// @Description Delete a user. Administrators cannot delete their own account.
// @Tags users
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 204 "No Content"
// @Failure 400 {object} ErrorResponse "Invalid user ID"
// @Failure 403 {object} ErrorResponse "Self delete"
// @Failure 404 {object} ErrorResponse "User not found"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /users/{id} [delete]
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	identity, _ := middleware.GetIdentity(r.Context())
	if err := h.userService.Delete(r.Context(), identity, userID); err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
