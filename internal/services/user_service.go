package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/sportsmanagency/backend/internal/auth/service"
	"github.com/sportsmanagency/backend/internal/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// UserRepository is the interface that wraps methods for User table data access
type UserRepository interface {
	// Method GetByID retrieves a user by ID.
	//
	// If user with such ID does not exist, models.ErrUserNotFound is returned.
	GetByID(ctx context.Context, userID int) (*models.User, error)
	// Method List retrieves all users, newest first.
	List(ctx context.Context) ([]models.User, error)
	// Method Create inserts a new user into the database and sets its ID.
	//
	// If the username or email is taken, models.ErrUserExists is returned.
	Create(ctx context.Context, user *models.User) error
	// Method Update changes only the columns set in "update".
	//
	// If the new username or email is taken, models.ErrUserExists is returned.
	Update(ctx context.Context, userID int, update models.UserUpdate) error
	// Method Delete deletes a user by ID.
	//
	// If user with such ID does not exist, models.ErrUserNotFound is returned.
	Delete(ctx context.Context, userID int) error
	// Method ExistsAdmin checks if at least one admin account exists.
	ExistsAdmin(ctx context.Context) (bool, error)
	// Method ExistsByEmailOrUsername checks if a user other than "excludeID" holds the email or the username.
	ExistsByEmailOrUsername(ctx context.Context, email, username string, excludeID int) (bool, error)
}

// userService implements UserService
type userService struct {
	repo   UserRepository
	logger *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(repo UserRepository, logger *zap.Logger) *userService {
	return &userService{
		repo:   repo,
		logger: logger,
	}
}

// List retrieves all users
func (s *userService) List(ctx context.Context) ([]models.User, error) {
	return s.repo.List(ctx)
}

// Get retrieves a user by ID
func (s *userService) Get(ctx context.Context, userID int) (*models.User, error) {
	return s.repo.GetByID(ctx, userID)
}

// Create validates the request and creates a new account, editor unless a role is given
func (s *userService) Create(ctx context.Context, req *models.CreateUserRequest) (*models.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	req.Role = strings.TrimSpace(req.Role)
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	role := models.RoleEditor
	if req.Role != "" {
		parsed, err := models.ParseRole(req.Role)
		if err != nil {
			return nil, err
		}
		role = parsed
	}

	exists, err := s.repo.ExistsByEmailOrUsername(ctx, req.Email, req.Username, 0)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, models.ErrUserExists
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(passwordHash),
		Role:         role,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user created", zap.Int("userId", user.ID), zap.String("role", role.String()))
	return s.repo.GetByID(ctx, user.ID)
}

// Update applies a partial update, a new password is re-hashed
func (s *userService) Update(ctx context.Context, userID int, req *models.UpdateUserRequest) (*models.User, error) {
	trim := func(v *string) {
		if v != nil {
			*v = strings.TrimSpace(*v)
		}
	}
	trim(req.Username)
	trim(req.Email)
	trim(req.Role)
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	current, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	update := models.UserUpdate{}
	if req.Username != nil && *req.Username != current.Username {
		update.Username = req.Username
	}
	if req.Email != nil && *req.Email != current.Email {
		update.Email = req.Email
	}
	if req.Role != nil {
		role, err := models.ParseRole(*req.Role)
		if err != nil {
			return nil, err
		}
		if role != current.Role {
			update.Role = &role
		}
	}
	if req.Password != nil {
		passwordHash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		hash := string(passwordHash)
		update.PasswordHash = &hash
	}

	if update.Empty() {
		return current, nil
	}

	if update.Username != nil || update.Email != nil {
		var email, username string
		if update.Email != nil {
			email = *update.Email
		}
		if update.Username != nil {
			username = *update.Username
		}
		exists, err := s.repo.ExistsByEmailOrUsername(ctx, email, username, userID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, models.ErrUserExists
		}
	}

	if err := s.repo.Update(ctx, userID, update); err != nil {
		return nil, err
	}

	return s.repo.GetByID(ctx, userID)
}

// Delete removes an account. An account may never delete itself.
func (s *userService) Delete(ctx context.Context, actor *models.Identity, userID int) error {
	if err := service.RequireNotSelf(actor, userID); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, userID); err != nil {
		return err
	}

	s.logger.Info("user deleted", zap.Int("userId", userID), zap.Int("actorId", actor.UserID))
	return nil
}

// EnsureAdmin creates the bootstrap admin account when no admin exists yet.
// It reports whether an account was created.
func (s *userService) EnsureAdmin(ctx context.Context, username, email, password string) (bool, error) {
	exists, err := s.repo.ExistsAdmin(ctx)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	_, err = s.Create(ctx, &models.CreateUserRequest{
		Username: username,
		Email:    email,
		Password: password,
		Role:     models.RoleAdmin.String(),
	})
	if err != nil {
		return false, fmt.Errorf("failed to create bootstrap admin: %w", err)
	}
	return true, nil
}
