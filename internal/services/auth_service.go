package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sportsmanagency/backend/internal/metrics"
	"github.com/sportsmanagency/backend/internal/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for both an unknown email and a wrong password
var ErrInvalidCredentials = models.NewError(models.KindUnauthorized, "invalid_credentials", "invalid credentials")

// AuthUserRepository is the interface that wraps methods for User table data access during login
type AuthUserRepository interface {
	// Method GetByEmail retrieves a user by email.
	//
	// If user with such email does not exist, models.ErrUserNotFound is returned.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// Method TouchLastActivity sets the user's last activity timestamp.
	TouchLastActivity(ctx context.Context, userID int, at time.Time) error
}

// TokenIssuer is the interface that wraps session token issuance
type TokenIssuer interface {
	// Method Issue signs a session token for the user and role.
	Issue(userID int, role models.Role) (string, error)
}

var (
	dummyHashOnce sync.Once
	dummyHash     []byte
)

// dummyPasswordHash is compared against when the email is unknown so both failure paths cost one bcrypt run
func dummyPasswordHash() []byte {
	dummyHashOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)
	})
	return dummyHash
}

// authService implements AuthService
type authService struct {
	userRepo AuthUserRepository
	tokens   TokenIssuer
	logger   *zap.Logger
	now      func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo AuthUserRepository, tokens TokenIssuer, logger *zap.Logger) *authService {
	return &authService{
		userRepo: userRepo,
		tokens:   tokens,
		logger:   logger,
		now:      time.Now,
	}
}

// Login checks the credentials, starts the inactivity window and issues a session token
func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			bcrypt.CompareHashAndPassword(dummyPasswordHash(), []byte(req.Password))
			return nil, s.rejectLogin()
		}
		return nil, err
	}

	// Verify password
	if err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, s.rejectLogin()
	}

	// A fresh session must not inherit a stale inactivity window
	if err := s.userRepo.TouchLastActivity(ctx, user.ID, s.now()); err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}

	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user logged in", zap.Int("userId", user.ID), zap.String("role", user.Role.String()))

	return &models.LoginResponse{
		Token: token,
		User: &models.Identity{
			UserID:   user.ID,
			Username: user.Username,
			Email:    user.Email,
			Role:     user.Role,
		},
	}, nil
}

func (s *authService) rejectLogin() error {
	metrics.AuthFailures.WithLabelValues(ErrInvalidCredentials.Code).Inc()
	return ErrInvalidCredentials
}
