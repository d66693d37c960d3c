package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sportsmanagency/backend/internal/metrics"
	"github.com/sportsmanagency/backend/internal/models"
	"go.uber.org/zap"
)

// CredentialStore is the interface that wraps the User table access the session guard needs
type CredentialStore interface {
	// Method GetByID retrieves a user by ID.
	//
	// If user with such ID does not exist, models.ErrUserNotFound is returned.
	GetByID(ctx context.Context, userID int) (*models.User, error)
	// Method TouchLastActivity sets the user's last activity timestamp and nothing else.
	TouchLastActivity(ctx context.Context, userID int, at time.Time) error
}

// SessionGuard validates a bearer token against both the token's absolute lifetime
// and the account's inactivity window, then slides the inactivity window forward.
type SessionGuard struct {
	tokens        *TokenService
	users         CredentialStore
	inactivityTTL time.Duration
	logger        *zap.Logger
	now           func() time.Time
}

// NewSessionGuard creates a new session guard
func NewSessionGuard(tokens *TokenService, users CredentialStore, inactivityTTL time.Duration, logger *zap.Logger) *SessionGuard {
	return &SessionGuard{
		tokens:        tokens,
		users:         users,
		inactivityTTL: inactivityTTL,
		logger:        logger,
		now:           time.Now,
	}
}

// Authenticate resolves a raw token into the caller's identity.
//
// Successful validation persists lastActivity = now. A failed refresh write is logged and
// does not reject the request: losing one refresh can only shorten the session.
func (g *SessionGuard) Authenticate(ctx context.Context, token string) (*models.Identity, error) {
	identity, err := g.authenticate(ctx, token)
	if err != nil {
		var appErr *models.Error
		if errors.As(err, &appErr) {
			metrics.AuthFailures.WithLabelValues(appErr.Code).Inc()
		}
		return nil, err
	}
	return identity, nil
}

func (g *SessionGuard) authenticate(ctx context.Context, token string) (*models.Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrNoToken
	}

	// A correctly signed but expired token still names its user, so an idle session
	// can be reported as such rather than as a plain expiry.
	claims, tokenErr := g.tokens.parse(token)
	if claims == nil {
		return nil, tokenErr
	}

	user, err := g.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if tokenErr != nil {
			return nil, tokenErr
		}
		if errors.Is(err, models.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load session user: %w", err)
	}

	now := g.now()
	if user.LastActivity != nil && now.Sub(*user.LastActivity) > g.inactivityTTL {
		return nil, ErrInactivityExpired
	}
	if tokenErr != nil {
		return nil, tokenErr
	}

	if err := g.users.TouchLastActivity(ctx, user.ID, now); err != nil {
		g.logger.Warn("failed to refresh last activity", zap.Int("userId", user.ID), zap.Error(err))
	}

	// The stored role wins over the token's so demotions apply immediately
	return &models.Identity{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     user.Role,
	}, nil
}
