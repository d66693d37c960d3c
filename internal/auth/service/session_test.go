package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sportsmanagency/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockCredentialStore is a mock implementation of CredentialStore
type mockCredentialStore struct {
	user        *models.User
	getErr      error
	touchErr    error
	touchedID   int
	touchedAt   *time.Time
	touchCalled int
}

func (m *mockCredentialStore) GetByID(ctx context.Context, userID int) (*models.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if m.user == nil || m.user.ID != userID {
		return nil, models.ErrUserNotFound
	}
	u := *m.user
	return &u, nil
}

func (m *mockCredentialStore) TouchLastActivity(ctx context.Context, userID int, at time.Time) error {
	m.touchCalled++
	if m.touchErr != nil {
		return m.touchErr
	}
	m.touchedID = userID
	m.touchedAt = &at
	// Persist like the real store so consecutive requests observe it
	if m.user != nil && m.user.ID == userID {
		m.user.LastActivity = &at
	}
	return nil
}

func timePtr(t time.Time) *time.Time { return &t }

func newTestGuard(c *clock, store CredentialStore) (*SessionGuard, *TokenService) {
	ts := newTestTokenService(c)
	guard := NewSessionGuard(ts, store, 30*time.Minute, zap.NewNop())
	guard.now = c.now
	return guard, ts
}

func TestSessionGuard_Authenticate(t *testing.T) {
	tests := []struct {
		name          string
		user          *models.User
		getErr        error
		touchErr      error
		tokenAge      time.Duration
		rawToken      string
		expectedError error
		expectTouch   bool
		expectedRole  models.Role
	}{
		{
			name: "active session",
			user: &models.User{
				ID: 5, Username: "editor", Email: "editor@example.com", Role: models.RoleEditor,
				LastActivity: timePtr(baseTime.Add(-29 * time.Minute)),
			},
			expectTouch:  true,
			expectedRole: models.RoleEditor,
		},
		{
			name: "never active user",
			user: &models.User{
				ID: 5, Username: "editor", Email: "editor@example.com", Role: models.RoleEditor,
			},
			expectTouch:  true,
			expectedRole: models.RoleEditor,
		},
		{
			name: "idle past inactivity window",
			user: &models.User{
				ID: 5, Username: "editor", Email: "editor@example.com", Role: models.RoleEditor,
				LastActivity: timePtr(baseTime.Add(-31 * time.Minute)),
			},
			expectedError: ErrInactivityExpired,
		},
		{
			name: "stored role wins over token role",
			user: &models.User{
				ID: 5, Username: "promoted", Email: "p@example.com", Role: models.RoleAdmin,
				LastActivity: timePtr(baseTime),
			},
			expectTouch:  true,
			expectedRole: models.RoleAdmin,
		},
		{
			name:          "user deleted after issuance",
			getErr:        models.ErrUserNotFound,
			expectedError: ErrUserNotFound,
		},
		{
			name: "expired token of active user",
			user: &models.User{
				ID: 5, Username: "editor", Email: "editor@example.com", Role: models.RoleEditor,
				LastActivity: timePtr(baseTime.Add(-time.Minute)),
			},
			tokenAge:      31 * time.Minute,
			expectedError: ErrTokenExpired,
		},
		{
			name:          "expired token of deleted user",
			getErr:        models.ErrUserNotFound,
			tokenAge:      31 * time.Minute,
			expectedError: ErrTokenExpired,
		},
		{
			name:          "empty token",
			rawToken:      "   ",
			expectedError: ErrNoToken,
		},
		{
			name:          "malformed token",
			rawToken:      "abc.def.ghi",
			expectedError: ErrInvalidToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &clock{t: baseTime.Add(-tt.tokenAge)}
			store := &mockCredentialStore{user: tt.user, getErr: tt.getErr, touchErr: tt.touchErr}
			guard, ts := newTestGuard(c, store)

			token := tt.rawToken
			if token == "" {
				var err error
				token, err = ts.Issue(5, models.RoleEditor)
				require.NoError(t, err)
			}
			c.t = baseTime

			identity, err := guard.Authenticate(context.Background(), token)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, identity)
				assert.Equal(t, 0, store.touchCalled)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 5, identity.UserID)
			assert.Equal(t, tt.user.Username, identity.Username)
			assert.Equal(t, tt.user.Email, identity.Email)
			assert.Equal(t, tt.expectedRole, identity.Role)
			if tt.expectTouch {
				require.NotNil(t, store.touchedAt)
				assert.Equal(t, 5, store.touchedID)
				assert.True(t, store.touchedAt.Equal(baseTime))
			}
		})
	}
}

func TestSessionGuard_Authenticate_TouchFailureIsTolerated(t *testing.T) {
	c := &clock{t: baseTime}
	store := &mockCredentialStore{
		user:     &models.User{ID: 5, Username: "editor", Role: models.RoleEditor},
		touchErr: errors.New("database is read-only"),
	}
	guard, ts := newTestGuard(c, store)
	token, err := ts.Issue(5, models.RoleEditor)
	require.NoError(t, err)

	identity, err := guard.Authenticate(context.Background(), token)

	require.NoError(t, err)
	assert.Equal(t, 5, identity.UserID)
	assert.Equal(t, 1, store.touchCalled)
}

func TestSessionGuard_Authenticate_StoreFailure(t *testing.T) {
	c := &clock{t: baseTime}
	dbErr := errors.New("connection refused")
	store := &mockCredentialStore{getErr: dbErr}
	guard, ts := newTestGuard(c, store)
	token, err := ts.Issue(5, models.RoleEditor)
	require.NoError(t, err)

	identity, err := guard.Authenticate(context.Background(), token)

	assert.ErrorIs(t, err, dbErr)
	assert.Equal(t, models.KindInternal, models.KindOf(err))
	assert.Nil(t, identity)
}

// Login at T=0, a request at T+20min, then a request at T+52min.
func TestSessionGuard_Authenticate_IdleScenario(t *testing.T) {
	c := &clock{t: baseTime}
	store := &mockCredentialStore{
		user: &models.User{ID: 5, Username: "editor", Role: models.RoleEditor},
	}
	guard, ts := newTestGuard(c, store)

	token, err := ts.Issue(5, models.RoleEditor)
	require.NoError(t, err)
	require.NoError(t, store.TouchLastActivity(context.Background(), 5, c.now()))

	c.advance(20 * time.Minute)
	_, err = guard.Authenticate(context.Background(), token)
	require.NoError(t, err)
	assert.True(t, store.user.LastActivity.Equal(baseTime.Add(20*time.Minute)))

	c.advance(32 * time.Minute)
	_, err = guard.Authenticate(context.Background(), token)
	assert.ErrorIs(t, err, ErrInactivityExpired)
}

// Steady activity keeps sliding the idle window but never extends the token itself.
func TestSessionGuard_Authenticate_SlidingWindowDoesNotExtendToken(t *testing.T) {
	c := &clock{t: baseTime}
	store := &mockCredentialStore{
		user: &models.User{ID: 5, Username: "editor", Role: models.RoleEditor},
	}
	guard, ts := newTestGuard(c, store)
	token, err := ts.Issue(5, models.RoleEditor)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		c.advance(9 * time.Minute)
		_, err = guard.Authenticate(context.Background(), token)
		require.NoError(t, err, "request at +%dmin", (i+1)*9)
	}

	c.advance(5 * time.Minute)
	_, err = guard.Authenticate(context.Background(), token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}
