// Package service implements session tokens, the session guard and the role authorizer
package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sportsmanagency/backend/internal/models"
)

// Session errors. Every one of them is an Unauthorized failure with its own code.
var (
	ErrNoToken           = models.NewError(models.KindUnauthorized, "no_token", "no token provided")
	ErrInvalidToken      = models.NewError(models.KindUnauthorized, "invalid_token", "invalid token")
	ErrTokenExpired      = models.NewError(models.KindUnauthorized, "token_expired", "token expired")
	ErrUserNotFound      = models.NewError(models.KindUnauthorized, "user_not_found", "user not found")
	ErrInactivityExpired = models.NewError(models.KindUnauthorized, "inactivity_expired", "session expired due to inactivity")
)

// Claims is the signed payload of a session token
type Claims struct {
	UserID int         `json:"user_id"`
	Role   models.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenClaims is a verified token's content
type TokenClaims struct {
	UserID   int
	Role     models.Role
	IssuedAt time.Time
}

// TokenService issues and verifies self-contained HS256 session tokens
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService creates a new token service with an absolute token lifetime
func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// TTL returns the absolute token lifetime
func (ts *TokenService) TTL() time.Duration {
	return ts.ttl
}

// Issue signs a token for the given user and role
func (ts *TokenService) Issue(userID int, role models.Role) (string, error) {
	if !role.Valid() {
		return "", fmt.Errorf("cannot issue token for invalid role %d", int(role))
	}

	issuedAt := ts.now()
	claims := Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ts.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(ts.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// Verify checks the signature and the absolute lifetime of a token.
// It does not consult the credential store.
func (ts *TokenService) Verify(tokenString string) (*TokenClaims, error) {
	claims, err := ts.parse(tokenString)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// parse is Verify that still returns the claims of a correctly signed but expired token,
// together with ErrTokenExpired.
func (ts *TokenService) parse(tokenString string) (*TokenClaims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return ts.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithStrictDecoding(),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
		// exp is whole seconds and the library rejects now == exp, the lifetime check below is authoritative
		jwt.WithLeeway(time.Second),
		jwt.WithTimeFunc(ts.now),
	)

	expired := false
	if err != nil {
		// Claims are only validated after the signature, so an expiry error implies a good signature
		if !errors.Is(err, jwt.ErrTokenExpired) ||
			errors.Is(err, jwt.ErrTokenSignatureInvalid) ||
			errors.Is(err, jwt.ErrTokenUsedBeforeIssued) {
			return nil, ErrInvalidToken
		}
		expired = true
	}

	if claims.IssuedAt == nil || claims.UserID <= 0 || !claims.Role.Valid() {
		return nil, ErrInvalidToken
	}

	// Lifetime is measured from issuance, a token is valid while now - iat <= ttl
	issuedAt := claims.IssuedAt.Time
	if ts.now().Sub(issuedAt) > ts.ttl {
		expired = true
	}

	result := &TokenClaims{
		UserID:   claims.UserID,
		Role:     claims.Role,
		IssuedAt: issuedAt,
	}
	if expired {
		return result, ErrTokenExpired
	}
	return result, nil
}
