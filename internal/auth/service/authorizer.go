package service

import "github.com/sportsmanagency/backend/internal/models"

// Authorization errors
var (
	ErrUnauthenticated = models.NewError(models.KindUnauthorized, "unauthenticated", "authentication required")
	ErrForbidden       = models.NewError(models.KindForbidden, "forbidden", "insufficient permissions")
	ErrSelfDelete      = models.NewError(models.KindForbidden, "self_delete", "you cannot delete your own account")
)

// Require checks that identity holds at least the min role.
// A missing identity is Unauthorized, a lower role is Forbidden.
func Require(identity *models.Identity, min models.Role) error {
	if identity == nil {
		return ErrUnauthenticated
	}
	if !identity.Role.AtLeast(min) {
		return ErrForbidden
	}
	return nil
}

// RequireNotSelf rejects operations an account may not perform on itself, whatever its role
func RequireNotSelf(identity *models.Identity, targetUserID int) error {
	if identity == nil {
		return ErrUnauthenticated
	}
	if identity.UserID == targetUserID {
		return ErrSelfDelete
	}
	return nil
}
