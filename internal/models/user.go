package models

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// Role is an ordered access tier. A higher value grants everything a lower one does.
type Role int

// Role constants
const (
	RoleEditor Role = 1
	RoleAdmin  Role = 2
)

const (
	roleEditorName = "editor"
	roleAdminName  = "admin"
	// legacy tier, collapsed into admin
	roleSuperAdminName = "super_admin"
)

// ParseRole converts a stored or submitted role name into a Role.
// The legacy "super_admin" tier parses as RoleAdmin.
func ParseRole(s string) (Role, error) {
	switch s {
	case roleEditorName:
		return RoleEditor, nil
	case roleAdminName, roleSuperAdminName:
		return RoleAdmin, nil
	}
	return 0, fmt.Errorf("unknown role %q", s)
}

// String returns the canonical role name
func (r Role) String() string {
	switch r {
	case RoleEditor:
		return roleEditorName
	case RoleAdmin:
		return roleAdminName
	}
	return fmt.Sprintf("role(%d)", int(r))
}

// Valid reports whether r is one of the known tiers
func (r Role) Valid() bool {
	return r == RoleEditor || r == RoleAdmin
}

// AtLeast reports whether r grants the min tier
func (r Role) AtLeast(min Role) bool {
	return r.Valid() && r >= min
}

// MarshalText implements encoding.TextMarshaler so roles travel as names in JSON and JWT claims
func (r Role) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("invalid role %d", int(r))
	}
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (r *Role) UnmarshalText(text []byte) error {
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Value implements driver.Valuer, roles are stored by name
func (r Role) Value() (driver.Value, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("invalid role %d", int(r))
	}
	return r.String(), nil
}

// Scan implements sql.Scanner
func (r *Role) Scan(src any) error {
	switch v := src.(type) {
	case string:
		return r.UnmarshalText([]byte(v))
	case []byte:
		return r.UnmarshalText(v)
	}
	return fmt.Errorf("cannot scan %T into Role", src)
}

// User represents an administrative account
type User struct {
	ID           int        `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"` // Never serialize password hash
	Role         Role       `json:"role"`
	LastActivity *time.Time `json:"lastActivity,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// Identity is the authenticated caller attached to a request
type Identity struct {
	UserID   int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is returned on successful login
type LoginResponse struct {
	Token string    `json:"token"`
	User  *Identity `json:"user"`
}

// CreateUserRequest represents an admin request to create a user
type CreateUserRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=255"`
	Role     string `json:"role" validate:"omitempty,oneof=admin editor"`
}

// UpdateUserRequest represents a partial user update, nil fields are left untouched
type UpdateUserRequest struct {
	Username *string `json:"username" validate:"omitempty,min=3,max=50"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Password *string `json:"password" validate:"omitempty,min=6,max=255"`
	Role     *string `json:"role" validate:"omitempty,oneof=admin editor"`
}

// UserUpdate is the set of columns a repository update touches
type UserUpdate struct {
	Username     *string
	Email        *string
	PasswordHash *string
	Role         *Role
}

// Empty reports whether the update changes nothing
func (u UserUpdate) Empty() bool {
	return u.Username == nil && u.Email == nil && u.PasswordHash == nil && u.Role == nil
}
