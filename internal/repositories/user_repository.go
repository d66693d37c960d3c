package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sportsmanagency/backend/internal/models"
	"go.uber.org/zap"
)

const userColumns = `id, username, email, password_hash, role, last_activity, created_at, updated_at`

// userRepository implements UserRepository
type userRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB, logger *zap.Logger) *userRepository {
	return &userRepository{
		db:     db,
		logger: logger,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	user := &models.User{}
	var lastActivity sql.NullTime
	if err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&lastActivity,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if lastActivity.Valid {
		t := lastActivity.Time
		user.LastActivity = &t
	}
	return user, nil
}

// GetByID retrieves a user by ID
func (r *userRepository) GetByID(ctx context.Context, userID int) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrUserNotFound
	}
	if err != nil {
		r.logger.Error("failed to get user by id", zap.Error(err), zap.Int("userId", userID))
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return user, nil
}

// GetByEmail retrieves a user by email
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = ? LIMIT 1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrUserNotFound
	}
	if err != nil {
		r.logger.Error("failed to get user by email", zap.Error(err), zap.String("email", email))
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}

// List retrieves all users, newest first
func (r *userRepository) List(ctx context.Context) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("failed to query users", zap.Error(err))
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			r.logger.Error("failed to scan user", zap.Error(err))
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *user)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating rows", zap.Error(err))
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return users, nil
}

// Create inserts a new user into the database
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (username, email, password_hash, role)
		VALUES (?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query, user.Username, user.Email, user.PasswordHash, user.Role)
	if err != nil {
		if isMySQLError(err, mysqlErrDuplicateEntry) {
			return models.ErrUserExists
		}
		r.logger.Error("failed to create user", zap.Error(err))
		return fmt.Errorf("failed to create user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		r.logger.Error("failed to get last insert id", zap.Error(err))
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	user.ID = int(id)
	return nil
}

// Update changes only the columns set in update
func (r *userRepository) Update(ctx context.Context, userID int, update models.UserUpdate) error {
	// Build SET clause
	setClauses := []string{}
	args := []any{}
	if update.Username != nil {
		setClauses = append(setClauses, "username = ?")
		args = append(args, *update.Username)
	}
	if update.Email != nil {
		setClauses = append(setClauses, "email = ?")
		args = append(args, *update.Email)
	}
	if update.PasswordHash != nil {
		setClauses = append(setClauses, "password_hash = ?")
		args = append(args, *update.PasswordHash)
	}
	if update.Role != nil {
		setClauses = append(setClauses, "role = ?")
		args = append(args, *update.Role)
	}
	if len(setClauses) == 0 {
		return fmt.Errorf("no fields to update")
	}

	args = append(args, userID)
	query := fmt.Sprintf(`
		UPDATE users
		SET %s
		WHERE id = ?
	`, strings.Join(setClauses, ", "))

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isMySQLError(err, mysqlErrDuplicateEntry) {
			return models.ErrUserExists
		}
		r.logger.Error("failed to update user", zap.Error(err), zap.Int("userId", userID))
		return fmt.Errorf("failed to update user: %w", err)
	}

	return nil
}

// Delete removes a user by ID
func (r *userRepository) Delete(ctx context.Context, userID int) error {
	query := `DELETE FROM users WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		r.logger.Error("failed to delete user", zap.Error(err), zap.Int("userId", userID))
		return fmt.Errorf("failed to delete user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return models.ErrUserNotFound
	}

	return nil
}

// TouchLastActivity sets last_activity and leaves updated_at untouched
func (r *userRepository) TouchLastActivity(ctx context.Context, userID int, at time.Time) error {
	query := `UPDATE users SET last_activity = ?, updated_at = updated_at WHERE id = ?`

	if _, err := r.db.ExecContext(ctx, query, at.UTC(), userID); err != nil {
		return fmt.Errorf("failed to update last activity: %w", err)
	}

	return nil
}

// ExistsAdmin checks if at least one admin account exists
func (r *userRepository) ExistsAdmin(ctx context.Context) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE role = ?)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, models.RoleAdmin).Scan(&exists); err != nil {
		r.logger.Error("failed to check admin existence", zap.Error(err))
		return false, fmt.Errorf("failed to check admin existence: %w", err)
	}

	return exists, nil
}

// ExistsByEmailOrUsername checks if a user other than excludeID holds the email or the username.
// Pass 0 as excludeID to check against every user.
func (r *userRepository) ExistsByEmailOrUsername(ctx context.Context, email, username string, excludeID int) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE (email = ? OR username = ?) AND id <> ?)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, email, username, excludeID).Scan(&exists); err != nil {
		r.logger.Error("failed to check user existence", zap.Error(err), zap.String("email", email))
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}

	return exists, nil
}
