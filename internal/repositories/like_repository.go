package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sportsmanagency/backend/internal/models"
	"go.uber.org/zap"
)

// likeRepository implements LikeRepository
type likeRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewLikeRepository creates a new like repository
func NewLikeRepository(db *sql.DB, logger *zap.Logger) *likeRepository {
	return &likeRepository{
		db:     db,
		logger: logger,
	}
}

// Create records a like.
// The (news_id, user_ip) unique key turns a second like into models.ErrAlreadyLiked.
func (r *likeRepository) Create(ctx context.Context, like *models.Like) error {
	query := `INSERT INTO likes (news_id, user_ip, user_agent) VALUES (?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query, like.NewsID, like.UserIP, like.UserAgent)
	if err != nil {
		if isMySQLError(err, mysqlErrDuplicateEntry) {
			return models.ErrAlreadyLiked
		}
		if isMySQLError(err, mysqlErrNoReferencedRow2) {
			return models.ErrNewsNotFound
		}
		r.logger.Error("failed to create like", zap.Error(err), zap.Int("newsId", like.NewsID))
		return fmt.Errorf("failed to create like: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		r.logger.Error("failed to get last insert id", zap.Error(err))
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	like.ID = int(id)
	return nil
}

// Delete removes the like of ip on a news item and reports how many rows went away
func (r *likeRepository) Delete(ctx context.Context, newsID int, ip string) (int64, error) {
	query := `DELETE FROM likes WHERE news_id = ? AND user_ip = ?`

	result, err := r.db.ExecContext(ctx, query, newsID, ip)
	if err != nil {
		r.logger.Error("failed to delete like", zap.Error(err), zap.Int("newsId", newsID))
		return 0, fmt.Errorf("failed to delete like: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}

// Exists checks if ip has liked a news item
func (r *likeRepository) Exists(ctx context.Context, newsID int, ip string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM likes WHERE news_id = ? AND user_ip = ?)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, newsID, ip).Scan(&exists); err != nil {
		r.logger.Error("failed to check like existence", zap.Error(err), zap.Int("newsId", newsID))
		return false, fmt.Errorf("failed to check like existence: %w", err)
	}

	return exists, nil
}

// Count returns the number of likes of a news item
func (r *likeRepository) Count(ctx context.Context, newsID int) (int, error) {
	query := `SELECT COUNT(*) FROM likes WHERE news_id = ?`

	var count int
	if err := r.db.QueryRowContext(ctx, query, newsID).Scan(&count); err != nil {
		r.logger.Error("failed to count likes", zap.Error(err), zap.Int("newsId", newsID))
		return 0, fmt.Errorf("failed to count likes: %w", err)
	}

	return count, nil
}
