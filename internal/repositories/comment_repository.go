package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/sportsmanagency/backend/internal/models"
	"go.uber.org/zap"
)

const commentColumns = `id, news_id, author_name, author_email, content, approved, user_ip, user_agent, created_at, updated_at`

// commentRepository implements CommentRepository
type commentRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(db *sql.DB, logger *zap.Logger) *commentRepository {
	return &commentRepository{
		db:     db,
		logger: logger,
	}
}

func scanComment(row rowScanner) (*models.Comment, error) {
	comment := &models.Comment{}
	err := row.Scan(
		&comment.ID,
		&comment.NewsID,
		&comment.AuthorName,
		&comment.AuthorEmail,
		&comment.Content,
		&comment.Approved,
		&comment.UserIP,
		&comment.UserAgent,
		&comment.CreatedAt,
		&comment.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return comment, nil
}

// Create inserts a new comment and sets its ID.
// A missing parent news item is reported as models.ErrNewsNotFound.
func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	query := `
		INSERT INTO comments (news_id, author_name, author_email, content, approved, user_ip, user_agent)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		comment.NewsID,
		comment.AuthorName,
		comment.AuthorEmail,
		comment.Content,
		comment.Approved,
		comment.UserIP,
		comment.UserAgent,
	)
	if err != nil {
		if isMySQLError(err, mysqlErrNoReferencedRow2) {
			return models.ErrNewsNotFound
		}
		r.logger.Error("failed to create comment", zap.Error(err), zap.Int("newsId", comment.NewsID))
		return fmt.Errorf("failed to create comment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		r.logger.Error("failed to get last insert id", zap.Error(err))
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	comment.ID = int(id)
	return nil
}

// GetByID retrieves a comment by ID
func (r *commentRepository) GetByID(ctx context.Context, commentID int) (*models.Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM comments WHERE id = ?`

	comment, err := scanComment(r.db.QueryRowContext(ctx, query, commentID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrCommentNotFound
	}
	if err != nil {
		r.logger.Error("failed to get comment by id", zap.Error(err), zap.Int("commentId", commentID))
		return nil, fmt.Errorf("failed to get comment by id: %w", err)
	}

	return comment, nil
}

// List retrieves comments matching filter, newest first
func (r *commentRepository) List(ctx context.Context, filter models.CommentFilter) ([]models.Comment, error) {
	// Build WHERE clause
	whereClauses := []string{}
	args := []any{}
	if filter.NewsID != nil {
		whereClauses = append(whereClauses, "news_id = ?")
		args = append(args, *filter.NewsID)
	}
	if filter.Approved != nil {
		whereClauses = append(whereClauses, "approved = ?")
		args = append(args, *filter.Approved)
	}

	query := `SELECT ` + commentColumns + ` FROM comments`
	if len(whereClauses) > 0 {
		query += ` WHERE ` + strings.Join(whereClauses, " AND ")
	}
	query += ` ORDER BY created_at DESC, id DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to query comments", zap.Error(err))
		return nil, fmt.Errorf("failed to query comments: %w", err)
	}
	defer rows.Close()

	comments := []models.Comment{}
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			r.logger.Error("failed to scan comment", zap.Error(err))
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, *comment)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating rows", zap.Error(err))
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return comments, nil
}

// SetApproved writes the approval flag of a comment
func (r *commentRepository) SetApproved(ctx context.Context, commentID int, approved bool) error {
	query := `UPDATE comments SET approved = ? WHERE id = ?`

	if _, err := r.db.ExecContext(ctx, query, approved, commentID); err != nil {
		r.logger.Error("failed to update comment approval", zap.Error(err), zap.Int("commentId", commentID))
		return fmt.Errorf("failed to update comment approval: %w", err)
	}

	return nil
}

// Delete removes a comment by ID
func (r *commentRepository) Delete(ctx context.Context, commentID int) error {
	query := `DELETE FROM comments WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, commentID)
	if err != nil {
		r.logger.Error("failed to delete comment", zap.Error(err), zap.Int("commentId", commentID))
		return fmt.Errorf("failed to delete comment: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return models.ErrCommentNotFound
	}

	return nil
}
