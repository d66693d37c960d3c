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

const newsColumns = `id, title, content, excerpt, image, author, category, featured, published, publish_date, created_at, updated_at`

// newsRepository implements NewsRepository
type newsRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewNewsRepository creates a new news repository
func NewNewsRepository(db *sql.DB, logger *zap.Logger) *newsRepository {
	return &newsRepository{
		db:     db,
		logger: logger,
	}
}

func scanNews(row rowScanner) (*models.News, error) {
	news := &models.News{}
	err := row.Scan(
		&news.ID,
		&news.Title,
		&news.Content,
		&news.Excerpt,
		&news.Image,
		&news.Author,
		&news.Category,
		&news.Featured,
		&news.Published,
		&news.PublishDate,
		&news.CreatedAt,
		&news.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return news, nil
}

// Exists checks if a news item with the given ID exists
func (r *newsRepository) Exists(ctx context.Context, newsID int) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM news WHERE id = ?)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, newsID).Scan(&exists); err != nil {
		r.logger.Error("failed to check news existence", zap.Error(err), zap.Int("newsId", newsID))
		return false, fmt.Errorf("failed to check news existence: %w", err)
	}

	return exists, nil
}

// GetByID retrieves a news item by ID
func (r *newsRepository) GetByID(ctx context.Context, newsID int) (*models.News, error) {
	query := `SELECT ` + newsColumns + ` FROM news WHERE id = ?`

	news, err := scanNews(r.db.QueryRowContext(ctx, query, newsID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNewsNotFound
	}
	if err != nil {
		r.logger.Error("failed to get news by id", zap.Error(err), zap.Int("newsId", newsID))
		return nil, fmt.Errorf("failed to get news by id: %w", err)
	}

	return news, nil
}

// List retrieves news items matching filter, newest publish date first
func (r *newsRepository) List(ctx context.Context, filter models.NewsFilter) ([]models.News, error) {
	// Build WHERE clause
	whereClauses := []string{}
	args := []any{}
	if filter.Published != nil {
		whereClauses = append(whereClauses, "published = ?")
		args = append(args, *filter.Published)
	}
	if filter.Featured != nil {
		whereClauses = append(whereClauses, "featured = ?")
		args = append(args, *filter.Featured)
	}

	query := `SELECT ` + newsColumns + ` FROM news`
	if len(whereClauses) > 0 {
		query += ` WHERE ` + strings.Join(whereClauses, " AND ")
	}
	query += ` ORDER BY publish_date DESC, id DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to query news", zap.Error(err))
		return nil, fmt.Errorf("failed to query news: %w", err)
	}
	defer rows.Close()

	items := []models.News{}
	for rows.Next() {
		news, err := scanNews(rows)
		if err != nil {
			r.logger.Error("failed to scan news", zap.Error(err))
			return nil, fmt.Errorf("failed to scan news: %w", err)
		}
		items = append(items, *news)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating rows", zap.Error(err))
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return items, nil
}

// Create inserts a new news item and sets its ID
func (r *newsRepository) Create(ctx context.Context, news *models.News) error {
	query := `
		INSERT INTO news (title, content, excerpt, image, author, category, featured, published, publish_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		news.Title,
		news.Content,
		news.Excerpt,
		news.Image,
		news.Author,
		news.Category,
		news.Featured,
		news.Published,
		news.PublishDate,
	)
	if err != nil {
		r.logger.Error("failed to create news", zap.Error(err))
		return fmt.Errorf("failed to create news: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		r.logger.Error("failed to get last insert id", zap.Error(err))
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	news.ID = int(id)
	return nil
}

// Update changes only the fields set in update
func (r *newsRepository) Update(ctx context.Context, newsID int, update *models.UpdateNewsRequest) error {
	// Build SET clause
	setClauses := []string{}
	args := []any{}
	addString := func(column string, value *string) {
		if value != nil {
			setClauses = append(setClauses, column+" = ?")
			args = append(args, *value)
		}
	}
	addString("title", update.Title)
	addString("content", update.Content)
	addString("excerpt", update.Excerpt)
	addString("author", update.Author)
	addString("category", update.Category)
	addString("image", update.Image)
	if update.Featured != nil {
		setClauses = append(setClauses, "featured = ?")
		args = append(args, *update.Featured)
	}
	if update.Published != nil {
		setClauses = append(setClauses, "published = ?")
		args = append(args, *update.Published)
	}
	if len(setClauses) == 0 {
		return fmt.Errorf("no fields to update")
	}

	args = append(args, newsID)
	query := fmt.Sprintf(`
		UPDATE news
		SET %s
		WHERE id = ?
	`, strings.Join(setClauses, ", "))

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.Error("failed to update news", zap.Error(err), zap.Int("newsId", newsID))
		return fmt.Errorf("failed to update news: %w", err)
	}

	return nil
}

// Delete removes a news item, its comments and likes cascade
func (r *newsRepository) Delete(ctx context.Context, newsID int) error {
	query := `DELETE FROM news WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, newsID)
	if err != nil {
		r.logger.Error("failed to delete news", zap.Error(err), zap.Int("newsId", newsID))
		return fmt.Errorf("failed to delete news: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return models.ErrNewsNotFound
	}

	return nil
}
