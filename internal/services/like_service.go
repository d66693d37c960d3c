package services

import (
	"context"
	"errors"

	"github.com/sportsmanagency/backend/internal/metrics"
	"github.com/sportsmanagency/backend/internal/models"
	"go.uber.org/zap"
)

// LikeRepository is the interface that wraps methods for Like table data access
type LikeRepository interface {
	// Method Create records a like.
	//
	// If the (newsID, ip) pair already has a like, models.ErrAlreadyLiked is returned.
	// If the news item does not exist, models.ErrNewsNotFound is returned.
	Create(ctx context.Context, like *models.Like) error
	// Method Delete removes the like of "ip" on a news item and returns the number of removed rows.
	Delete(ctx context.Context, newsID int, ip string) (int64, error)
	// Method Exists checks if "ip" has liked a news item.
	Exists(ctx context.Context, newsID int, ip string) (bool, error)
	// Method Count returns the number of likes of a news item.
	Count(ctx context.Context, newsID int) (int, error)
}

// likeService implements LikeService
type likeService struct {
	repo   LikeRepository
	news   NewsLookup
	logger *zap.Logger
}

// NewLikeService creates a new like service
func NewLikeService(repo LikeRepository, news NewsLookup, logger *zap.Logger) *likeService {
	return &likeService{
		repo:   repo,
		news:   news,
		logger: logger,
	}
}

// Toggle likes a news item for origin, or removes the existing like.
//
// Removal is attempted first so the decision rests on the storage write, not a prior read.
// A create rejected by the unique key means a concurrent request already liked the item.
func (s *likeService) Toggle(ctx context.Context, newsID int, origin models.Origin) (*models.LikeStatus, error) {
	exists, err := s.news.Exists(ctx, newsID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, models.ErrNewsNotFound
	}

	removed, err := s.repo.Delete(ctx, newsID, origin.IP)
	if err != nil {
		return nil, err
	}

	liked := false
	result := "unliked"
	if removed == 0 {
		err := s.repo.Create(ctx, &models.Like{NewsID: newsID, UserIP: origin.IP, UserAgent: origin.UserAgent})
		switch {
		case errors.Is(err, models.ErrAlreadyLiked):
			result = "race"
			s.logger.Debug("concurrent like resolved by unique key", zap.Int("newsId", newsID))
		case err != nil:
			return nil, err
		default:
			result = "liked"
		}
		liked = true
	}
	metrics.LikeToggles.WithLabelValues(result).Inc()

	count, err := s.repo.Count(ctx, newsID)
	if err != nil {
		return nil, err
	}

	return &models.LikeStatus{Liked: liked, Count: count}, nil
}

// Status reports whether ip has liked a news item and the item's like count
func (s *likeService) Status(ctx context.Context, newsID int, ip string) (*models.LikeStatus, error) {
	liked, err := s.repo.Exists(ctx, newsID, ip)
	if err != nil {
		return nil, err
	}

	count, err := s.repo.Count(ctx, newsID)
	if err != nil {
		return nil, err
	}

	return &models.LikeStatus{Liked: liked, Count: count}, nil
}

// Count returns the like count of a news item
func (s *likeService) Count(ctx context.Context, newsID int) (int, error) {
	return s.repo.Count(ctx, newsID)
}
