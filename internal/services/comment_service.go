package services

import (
	"context"
	"strings"

	"github.com/sportsmanagency/backend/internal/metrics"
	"github.com/sportsmanagency/backend/internal/models"
	"go.uber.org/zap"
)

// CommentRepository is the interface that wraps methods for Comment table data access
type CommentRepository interface {
	// Method Create inserts a new comment and sets its ID.
	//
	// If the parent news item does not exist, models.ErrNewsNotFound is returned.
	Create(ctx context.Context, comment *models.Comment) error
	// Method GetByID retrieves a comment by ID.
	//
	// If comment with such ID does not exist, models.ErrCommentNotFound is returned.
	GetByID(ctx context.Context, commentID int) (*models.Comment, error)
	// Method List retrieves comments matching "filter", newest first.
	List(ctx context.Context, filter models.CommentFilter) ([]models.Comment, error)
	// Method SetApproved writes the approval flag of a comment.
	SetApproved(ctx context.Context, commentID int, approved bool) error
	// Method Delete deletes a comment by ID.
	//
	// If comment with such ID does not exist, models.ErrCommentNotFound is returned.
	Delete(ctx context.Context, commentID int) error
}

// NewsLookup is the interface that wraps the parent existence check shared by comments and likes
type NewsLookup interface {
	// Method Exists checks if a news item with the given ID exists.
	Exists(ctx context.Context, newsID int) (bool, error)
}

// commentService implements CommentService
type commentService struct {
	repo   CommentRepository
	news   NewsLookup
	logger *zap.Logger
}

// NewCommentService creates a new comment service
func NewCommentService(repo CommentRepository, news NewsLookup, logger *zap.Logger) *commentService {
	return &commentService{
		repo:   repo,
		news:   news,
		logger: logger,
	}
}

// Submit creates a pending comment on a news item.
// Public submissions are never approved on creation.
func (s *commentService) Submit(ctx context.Context, newsID int, req *models.SubmitCommentRequest, origin models.Origin) (*models.Comment, error) {
	req.AuthorName = strings.TrimSpace(req.AuthorName)
	req.AuthorEmail = strings.TrimSpace(req.AuthorEmail)
	req.Content = strings.TrimSpace(req.Content)
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	if err := s.requireNews(ctx, newsID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		NewsID:      newsID,
		AuthorName:  req.AuthorName,
		AuthorEmail: req.AuthorEmail,
		Content:     req.Content,
		Approved:    false,
		UserIP:      origin.IP,
		UserAgent:   origin.UserAgent,
	}
	if err := s.repo.Create(ctx, comment); err != nil {
		return nil, err
	}

	metrics.CommentsModerated.WithLabelValues("submitted").Inc()
	s.logger.Info("comment submitted", zap.Int("commentId", comment.ID), zap.Int("newsId", newsID))

	return s.repo.GetByID(ctx, comment.ID)
}

// ListPublic retrieves the approved comments of a news item, newest first
func (s *commentService) ListPublic(ctx context.Context, newsID int) ([]models.Comment, error) {
	if err := s.requireNews(ctx, newsID); err != nil {
		return nil, err
	}

	approved := true
	return s.repo.List(ctx, models.CommentFilter{NewsID: &newsID, Approved: &approved})
}

// ListAll retrieves comments for moderation, only the requested filters are applied
func (s *commentService) ListAll(ctx context.Context, filter models.CommentFilter) ([]models.Comment, error) {
	if filter.Limit < 0 {
		filter.Limit = 0
	}
	return s.repo.List(ctx, filter)
}

// SetApproval approves or un-approves a comment.
// Setting the current state again succeeds without a write.
func (s *commentService) SetApproval(ctx context.Context, commentID int, approved bool) (*models.Comment, error) {
	comment, err := s.repo.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.Approved == approved {
		return comment, nil
	}

	if err := s.repo.SetApproved(ctx, commentID, approved); err != nil {
		return nil, err
	}

	action := "rejected"
	if approved {
		action = "approved"
	}
	metrics.CommentsModerated.WithLabelValues(action).Inc()
	s.logger.Info("comment moderated", zap.Int("commentId", commentID), zap.String("action", action))

	return s.repo.GetByID(ctx, commentID)
}

// Delete removes a comment permanently
func (s *commentService) Delete(ctx context.Context, commentID int) error {
	if err := s.repo.Delete(ctx, commentID); err != nil {
		return err
	}

	metrics.CommentsModerated.WithLabelValues("deleted").Inc()
	s.logger.Info("comment deleted", zap.Int("commentId", commentID))
	return nil
}

func (s *commentService) requireNews(ctx context.Context, newsID int) error {
	exists, err := s.news.Exists(ctx, newsID)
	if err != nil {
		return err
	}
	if !exists {
		return models.ErrNewsNotFound
	}
	return nil
}
