package services

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/sportsmanagency/backend/internal/models"
	"go.uber.org/zap"
)

const defaultNewsLimit = 100

// NewsRepository is the interface that wraps methods for News table data access
type NewsRepository interface {
	NewsLookup
	// Method GetByID retrieves a news item by ID.
	//
	// If news with such ID does not exist, models.ErrNewsNotFound is returned.
	GetByID(ctx context.Context, newsID int) (*models.News, error)
	// Method List retrieves news items matching "filter", newest publish date first.
	List(ctx context.Context, filter models.NewsFilter) ([]models.News, error)
	// Method Create inserts a new news item and sets its ID.
	Create(ctx context.Context, news *models.News) error
	// Method Update changes only the fields set in "update".
	Update(ctx context.Context, newsID int, update *models.UpdateNewsRequest) error
	// Method Delete deletes a news item, its comments and likes go with it.
	//
	// If news with such ID does not exist, models.ErrNewsNotFound is returned.
	Delete(ctx context.Context, newsID int) error
}

// ImageStorage is the interface that wraps uploaded image persistence
type ImageStorage interface {
	// Method Save stores an image and returns its public path.
	//
	// The extension of "filename" decides whether the image type is accepted.
	Save(ctx context.Context, filename string, content io.Reader) (string, error)
	// Method Delete removes an image previously returned by Save.
	Delete(ctx context.Context, url string) error
}

// newsService implements NewsService
type newsService struct {
	repo    NewsRepository
	storage ImageStorage
	logger  *zap.Logger
	now     func() time.Time
}

// NewNewsService creates a new news service
func NewNewsService(repo NewsRepository, storage ImageStorage, logger *zap.Logger) *newsService {
	return &newsService{
		repo:    repo,
		storage: storage,
		logger:  logger,
		now:     time.Now,
	}
}

// List retrieves news items, at most 100 unless a smaller limit is requested
func (s *newsService) List(ctx context.Context, filter models.NewsFilter) ([]models.News, error) {
	if filter.Limit <= 0 || filter.Limit > defaultNewsLimit {
		filter.Limit = defaultNewsLimit
	}
	return s.repo.List(ctx, filter)
}

// Get retrieves a news item by ID
func (s *newsService) Get(ctx context.Context, newsID int) (*models.News, error) {
	return s.repo.GetByID(ctx, newsID)
}

// Create validates and stores a news item with an optional image
func (s *newsService) Create(ctx context.Context, req *models.CreateNewsRequest, image *models.ImageFile) (*models.News, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Content = strings.TrimSpace(req.Content)
	req.Excerpt = strings.TrimSpace(req.Excerpt)
	req.Author = strings.TrimSpace(req.Author)
	req.Category = strings.TrimSpace(req.Category)
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if req.Category == "" {
		req.Category = models.DefaultNewsCategory
	}

	if image != nil {
		url, err := s.storage.Save(ctx, image.Filename, image.Content)
		if err != nil {
			return nil, err
		}
		req.Image = url
	}

	news := &models.News{
		Title:       req.Title,
		Content:     req.Content,
		Excerpt:     req.Excerpt,
		Image:       req.Image,
		Author:      req.Author,
		Category:    req.Category,
		Featured:    req.Featured,
		Published:   req.Published,
		PublishDate: s.now().UTC(),
	}
	if err := s.repo.Create(ctx, news); err != nil {
		s.discardImage(ctx, req.Image)
		return nil, err
	}

	s.logger.Info("news created", zap.Int("newsId", news.ID))
	return s.repo.GetByID(ctx, news.ID)
}

// Update applies a partial update, a new image replaces the old one
func (s *newsService) Update(ctx context.Context, newsID int, req *models.UpdateNewsRequest, image *models.ImageFile) (*models.News, error) {
	for _, v := range []*string{req.Title, req.Content, req.Excerpt, req.Author, req.Category} {
		if v != nil {
			*v = strings.TrimSpace(*v)
		}
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	current, err := s.repo.GetByID(ctx, newsID)
	if err != nil {
		return nil, err
	}

	if image != nil {
		url, err := s.storage.Save(ctx, image.Filename, image.Content)
		if err != nil {
			return nil, err
		}
		req.Image = &url
	}

	if req.Title == nil && req.Content == nil && req.Excerpt == nil && req.Author == nil &&
		req.Category == nil && req.Featured == nil && req.Published == nil && req.Image == nil {
		return current, nil
	}

	if err := s.repo.Update(ctx, newsID, req); err != nil {
		if image != nil {
			s.discardImage(ctx, *req.Image)
		}
		return nil, err
	}
	if image != nil {
		s.discardImage(ctx, current.Image)
	}

	return s.repo.GetByID(ctx, newsID)
}

// Delete removes a news item together with its comments, likes and image
func (s *newsService) Delete(ctx context.Context, newsID int) error {
	current, err := s.repo.GetByID(ctx, newsID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, newsID); err != nil {
		return err
	}
	s.discardImage(ctx, current.Image)

	s.logger.Info("news deleted", zap.Int("newsId", newsID))
	return nil
}

func (s *newsService) discardImage(ctx context.Context, url string) {
	if url == "" {
		return
	}
	if err := s.storage.Delete(ctx, url); err != nil {
		s.logger.Warn("failed to delete image", zap.String("image", url), zap.Error(err))
	}
}
