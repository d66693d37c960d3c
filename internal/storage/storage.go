package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sportsmanagency/backend/internal/models"
	"go.uber.org/zap"
)

// MaxImageSize is the largest accepted upload
const MaxImageSize = 5 * 1024 * 1024 // 5MB

// Upload errors
var (
	ErrUnsupportedImageType = models.NewError(models.KindValidation, "unsupported_image_type", "only jpeg, jpg, png, gif and webp images are allowed")
	ErrImageTooLarge        = models.NewError(models.KindValidation, "image_too_large", "image must not exceed 5MB")
)

var allowedExtensions = map[string]bool{
	".jpeg": true,
	".jpg":  true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// localStorage stores uploaded images on the local filesystem
type localStorage struct {
	basePath  string
	urlPrefix string
	maxSize   int64
	logger    *zap.Logger
}

// NewLocalStorage creates a new localStorage instance rooted at basePath.
// Stored files are addressed as urlPrefix + "/" + file name.
func NewLocalStorage(basePath, urlPrefix string, logger *zap.Logger) (*localStorage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create uploads directory: %w", err)
	}
	return &localStorage{
		basePath:  basePath,
		urlPrefix: "/" + strings.Trim(urlPrefix, "/"),
		maxSize:   MaxImageSize,
		logger:    logger,
	}, nil
}

// Save writes an image under a fresh name and returns its public path.
// The extension of filename decides whether the image is accepted.
func (s *localStorage) Save(ctx context.Context, filename string, content io.Reader) (string, error) {
	extension := strings.ToLower(filepath.Ext(filename))
	if !allowedExtensions[extension] {
		return "", ErrUnsupportedImageType
	}

	name := uuid.NewString() + extension
	fullPath := filepath.Join(s.basePath, name)

	file, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}

	// Read one byte past the limit to detect oversized uploads
	written, err := io.Copy(file, io.LimitReader(content, s.maxSize+1))
	closeErr := file.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		s.remove(fullPath)
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if written > s.maxSize {
		s.remove(fullPath)
		return "", ErrImageTooLarge
	}

	return path.Join(s.urlPrefix, name), nil
}

// Delete removes an image previously returned by Save.
// Paths outside the uploads prefix and missing files are ignored.
func (s *localStorage) Delete(ctx context.Context, url string) error {
	name, ok := strings.CutPrefix(url, s.urlPrefix+"/")
	if !ok || name == "" || strings.ContainsAny(name, `/\`) || name == ".." {
		return nil
	}

	err := os.Remove(filepath.Join(s.basePath, name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// Dir returns the directory files are stored in
func (s *localStorage) Dir() string {
	return s.basePath
}

// URLPrefix returns the path prefix stored files are served under
func (s *localStorage) URLPrefix() string {
	return s.urlPrefix
}

func (s *localStorage) remove(fullPath string) {
	if err := os.Remove(fullPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Warn("failed to remove partial upload", zap.String("path", fullPath), zap.Error(err))
	}
}
