package handlers

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/sportsmanagency/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockNewsService is a mock implementation of NewsService
type mockNewsService struct {
	news          *models.News
	list          []models.News
	err           error
	gotID         int
	gotFilter     models.NewsFilter
	gotCreate     *models.CreateNewsRequest
	gotUpdate     *models.UpdateNewsRequest
	gotImageName  string
	gotImageBytes []byte
}

func (m *mockNewsService) List(ctx context.Context, filter models.NewsFilter) ([]models.News, error) {
	m.gotFilter = filter
	return m.list, m.err
}

func (m *mockNewsService) Get(ctx context.Context, newsID int) (*models.News, error) {
	m.gotID = newsID
	return m.news, m.err
}

func (m *mockNewsService) Create(ctx context.Context, req *models.CreateNewsRequest, image *models.ImageFile) (*models.News, error) {
	m.gotCreate = req
	m.readImage(image)
	return m.news, m.err
}

func (m *mockNewsService) Update(ctx context.Context, newsID int, req *models.UpdateNewsRequest, image *models.ImageFile) (*models.News, error) {
	m.gotID, m.gotUpdate = newsID, req
	m.readImage(image)
	return m.news, m.err
}

func (m *mockNewsService) Delete(ctx context.Context, newsID int) error {
	m.gotID = newsID
	return m.err
}

func (m *mockNewsService) readImage(image *models.ImageFile) {
	if image == nil {
		return
	}
	m.gotImageName = image.Filename
	m.gotImageBytes, _ = io.ReadAll(image.Content)
}

func newNewsRouter(svc NewsService) chi.Router {
	h := NewNewsHandler(svc, zap.NewNop())
	return newTestRouter(func(r chi.Router) {
		h.RegisterPublicRoutes(r)
		h.RegisterEditorRoutes(r)
		h.RegisterAdminRoutes(r)
	})
}

// multipartRequest builds a multipart request with the given fields and an optional image
func multipartRequest(t *testing.T, method, target string, fields map[string]string, imageName string, image []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if imageName != "" {
		part, err := mw.CreateFormFile("image", imageName)
		require.NoError(t, err)
		_, err = part.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(method, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestNewsHandler_List(t *testing.T) {
	tests := []struct {
		name              string
		query             string
		expectedStatus    int
		expectedPublished *bool
		expectedFeatured  *bool
		expectedLimit     int
	}{
		{name: "defaults", expectedStatus: http.StatusOK},
		{name: "filters", query: "?published=true&featured=false&limit=5", expectedStatus: http.StatusOK, expectedPublished: boolPtr(true), expectedFeatured: boolPtr(false), expectedLimit: 5},
		{name: "invalid published", query: "?published=yes", expectedStatus: http.StatusBadRequest},
		{name: "invalid limit", query: "?limit=many", expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockNewsService{list: []models.News{}}
			router := newNewsRouter(svc)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/news"+tt.query, nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus != http.StatusOK {
				return
			}
			assert.Equal(t, tt.expectedPublished, svc.gotFilter.Published)
			assert.Equal(t, tt.expectedFeatured, svc.gotFilter.Featured)
			assert.Equal(t, tt.expectedLimit, svc.gotFilter.Limit)
		})
	}
}

func TestNewsHandler_Get(t *testing.T) {
	svc := &mockNewsService{err: models.ErrNewsNotFound}
	router := newNewsRouter(svc)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/news/12", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "news_not_found", decodeError(t, w).Code)
	assert.Equal(t, 12, svc.gotID)
}

func TestNewsHandler_CreateJSON(t *testing.T) {
	svc := &mockNewsService{news: &models.News{ID: 1, Title: "Signing"}}
	router := newNewsRouter(svc)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest(http.MethodPost, "/news",
		`{"title":"Signing","content":"Body","excerpt":"Short","author":"Desk","featured":true}`))

	require.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, svc.gotCreate)
	assert.Equal(t, "Signing", svc.gotCreate.Title)
	assert.True(t, svc.gotCreate.Featured)
	assert.False(t, svc.gotCreate.Published)
	assert.Empty(t, svc.gotImageName)
}

func TestNewsHandler_CreateMultipart(t *testing.T) {
	tests := []struct {
		name           string
		fields         map[string]string
		imageName      string
		image          []byte
		expectedStatus int
		expectedImage  string
	}{
		{
			name:           "with image",
			fields:         map[string]string{"title": "Signing", "content": "Body", "excerpt": "Short", "author": "Desk", "published": "true"},
			imageName:      "photo.png",
			image:          []byte("png-bytes"),
			expectedStatus: http.StatusCreated,
			expectedImage:  "photo.png",
		},
		{
			name:           "without image",
			fields:         map[string]string{"title": "Signing", "content": "Body", "excerpt": "Short", "author": "Desk"},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "invalid flag",
			fields:         map[string]string{"title": "Signing", "featured": "sometimes"},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockNewsService{news: &models.News{ID: 1}}
			router := newNewsRouter(svc)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, multipartRequest(t, http.MethodPost, "/news", tt.fields, tt.imageName, tt.image))

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus != http.StatusCreated {
				assert.Nil(t, svc.gotCreate)
				return
			}
			require.NotNil(t, svc.gotCreate)
			assert.Equal(t, "Signing", svc.gotCreate.Title)
			assert.Equal(t, tt.fields["published"] == "true", svc.gotCreate.Published)
			assert.Equal(t, tt.expectedImage, svc.gotImageName)
			assert.Equal(t, tt.image, svc.gotImageBytes)
		})
	}
}

func TestNewsHandler_UpdateMultipartPartial(t *testing.T) {
	svc := &mockNewsService{news: &models.News{ID: 4}}
	router := newNewsRouter(svc)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, multipartRequest(t, http.MethodPut, "/news/4",
		map[string]string{"title": "New title", "featured": "false"}, "cover.webp", []byte("webp")))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 4, svc.gotID)
	require.NotNil(t, svc.gotUpdate)
	require.NotNil(t, svc.gotUpdate.Title)
	assert.Equal(t, "New title", *svc.gotUpdate.Title)
	require.NotNil(t, svc.gotUpdate.Featured)
	assert.False(t, *svc.gotUpdate.Featured)
	assert.Nil(t, svc.gotUpdate.Content)
	assert.Nil(t, svc.gotUpdate.Published)
	assert.Equal(t, "cover.webp", svc.gotImageName)
}

func TestNewsHandler_UpdateImageRejected(t *testing.T) {
	svc := &mockNewsService{err: models.NewError(models.KindValidation, "unsupported_image_type", "unsupported image type")}
	router := newNewsRouter(svc)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, multipartRequest(t, http.MethodPut, "/news/4", nil, "script.exe", []byte("MZ")))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "unsupported_image_type", decodeError(t, w).Code)
}

func TestNewsHandler_Delete(t *testing.T) {
	svc := &mockNewsService{}
	router := newNewsRouter(svc)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/news/4", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, 4, svc.gotID)
}
