package handlers

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/sportsmanagency/backend/internal/models"
	"go.uber.org/zap"
)

// multipartMemory is the part of a multipart body kept in memory, the rest spills to temp files
const multipartMemory = 10 << 20

// NewsService is the interface that wraps methods for news business logic.
type NewsService interface {
	// Method List returns news items matching the filter, newest publish date first.
	List(ctx context.Context, filter models.NewsFilter) ([]models.News, error)
	// Method Get returns a news item by id.
	//
	// If the news item does not exist, or some other error occurs, the error will be returned together with nil news.
	Get(ctx context.Context, newsID int) (*models.News, error)
	// Method Create validates and stores a news item.
	//
	// "image" parameter is an optional uploaded image.
	//
	// If the request is invalid, or the image is rejected, or some other error occurs, the error will be returned together with nil news.
	Create(ctx context.Context, req *models.CreateNewsRequest, image *models.ImageFile) (*models.News, error)
	// Method Update applies the provided fields to a news item. A new image replaces the old one.
	//
	// If the request is invalid, or the news item does not exist, or some other error occurs, the error will be returned together with nil news.
	Update(ctx context.Context, newsID int, req *models.UpdateNewsRequest, image *models.ImageFile) (*models.News, error)
	// Method Delete removes a news item with its comments, likes and image.
	Delete(ctx context.Context, newsID int) error
}

// NewsHandler handles news-related HTTP requests
type NewsHandler struct {
	BaseHandler
	newsService NewsService
}

// NewNewsHandler creates a new news handler
func NewNewsHandler(newsService NewsService, logger *zap.Logger) *NewsHandler {
	return &NewsHandler{
		BaseHandler: BaseHandler{Logger: logger},
		newsService: newsService,
	}
}

// RegisterPublicRoutes registers the anonymous read routes
func (h *NewsHandler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/news", h.List)
	r.Get("/news/{id}", h.Get)
}

// RegisterEditorRoutes registers the authoring routes
// Note: the router must already carry the auth and editor role middleware
func (h *NewsHandler) RegisterEditorRoutes(r chi.Router) {
	r.Post("/news", h.Create)
	r.Put("/news/{id}", h.Update)
}

// RegisterAdminRoutes registers routes reserved for administrators
// Note: the router must already carry the auth and admin role middleware
func (h *NewsHandler) RegisterAdminRoutes(r chi.Router) {
	r.Delete("/news/{id}", h.Delete)
}

// List handles GET /news
// @Summary List news
// @Description Get news items, newest publish date first
// @Tags news
// @Produce json
// @Param published query bool false "Filter by published state"
// @Param featured query bool false "Filter by featured state"
// @Param limit query int false "Maximum number of items (default 100)"
// @Success 200 {array} models.News
// @Failure 400 {object} ErrorResponse "Invalid query parameter"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /news [get]
func (h *NewsHandler) List(w http.ResponseWriter, r *http.Request) {
	var filter models.NewsFilter
	var err error

	if filter.Published, err = queryBool(r, "published"); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid_query", "invalid published")
		return
	}
	if filter.Featured, err = queryBool(r, "featured"); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid_query", "invalid featured")
		return
	}
	if filter.Limit, err = queryInt(r, "limit"); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid_query", "invalid limit")
		return
	}

	news, err := h.newsService.List(r.Context(), filter)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, news)
}

// Get handles GET /news/{id}
// @Summary Get news item
// @Tags news
// @Produce json
// @Param id path int true "News ID"
// @Success 200 {object} models.News
// @Failure 400 {object} ErrorResponse "Invalid news ID"
// @Failure 404 {object} ErrorResponse "News not found"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /news/{id} [get]
func (h *NewsHandler) Get(w http.ResponseWriter, r *http.Request) {
	newsID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	news, err := h.newsService.Get(r.Context(), newsID)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, news)
}

// Create handles POST /news
// @Summary Create news item
// @Description Create a news item from a JSON body, or from multipart form fields with an optional image
// @Tags news
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param title formData string true "Title"
// @Param content formData string true "Content"
// @Param excerpt formData string true "Excerpt (max 200 characters)"
// @Param author formData string true "Author"
// @Param category formData string false "Category (default General)"
// @Param featured formData bool false "Featured"
// @Param published formData bool false "Published"
// @Param image formData file false "Image (jpeg, png, gif, webp up to 5MB)"
// @Success 201 {object} models.News
// @Failure 400 {object} ErrorResponse "Invalid request body, validation failed or image rejected"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /news [post]
func (h *NewsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateNewsRequest
	var image *models.ImageFile

	if isMultipart(r) {
		form, ok := h.parseForm(w, r)
		if !ok {
			return
		}
		defer form.cleanup()

		req.Title = form.value("title")
		req.Content = form.value("content")
		req.Excerpt = form.value("excerpt")
		req.Author = form.value("author")
		req.Category = form.value("category")
		var err error
		if req.Featured, err = form.boolValue("featured"); err != nil {
			h.RespondError(w, http.StatusBadRequest, "invalid_body", "invalid featured")
			return
		}
		if req.Published, err = form.boolValue("published"); err != nil {
			h.RespondError(w, http.StatusBadRequest, "invalid_body", "invalid published")
			return
		}
		if image, ok = h.formImage(w, r); !ok {
			return
		}
		defer closeImage(image)
	} else if !h.decodeJSON(w, r, &req) {
		return
	}

	news, err := h.newsService.Create(r.Context(), &req, image)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusCreated, news)
}

// Update handles PUT /news/{id}
// @Summary Update news item
// @Description Update the provided fields of a news item. A new image replaces the old one.
// @Tags news
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param id path int true "News ID"
// @Param title formData string false "Title"
// @Param content formData string false "Content"
// @Param excerpt formData string false "Excerpt (max 200 characters)"
// @Param author formData string false "Author"
// @Param category formData string false "Category"
// @Param featured formData bool false "Featured"
// @Param published formData bool false "Published"
// @Param image formData file false "Image (jpeg, png, gif, webp up to 5MB)"
// @Success 200 {object} models.News
// @Failure 400 {object} ErrorResponse "Invalid request body, validation failed or image rejected"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "News not found"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /news/{id} [put]
func (h *NewsHandler) Update(w http.ResponseWriter, r *http.Request) {
	newsID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	var req models.UpdateNewsRequest
	var image *models.ImageFile

	if isMultipart(r) {
		form, ok := h.parseForm(w, r)
		if !ok {
			return
		}
		defer form.cleanup()

		req.Title = form.optional("title")
		req.Content = form.optional("content")
		req.Excerpt = form.optional("excerpt")
		req.Author = form.optional("author")
		req.Category = form.optional("category")
		var err error
		if req.Featured, err = form.optionalBool("featured"); err != nil {
			h.RespondError(w, http.StatusBadRequest, "invalid_body", "invalid featured")
			return
		}
		if req.Published, err = form.optionalBool("published"); err != nil {
			h.RespondError(w, http.StatusBadRequest, "invalid_body", "invalid published")
			return
		}
		if image, ok = h.formImage(w, r); !ok {
			return
		}
		defer closeImage(image)
	} else if !h.decodeJSON(w, r, &req) {
		return
	}

	news, err := h.newsService.Update(r.Context(), newsID, &req, image)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, news)
}

// Delete handles DELETE /news/{id}
// @Summary Delete news item
// @Description Delete a news item together with its comments, likes and image
// @Tags news
// @Security BearerAuth
// @Param id path int true "News ID"
// @Success 204 "No Content"
// @Failure 400 {object} ErrorResponse "Invalid news ID"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "News not found"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /news/{id} [delete]
func (h *NewsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	newsID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.newsService.Delete(r.Context(), newsID); err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

// newsForm wraps a parsed multipart form
type newsForm struct {
	form *multipart.Form
}

func (h *NewsHandler) parseForm(w http.ResponseWriter, r *http.Request) (*newsForm, bool) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.RespondError(w, http.StatusRequestEntityTooLarge, "body_too_large", "request body too large")
			return nil, false
		}
		h.RespondError(w, http.StatusBadRequest, "invalid_body", "failed to parse request")
		return nil, false
	}
	return &newsForm{form: r.MultipartForm}, true
}

func (f *newsForm) cleanup() {
	_ = f.form.RemoveAll()
}

func (f *newsForm) value(key string) string {
	if values := f.form.Value[key]; len(values) > 0 {
		return values[0]
	}
	return ""
}

func (f *newsForm) optional(key string) *string {
	values, ok := f.form.Value[key]
	if !ok || len(values) == 0 {
		return nil
	}
	v := values[0]
	return &v
}

func (f *newsForm) boolValue(key string) (bool, error) {
	v := f.value(key)
	if v == "" {
		return false, nil
	}
	return strconv.ParseBool(v)
}

func (f *newsForm) optionalBool(key string) (*bool, error) {
	v := f.optional(key)
	if v == nil || *v == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(*v)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// formImage returns the optional "image" file of a parsed multipart form
func (h *NewsHandler) formImage(w http.ResponseWriter, r *http.Request) (*models.ImageFile, bool) {
	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, true
	}
	if err != nil {
		h.Logger.Error("failed to get image file from form", zap.Error(err))
		h.RespondError(w, http.StatusBadRequest, "invalid_body", "failed to process image file")
		return nil, false
	}
	if header.Size == 0 {
		file.Close()
		return nil, true
	}
	return &models.ImageFile{Filename: header.Filename, Content: file}, true
}

func closeImage(image *models.ImageFile) {
	if image == nil {
		return
	}
	if c, ok := image.Content.(io.Closer); ok {
		c.Close()
	}
}
