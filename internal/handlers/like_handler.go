package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sportsmanagency/backend/internal/middlewares"
	"github.com/sportsmanagency/backend/internal/models"
	"go.uber.org/zap"
)

// LikeService is the interface that wraps methods for like business logic.
type LikeService interface {
	// Method Toggle flips the like of the caller's origin for a news item.
	//
	// "newsID" parameter identifies the liked news item.
	// "origin" parameter carries the ip the like is recorded for.
	//
	// If the news item does not exist, or some other error occurs, the error will be returned together with nil status.
	Toggle(ctx context.Context, newsID int, origin models.Origin) (*models.LikeStatus, error)
	// Method Status reports whether the ip has liked the news item together with the total count.
	Status(ctx context.Context, newsID int, ip string) (*models.LikeStatus, error)
	// Method Count returns the number of likes of a news item.
	Count(ctx context.Context, newsID int) (int, error)
}

// LikeCountResponse is the body returned by GET /likes/{newsId}/count
type LikeCountResponse struct {
	Count int `json:"count"`
}

// LikeHandler handles like-related HTTP requests
type LikeHandler struct {
	BaseHandler
	likeService LikeService
}

// NewLikeHandler creates a new like handler
func NewLikeHandler(likeService LikeService, logger *zap.Logger) *LikeHandler {
	return &LikeHandler{
		BaseHandler: BaseHandler{Logger: logger},
		likeService: likeService,
	}
}

// RegisterRoutes registers all like handler routes
func (h *LikeHandler) RegisterRoutes(r chi.Router) {
	r.Post("/likes/{newsId}", h.Toggle)
	r.Get("/likes/{newsId}/status", h.Status)
	r.Get("/likes/{newsId}/count", h.Count)
}

// Toggle handles POST /likes/{newsId}
// @Summary Toggle like
// @Description Like the news item for the caller's ip, or remove the like if it already exists
// @Tags likes
// @Produce json
// @Param newsId path int true "News ID"
// @Success 200 {object} models.LikeStatus
// @Failure 400 {object} ErrorResponse "Invalid news ID"
// @Failure 404 {object} ErrorResponse "News not found"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /likes/{newsId} [post]
func (h *LikeHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	newsID, ok := h.pathID(w, r, "newsId")
	if !ok {
		return
	}

	status, err := h.likeService.Toggle(r.Context(), newsID, requestOrigin(r))
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, status)
}

// Status handles GET /likes/{newsId}/status
// @Summary Like status
// @Description Report whether the caller's ip has liked the news item, with the total count
// @Tags likes
// @Produce json
// @Param newsId path int true "News ID"
// @Success 200 {object} models.LikeStatus
// @Failure 400 {object} ErrorResponse "Invalid news ID"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /likes/{newsId}/status [get]
func (h *LikeHandler) Status(w http.ResponseWriter, r *http.Request) {
	newsID, ok := h.pathID(w, r, "newsId")
	if !ok {
		return
	}

	status, err := h.likeService.Status(r.Context(), newsID, middlewares.GetClientIP(r.Context()))
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, status)
}

// Count handles GET /likes/{newsId}/count
// @Summary Like count
// @Tags likes
// @Produce json
// @Param newsId path int true "News ID"
// @Success 200 {object} LikeCountResponse
// @Failure 400 {object} ErrorResponse "Invalid news ID"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /likes/{newsId}/count [get]
func (h *LikeHandler) Count(w http.ResponseWriter, r *http.Request) {
	newsID, ok := h.pathID(w, r, "newsId")
	if !ok {
		return
	}

	count, err := h.likeService.Count(r.Context(), newsID)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, LikeCountResponse{Count: count})
}
