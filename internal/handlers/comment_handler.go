package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/sportsmanagency/backend/internal/middlewares"
	"github.com/sportsmanagency/backend/internal/models"
	"go.uber.org/zap"
)

// CommentService is the interface that wraps methods for comment moderation business logic.
type CommentService interface {
	// Method Submit stores a new comment for a news item in the pending state.
	//
	// "newsID" parameter identifies the commented news item.
	// "req" parameter contains author name, author email and content.
	// "origin" parameter carries the submitter's ip and user agent.
	//
	// If the request is invalid, or the news item does not exist, or some other error occurs, the error will be returned together with nil comment.
	Submit(ctx context.Context, newsID int, req *models.SubmitCommentRequest, origin models.Origin) (*models.Comment, error)
	// Method ListPublic returns the approved comments of a news item, newest first.
	//
	// If the news item does not exist, or some other error occurs, the error will be returned together with nil slice.
	ListPublic(ctx context.Context, newsID int) ([]models.Comment, error)
	// Method ListAll returns comments in any moderation state matching the filter, newest first.
	ListAll(ctx context.Context, filter models.CommentFilter) ([]models.Comment, error)
	// Method SetApproval moves a comment to the approved or pending state.
	//
	// If the comment does not exist, or some other error occurs, the error will be returned together with nil comment.
	SetApproval(ctx context.Context, commentID int, approved bool) (*models.Comment, error)
	// Method Delete removes a comment in any state.
	//
	// If the comment does not exist, or some other error occurs, the error will be returned.
	Delete(ctx context.Context, commentID int) error
}

// CommentHandler handles comment-related HTTP requests
type CommentHandler struct {
	BaseHandler
	commentService CommentService
}

// NewCommentHandler creates a new comment handler
func NewCommentHandler(commentService CommentService, logger *zap.Logger) *CommentHandler {
	return &CommentHandler{
		BaseHandler:    BaseHandler{Logger: logger},
		commentService: commentService,
	}
}

// RegisterPublicRoutes registers the anonymous comment routes
func (h *CommentHandler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/comments/news/{newsId}", h.ListPublic)
	r.Post("/comments/news/{newsId}", h.Submit)
}

// RegisterAdminRoutes registers the moderation routes
// Note: the router must already carry the auth and admin role middleware
func (h *CommentHandler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/comments", h.ListAll)
	r.Put("/comments/{id}/approve", h.SetApproval)
	r.Delete("/comments/{id}", h.Delete)
}

// ListPublic handles GET /comments/news/{newsId}
// @Summary List approved comments
// @Description Get the approved comments of a news item, newest first
// @Tags comments
// @Produce json
// @Param newsId path int true "News ID"
// @Success 200 {array} models.Comment
// @Failure 400 {object} ErrorResponse "Invalid news ID"
// @Failure 404 {object} ErrorResponse "News not found"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /comments/news/{newsId} [get]
func (h *CommentHandler) ListPublic(w http.ResponseWriter, r *http.Request) {
	newsID, ok := h.pathID(w, r, "newsId")
	if !ok {
		return
	}

	comments, err := h.commentService.ListPublic(r.Context(), newsID)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, comments)
}

// Submit handles POST /comments/news/{newsId}
// @Summary Submit a comment
// @Description Submit a comment for a news item. The comment stays hidden until a moderator approves it.
// @Tags comments
// @Accept json
// @Produce json
// @Param newsId path int true "News ID"
// @Param request body models.SubmitCommentRequest true "Comment"
// @Success 201 {object} models.Comment
// @Failure 400 {object} ErrorResponse "Invalid request body or validation failed"
// @Failure 404 {object} ErrorResponse "News not found"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /comments/news/{newsId} [post]
func (h *CommentHandler) Submit(w http.ResponseWriter, r *http.Request) {
	newsID, ok := h.pathID(w, r, "newsId")
	if !ok {
		return
	}

	var req models.SubmitCommentRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	comment, err := h.commentService.Submit(r.Context(), newsID, &req, requestOrigin(r))
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusCreated, comment)
}

// ListAll handles GET /comments
// @Summary List comments for moderation
// @Description Get comments in any moderation state, newest first
// @Tags comments
// @Produce json
// @Security BearerAuth
// @Param newsId query int false "Filter by news ID"
// @Param approved query bool false "Filter by approval state"
// @Param limit query int false "Maximum number of comments"
// @Success 200 {array} models.Comment
// @Failure 400 {object} ErrorResponse "Invalid query parameter"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /comments [get]
func (h *CommentHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	var filter models.CommentFilter

	newsID, err := queryInt(r, "newsId")
	if err != nil || newsID < 0 {
		h.RespondError(w, http.StatusBadRequest, "invalid_query", "invalid newsId")
		return
	}
	if newsID > 0 {
		filter.NewsID = &newsID
	}

	filter.Approved, err = queryBool(r, "approved")
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid_query", "invalid approved")
		return
	}

	filter.Limit, err = queryInt(r, "limit")
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid_query", "invalid limit")
		return
	}

	comments, err := h.commentService.ListAll(r.Context(), filter)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, comments)
}

// SetApproval handles PUT /comments/{id}/approve
// @Summary Approve or reject a comment
// @Description Set the approval state of a comment. Rejecting moves it back to pending.
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Comment ID"
// @Param request body models.SetApprovalRequest true "Approval state"
// @Success 200 {object} models.Comment
// @Failure 400 {object} ErrorResponse "Invalid request body"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Comment not found"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /comments/{id}/approve [put]
func (h *CommentHandler) SetApproval(w http.ResponseWriter, r *http.Request) {
	commentID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	var req models.SetApprovalRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	if req.Approved == nil {
		var verr models.ValidationError
		verr.Add("approved", "is required")
		h.RespondServiceError(w, r, verr.OrNil())
		return
	}

	comment, err := h.commentService.SetApproval(r.Context(), commentID, *req.Approved)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, comment)
}

// Delete handles DELETE /comments/{id}
// @Summary Delete a comment
// @Tags comments
// @Security BearerAuth
// @Param id path int true "Comment ID"
// @Success 204 "No Content"
// @Failure 400 {object} ErrorResponse "Invalid comment ID"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Comment not found"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /comments/{id} [delete]
func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	commentID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.commentService.Delete(r.Context(), commentID); err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// requestOrigin returns the resolved client ip and user agent of r
func requestOrigin(r *http.Request) models.Origin {
	return models.Origin{
		IP:        middlewares.GetClientIP(r.Context()),
		UserAgent: clampUserAgent(r.UserAgent()),
	}
}

// clampUserAgent keeps at most models.MaxUserAgentLength valid characters
func clampUserAgent(ua string) string {
	ua = strings.ToValidUTF8(ua, "")
	n := 0
	for i := range ua {
		if n == models.MaxUserAgentLength {
			return ua[:i]
		}
		n++
	}
	return ua
}
