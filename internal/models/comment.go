package models

import "time"

// Comment is a public submission on a news item awaiting or past moderation
type Comment struct {
	ID          int       `json:"id"`
	NewsID      int       `json:"newsId"`
	AuthorName  string    `json:"authorName"`
	AuthorEmail string    `json:"authorEmail"`
	Content     string    `json:"content"`
	Approved    bool      `json:"approved"`
	UserIP      string    `json:"-"`
	UserAgent   string    `json:"-"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// SubmitCommentRequest is the public comment payload.
// There is no approval field, anything else in the body is ignored.
type SubmitCommentRequest struct {
	AuthorName  string `json:"authorName" validate:"required,max=100"`
	AuthorEmail string `json:"authorEmail" validate:"required,email"`
	Content     string `json:"content" validate:"required,max=2000"`
}

// SetApprovalRequest toggles a comment's visibility
type SetApprovalRequest struct {
	Approved *bool `json:"approved"`
}

// CommentFilter narrows an admin comment listing, nil fields are not applied
type CommentFilter struct {
	NewsID   *int
	Approved *bool
	Limit    int
}

// MaxUserAgentLength matches the user_agent column width
const MaxUserAgentLength = 500

// Origin identifies an anonymous caller for anti-abuse bookkeeping
type Origin struct {
	IP        string
	UserAgent string
}
