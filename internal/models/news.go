package models

import (
	"io"
	"time"
)

// DefaultNewsCategory is applied when a news item is created without a category
const DefaultNewsCategory = "General"

// News is the parent content item for comments and likes
type News struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	Excerpt     string    `json:"excerpt"`
	Image       string    `json:"image"`
	Author      string    `json:"author"`
	Category    string    `json:"category"`
	Featured    bool      `json:"featured"`
	Published   bool      `json:"published"`
	PublishDate time.Time `json:"publishDate"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// NewsFilter narrows a news listing
type NewsFilter struct {
	Published *bool
	Featured  *bool
	Limit     int
}

// CreateNewsRequest represents a news creation request
type CreateNewsRequest struct {
	Title     string `json:"title" validate:"required"`
	Content   string `json:"content" validate:"required"`
	Excerpt   string `json:"excerpt" validate:"required,max=200"`
	Author    string `json:"author" validate:"required"`
	Category  string `json:"category"`
	Featured  bool   `json:"featured"`
	Published bool   `json:"published"`
	Image     string `json:"-"`
}

// UpdateNewsRequest represents a partial news update
type UpdateNewsRequest struct {
	Title     *string `json:"title" validate:"omitempty,min=1"`
	Content   *string `json:"content" validate:"omitempty,min=1"`
	Excerpt   *string `json:"excerpt" validate:"omitempty,min=1,max=200"`
	Author    *string `json:"author" validate:"omitempty,min=1"`
	Category  *string `json:"category"`
	Featured  *bool   `json:"featured"`
	Published *bool   `json:"published"`
	Image     *string `json:"-"`
}

// ImageFile is an uploaded image attached to a news write
type ImageFile struct {
	Filename string
	Content  io.Reader
}
