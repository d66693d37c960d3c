package models

import "time"

// Like is an anonymous per-ip like on a news item, unique per (NewsID, UserIP)
type Like struct {
	ID        int       `json:"id"`
	NewsID    int       `json:"newsId"`
	UserIP    string    `json:"-"`
	UserAgent string    `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}

// LikeStatus is the outcome of a toggle or a status probe
type LikeStatus struct {
	Liked bool `json:"liked"`
	Count int  `json:"count"`
}
