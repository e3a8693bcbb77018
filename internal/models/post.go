package models

import "time"

// Post is immutable once created; only its owner may delete it.
type Post struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	AuthorID  uint      `json:"authorId" gorm:"not null;index:idx_posts_author_created,priority:1"`
	Body      string    `json:"body" gorm:"type:text;not null"`
	ImageURL  string    `json:"imageUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt" gorm:"not null;index;index:idx_posts_author_created,priority:2"`
}

// PostView is a post annotated for a particular viewer. LikedByMe is nil for
// anonymous viewers.
type PostView struct {
	ID            uint        `json:"id"`
	AuthorID      uint        `json:"authorId"`
	Body          string      `json:"body"`
	ImageURL      string      `json:"imageUrl,omitempty"`
	CreatedAt     time.Time   `json:"createdAt"`
	Author        UserCompact `json:"author"`
	LikesCount    int64       `json:"likesCount"`
	CommentsCount int64       `json:"commentsCount"`
	LikedByMe     *bool       `json:"likedByMe,omitempty"`
}

type CreatePostRequest struct {
	Body     string `json:"body" validate:"required,min=1,max=280"`
	ImageURL string `json:"imageUrl,omitempty" validate:"omitempty,url"`
}
