package models

import "time"

// Comment represents a comment on a post
type Comment struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	PostID    uint      `json:"postId" gorm:"not null;index"`
	AuthorID  uint      `json:"authorId" gorm:"not null;index"`
	Body      string    `json:"body" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"createdAt"`
}

// CommentView is a comment with its author's summary.
type CommentView struct {
	Comment
	Author UserCompact `json:"author"`
}

// CreateCommentRequest defines the request body for creating a new comment
type CreateCommentRequest struct {
	PostID uint   `json:"postId" validate:"required"`
	Body   string `json:"body" validate:"required,min=1,max=500"`
}
