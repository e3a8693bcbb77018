package models

import "time"

// Like exists or it doesn't; counts are always derived from these rows.
type Like struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"userId" gorm:"not null;uniqueIndex:idx_user_post_like"`
	PostID    uint      `json:"postId" gorm:"not null;index;uniqueIndex:idx_user_post_like"`
	CreatedAt time.Time `json:"createdAt"`
}

type ToggleLikeResult struct {
	Liked     bool  `json:"liked"`
	LikeCount int64 `json:"likeCount"`
}
