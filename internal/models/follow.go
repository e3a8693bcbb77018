package models

import "time"

type FollowStatus string

const (
	FollowPending  FollowStatus = "PENDING"
	FollowAccepted FollowStatus = "ACCEPTED"
)

// Follow is a directed edge: FollowerID follows FolloweeID. At most one edge
// exists per ordered pair.
type Follow struct {
	ID         uint         `json:"id" gorm:"primaryKey"`
	FollowerID uint         `json:"followerId" gorm:"not null;index;uniqueIndex:idx_follower_followee"`
	FolloweeID uint         `json:"followeeId" gorm:"not null;index;uniqueIndex:idx_follower_followee"`
	Status     FollowStatus `json:"status" gorm:"type:varchar(16);not null;index"`
	CreatedAt  time.Time    `json:"createdAt"`
	UpdatedAt  time.Time    `json:"updatedAt"`
}

// FollowRequest is an incoming pending edge with the requester's summary.
type FollowRequest struct {
	Follow
	Follower UserCompact `json:"follower"`
}
