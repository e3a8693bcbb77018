package models

import "time"

type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Email        string    `json:"email" gorm:"size:255;not null;uniqueIndex"`
	Handle       string    `json:"handle" gorm:"size:50;not null;uniqueIndex"`
	PasswordHash string    `json:"-" gorm:"not null"` // bcrypt hash, never serialized
	Name         string    `json:"name,omitempty" gorm:"size:100"`
	Bio          string    `json:"bio,omitempty" gorm:"size:500"`
	AvatarURL    string    `json:"avatarUrl,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UserPublic is the projection of a user that is safe to return to clients.
type UserPublic struct {
	ID        uint   `json:"id"`
	Email     string `json:"email"`
	Handle    string `json:"handle"`
	Name      string `json:"name,omitempty"`
	Bio       string `json:"bio,omitempty"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// UserCompact is the author summary embedded in posts and comments.
type UserCompact struct {
	ID        uint   `json:"id"`
	Handle    string `json:"handle"`
	Name      string `json:"name,omitempty"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

func (u *User) Public() UserPublic {
	return UserPublic{
		ID:        u.ID,
		Email:     u.Email,
		Handle:    u.Handle,
		Name:      u.Name,
		Bio:       u.Bio,
		AvatarURL: u.AvatarURL,
	}
}

func (u *User) ToCompact() UserCompact {
	return UserCompact{
		ID:        u.ID,
		Handle:    u.Handle,
		Name:      u.Name,
		AvatarURL: u.AvatarURL,
	}
}

// DirectoryEntry is a user as seen from the viewer's side of the follow graph.
type DirectoryEntry struct {
	UserCompact
	Bio          string        `json:"bio,omitempty"`
	FollowStatus *FollowStatus `json:"followStatus"`
}

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Handle   string `json:"handle" validate:"required,min=3,max=30"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Name     string `json:"name,omitempty" validate:"omitempty,max=100"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type UpdateProfileRequest struct {
	Name *string `json:"name,omitempty" validate:"omitempty,max=100"`
	Bio  *string `json:"bio,omitempty" validate:"omitempty,max=500"`
}

type SetAvatarRequest struct {
	AvatarURL string `json:"avatarUrl" validate:"required,url"`
}
