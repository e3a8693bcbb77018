package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/anonto42/odinbook/backend/internal/apperr"
	"github.com/anonto42/odinbook/backend/internal/blobstore"
	"github.com/anonto42/odinbook/backend/internal/models"
	"github.com/anonto42/odinbook/backend/internal/repositories"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MaxAvatarBytes caps avatar uploads.
const MaxAvatarBytes = 5 << 20

var avatarExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// FollowStatusSource reports the viewer's outgoing follow edges.
type FollowStatusSource interface {
	FollowStatuses(ctx context.Context, userID uint) (map[uint]models.FollowStatus, error)
}

// UserService covers the user directory and profile edits.
type UserService struct {
	users    repositories.UserRepository
	statuses FollowStatusSource
	blobs    blobstore.Store
	logger   *zap.Logger
}

func NewUserService(users repositories.UserRepository, statuses FollowStatusSource, blobs blobstore.Store, logger *zap.Logger) *UserService {
	return &UserService{users: users, statuses: statuses, blobs: blobs, logger: logger}
}

// Directory lists every user except viewerID ordered by handle, each with
// the viewer's follow status towards them (nil when there is no edge).
func (s *UserService) Directory(ctx context.Context, viewerID uint, query string) ([]models.DirectoryEntry, error) {
	users, err := s.users.ListUsersExcept(ctx, viewerID, query)
	if err != nil {
		return nil, err
	}
	statuses, err := s.statuses.FollowStatuses(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	entries := make([]models.DirectoryEntry, 0, len(users))
	for i := range users {
		entry := models.DirectoryEntry{UserCompact: users[i].ToCompact(), Bio: users[i].Bio}
		if status, ok := statuses[users[i].ID]; ok {
			entry.FollowStatus = &status
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// UpdateProfile applies the non-nil fields of req.
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, req models.UpdateProfileRequest) (*models.UserPublic, error) {
	return s.update(ctx, userID, func(u *models.User) {
		if req.Name != nil {
			u.Name = strings.TrimSpace(*req.Name)
		}
		if req.Bio != nil {
			u.Bio = strings.TrimSpace(*req.Bio)
		}
	})
}

// SetAvatarURL points the user's avatar at an externally hosted image.
func (s *UserService) SetAvatarURL(ctx context.Context, userID uint, url string) (*models.UserPublic, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, apperr.InvalidInput("avatarUrl is required")
	}
	return s.update(ctx, userID, func(u *models.User) { u.AvatarURL = url })
}

// UploadAvatar stores an image in the blob store under
// avatars/<user>/<uuid><ext> and makes it the user's avatar. The content type
// is sniffed from the bytes, not taken from the client.
func (s *UserService) UploadAvatar(ctx context.Context, userID uint, r io.Reader) (*models.UserPublic, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxAvatarBytes+1))
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInvalidInput, err, "Could not read upload")
	}
	if len(data) == 0 {
		return nil, apperr.InvalidInput("file is required")
	}
	if len(data) > MaxAvatarBytes {
		return nil, apperr.InvalidInput("Avatar must be at most 5 MiB")
	}

	contentType := http.DetectContentType(data)
	ext, ok := avatarExtensions[contentType]
	if !ok {
		return nil, apperr.InvalidInput("Avatar must be a PNG, JPEG, GIF or WebP image")
	}

	key := fmt.Sprintf("avatars/%d/%s%s", userID, uuid.NewString(), ext)
	url, err := s.blobs.Put(ctx, key, contentType, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("store avatar: %w", err)
	}
	s.logger.Info("avatar stored", zap.Uint("user_id", userID), zap.String("key", key), zap.Int("bytes", len(data)))

	return s.update(ctx, userID, func(u *models.User) { u.AvatarURL = url })
}

func (s *UserService) update(ctx context.Context, userID uint, apply func(*models.User)) (*models.UserPublic, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, err
	}

	apply(user)
	if err := s.users.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	public := user.Public()
	return &public, nil
}
