package services

import (
	"context"
	"errors"

	"github.com/anonto42/odinbook/backend/internal/apperr"
	"github.com/anonto42/odinbook/backend/internal/models"
	"github.com/anonto42/odinbook/backend/internal/repositories"
)

// FollowService manages the directed follow graph.
type FollowService struct {
	follows    repositories.FollowRepository
	users      repositories.UserRepository
	autoAccept bool
}

// NewFollowService creates a FollowService. With autoAccept, new edges are
// created ACCEPTED instead of PENDING.
func NewFollowService(follows repositories.FollowRepository, users repositories.UserRepository, autoAccept bool) *FollowService {
	return &FollowService{follows: follows, users: users, autoAccept: autoAccept}
}

// Propose creates the follower→followee edge, or returns the existing one
// with created=false.
func (s *FollowService) Propose(ctx context.Context, followerID, followeeID uint) (*models.Follow, bool, error) {
	if followerID == followeeID {
		return nil, false, apperr.InvalidTarget("Cannot follow yourself")
	}

	if err := s.ensureUser(ctx, followeeID); err != nil {
		return nil, false, err
	}

	existing, err := s.follows.GetFollow(ctx, followerID, followeeID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, false, err
	}

	status := models.FollowPending
	if s.autoAccept {
		status = models.FollowAccepted
	}
	follow := &models.Follow{FollowerID: followerID, FolloweeID: followeeID, Status: status}

	if err := s.follows.CreateFollow(ctx, follow); err != nil {
		if !errors.Is(err, repositories.ErrDuplicate) {
			return nil, false, err
		}
		// Lost a race with a concurrent Propose for the same pair.
		existing, err := s.follows.GetFollow(ctx, followerID, followeeID)
		if err != nil {
			return nil, false, err
		}
		return existing, false, nil
	}
	return follow, true, nil
}

// Accept approves followerID's pending request to follow followeeID.
func (s *FollowService) Accept(ctx context.Context, followeeID, followerID uint) (*models.Follow, error) {
	changed, err := s.follows.AcceptFollow(ctx, followerID, followeeID)
	if err != nil {
		return nil, err
	}

	follow, err := s.follows.GetFollow(ctx, followerID, followeeID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperr.NotFound("Follow request not found")
		}
		return nil, err
	}
	if !changed {
		return nil, apperr.AlreadyAccepted("Follow request already accepted")
	}
	return follow, nil
}

// Remove deletes the edge whatever its status.
func (s *FollowService) Remove(ctx context.Context, followerID, followeeID uint) error {
	err := s.follows.DeleteFollow(ctx, followerID, followeeID)
	if errors.Is(err, repositories.ErrNotFound) {
		return apperr.NotFound("Follow not found")
	}
	return err
}

func (s *FollowService) AcceptedFollowees(ctx context.Context, userID uint) ([]uint, error) {
	return s.follows.GetAcceptedFolloweeIDs(ctx, userID)
}

// PendingRequests lists incoming requests awaiting userID's approval, newest
// first, with the requester's summary.
func (s *FollowService) PendingRequests(ctx context.Context, userID uint) ([]models.FollowRequest, error) {
	pending, err := s.follows.GetPendingFollowers(ctx, userID)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(pending))
	for _, f := range pending {
		ids = append(ids, f.FollowerID)
	}
	users, err := s.users.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]models.UserCompact, len(users))
	for i := range users {
		byID[users[i].ID] = users[i].ToCompact()
	}

	requests := make([]models.FollowRequest, 0, len(pending))
	for _, f := range pending {
		requests = append(requests, models.FollowRequest{Follow: f, Follower: byID[f.FollowerID]})
	}
	return requests, nil
}

// Followers lists users with an accepted edge into userID.
func (s *FollowService) Followers(ctx context.Context, userID uint) ([]models.UserCompact, error) {
	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}
	ids, err := s.follows.GetAcceptedFollowerIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.compactUsers(ctx, ids)
}

// Following lists users userID follows with an accepted edge.
func (s *FollowService) Following(ctx context.Context, userID uint) ([]models.UserCompact, error) {
	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}
	ids, err := s.follows.GetAcceptedFolloweeIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.compactUsers(ctx, ids)
}

// FollowStatuses maps each user userID has an outgoing edge to onto the
// edge's status.
func (s *FollowService) FollowStatuses(ctx context.Context, userID uint) (map[uint]models.FollowStatus, error) {
	follows, err := s.follows.GetFollowsByFollower(ctx, userID)
	if err != nil {
		return nil, err
	}
	statuses := make(map[uint]models.FollowStatus, len(follows))
	for _, f := range follows {
		statuses[f.FolloweeID] = f.Status
	}
	return statuses, nil
}

func (s *FollowService) compactUsers(ctx context.Context, ids []uint) ([]models.UserCompact, error) {
	users, err := s.users.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]models.UserCompact, 0, len(users))
	for i := range users {
		out = append(out, users[i].ToCompact())
	}
	return out, nil
}

func (s *FollowService) ensureUser(ctx context.Context, id uint) error {
	_, err := s.users.GetUserByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return apperr.NotFound("User not found")
	}
	return err
}
