package service

import (
	"context"

	"github.com/google/uuid"

	"cinematch/internal/model"
	"cinematch/internal/repository"
)

type FollowService struct {
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
}

func NewFollowService(followRepo repository.FollowRepository, userRepo repository.UserRepository) *FollowService {
	return &FollowService{
		followRepo: followRepo,
		userRepo:   userRepo,
	}
}

// Follow creates the follower -> followee edge. Following yourself and
// re-following are both rejected.
func (s *FollowService) Follow(ctx context.Context, followerID uuid.UUID, followeeUsername string) error {
	followee, err := s.userRepo.GetByUsername(ctx, followeeUsername)
	if err != nil {
		return err
	}

	if followerID == followee.ID {
		return model.ErrCannotFollowSelf
	}

	inserted, err := s.followRepo.Create(ctx, followerID, followee.ID)
	if err != nil {
		return err
	}
	if !inserted {
		return model.ErrAlreadyFollowing
	}
	return nil
}

// Unfollow removes the edge; model.ErrNotFollowing when it did not exist.
func (s *FollowService) Unfollow(ctx context.Context, followerID uuid.UUID, followeeUsername string) error {
	followee, err := s.userRepo.GetByUsername(ctx, followeeUsername)
	if err != nil {
		return err
	}

	if followerID == followee.ID {
		return model.ErrCannotFollowSelf
	}

	return s.followRepo.Delete(ctx, followerID, followee.ID)
}

// Followers lists the users following username.
func (s *FollowService) Followers(ctx context.Context, username string) (*model.FollowListResponse, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	users, err := s.followRepo.GetFollowers(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &model.FollowListResponse{Users: users, Count: len(users)}, nil
}

// Following lists the users username follows.
func (s *FollowService) Following(ctx context.Context, username string) (*model.FollowListResponse, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	users, err := s.followRepo.GetFollowing(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &model.FollowListResponse{Users: users, Count: len(users)}, nil
}
