package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"cinematch/internal/model"
	"cinematch/internal/repository"
)

// UserService handles business logic for accounts and profiles.
type UserService struct {
	repo           repository.UserRepository
	followRepo     repository.FollowRepository
	engagementRepo repository.EngagementRepository
	commentRepo    repository.CommentRepository
	movieRepo      repository.MovieRepository
}

func NewUserService(
	repo repository.UserRepository,
	followRepo repository.FollowRepository,
	engagementRepo repository.EngagementRepository,
	commentRepo repository.CommentRepository,
	movieRepo repository.MovieRepository,
) *UserService {
	return &UserService{
		repo:           repo,
		followRepo:     followRepo,
		engagementRepo: engagementRepo,
		commentRepo:    commentRepo,
		movieRepo:      movieRepo,
	}
}

// Register creates a new account. Email and username must both be unused.
func (s *UserService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	if strings.TrimSpace(req.Email) == "" {
		return nil, fmt.Errorf("email is required")
	}
	if strings.TrimSpace(req.Username) == "" {
		return nil, fmt.Errorf("username is required")
	}
	if strings.TrimSpace(req.Password) == "" {
		return nil, fmt.Errorf("password is required")
	}

	exists, err := s.repo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, model.ErrEmailExists
	}

	exists, err = s.repo.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if exists {
		return nil, model.ErrUsernameExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:             uuid.New(),
		Email:          req.Email,
		Username:       req.Username,
		Name:           req.Name,
		PasswordHashed: string(hashedPassword),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Login authenticates by email and password.
func (s *UserService) Login(ctx context.Context, req *model.LoginRequest) (*model.User, error) {
	user, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		// Don't reveal whether the email exists or not
		return nil, model.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHashed), []byte(req.Password)); err != nil {
		return nil, model.ErrInvalidCredentials
	}

	return user, nil
}

// GetByID retrieves a user by ID.
func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return s.repo.GetByID(ctx, id)
}

// GetByUsername retrieves a user by the public handle.
func (s *UserService) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return s.repo.GetByUsername(ctx, username)
}

// SetImage swaps the avatar or banner reference, returning the previous
// object key so the caller can delete the replaced object after the swap.
func (s *UserService) SetImage(ctx context.Context, userID uuid.UUID, imageType, url, key string) (*string, error) {
	if imageType != model.ImageTypeAvatar && imageType != model.ImageTypeBanner {
		return nil, fmt.Errorf("unknown image type %q", imageType)
	}
	return s.repo.UpdateImage(ctx, userID, imageType, url, key)
}

// Movies lists a user's movies filtered by one of the engagement flags
// (assistidos, favoritos, assistir_depois).
func (s *UserService) Movies(ctx context.Context, username, filter string, page, pageSize int) (*model.MovieListResponse, error) {
	switch filter {
	case model.FilterWatched, model.FilterFavorites, model.FilterWatchLater:
	default:
		return nil, model.ErrInvalidFilter
	}

	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	if pageSize <= 0 || pageSize > model.MaxMoviePageSize {
		pageSize = model.DefaultMoviePageSize
	}
	if page <= 0 {
		page = 1
	}

	movies, total, err := s.movieRepo.ListByUserEngagement(ctx, user.ID, filter, page, pageSize)
	if err != nil {
		return nil, err
	}

	return &model.MovieListResponse{
		Count:    total,
		Page:     page,
		PageSize: pageSize,
		Results:  movies,
	}, nil
}

// Stats aggregates a user's engagement footprint: watched and liked movie
// counts, comments written, followers and following.
func (s *UserService) Stats(ctx context.Context, username string) (*model.UserStats, error) {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	watched, liked, err := s.engagementRepo.CountWatchedAndLiked(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count engagement: %w", err)
	}

	comments, err := s.commentRepo.CountByUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count comments: %w", err)
	}

	followers, err := s.followRepo.CountFollowers(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count followers: %w", err)
	}

	following, err := s.followRepo.CountFollowing(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count following: %w", err)
	}

	return &model.UserStats{
		Assistidos: watched,
		Likes:      liked,
		Criticas:   comments,
		Seguidores: followers,
		Seguindo:   following,
	}, nil
}

// Comments lists a user's comments, newest first.
func (s *UserService) Comments(ctx context.Context, username string, page int) (*model.CommentListResponse, error) {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	if page <= 0 {
		page = 1
	}

	comments, total, err := s.commentRepo.ListByUser(ctx, user.ID, page, model.ForumPageSize)
	if err != nil {
		return nil, err
	}

	return &model.CommentListResponse{
		Count:    total,
		Page:     page,
		PageSize: model.ForumPageSize,
		Results:  comments,
	}, nil
}
