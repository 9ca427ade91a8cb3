package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"cinematch/internal/model"
)

func TestRegister_Success(t *testing.T) {
	userRepo := &mockUserRepository{}
	svc := NewUserService(userRepo, &mockFollowRepository{}, &mockEngagementRepository{}, &mockCommentRepository{}, &mockMovieRepository{})

	user, err := svc.Register(context.Background(), &model.RegisterRequest{
		Email:    "ana@example.com",
		Username: "ana",
		Name:     "Ana",
		Password: "segredo123",
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	if user.ID == uuid.Nil {
		t.Error("expected a generated user ID")
	}
	if user.Username != "ana" {
		t.Errorf("username = %q, want ana", user.Username)
	}
	if user.PasswordHashed == "segredo123" {
		t.Error("password was stored in plaintext")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHashed), []byte("segredo123")); err != nil {
		t.Errorf("stored hash does not verify the password: %v", err)
	}
	if len(userRepo.createCalls) != 1 {
		t.Errorf("Create called %d times, want 1", len(userRepo.createCalls))
	}
}

func TestRegister_Conflicts(t *testing.T) {
	tests := []struct {
		name    string
		repo    *mockUserRepository
		wantErr error
	}{
		{
			name: "email taken",
			repo: &mockUserRepository{
				existsByEmailFn: func(ctx context.Context, email string) (bool, error) { return true, nil },
			},
			wantErr: model.ErrEmailExists,
		},
		{
			name: "username taken",
			repo: &mockUserRepository{
				existsByUsernameFn: func(ctx context.Context, username string) (bool, error) { return true, nil },
			},
			wantErr: model.ErrUsernameExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewUserService(tt.repo, &mockFollowRepository{}, &mockEngagementRepository{}, &mockCommentRepository{}, &mockMovieRepository{})

			_, err := svc.Register(context.Background(), &model.RegisterRequest{
				Email:    "ana@example.com",
				Username: "ana",
				Password: "segredo123",
			})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Register error = %v, want %v", err, tt.wantErr)
			}
			if len(tt.repo.createCalls) != 0 {
				t.Error("Create must not be called on a conflict")
			}
		})
	}
}

func TestRegister_MissingFields(t *testing.T) {
	svc := NewUserService(&mockUserRepository{}, &mockFollowRepository{}, &mockEngagementRepository{}, &mockCommentRepository{}, &mockMovieRepository{})

	reqs := []*model.RegisterRequest{
		{Username: "ana", Password: "x"},
		{Email: "ana@example.com", Password: "x"},
		{Email: "ana@example.com", Username: "ana"},
		{Email: "  ", Username: "ana", Password: "x"},
	}
	for _, req := range reqs {
		if _, err := svc.Register(context.Background(), req); err == nil {
			t.Errorf("Register(%+v) expected an error", req)
		}
	}
}

func TestLogin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("segredo123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	stored := &model.User{ID: uuid.New(), Email: "ana@example.com", Username: "ana", PasswordHashed: string(hash)}

	userRepo := &mockUserRepository{
		getByEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			if email == stored.Email {
				return stored, nil
			}
			return nil, model.ErrUserNotFound
		},
	}
	svc := NewUserService(userRepo, &mockFollowRepository{}, &mockEngagementRepository{}, &mockCommentRepository{}, &mockMovieRepository{})

	t.Run("valid credentials", func(t *testing.T) {
		user, err := svc.Login(context.Background(), &model.LoginRequest{Email: "ana@example.com", Password: "segredo123"})
		if err != nil {
			t.Fatalf("Login returned error: %v", err)
		}
		if user.ID != stored.ID {
			t.Errorf("user ID = %v, want %v", user.ID, stored.ID)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		if _, err := svc.Login(context.Background(), &model.LoginRequest{Email: "ana@example.com", Password: "errada"}); !errors.Is(err, model.ErrInvalidCredentials) {
			t.Errorf("Login error = %v, want ErrInvalidCredentials", err)
		}
	})

	t.Run("unknown email hides existence", func(t *testing.T) {
		if _, err := svc.Login(context.Background(), &model.LoginRequest{Email: "ghost@example.com", Password: "segredo123"}); !errors.Is(err, model.ErrInvalidCredentials) {
			t.Errorf("Login error = %v, want ErrInvalidCredentials", err)
		}
	})
}

func TestMovies_InvalidFilter(t *testing.T) {
	userRepo := &mockUserRepository{
		getByUsernameFn: func(ctx context.Context, username string) (*model.User, error) {
			t.Fatal("GetByUsername must not be called for an invalid filter")
			return nil, nil
		},
	}
	svc := NewUserService(userRepo, &mockFollowRepository{}, &mockEngagementRepository{}, &mockCommentRepository{}, &mockMovieRepository{})

	if _, err := svc.Movies(context.Background(), "ana", "vistos", 1, 12); !errors.Is(err, model.ErrInvalidFilter) {
		t.Errorf("Movies error = %v, want ErrInvalidFilter", err)
	}
}

func TestMovies_ClampsPagination(t *testing.T) {
	user := &model.User{ID: uuid.New(), Username: "ana"}
	var gotPage, gotPageSize int

	userRepo := &mockUserRepository{
		getByUsernameFn: func(ctx context.Context, username string) (*model.User, error) { return user, nil },
	}
	movieRepo := &mockMovieRepository{
		listByUserEngagementFn: func(ctx context.Context, userID uuid.UUID, filter string, page, pageSize int) ([]model.Movie, int, error) {
			gotPage, gotPageSize = page, pageSize
			return nil, 0, nil
		},
	}
	svc := NewUserService(userRepo, &mockFollowRepository{}, &mockEngagementRepository{}, &mockCommentRepository{}, movieRepo)

	resp, err := svc.Movies(context.Background(), "ana", model.FilterFavorites, -3, 5000)
	if err != nil {
		t.Fatalf("Movies returned error: %v", err)
	}
	if gotPage != 1 {
		t.Errorf("page = %d, want 1", gotPage)
	}
	if gotPageSize != model.DefaultMoviePageSize {
		t.Errorf("pageSize = %d, want %d", gotPageSize, model.DefaultMoviePageSize)
	}
	if resp.Page != 1 || resp.PageSize != model.DefaultMoviePageSize {
		t.Errorf("response pagination = (%d, %d), want (1, %d)", resp.Page, resp.PageSize, model.DefaultMoviePageSize)
	}
}

func TestStats(t *testing.T) {
	user := &model.User{ID: uuid.New(), Username: "ana"}

	userRepo := &mockUserRepository{
		getByUsernameFn: func(ctx context.Context, username string) (*model.User, error) {
			if username != "ana" {
				return nil, model.ErrUserNotFound
			}
			return user, nil
		},
	}
	engagementRepo := &mockEngagementRepository{
		countWatchedAndLikedFn: func(ctx context.Context, userID uuid.UUID) (int, int, error) { return 42, 7, nil },
	}
	commentRepo := &mockCommentRepository{
		countByUserFn: func(ctx context.Context, userID uuid.UUID) (int, error) { return 12, nil },
	}
	followRepo := &mockFollowRepository{
		countFollowersFn: func(ctx context.Context, userID uuid.UUID) (int, error) { return 3, nil },
		countFollowingFn: func(ctx context.Context, userID uuid.UUID) (int, error) { return 9, nil },
	}
	svc := NewUserService(userRepo, followRepo, engagementRepo, commentRepo, &mockMovieRepository{})

	stats, err := svc.Stats(context.Background(), "ana")
	if err != nil {
		t.Fatalf("Stats returned error: %v", err)
	}

	want := model.UserStats{Assistidos: 42, Likes: 7, Criticas: 12, Seguidores: 3, Seguindo: 9}
	if *stats != want {
		t.Errorf("Stats = %+v, want %+v", *stats, want)
	}

	if _, err := svc.Stats(context.Background(), "ghost"); !errors.Is(err, model.ErrUserNotFound) {
		t.Errorf("Stats(ghost) error = %v, want ErrUserNotFound", err)
	}
}

func TestSetImage_UnknownType(t *testing.T) {
	svc := NewUserService(&mockUserRepository{}, &mockFollowRepository{}, &mockEngagementRepository{}, &mockCommentRepository{}, &mockMovieRepository{})

	if _, err := svc.SetImage(context.Background(), uuid.New(), "poster", "https://x/y.jpg", "y.jpg"); err == nil {
		t.Error("expected an error for an unknown image type")
	}
}
