package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"cinematch/internal/config"
	"cinematch/internal/model"
)

type mockRefreshTokenRepository struct {
	byHash      map[string]*model.RefreshToken
	revokedAll  []uuid.UUID
	revokedIDs  []string
	createCalls int
}

func newMockRefreshTokenRepository() *mockRefreshTokenRepository {
	return &mockRefreshTokenRepository{byHash: make(map[string]*model.RefreshToken)}
}

func (m *mockRefreshTokenRepository) Create(ctx context.Context, token *model.RefreshToken) error {
	m.createCalls++
	token.ID = uuid.New().String()
	token.CreatedAt = time.Now()
	m.byHash[token.TokenHash] = token
	return nil
}

func (m *mockRefreshTokenRepository) FindByTokenHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error) {
	token, ok := m.byHash[tokenHash]
	if !ok {
		return nil, model.ErrRefreshTokenNotFound
	}
	return token, nil
}

func (m *mockRefreshTokenRepository) Revoke(ctx context.Context, id string, replacedBy *string) error {
	m.revokedIDs = append(m.revokedIDs, id)
	for _, token := range m.byHash {
		if token.ID == id {
			now := time.Now()
			token.RevokedAt = &now
			token.ReplacedBy = replacedBy
			return nil
		}
	}
	return model.ErrRefreshTokenNotFound
}

func (m *mockRefreshTokenRepository) RevokeAllForUser(ctx context.Context, userID uuid.UUID) error {
	m.revokedAll = append(m.revokedAll, userID)
	now := time.Now()
	for _, token := range m.byHash {
		if token.UserID == userID && token.RevokedAt == nil {
			token.RevokedAt = &now
		}
	}
	return nil
}

func (m *mockRefreshTokenRepository) DeleteExpired(ctx context.Context, olderThan time.Duration) (int64, error) {
	return 0, nil
}

func authConfig() *config.Config {
	return &config.Config{
		JWTSecret:          "test-secret",
		AccessTokenMaxAge:  900,
		RefreshTokenMaxAge: 86400,
	}
}

func TestGenerateTokenPair(t *testing.T) {
	repo := newMockRefreshTokenRepository()
	svc := NewAuthService(repo, authConfig())
	userID := uuid.New()

	pair, err := svc.GenerateTokenPair(context.Background(), userID)
	if err != nil {
		t.Fatalf("GenerateTokenPair returned error: %v", err)
	}

	if pair.ExpiresIn != 900 {
		t.Errorf("ExpiresIn = %d, want 900", pair.ExpiresIn)
	}
	if repo.createCalls != 1 {
		t.Errorf("Create called %d times, want 1", repo.createCalls)
	}

	// The raw refresh token must never hit the store.
	if _, ok := repo.byHash[pair.RefreshToken]; ok {
		t.Error("refresh token stored unhashed")
	}

	parsed, err := jwt.Parse(pair.AccessToken, func(token *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	if err != nil {
		t.Fatalf("access token does not parse: %v", err)
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		t.Fatal("access token claims are not valid")
	}
	if claims["user_id"] != userID.String() {
		t.Errorf("user_id claim = %v, want %s", claims["user_id"], userID)
	}
	if _, ok := claims["exp"]; !ok {
		t.Error("access token carries no expiry")
	}
}

func TestRefreshTokens_Rotation(t *testing.T) {
	repo := newMockRefreshTokenRepository()
	svc := NewAuthService(repo, authConfig())
	userID := uuid.New()

	pair, err := svc.GenerateTokenPair(context.Background(), userID)
	if err != nil {
		t.Fatalf("GenerateTokenPair returned error: %v", err)
	}

	newPair, gotUser, err := svc.RefreshTokens(context.Background(), pair.RefreshToken)
	if err != nil {
		t.Fatalf("RefreshTokens returned error: %v", err)
	}
	if gotUser != userID {
		t.Errorf("user = %v, want %v", gotUser, userID)
	}
	if newPair.RefreshToken == pair.RefreshToken {
		t.Error("refresh token was not rotated")
	}
	if len(repo.revokedIDs) != 1 {
		t.Errorf("revoked %d tokens, want the rotated one only", len(repo.revokedIDs))
	}

	// The old token is now revoked; presenting it again is reuse.
	_, _, err = svc.RefreshTokens(context.Background(), pair.RefreshToken)
	if !errors.Is(err, model.ErrRefreshTokenReused) {
		t.Fatalf("reuse error = %v, want ErrRefreshTokenReused", err)
	}
	if len(repo.revokedAll) != 1 || repo.revokedAll[0] != userID {
		t.Error("reuse must revoke the whole token family")
	}

	// Family revocation killed the rotated token too.
	if _, _, err := svc.RefreshTokens(context.Background(), newPair.RefreshToken); !errors.Is(err, model.ErrRefreshTokenReused) {
		t.Errorf("post-revocation refresh error = %v, want ErrRefreshTokenReused", err)
	}
}

func TestRefreshTokens_UnknownAndExpired(t *testing.T) {
	repo := newMockRefreshTokenRepository()
	cfg := authConfig()
	svc := NewAuthService(repo, cfg)

	if _, _, err := svc.RefreshTokens(context.Background(), "nunca emitido"); !errors.Is(err, model.ErrRefreshTokenNotFound) {
		t.Errorf("unknown token error = %v, want ErrRefreshTokenNotFound", err)
	}

	cfg.RefreshTokenMaxAge = -60
	pair, err := svc.GenerateTokenPair(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("GenerateTokenPair returned error: %v", err)
	}
	if _, _, err := svc.RefreshTokens(context.Background(), pair.RefreshToken); !errors.Is(err, model.ErrRefreshTokenExpired) {
		t.Errorf("expired token error = %v, want ErrRefreshTokenExpired", err)
	}
}

func TestRevokeRefreshToken(t *testing.T) {
	repo := newMockRefreshTokenRepository()
	svc := NewAuthService(repo, authConfig())

	pair, err := svc.GenerateTokenPair(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("GenerateTokenPair returned error: %v", err)
	}

	if err := svc.RevokeRefreshToken(context.Background(), pair.RefreshToken); err != nil {
		t.Fatalf("RevokeRefreshToken returned error: %v", err)
	}
	if _, _, err := svc.RefreshTokens(context.Background(), pair.RefreshToken); !errors.Is(err, model.ErrRefreshTokenReused) {
		t.Errorf("refresh after logout error = %v, want ErrRefreshTokenReused", err)
	}
}
