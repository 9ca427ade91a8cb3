package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"cinematch/internal/model"
)

type communityRepository struct {
	db *sqlx.DB
}

func NewCommunityRepository(db *sqlx.DB) CommunityRepository {
	return &communityRepository{db: db}
}

func (r *communityRepository) Create(ctx context.Context, tx *sqlx.Tx, community *model.Community) error {
	query := `
		INSERT INTO communities (name, description, owner_id, is_public)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	err := tx.QueryRowxContext(ctx, query,
		community.Name, community.Description, community.OwnerID, community.IsPublic,
	).Scan(&community.ID, &community.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert community: %w", err)
	}
	return nil
}

func (r *communityRepository) GetByID(ctx context.Context, id int64) (*model.Community, error) {
	var community model.Community
	err := r.db.GetContext(ctx, &community, `
		SELECT id, name, description, owner_id, icon_url, icon_key, is_public, created_at
		FROM communities WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrCommunityNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get community: %w", err)
	}
	return &community, nil
}

func (r *communityRepository) List(ctx context.Context) ([]model.Community, error) {
	var communities []model.Community
	err := r.db.SelectContext(ctx, &communities, `
		SELECT id, name, description, owner_id, icon_url, icon_key, is_public, created_at
		FROM communities ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list communities: %w", err)
	}
	return communities, nil
}

func (r *communityRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM communities WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete community: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrCommunityNotFound
	}
	return nil
}

func (r *communityRepository) AddMember(ctx context.Context, tx *sqlx.Tx, communityID int64, userID uuid.UUID) (bool, error) {
	result, err := tx.ExecContext(ctx, `
		INSERT INTO community_members (community_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (community_id, user_id) DO NOTHING
	`, communityID, userID)
	if err != nil {
		return false, fmt.Errorf("add member: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return rows > 0, nil
}

func (r *communityRepository) IsMember(ctx context.Context, communityID int64, userID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM community_members WHERE community_id = $1 AND user_id = $2)`,
		communityID, userID)
	if err != nil {
		return false, fmt.Errorf("check membership: %w", err)
	}
	return exists, nil
}

func (r *communityRepository) Members(ctx context.Context, communityID int64) ([]model.UserSummary, error) {
	var members []model.UserSummary
	err := r.db.SelectContext(ctx, &members, `
		SELECT u.id, u.username, u.name, u.avatar_url
		FROM community_members cm
		JOIN users u ON u.id = cm.user_id
		WHERE cm.community_id = $1
		ORDER BY cm.joined_at ASC
	`, communityID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	return members, nil
}

func (r *communityRepository) UpdateIcon(ctx context.Context, id int64, url, key string) (*string, error) {
	var oldKey *string
	err := r.db.QueryRowxContext(ctx, `
		UPDATE communities SET icon_url = $1, icon_key = $2
		WHERE id = $3
		RETURNING (SELECT icon_key FROM communities WHERE id = $3)
	`, url, key, id).Scan(&oldKey)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrCommunityNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update community icon: %w", err)
	}
	return oldKey, nil
}
