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

type engagementRepository struct {
	db *sqlx.DB
}

func NewEngagementRepository(db *sqlx.DB) EngagementRepository {
	return &engagementRepository{db: db}
}

const actionColumns = `id, user_id, movie_id, like_vote, favoritado, assistir_mais_tarde, assistido, avaliacao`

// GetOrCreate fetches the single action row for (user, movie). The table
// has a unique (user_id, movie_id) constraint, so the insert-then-select
// dance can never produce a second row for the pair.
func (r *engagementRepository) GetOrCreate(ctx context.Context, tx *sqlx.Tx, userID, movieID uuid.UUID) (*model.EngagementAction, error) {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO engagement_actions (user_id, movie_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, movie_id) DO NOTHING
	`, userID, movieID)
	if err != nil {
		return nil, fmt.Errorf("insert engagement action: %w", err)
	}

	var action model.EngagementAction
	err = tx.GetContext(ctx, &action, `
		SELECT `+actionColumns+`
		FROM engagement_actions
		WHERE user_id = $1 AND movie_id = $2
	`, userID, movieID)
	if err != nil {
		return nil, fmt.Errorf("get engagement action: %w", err)
	}
	return &action, nil
}

func (r *engagementRepository) Update(ctx context.Context, tx *sqlx.Tx, action *model.EngagementAction) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE engagement_actions
		SET like_vote = $1, favoritado = $2, assistir_mais_tarde = $3, assistido = $4, avaliacao = $5
		WHERE id = $6
	`, action.Like, action.Favorite, action.WatchLater, action.Watched, action.Rating, action.ID)
	if err != nil {
		return fmt.Errorf("update engagement action: %w", err)
	}
	return nil
}

func (r *engagementRepository) RatingsForMovie(ctx context.Context, tx *sqlx.Tx, movieID uuid.UUID) ([]float64, error) {
	var ratings []float64
	err := tx.SelectContext(ctx, &ratings, `
		SELECT avaliacao FROM engagement_actions
		WHERE movie_id = $1 AND avaliacao IS NOT NULL
	`, movieID)
	if err != nil {
		return nil, fmt.Errorf("select ratings: %w", err)
	}
	return ratings, nil
}

func (r *engagementRepository) GetRating(ctx context.Context, tx *sqlx.Tx, userID, movieID uuid.UUID) (*float64, error) {
	var rating *float64
	err := tx.GetContext(ctx, &rating, `
		SELECT avaliacao FROM engagement_actions
		WHERE user_id = $1 AND movie_id = $2
	`, userID, movieID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get rating: %w", err)
	}
	return rating, nil
}

func (r *engagementRepository) UpsertRating(ctx context.Context, tx *sqlx.Tx, userID, movieID uuid.UUID, rating float64) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO engagement_actions (user_id, movie_id, avaliacao)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, movie_id) DO UPDATE SET avaliacao = EXCLUDED.avaliacao
	`, userID, movieID, rating)
	if err != nil {
		return fmt.Errorf("upsert rating: %w", err)
	}
	return nil
}

func (r *engagementRepository) CountWatchedAndLiked(ctx context.Context, userID uuid.UUID) (int, int, error) {
	var row struct {
		Watched int `db:"watched"`
		Liked   int `db:"liked"`
	}
	err := r.db.GetContext(ctx, &row, `
		SELECT
			COUNT(*) FILTER (WHERE assistido)     AS watched,
			COUNT(*) FILTER (WHERE like_vote = 1) AS liked
		FROM engagement_actions
		WHERE user_id = $1
	`, userID)
	if err != nil {
		return 0, 0, fmt.Errorf("count engagement stats: %w", err)
	}
	return row.Watched, row.Liked, nil
}
