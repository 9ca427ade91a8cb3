package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"cinematch/internal/model"
)

type commentRepository struct {
	db *sqlx.DB
}

func NewCommentRepository(db *sqlx.DB) CommentRepository {
	return &commentRepository{db: db}
}

// commentRow scans a comment joined with its author and like count.
type commentRow struct {
	ID         int64     `db:"id"`
	MovieID    uuid.UUID `db:"movie_id"`
	UserID     uuid.UUID `db:"user_id"`
	Text       string    `db:"texto"`
	ParentID   *int64    `db:"parent_id"`
	Reported   bool      `db:"reported"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
	LikesCount int       `db:"likes_count"`
	MovieTitle string    `db:"movie_title"`

	AuthorID       uuid.UUID `db:"author_id"`
	AuthorUsername string    `db:"author_username"`
	AuthorName     string    `db:"author_name"`
	AuthorAvatar   *string   `db:"author_avatar"`
}

func (row commentRow) toComment() model.Comment {
	return model.Comment{
		ID:         row.ID,
		MovieID:    row.MovieID,
		UserID:     row.UserID,
		Text:       row.Text,
		ParentID:   row.ParentID,
		Reported:   row.Reported,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
		LikesCount: row.LikesCount,
		MovieTitle: row.MovieTitle,
		Author: &model.UserSummary{
			ID:        row.AuthorID,
			Username:  row.AuthorUsername,
			Name:      row.AuthorName,
			AvatarURL: row.AuthorAvatar,
		},
	}
}

const commentSelect = `
	SELECT c.id, c.movie_id, c.user_id, c.texto, c.parent_id, c.reported,
	       c.created_at, c.updated_at,
	       m.titulo AS movie_title,
	       u.id AS author_id, u.username AS author_username,
	       u.name AS author_name, u.avatar_url AS author_avatar,
	       (SELECT COUNT(*) FROM comment_likes cl WHERE cl.comment_id = c.id) AS likes_count
	FROM forum_comments c
	JOIN users u ON u.id = c.user_id
	JOIN movies m ON m.id = c.movie_id
`

func (r *commentRepository) Create(ctx context.Context, movieID uuid.UUID, userID uuid.UUID, text string, parentID *int64) (*model.Comment, error) {
	var id int64
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO forum_comments (movie_id, user_id, texto, parent_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, movieID, userID, text, parentID).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("insert comment: %w", err)
	}
	return r.GetByID(ctx, id)
}

func (r *commentRepository) GetByID(ctx context.Context, commentID int64) (*model.Comment, error) {
	var row commentRow
	err := r.db.GetContext(ctx, &row, commentSelect+` WHERE c.id = $1`, commentID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrCommentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get comment: %w", err)
	}
	comment := row.toComment()
	return &comment, nil
}

// ListForMovie returns one ordered page of a movie's comments. With parentID
// nil only top-level comments are returned; callers inline replies via
// RepliesFor. Sorting follows the forum filter: recentes (default), antigos
// and bem_avaliados (like count desc, created_at desc tiebreak).
func (r *commentRepository) ListForMovie(ctx context.Context, movieID uuid.UUID, parentID *int64, sort string, page, pageSize int) ([]model.Comment, int, error) {
	where := ` WHERE c.movie_id = $1 AND c.parent_id IS NULL`
	args := []interface{}{movieID}
	if parentID != nil {
		where = ` WHERE c.movie_id = $1 AND c.parent_id = $2`
		args = append(args, *parentID)
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM forum_comments c` + where
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count comments: %w", err)
	}

	var orderBy string
	switch sort {
	case model.SortOldest:
		orderBy = ` ORDER BY c.created_at ASC`
	case model.SortTop:
		orderBy = ` ORDER BY likes_count DESC, c.created_at DESC`
	default:
		orderBy = ` ORDER BY c.created_at DESC`
	}

	limitArgs := append(args, pageSize, (page-1)*pageSize)
	query := commentSelect + where + orderBy +
		fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)

	var rows []commentRow
	if err := r.db.SelectContext(ctx, &rows, query, limitArgs...); err != nil {
		return nil, 0, fmt.Errorf("list comments: %w", err)
	}

	comments := make([]model.Comment, len(rows))
	for i, row := range rows {
		comments[i] = row.toComment()
	}
	return comments, total, nil
}

// RepliesFor loads the direct replies of each parent in one query, ordered
// oldest first regardless of the parent listing's sort.
func (r *commentRepository) RepliesFor(ctx context.Context, parentIDs []int64) (map[int64][]model.Comment, error) {
	result := make(map[int64][]model.Comment)
	if len(parentIDs) == 0 {
		return result, nil
	}

	query := commentSelect + ` WHERE c.parent_id = ANY($1) ORDER BY c.created_at ASC`
	var rows []commentRow
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(parentIDs)); err != nil {
		return nil, fmt.Errorf("list replies: %w", err)
	}

	for _, row := range rows {
		comment := row.toComment()
		result[*row.ParentID] = append(result[*row.ParentID], comment)
	}
	return result, nil
}

func (r *commentRepository) ListByUser(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]model.Comment, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM forum_comments WHERE user_id = $1`, userID)
	if err != nil {
		return nil, 0, fmt.Errorf("count user comments: %w", err)
	}

	query := commentSelect + ` WHERE c.user_id = $1 ORDER BY c.created_at DESC LIMIT $2 OFFSET $3`
	var rows []commentRow
	if err := r.db.SelectContext(ctx, &rows, query, userID, pageSize, (page-1)*pageSize); err != nil {
		return nil, 0, fmt.Errorf("list user comments: %w", err)
	}

	comments := make([]model.Comment, len(rows))
	for i, row := range rows {
		comments[i] = row.toComment()
	}
	return comments, total, nil
}

func (r *commentRepository) AllForMovie(ctx context.Context, movieID uuid.UUID) ([]model.Comment, error) {
	query := commentSelect + ` WHERE c.movie_id = $1 ORDER BY c.created_at ASC`
	var rows []commentRow
	if err := r.db.SelectContext(ctx, &rows, query, movieID); err != nil {
		return nil, fmt.Errorf("list all comments: %w", err)
	}

	comments := make([]model.Comment, len(rows))
	for i, row := range rows {
		comments[i] = row.toComment()
	}
	return comments, nil
}

func (r *commentRepository) LikedByUser(ctx context.Context, userID uuid.UUID, commentIDs []int64) (map[int64]bool, error) {
	liked := make(map[int64]bool)
	if len(commentIDs) == 0 {
		return liked, nil
	}

	var ids []int64
	err := r.db.SelectContext(ctx, &ids,
		`SELECT comment_id FROM comment_likes WHERE user_id = $1 AND comment_id = ANY($2)`,
		userID, pq.Array(commentIDs))
	if err != nil {
		return nil, fmt.Errorf("list liked comments: %w", err)
	}

	for _, id := range ids {
		liked[id] = true
	}
	return liked, nil
}

func (r *commentRepository) HasLiked(ctx context.Context, tx *sqlx.Tx, commentID int64, userID uuid.UUID) (bool, error) {
	var exists bool
	err := tx.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM comment_likes WHERE comment_id = $1 AND user_id = $2)`,
		commentID, userID)
	if err != nil {
		return false, fmt.Errorf("check comment like: %w", err)
	}
	return exists, nil
}

func (r *commentRepository) AddLike(ctx context.Context, tx *sqlx.Tx, commentID int64, userID uuid.UUID) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO comment_likes (comment_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (comment_id, user_id) DO NOTHING
	`, commentID, userID)
	if err != nil {
		return fmt.Errorf("add comment like: %w", err)
	}
	return nil
}

func (r *commentRepository) RemoveLike(ctx context.Context, tx *sqlx.Tx, commentID int64, userID uuid.UUID) error {
	_, err := tx.ExecContext(ctx,
		`DELETE FROM comment_likes WHERE comment_id = $1 AND user_id = $2`,
		commentID, userID)
	if err != nil {
		return fmt.Errorf("remove comment like: %w", err)
	}
	return nil
}

func (r *commentRepository) CountLikes(ctx context.Context, tx *sqlx.Tx, commentID int64) (int, error) {
	var count int
	err := tx.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM comment_likes WHERE comment_id = $1`, commentID)
	if err != nil {
		return 0, fmt.Errorf("count comment likes: %w", err)
	}
	return count, nil
}

func (r *commentRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM forum_comments WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("count comments by user: %w", err)
	}
	return count, nil
}
