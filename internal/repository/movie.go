package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"cinematch/internal/model"
)

type movieRepository struct {
	db *sqlx.DB
}

func NewMovieRepository(db *sqlx.DB) MovieRepository {
	return &movieRepository{db: db}
}

const movieColumns = `
	id, tmdb_id, titulo, sinopse, data_lancamento, duracao, poster_url,
	backdrop_url, generos, diretores, atores_principais, nota_media,
	total_votos, status, idioma_original, orcamento, receita, tagline,
	site_oficial, video, adulto, created_at, updated_at
`

// prefixColumns qualifies each column in a comma-separated list with a table
// alias, for joined selects that scan into model.Movie.
func prefixColumns(alias, cols string) string {
	parts := strings.Split(cols, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}

// Upsert inserts or refreshes a catalog record by tmdb_id. nota_media and
// total_votos are seeded from the provider only on first insert; once local
// votes exist the engagement engine owns those columns.
func (r *movieRepository) Upsert(ctx context.Context, movie *model.Movie) (bool, error) {
	query := `
		INSERT INTO movies (
			id, tmdb_id, titulo, sinopse, data_lancamento, duracao, poster_url,
			backdrop_url, generos, diretores, atores_principais, nota_media,
			total_votos, status, idioma_original, orcamento, receita, tagline,
			site_oficial, video, adulto
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
			$16, $17, $18, $19, $20, $21
		)
		ON CONFLICT (tmdb_id) DO UPDATE SET
			titulo = EXCLUDED.titulo,
			sinopse = EXCLUDED.sinopse,
			data_lancamento = EXCLUDED.data_lancamento,
			duracao = EXCLUDED.duracao,
			poster_url = EXCLUDED.poster_url,
			backdrop_url = EXCLUDED.backdrop_url,
			generos = EXCLUDED.generos,
			diretores = EXCLUDED.diretores,
			atores_principais = EXCLUDED.atores_principais,
			status = EXCLUDED.status,
			idioma_original = EXCLUDED.idioma_original,
			orcamento = EXCLUDED.orcamento,
			receita = EXCLUDED.receita,
			tagline = EXCLUDED.tagline,
			site_oficial = EXCLUDED.site_oficial,
			video = EXCLUDED.video,
			adulto = EXCLUDED.adulto,
			updated_at = now()
		RETURNING id, (xmax = 0) AS inserted
	`
	if movie.ID == uuid.Nil {
		movie.ID = uuid.New()
	}

	var inserted bool
	err := r.db.QueryRowxContext(ctx, query,
		movie.ID, movie.TMDBID, movie.Title, movie.Synopsis, movie.ReleaseDate,
		movie.Runtime, movie.PosterURL, movie.BackdropURL, movie.Genres,
		movie.Directors, movie.MainCast, movie.AverageRating, movie.VoteCount,
		movie.Status, movie.OriginalLang, movie.Budget, movie.Revenue,
		movie.Tagline, movie.Homepage, movie.Video, movie.Adult,
	).Scan(&movie.ID, &inserted)
	if err != nil {
		return false, fmt.Errorf("upsert movie: %w", err)
	}
	return inserted, nil
}

func (r *movieRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Movie, error) {
	var movie model.Movie
	err := r.db.GetContext(ctx, &movie,
		`SELECT `+movieColumns+` FROM movies WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrMovieNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get movie: %w", err)
	}
	return &movie, nil
}

func (r *movieRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM movies WHERE id = $1)`, id)
	if err != nil {
		return false, fmt.Errorf("check movie existence: %w", err)
	}
	return exists, nil
}

func (r *movieRepository) List(ctx context.Context, page, pageSize int) ([]model.Movie, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM movies`); err != nil {
		return nil, 0, fmt.Errorf("count movies: %w", err)
	}

	query := `
		SELECT ` + movieColumns + `
		FROM movies
		ORDER BY data_lancamento DESC NULLS LAST, created_at DESC
		LIMIT $1 OFFSET $2
	`
	var movies []model.Movie
	err := r.db.SelectContext(ctx, &movies, query, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("list movies: %w", err)
	}
	return movies, total, nil
}

func (r *movieRepository) ListByUserEngagement(ctx context.Context, userID uuid.UUID, filter string, page, pageSize int) ([]model.Movie, int, error) {
	var flag string
	switch filter {
	case model.FilterWatched:
		flag = "a.assistido"
	case model.FilterFavorites:
		flag = "a.favoritado"
	case model.FilterWatchLater:
		flag = "a.assistir_mais_tarde"
	default:
		return nil, 0, fmt.Errorf("unknown engagement filter %q", filter)
	}

	var total int
	countQuery := `
		SELECT COUNT(*)
		FROM engagement_actions a
		WHERE a.user_id = $1 AND ` + flag
	if err := r.db.GetContext(ctx, &total, countQuery, userID); err != nil {
		return nil, 0, fmt.Errorf("count user movies: %w", err)
	}

	query := `
		SELECT ` + prefixColumns("m", movieColumns) + `
		FROM engagement_actions a
		JOIN movies m ON m.id = a.movie_id
		WHERE a.user_id = $1 AND ` + flag + `
		ORDER BY m.data_lancamento DESC NULLS LAST
		LIMIT $2 OFFSET $3
	`
	var movies []model.Movie
	err := r.db.SelectContext(ctx, &movies, query, userID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("list user movies: %w", err)
	}
	return movies, total, nil
}

func (r *movieRepository) GetAggregateForUpdate(ctx context.Context, tx *sqlx.Tx, movieID uuid.UUID) (float64, int, error) {
	var row struct {
		Avg   float64 `db:"nota_media"`
		Count int     `db:"total_votos"`
	}
	err := tx.GetContext(ctx, &row,
		`SELECT nota_media, total_votos FROM movies WHERE id = $1 FOR UPDATE`, movieID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, 0, model.ErrMovieNotFound
	}
	if err != nil {
		return 0, 0, fmt.Errorf("get movie aggregate: %w", err)
	}
	return row.Avg, row.Count, nil
}

func (r *movieRepository) UpdateAggregate(ctx context.Context, tx *sqlx.Tx, movieID uuid.UUID, avg float64, count int) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE movies SET nota_media = $1, total_votos = $2, updated_at = now() WHERE id = $3`,
		avg, count, movieID)
	if err != nil {
		return fmt.Errorf("update movie aggregate: %w", err)
	}
	return nil
}
