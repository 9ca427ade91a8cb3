package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// StringList is a []string stored as a JSONB column. Used for genres,
// directors and the main cast, which the catalog keeps as unstructured lists.
type StringList []string

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("marshal string list: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (l *StringList) Scan(src interface{}) error {
	if src == nil {
		*l = nil
		return nil
	}
	var b []byte
	switch v := src.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into StringList", src)
	}
	return json.Unmarshal(b, l)
}

// Movie is a catalog record. Mutated only by ingestion (cmd/populate) and by
// rating recomputation; everything else reads it.
type Movie struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	TMDBID          int64      `db:"tmdb_id" json:"tmdb_id"`
	Title           string     `db:"titulo" json:"titulo"`
	Synopsis        *string    `db:"sinopse" json:"sinopse"`
	ReleaseDate     *time.Time `db:"data_lancamento" json:"data_lancamento"`
	Runtime         *int       `db:"duracao" json:"duracao"`
	PosterURL       *string    `db:"poster_url" json:"poster_path"`
	BackdropURL     *string    `db:"backdrop_url" json:"backdrop_path"`
	Genres          StringList `db:"generos" json:"generos"`
	Directors       StringList `db:"diretores" json:"diretores"`
	MainCast        StringList `db:"atores_principais" json:"elenco_principal"`
	AverageRating   float64    `db:"nota_media" json:"avaliacao_media"`
	VoteCount       int        `db:"total_votos" json:"total_avaliacoes"`
	Status          *string    `db:"status" json:"status"`
	OriginalLang    *string    `db:"idioma_original" json:"idioma_original"`
	Budget          *int64     `db:"orcamento" json:"-"`
	Revenue         *int64     `db:"receita" json:"-"`
	Tagline         *string    `db:"tagline" json:"tagline"`
	Homepage        *string    `db:"site_oficial" json:"-"`
	Video           bool       `db:"video" json:"-"`
	Adult           bool       `db:"adulto" json:"-"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

// MovieListResponse is the page-number paginated catalog listing.
type MovieListResponse struct {
	Count    int     `json:"count"`
	Page     int     `json:"page"`
	PageSize int     `json:"page_size"`
	Results  []Movie `json:"results"`
}

// Catalog pagination defaults (original API: page size 12, capped at 100).
const (
	DefaultMoviePageSize = 12
	MaxMoviePageSize     = 100
)

var ErrMovieNotFound = errors.New("movie not found")
