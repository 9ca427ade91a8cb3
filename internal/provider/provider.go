// Package provider wraps the outbound collaborators (movie metadata,
// text generation) behind capability interfaces so fallback behavior is a
// visible branch at the call site instead of a caught exception.
package provider

import (
	"context"
	"errors"
	"fmt"
)

// UpstreamError marks a failure of an external service. Callers decide
// whether to surface it (ingestion) or collapse it into a fallback value
// (summarization).
type UpstreamError struct {
	Service string
	Status  int // HTTP status when available, 0 otherwise
	Err     error
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Service, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Service, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// IsUpstream reports whether err is (or wraps) an UpstreamError.
func IsUpstream(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}

// MoviePage is one page of the provider's popular-movie listing.
type MoviePage struct {
	Page         int         `json:"page"`
	TotalPages   int         `json:"total_pages"`
	TotalResults int         `json:"total_results"`
	Results      []MovieStub `json:"results"`
}

// MovieStub is the listing entry; details and credits need follow-up calls.
type MovieStub struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// MovieDetails is the per-movie detail payload.
type MovieDetails struct {
	ID               int64   `json:"id"`
	Title            string  `json:"title"`
	Overview         string  `json:"overview"`
	ReleaseDate      string  `json:"release_date"` // YYYY-MM-DD, may be empty
	Runtime          *int    `json:"runtime"`
	PosterPath       *string `json:"poster_path"`
	BackdropPath     *string `json:"backdrop_path"`
	Genres           []Named `json:"genres"`
	VoteAverage      float64 `json:"vote_average"`
	VoteCount        int     `json:"vote_count"`
	Status           string  `json:"status"`
	OriginalLanguage string  `json:"original_language"`
	Budget           int64   `json:"budget"`
	Revenue          int64   `json:"revenue"`
	Tagline          string  `json:"tagline"`
	Homepage         string  `json:"homepage"`
	Video            bool    `json:"video"`
	Adult            bool    `json:"adult"`
}

type Named struct {
	Name string `json:"name"`
}

// MovieCredits is the crew/cast payload.
type MovieCredits struct {
	Cast []CastMember `json:"cast"`
	Crew []CrewMember `json:"crew"`
}

type CastMember struct {
	Name string `json:"name"`
}

type CrewMember struct {
	Name string `json:"name"`
	Job  string `json:"job"`
}

// Metadata is the movie-metadata capability: paged listing plus per-item
// detail and credits lookups.
type Metadata interface {
	PopularMovies(ctx context.Context, page int) (*MoviePage, error)
	MovieDetails(ctx context.Context, movieID int64) (*MovieDetails, error)
	MovieCredits(ctx context.Context, movieID int64) (*MovieCredits, error)
}

// CommentInput is one comment fed into summarization.
type CommentInput struct {
	Text  string
	Likes int
}

// Summarizer is the text-generation capability: one prompt, one response.
type Summarizer interface {
	SummarizeComments(ctx context.Context, movieTitle string, comments []CommentInput) (string, error)
}
