package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"cinematch/internal/model"
	"cinematch/internal/repository"
)

// ErrInvalidRating rejects direct ratings outside [0,10]. Note the contrast
// with partial updates, where an out-of-range avaliacao is silently dropped:
// the direct endpoint is the one place a bad rating is an error.
var ErrInvalidRating = errors.New("rating must be between 0 and 10")

// EngagementService owns the per-user-per-movie action records and the movie
// aggregate they feed.
//
// Two write paths exist and they are deliberately different:
//
//   - RecordAction applies a partial update and, if a valid rating was part
//     of the call, recomputes the movie aggregate with a full re-scan of the
//     action table. The re-scan recounts distinct rows, so repeating it is
//     idempotent and it self-corrects after lost or racing writes.
//
//   - Rate folds one rating into the aggregate incrementally without a
//     re-scan. The historical version of this path incremented total_votos
//     on every call, double-counting users who re-rated; here the fold runs
//     in one transaction with the movie row locked and replaces the user's
//     previous rating instead of stacking it. Vote count only grows when a
//     user rates for the first time.
type EngagementService struct {
	engagementRepo repository.EngagementRepository
	movieRepo      repository.MovieRepository
	db             *sqlx.DB
}

func NewEngagementService(
	engagementRepo repository.EngagementRepository,
	movieRepo repository.MovieRepository,
	db *sqlx.DB,
) *EngagementService {
	return &EngagementService{
		engagementRepo: engagementRepo,
		movieRepo:      movieRepo,
		db:             db,
	}
}

// GetAction fetches (or lazily creates) the caller's action row for a movie.
func (s *EngagementService) GetAction(ctx context.Context, userID, movieID uuid.UUID) (*model.EngagementAction, error) {
	exists, err := s.movieRepo.Exists(ctx, movieID)
	if err != nil {
		return nil, fmt.Errorf("check movie: %w", err)
	}
	if !exists {
		return nil, model.ErrMovieNotFound
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	action, err := s.engagementRepo.GetOrCreate(ctx, tx, userID, movieID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return action, nil
}

// RecordAction applies a partial update to the caller's action row. Fields
// absent from the update are left unchanged; malformed values were already
// dropped during decoding. If and only if the update carried a valid rating,
// the movie aggregate is recomputed from every rated action row. The re-scan
// is intentionally unguarded: concurrent ratings can race and the last write
// wins, but the next rated write re-scans and converges.
func (s *EngagementService) RecordAction(ctx context.Context, userID, movieID uuid.UUID, update model.EngagementUpdate) (*model.EngagementAction, error) {
	exists, err := s.movieRepo.Exists(ctx, movieID)
	if err != nil {
		return nil, fmt.Errorf("check movie: %w", err)
	}
	if !exists {
		return nil, model.ErrMovieNotFound
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	action, err := s.engagementRepo.GetOrCreate(ctx, tx, userID, movieID)
	if err != nil {
		return nil, err
	}

	// An update where every field was absent or dropped during decoding is a
	// read: return the current row without touching it.
	if update.IsEmpty() {
		if err := tx.Commit(); err != nil {
			return nil, fmt.Errorf("commit transaction: %w", err)
		}
		return action, nil
	}

	if update.Like != nil {
		action.Like = update.Like
	}
	if update.Favorite != nil {
		action.Favorite = *update.Favorite
	}
	if update.WatchLater != nil {
		action.WatchLater = *update.WatchLater
	}
	if update.Watched != nil {
		action.Watched = *update.Watched
	}
	if update.Rating != nil {
		action.Rating = update.Rating
	}

	if err := s.engagementRepo.Update(ctx, tx, action); err != nil {
		return nil, err
	}

	if update.HasRating() {
		if err := s.rescanAggregate(ctx, tx, movieID); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return action, nil
}

// rescanAggregate recomputes (nota_media, total_votos) from the full set of
// rated action rows. No rated rows resets both to zero.
func (s *EngagementService) rescanAggregate(ctx context.Context, tx *sqlx.Tx, movieID uuid.UUID) error {
	ratings, err := s.engagementRepo.RatingsForMovie(ctx, tx, movieID)
	if err != nil {
		return err
	}

	return s.movieRepo.UpdateAggregate(ctx, tx, movieID, meanOf(ratings), len(ratings))
}

// meanOf returns the arithmetic mean, 0 for an empty slice.
func meanOf(ratings []float64) float64 {
	if len(ratings) == 0 {
		return 0
	}
	var sum float64
	for _, r := range ratings {
		sum += r
	}
	return sum / float64(len(ratings))
}

// foldRating merges one rating into a running (avg, count) aggregate. A
// first-time rater grows the count; a repeat rater has their previous rating
// swapped out with the count unchanged.
func foldRating(avg float64, count int, prior *float64, nota float64) (float64, int) {
	switch {
	case prior == nil:
		newCount := count + 1
		return (avg*float64(count) + nota) / float64(newCount), newCount
	case count == 0:
		// A prior rating with a zeroed counter means the aggregate was
		// reset; start over instead of dividing by zero.
		return nota, 1
	default:
		return (avg*float64(count) - *prior + nota) / float64(count), count
	}
}

// Rate is the direct-rating path: fold nota into the aggregate without
// re-scanning, then upsert the user's rating. Everything happens in one
// transaction with the movie row locked, so the fold cannot lose a
// concurrent update. A repeat rating by the same user replaces the previous
// one; total_votos stays put.
func (s *EngagementService) Rate(ctx context.Context, userID, movieID uuid.UUID, nota float64) (*model.RateResponse, error) {
	if nota < 0 || nota > 10 {
		return nil, ErrInvalidRating
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	avg, count, err := s.movieRepo.GetAggregateForUpdate(ctx, tx, movieID)
	if err != nil {
		return nil, err
	}

	prior, err := s.engagementRepo.GetRating(ctx, tx, userID, movieID)
	if err != nil {
		return nil, err
	}

	newAvg, newCount := foldRating(avg, count, prior, nota)

	if err := s.engagementRepo.UpsertRating(ctx, tx, userID, movieID, nota); err != nil {
		return nil, err
	}
	if err := s.movieRepo.UpdateAggregate(ctx, tx, movieID, newAvg, newCount); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	return &model.RateResponse{
		NotaMedia:  newAvg,
		TotalVotos: newCount,
		SuaNota:    nota,
	}, nil
}
