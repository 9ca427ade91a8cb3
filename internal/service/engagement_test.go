package service

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"cinematch/internal/model"
)

func floatPtr(f float64) *float64 { return &f }
func boolPtr(b bool) *bool        { return &b }

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestMeanOf(t *testing.T) {
	tests := []struct {
		name    string
		ratings []float64
		want    float64
	}{
		{name: "empty resets to zero", ratings: nil, want: 0},
		{name: "single rating", ratings: []float64{7}, want: 7},
		{name: "several ratings", ratings: []float64{10, 5, 6}, want: 7},
		{name: "fractional mean", ratings: []float64{8, 9}, want: 8.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := meanOf(tt.ratings)
			if !almostEqual(got, tt.want) {
				t.Errorf("meanOf(%v) = %v, want %v", tt.ratings, got, tt.want)
			}
		})
	}
}

func TestFoldRating(t *testing.T) {
	tests := []struct {
		name      string
		avg       float64
		count     int
		prior     *float64
		nota      float64
		wantAvg   float64
		wantCount int
	}{
		{
			name: "first rating ever",
			avg:  0, count: 0, prior: nil, nota: 8,
			wantAvg: 8, wantCount: 1,
		},
		{
			name: "new rater grows the count",
			avg:  6, count: 2, prior: nil, nota: 9,
			wantAvg: 7, wantCount: 3,
		},
		{
			name: "repeat rater swaps without growing the count",
			avg:  6, count: 3, prior: floatPtr(3), nota: 9,
			wantAvg: 8, wantCount: 3,
		},
		{
			name: "repeat rater with unchanged nota is a no-op",
			avg:  7.5, count: 4, prior: floatPtr(7.5), nota: 7.5,
			wantAvg: 7.5, wantCount: 4,
		},
		{
			name: "prior rating against a reset counter starts over",
			avg:  0, count: 0, prior: floatPtr(6), nota: 4,
			wantAvg: 4, wantCount: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotAvg, gotCount := foldRating(tt.avg, tt.count, tt.prior, tt.nota)
			if !almostEqual(gotAvg, tt.wantAvg) || gotCount != tt.wantCount {
				t.Errorf("foldRating(%v, %d, %v, %v) = (%v, %d), want (%v, %d)",
					tt.avg, tt.count, tt.prior, tt.nota, gotAvg, gotCount, tt.wantAvg, tt.wantCount)
			}
		})
	}
}

func TestRate_InvalidRating(t *testing.T) {
	svc := NewEngagementService(&mockEngagementRepository{}, &mockMovieRepository{}, nil)

	for _, nota := range []float64{-0.5, 10.5, 42} {
		if _, err := svc.Rate(context.Background(), uuid.New(), uuid.New(), nota); !errors.Is(err, ErrInvalidRating) {
			t.Errorf("Rate(nota=%v) error = %v, want ErrInvalidRating", nota, err)
		}
	}
}

func TestGetAction_MovieNotFound(t *testing.T) {
	movieRepo := &mockMovieRepository{
		existsFn: func(ctx context.Context, id uuid.UUID) (bool, error) { return false, nil },
	}
	svc := NewEngagementService(&mockEngagementRepository{}, movieRepo, nil)

	if _, err := svc.GetAction(context.Background(), uuid.New(), uuid.New()); !errors.Is(err, model.ErrMovieNotFound) {
		t.Errorf("GetAction error = %v, want ErrMovieNotFound", err)
	}
}

// storedActionRepo keeps the action row in memory across calls, so repeated
// partial updates read back their own writes the way the real table does.
func storedActionRepo(stored *model.EngagementAction) *mockEngagementRepository {
	return &mockEngagementRepository{
		getOrCreateFn: func(ctx context.Context, tx *sqlx.Tx, userID, movieID uuid.UUID) (*model.EngagementAction, error) {
			row := *stored
			return &row, nil
		},
		updateFn: func(ctx context.Context, tx *sqlx.Tx, action *model.EngagementAction) error {
			*stored = *action
			return nil
		},
	}
}

func TestRecordAction_DisjointUpdatesUnion(t *testing.T) {
	userID := uuid.New()
	movieID := uuid.New()
	stored := &model.EngagementAction{UserID: userID, MovieID: movieID}

	svc := NewEngagementService(storedActionRepo(stored), movieExists(true), txDB(t, 2))

	if _, err := svc.RecordAction(context.Background(), userID, movieID, model.EngagementUpdate{Watched: boolPtr(true)}); err != nil {
		t.Fatalf("first RecordAction returned error: %v", err)
	}

	action, err := svc.RecordAction(context.Background(), userID, movieID, model.EngagementUpdate{Favorite: boolPtr(true)})
	if err != nil {
		t.Fatalf("second RecordAction returned error: %v", err)
	}

	if !action.Watched || !action.Favorite {
		t.Errorf("disjoint updates must union: watched = %v, favorite = %v", action.Watched, action.Favorite)
	}
	if action.WatchLater {
		t.Error("field never sent must stay false")
	}
	if action.Like != nil || action.Rating != nil {
		t.Errorf("fields never sent must stay nil: like = %v, rating = %v", action.Like, action.Rating)
	}
}

func TestRecordAction_RescanOnlyWithRating(t *testing.T) {
	userID := uuid.New()
	movieID := uuid.New()

	t.Run("flag-only update leaves the aggregate alone", func(t *testing.T) {
		stored := &model.EngagementAction{UserID: userID, MovieID: movieID}
		movieRepo := movieExists(true)
		movieRepo.updateAggregateFn = func(ctx context.Context, tx *sqlx.Tx, mid uuid.UUID, avg float64, count int) error {
			t.Error("aggregate must not be recomputed without a rating")
			return nil
		}
		svc := NewEngagementService(storedActionRepo(stored), movieRepo, txDB(t, 1))

		if _, err := svc.RecordAction(context.Background(), userID, movieID, model.EngagementUpdate{Watched: boolPtr(true)}); err != nil {
			t.Fatalf("RecordAction returned error: %v", err)
		}
	})

	t.Run("rated update re-scans every rated row", func(t *testing.T) {
		stored := &model.EngagementAction{UserID: userID, MovieID: movieID}
		engRepo := storedActionRepo(stored)
		engRepo.ratingsForMovieFn = func(ctx context.Context, tx *sqlx.Tx, mid uuid.UUID) ([]float64, error) {
			return []float64{8, 6}, nil
		}

		var gotAvg float64
		var gotCount int
		movieRepo := movieExists(true)
		movieRepo.updateAggregateFn = func(ctx context.Context, tx *sqlx.Tx, mid uuid.UUID, avg float64, count int) error {
			gotAvg, gotCount = avg, count
			return nil
		}
		svc := NewEngagementService(engRepo, movieRepo, txDB(t, 1))

		if _, err := svc.RecordAction(context.Background(), userID, movieID, model.EngagementUpdate{Rating: floatPtr(8)}); err != nil {
			t.Fatalf("RecordAction returned error: %v", err)
		}
		if !almostEqual(gotAvg, 7) || gotCount != 2 {
			t.Errorf("aggregate = (%v, %d), want (7, 2)", gotAvg, gotCount)
		}
	})
}

func TestRecordAction_EmptyUpdateIsReadOnly(t *testing.T) {
	userID := uuid.New()
	movieID := uuid.New()
	stored := &model.EngagementAction{UserID: userID, MovieID: movieID, Watched: true}
	engRepo := storedActionRepo(stored)
	engRepo.updateFn = func(ctx context.Context, tx *sqlx.Tx, action *model.EngagementAction) error {
		t.Error("an empty update must not write")
		return nil
	}
	svc := NewEngagementService(engRepo, movieExists(true), txDB(t, 1))

	action, err := svc.RecordAction(context.Background(), userID, movieID, model.EngagementUpdate{})
	if err != nil {
		t.Fatalf("RecordAction returned error: %v", err)
	}
	if !action.Watched {
		t.Error("empty update must return the current row")
	}
}

func TestRate_FoldsWithoutRescan(t *testing.T) {
	userID := uuid.New()
	movieID := uuid.New()

	engRepo := &mockEngagementRepository{
		ratingsForMovieFn: func(ctx context.Context, tx *sqlx.Tx, mid uuid.UUID) ([]float64, error) {
			t.Error("direct rating must not re-scan the action table")
			return nil, nil
		},
	}
	movieRepo := &mockMovieRepository{
		getAggregateForUpdateFn: func(ctx context.Context, tx *sqlx.Tx, mid uuid.UUID) (float64, int, error) {
			return 8, 1, nil
		},
	}
	var gotAvg float64
	var gotCount int
	movieRepo.updateAggregateFn = func(ctx context.Context, tx *sqlx.Tx, mid uuid.UUID, avg float64, count int) error {
		gotAvg, gotCount = avg, count
		return nil
	}
	svc := NewEngagementService(engRepo, movieRepo, txDB(t, 1))

	resp, err := svc.Rate(context.Background(), userID, movieID, 6)
	if err != nil {
		t.Fatalf("Rate returned error: %v", err)
	}
	if !almostEqual(resp.NotaMedia, 7) || resp.TotalVotos != 2 || !almostEqual(resp.SuaNota, 6) {
		t.Errorf("response = (%v, %d, %v), want (7, 2, 6)", resp.NotaMedia, resp.TotalVotos, resp.SuaNota)
	}
	if !almostEqual(gotAvg, 7) || gotCount != 2 {
		t.Errorf("stored aggregate = (%v, %d), want (7, 2)", gotAvg, gotCount)
	}
}

func TestRecordAction_MovieNotFound(t *testing.T) {
	movieRepo := &mockMovieRepository{
		existsFn: func(ctx context.Context, id uuid.UUID) (bool, error) { return false, nil },
	}
	svc := NewEngagementService(&mockEngagementRepository{}, movieRepo, nil)

	update := model.EngagementUpdate{Rating: floatPtr(8)}
	if _, err := svc.RecordAction(context.Background(), uuid.New(), uuid.New(), update); !errors.Is(err, model.ErrMovieNotFound) {
		t.Errorf("RecordAction error = %v, want ErrMovieNotFound", err)
	}
}
