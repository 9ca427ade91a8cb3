// Package ingest pulls the popular-movie catalog from the metadata provider
// into Postgres. A fixed pool of workers fans out over the listing so the
// per-movie detail and credits calls overlap, throttled by a shared rate
// limiter to stay inside the provider's request budget.
package ingest

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"cinematch/internal/model"
	"cinematch/internal/provider"
	"cinematch/internal/repository"
)

const (
	// DefaultWorkerCount is the default number of worker goroutines.
	DefaultWorkerCount = 4

	// DefaultRequestsPerSecond caps outbound metadata calls across workers.
	DefaultRequestsPerSecond = 20

	// tmdbImageBase prefixes the relative poster/backdrop paths the provider
	// returns.
	tmdbImageBase = "https://image.tmdb.org/t/p/w500"

	// maxCastMembers bounds the stored main cast list.
	maxCastMembers = 10
)

// Ingester orchestrates worker goroutines that fetch and store movies.
type Ingester struct {
	metadata    provider.Metadata
	movieRepo   repository.MovieRepository
	workerCount int
	limiter     *rate.Limiter
}

// Config holds ingester tuning knobs.
type Config struct {
	WorkerCount       int     // Number of worker goroutines
	RequestsPerSecond float64 // Shared outbound request cap
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		WorkerCount:       DefaultWorkerCount,
		RequestsPerSecond: DefaultRequestsPerSecond,
	}
}

func New(metadata provider.Metadata, movieRepo repository.MovieRepository, cfg Config) *Ingester {
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = DefaultWorkerCount
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = DefaultRequestsPerSecond
	}

	return &Ingester{
		metadata:    metadata,
		movieRepo:   movieRepo,
		workerCount: cfg.WorkerCount,
		limiter:     rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
	}
}

// Result summarizes one ingestion run.
type Result struct {
	Pages   int
	Fetched int
	Created int
	Updated int
	Failed  int
}

// Run ingests up to pages pages of the popular listing. Per-movie failures
// are logged and counted, never fatal; only listing-level failures abort the
// run.
func (ing *Ingester) Run(ctx context.Context, pages int) (*Result, error) {
	if pages <= 0 {
		pages = 1
	}

	jobs := make(chan provider.MovieStub)
	result := &Result{}
	var mu sync.Mutex

	var wg sync.WaitGroup
	for i := 0; i < ing.workerCount; i++ {
		workerID := i + 1
		wg.Add(1)
		go func() {
			defer wg.Done()
			ing.runWorker(ctx, workerID, jobs, result, &mu)
		}()
	}

	log.Printf("[Ingest] Started %d workers for %d pages", ing.workerCount, pages)

	var listErr error
	for page := 1; page <= pages; page++ {
		if err := ing.limiter.Wait(ctx); err != nil {
			listErr = err
			break
		}

		listing, err := ing.metadata.PopularMovies(ctx, page)
		if err != nil {
			listErr = fmt.Errorf("fetch page %d: %w", page, err)
			break
		}

		mu.Lock()
		result.Pages++
		mu.Unlock()

		for _, stub := range listing.Results {
			select {
			case jobs <- stub:
			case <-ctx.Done():
				listErr = ctx.Err()
			}
			if listErr != nil {
				break
			}
		}
		if listErr != nil {
			break
		}

		if page >= listing.TotalPages {
			break
		}
	}

	close(jobs)
	wg.Wait()

	log.Printf("[Ingest] Done: pages=%d fetched=%d created=%d updated=%d failed=%d",
		result.Pages, result.Fetched, result.Created, result.Updated, result.Failed)

	if listErr != nil {
		return result, listErr
	}
	return result, nil
}

func (ing *Ingester) runWorker(ctx context.Context, workerID int, jobs <-chan provider.MovieStub, result *Result, mu *sync.Mutex) {
	for stub := range jobs {
		created, err := ing.ingestMovie(ctx, stub)

		mu.Lock()
		switch {
		case err != nil:
			result.Failed++
		case created:
			result.Fetched++
			result.Created++
		default:
			result.Fetched++
			result.Updated++
		}
		mu.Unlock()

		if err != nil {
			log.Printf("[Ingest-%d] Failed to ingest movie %d (%s): %v", workerID, stub.ID, stub.Title, err)
		}
	}
}

func (ing *Ingester) ingestMovie(ctx context.Context, stub provider.MovieStub) (created bool, err error) {
	if err := ing.limiter.Wait(ctx); err != nil {
		return false, err
	}
	details, err := ing.metadata.MovieDetails(ctx, stub.ID)
	if err != nil {
		return false, err
	}

	if err := ing.limiter.Wait(ctx); err != nil {
		return false, err
	}
	credits, err := ing.metadata.MovieCredits(ctx, stub.ID)
	if err != nil {
		return false, err
	}

	movie := buildMovie(details, credits)
	return ing.movieRepo.Upsert(ctx, movie)
}

// buildMovie maps the provider payloads onto a catalog record.
func buildMovie(details *provider.MovieDetails, credits *provider.MovieCredits) *model.Movie {
	movie := &model.Movie{
		ID:            uuid.New(),
		TMDBID:        details.ID,
		Title:         details.Title,
		AverageRating: details.VoteAverage,
		VoteCount:     details.VoteCount,
		Video:         details.Video,
		Adult:         details.Adult,
	}

	if details.Overview != "" {
		movie.Synopsis = &details.Overview
	}
	if details.ReleaseDate != "" {
		if t, err := time.Parse("2006-01-02", details.ReleaseDate); err == nil {
			movie.ReleaseDate = &t
		}
	}
	if details.Runtime != nil && *details.Runtime > 0 {
		movie.Runtime = details.Runtime
	}
	if details.PosterPath != nil {
		url := tmdbImageBase + *details.PosterPath
		movie.PosterURL = &url
	}
	if details.BackdropPath != nil {
		url := tmdbImageBase + *details.BackdropPath
		movie.BackdropURL = &url
	}
	if details.Status != "" {
		movie.Status = &details.Status
	}
	if details.OriginalLanguage != "" {
		movie.OriginalLang = &details.OriginalLanguage
	}
	if details.Budget > 0 {
		movie.Budget = &details.Budget
	}
	if details.Revenue > 0 {
		movie.Revenue = &details.Revenue
	}
	if details.Tagline != "" {
		movie.Tagline = &details.Tagline
	}
	if details.Homepage != "" {
		movie.Homepage = &details.Homepage
	}

	for _, g := range details.Genres {
		movie.Genres = append(movie.Genres, g.Name)
	}
	for _, c := range credits.Crew {
		if c.Job == "Director" {
			movie.Directors = append(movie.Directors, c.Name)
		}
	}
	for i, c := range credits.Cast {
		if i >= maxCastMembers {
			break
		}
		movie.MainCast = append(movie.MainCast, c.Name)
	}

	return movie
}
