// Command populate fills the movie catalog from the metadata provider.
// Intended to run on a schedule or by hand; re-running refreshes existing
// records without touching local rating aggregates.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"cinematch/internal/config"
	"cinematch/internal/database"
	"cinematch/internal/ingest"
	"cinematch/internal/provider"
	"cinematch/internal/repository"
)

func main() {
	pages := flag.Int("pages", 5, "number of popular-movie pages to ingest")
	workers := flag.Int("workers", ingest.DefaultWorkerCount, "number of concurrent fetch workers")
	rps := flag.Float64("rps", ingest.DefaultRequestsPerSecond, "outbound requests per second")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.TMDBAPIKey == "" {
		log.Fatal("TMDB_API_KEY is required")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metadata := provider.NewTMDBClient(cfg.TMDBAPIKey, cfg.TMDBBaseURL)
	movieRepo := repository.NewMovieRepository(db)

	ing := ingest.New(metadata, movieRepo, ingest.Config{
		WorkerCount:       *workers,
		RequestsPerSecond: *rps,
	})

	result, err := ing.Run(ctx, *pages)
	if err != nil {
		log.Fatalf("Ingestion failed after %d movies: %v", result.Fetched, err)
	}
}
