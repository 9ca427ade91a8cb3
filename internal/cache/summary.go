package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SummaryCachePrefix is the key prefix for cached comment summaries.
const SummaryCachePrefix = "resumo:filme:"

// SummaryCache stores generated comment summaries per movie so repeated
// requests don't re-hit the text-generation provider. Entries expire on TTL
// and are invalidated when a new comment lands on the movie.
type SummaryCache interface {
	// Get returns the cached summary. found=false on miss or expiry.
	Get(ctx context.Context, movieID uuid.UUID) (summary string, found bool, err error)

	// Set stores a summary with the configured TTL.
	Set(ctx context.Context, movieID uuid.UUID, summary string) error

	// Invalidate drops the cached summary for a movie.
	Invalidate(ctx context.Context, movieID uuid.UUID) error
}

// RedisSummaryCache implements SummaryCache on Redis.
type RedisSummaryCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSummaryCache creates a SummaryCache backed by Redis.
func NewSummaryCache(client *redis.Client, ttl time.Duration) SummaryCache {
	return &RedisSummaryCache{client: client, ttl: ttl}
}

func summaryKey(movieID uuid.UUID) string {
	return fmt.Sprintf("%s%s", SummaryCachePrefix, movieID)
}

func (c *RedisSummaryCache) Get(ctx context.Context, movieID uuid.UUID) (string, bool, error) {
	val, err := c.client.Get(ctx, summaryKey(movieID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get summary: %w", err)
	}
	return val, true, nil
}

func (c *RedisSummaryCache) Set(ctx context.Context, movieID uuid.UUID, summary string) error {
	if err := c.client.Set(ctx, summaryKey(movieID), summary, c.ttl).Err(); err != nil {
		return fmt.Errorf("set summary: %w", err)
	}
	return nil
}

func (c *RedisSummaryCache) Invalidate(ctx context.Context, movieID uuid.UUID) error {
	if err := c.client.Del(ctx, summaryKey(movieID)).Err(); err != nil {
		return fmt.Errorf("invalidate summary: %w", err)
	}
	return nil
}
