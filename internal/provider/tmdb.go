package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// TMDBClient implements Metadata against The Movie Database REST API.
type TMDBClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewTMDBClient builds a client. baseURL is overridable for tests.
func NewTMDBClient(apiKey, baseURL string) *TMDBClient {
	return &TMDBClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *TMDBClient) PopularMovies(ctx context.Context, page int) (*MoviePage, error) {
	var out MoviePage
	path := fmt.Sprintf("/movie/popular?page=%d", page)
	if err := c.getJSON(ctx, path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *TMDBClient) MovieDetails(ctx context.Context, movieID int64) (*MovieDetails, error) {
	var out MovieDetails
	if err := c.getJSON(ctx, fmt.Sprintf("/movie/%d", movieID), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *TMDBClient) MovieCredits(ctx context.Context, movieID int64) (*MovieCredits, error) {
	var out MovieCredits
	if err := c.getJSON(ctx, fmt.Sprintf("/movie/%d/credits", movieID), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *TMDBClient) getJSON(ctx context.Context, path string, out interface{}) error {
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return &UpstreamError{Service: "tmdb", Err: err}
	}
	q := u.Query()
	q.Set("api_key", c.apiKey)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return &UpstreamError{Service: "tmdb", Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return &UpstreamError{Service: "tmdb", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &UpstreamError{
			Service: "tmdb",
			Status:  resp.StatusCode,
			Err:     fmt.Errorf("unexpected status"),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &UpstreamError{Service: "tmdb", Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
