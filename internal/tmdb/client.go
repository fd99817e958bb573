package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	defaultBaseURL      = "https://api.themoviedb.org"
	defaultImageBaseURL = "https://image.tmdb.org/t/p"
	defaultCacheTTL     = 24 * time.Hour
)

// Sentinel errors for API responses.
var (
	ErrNotFound     = errors.New("title not found")
	ErrUnauthorized = errors.New("unauthorized: invalid API key")
	ErrRateLimited  = errors.New("rate limited: too many requests")
)

// Client is a TMDB API client.
type Client struct {
	apiKey       string
	baseURL      string
	imageBaseURL string
	language     string
	httpClient   *http.Client
	cache        *cache
	log          *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets a custom API base URL (for testing).
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithImageBaseURL sets a custom image base URL (for testing).
func WithImageBaseURL(url string) Option {
	return func(c *Client) {
		c.imageBaseURL = url
	}
}

// WithCacheTTL sets the in-memory detail cache TTL.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = newCache(ttl)
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLanguage sets the language query parameter (default "en-US").
func WithLanguage(lang string) Option {
	return func(c *Client) {
		c.language = lang
	}
}

// WithLogger sets a logger for debug output.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		c.log = log.With("component", "tmdb")
	}
}

// NewClient creates a new TMDB client.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:       apiKey,
		baseURL:      defaultBaseURL,
		imageBaseURL: defaultImageBaseURL,
		language:     "en-US",
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		cache: newCache(defaultCacheTTL),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ImageBaseURL returns the configured image base URL.
func (c *Client) ImageBaseURL() string {
	return c.imageBaseURL
}

// Ping verifies the API key with a lightweight authenticated request.
// Returns ErrUnauthorized for a bad key; call this at startup so a
// configuration failure surfaces before any files are processed.
func (c *Client) Ping(ctx context.Context) error {
	var out struct{}
	return c.get(ctx, "/3/configuration", nil, &out)
}

// SearchMulti queries the multi-type search endpoint. Returns candidates
// for the given page plus the total page count.
func (c *Client) SearchMulti(ctx context.Context, query string, page int) ([]Candidate, int, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("page", strconv.Itoa(page))
	return c.search(ctx, "/3/search/multi", params, "")
}

// SearchTV queries the TV search endpoint. A non-zero year is passed as
// first_air_date_year.
func (c *Client) SearchTV(ctx context.Context, query string, year, page int) ([]Candidate, int, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("page", strconv.Itoa(page))
	if year > 0 {
		params.Set("first_air_date_year", strconv.Itoa(year))
	}
	return c.search(ctx, "/3/search/tv", params, MediaTV)
}

// SearchMovie queries the movie search endpoint. A non-zero year is passed
// as primary_release_year.
func (c *Client) SearchMovie(ctx context.Context, query string, year, page int) ([]Candidate, int, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("page", strconv.Itoa(page))
	if year > 0 {
		params.Set("primary_release_year", strconv.Itoa(year))
	}
	return c.search(ctx, "/3/search/movie", params, MediaMovie)
}

// search performs a search request. mediaType overrides the per-result
// media_type field for the type-specific endpoints, which omit it.
func (c *Client) search(ctx context.Context, endpoint string, params url.Values, mediaType string) ([]Candidate, int, error) {
	start := time.Now()

	var resp searchResponse
	if err := c.get(ctx, endpoint, params, &resp); err != nil {
		return nil, 0, err
	}

	candidates := make([]Candidate, 0, len(resp.Results))
	for _, r := range resp.Results {
		cand := Candidate{
			ID:         r.ID,
			MediaType:  r.MediaType,
			GenreIDs:   r.GenreIDs,
			Popularity: r.Popularity,
			Overview:   r.Overview,
			PosterPath: r.PosterPath,
		}
		if mediaType != "" {
			cand.MediaType = mediaType
		}

		// TV results carry name/first_air_date, movies title/release_date.
		if r.Name != "" {
			cand.Title = r.Name
		} else {
			cand.Title = r.Title
		}
		if r.FirstAirDate != "" {
			cand.Date = r.FirstAirDate
		} else {
			cand.Date = r.ReleaseDate
		}

		// Multi search includes people; only tv and movie are usable.
		if cand.MediaType != MediaTV && cand.MediaType != MediaMovie {
			continue
		}

		candidates = append(candidates, cand)
	}

	if c.log != nil {
		c.log.Debug("search completed",
			"endpoint", endpoint,
			"query", params.Get("query"),
			"results", len(candidates),
			"duration_ms", time.Since(start).Milliseconds())
	}

	return candidates, resp.TotalPages, nil
}

// TVDetails fetches the authoritative record for a TV series.
func (c *Client) TVDetails(ctx context.Context, id int) (*Details, error) {
	key := cacheKey(MediaTV, id)
	if d, ok := c.cache.get(key); ok {
		return d, nil
	}

	var resp tvDetailsResponse
	if err := c.get(ctx, fmt.Sprintf("/3/tv/%d", id), nil, &resp); err != nil {
		return nil, err
	}
	d := &Details{
		ID:            resp.ID,
		Title:         resp.Name,
		OriginalTitle: resp.OriginalName,
		MediaType:     MediaTV,
		Date:          resp.FirstAirDate,
		Genres:        resp.Genres,
		Overview:      resp.Overview,
		PosterPath:    resp.PosterPath,
		Rating:        resp.VoteAverage,
	}
	c.cache.set(key, d)
	return d, nil
}

// MovieDetails fetches the authoritative record for a movie.
func (c *Client) MovieDetails(ctx context.Context, id int) (*Details, error) {
	key := cacheKey(MediaMovie, id)
	if d, ok := c.cache.get(key); ok {
		return d, nil
	}

	var resp movieDetailsResponse
	if err := c.get(ctx, fmt.Sprintf("/3/movie/%d", id), nil, &resp); err != nil {
		return nil, err
	}
	d := &Details{
		ID:            resp.ID,
		Title:         resp.Title,
		OriginalTitle: resp.OriginalTitle,
		MediaType:     MediaMovie,
		Date:          resp.ReleaseDate,
		Genres:        resp.Genres,
		Overview:      resp.Overview,
		PosterPath:    resp.PosterPath,
		Rating:        resp.VoteAverage,
	}
	c.cache.set(key, d)
	return d, nil
}

// get performs an authenticated GET and decodes the JSON body into out.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.apiKey)
	params.Set("language", c.language)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if err := c.checkResponse(resp); err != nil {
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// checkResponse maps HTTP status codes to sentinel errors.
func (c *Client) checkResponse(resp *http.Response) error {
	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusTooManyRequests:
		return ErrRateLimited
	default:
		return fmt.Errorf("TMDB API error: %s", resp.Status)
	}
}
