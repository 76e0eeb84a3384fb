package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/desertthunder/reelist/internal/cache"
	"github.com/desertthunder/reelist/internal/models"
	"github.com/desertthunder/reelist/internal/shared"
)

const (
	DefaultOMDbURL    = "https://www.omdbapi.com/"
	DefaultRateLimit  = 5.0
	DefaultRetryDelay = 250 * time.Millisecond
	omdbPageSize      = 10
)

// OMDbOpts configures an [OMDbService].
type OMDbOpts struct {
	BaseURL      string
	APIKey       string
	HTTPClient   *http.Client
	RateLimit    float64 // requests per second
	Retries      uint    // additional attempts after the first
	RetryDelay   time.Duration
	SearchCache  *cache.TTL[*models.SearchResult]
	DetailsCache *cache.TTL[*models.Movie]
	Logger       *log.Logger
}

// OMDbService implements [MovieProvider] for the OMDb API.
type OMDbService struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	attempts   uint
	delay      time.Duration
	search     *cache.TTL[*models.SearchResult]
	details    *cache.TTL[*models.Movie]
	logger     *log.Logger
}

// NewOMDbService creates a new OMDb client. An API key is required.
func NewOMDbService(opts OMDbOpts) (*OMDbService, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, fmt.Errorf("%w: OMDb API key", shared.ErrMissingCredentials)
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultOMDbURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = DefaultRateLimit
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = DefaultRetryDelay
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}

	return &OMDbService{
		baseURL:    opts.BaseURL,
		apiKey:     opts.APIKey,
		httpClient: opts.HTTPClient,
		limiter:    rate.NewLimiter(rate.Limit(opts.RateLimit), 1),
		attempts:   opts.Retries + 1,
		delay:      opts.RetryDelay,
		search:     opts.SearchCache,
		details:    opts.DetailsCache,
		logger:     opts.Logger,
	}, nil
}

// Name returns the provider name
func (s *OMDbService) Name() string { return "OMDb" }

type omdbEnvelope struct {
	Response string `json:"Response"`
	Error    string `json:"Error"`
}

type omdbSearch struct {
	omdbEnvelope
	Search       []models.Movie `json:"Search"`
	TotalResults string         `json:"totalResults"`
}

type omdbDetails struct {
	omdbEnvelope
	models.Movie
}

// Search returns one page of results for q.
func (s *OMDbService) Search(ctx context.Context, q SearchQuery) (*models.SearchResult, error) {
	q.Query = strings.TrimSpace(q.Query)
	if q.Query == "" {
		return nil, fmt.Errorf("%w: search query is required", shared.ErrInvalidInput)
	}
	if q.Page < 1 {
		q.Page = 1
	}

	key := q.cacheKey()
	if s.search != nil {
		if cached, ok := s.search.Get(key); ok {
			return cached, nil
		}
	}

	params := url.Values{}
	params.Set("s", q.Query)
	params.Set("page", strconv.Itoa(q.Page))
	if q.Type != "" {
		params.Set("type", q.Type)
	}
	if q.Year != "" {
		params.Set("y", q.Year)
	}

	var body omdbSearch
	if err := s.get(ctx, params, &body); err != nil {
		return nil, err
	}
	if err := body.check("No movies found"); err != nil {
		return nil, err
	}

	total, _ := strconv.Atoi(body.TotalResults)
	result := &models.SearchResult{Movies: body.Search, TotalResults: total, Page: q.Page}

	if s.search != nil {
		s.search.Set(key, result)
	}
	return result, nil
}

// SearchPages accumulates result pages until TotalResults is reached or maxPages pages are read.
func (s *OMDbService) SearchPages(ctx context.Context, q SearchQuery, maxPages int) (*models.SearchResult, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	start := q.Page

	acc := &models.SearchResult{Page: start}
	for page := start; maxPages <= 0 || page < start+maxPages; page++ {
		q.Page = page
		result, err := s.Search(ctx, q)
		if err != nil {
			if page > start && errors.Is(err, shared.ErrMovieNotFound) {
				break
			}
			return nil, err
		}

		acc.Movies = append(acc.Movies, result.Movies...)
		acc.TotalResults = result.TotalResults
		acc.Page = page

		if len(result.Movies) < omdbPageSize || len(acc.Movies) >= acc.TotalResults {
			break
		}
	}

	return acc, nil
}

// Details retrieves the full plot record of a movie.
func (s *OMDbService) Details(ctx context.Context, imdbID string) (*models.Movie, error) {
	imdbID = strings.TrimSpace(imdbID)
	if imdbID == "" {
		return nil, fmt.Errorf("%w: imdb id is required", shared.ErrInvalidInput)
	}

	key := "details_" + imdbID
	if s.details != nil {
		if cached, ok := s.details.Get(key); ok {
			return cached, nil
		}
	}

	params := url.Values{}
	params.Set("i", imdbID)
	params.Set("plot", "full")

	var body omdbDetails
	if err := s.get(ctx, params, &body); err != nil {
		return nil, err
	}
	if err := body.check("Movie not found"); err != nil {
		return nil, err
	}

	movie := body.Movie
	if s.details != nil {
		s.details.Set(key, &movie)
	}
	return &movie, nil
}

func (e omdbEnvelope) check(fallback string) error {
	if e.Response == "True" {
		return nil
	}
	msg := e.Error
	if msg == "" {
		msg = fallback
	}
	return fmt.Errorf("%w: %s", shared.ErrMovieNotFound, msg)
}

// get performs a rate-limited, retried GET and decodes the JSON body into out.
func (s *OMDbService) get(ctx context.Context, params url.Values, out any) error {
	params.Set("apikey", s.apiKey)
	endpoint := s.baseURL + "?" + params.Encode()

	return retry.Do(
		func() error { return s.fetch(ctx, endpoint, out) },
		retry.Context(ctx),
		retry.Attempts(s.attempts),
		retry.Delay(s.delay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			s.logger.Warn("retrying OMDb request", "attempt", n+1, "error", err)
		}),
	)
}

func (s *OMDbService) fetch(ctx context.Context, endpoint string, out any) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return retry.Unrecoverable(fmt.Errorf("%w: %w", shared.ErrTimeout, err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return retry.Unrecoverable(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return retry.Unrecoverable(fmt.Errorf("%w: %w", shared.ErrAPIRequest, err))
		}
		return fmt.Errorf("%w: %w", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: failed to read response: %w", shared.ErrAPIRequest, err)
	}

	switch {
	case resp.StatusCode >= http.StatusInternalServerError:
		return fmt.Errorf("%w: status %d", shared.ErrServiceUnavailable, resp.StatusCode)
	case resp.StatusCode >= http.StatusBadRequest:
		var env omdbEnvelope
		_ = json.Unmarshal(body, &env)
		return retry.Unrecoverable(fmt.Errorf("%w: status %d: %s", shared.ErrAPIRequest, resp.StatusCode, env.Error))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return retry.Unrecoverable(fmt.Errorf("%w: failed to decode response: %w", shared.ErrAPIRequest, err))
	}
	return nil
}
