// package testing contains shared testing utilities
package testing

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/reelist/internal/models"
	"github.com/desertthunder/reelist/internal/services"
	"github.com/desertthunder/reelist/internal/shared"
)

// NewTestDB opens a migrated SQLite database in a temp dir, closed when the test ends.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("Failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

// MockProvider is a test double for [services.MovieProvider] backed by a map of movies.
//
// Err, when set, is returned by every call.
type MockProvider struct {
	Movies map[string]models.Movie
	Err    error

	mu    sync.Mutex
	calls int
}

// NewMockProvider creates a [MockProvider] holding movies keyed by IMDb ID.
func NewMockProvider(movies ...models.Movie) *MockProvider {
	m := &MockProvider{Movies: make(map[string]models.Movie, len(movies))}
	for _, movie := range movies {
		m.Movies[movie.IMDbID] = movie
	}
	return m
}

func (m *MockProvider) Name() string { return "mock" }

// Calls reports how many Search and Details calls were made.
func (m *MockProvider) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *MockProvider) Search(ctx context.Context, q services.SearchQuery) (*models.SearchResult, error) {
	m.record()
	if m.Err != nil {
		return nil, m.Err
	}

	result := &models.SearchResult{Page: max(q.Page, 1)}
	for _, movie := range m.Movies {
		if strings.Contains(strings.ToLower(movie.Title), strings.ToLower(q.Query)) {
			result.Movies = append(result.Movies, movie)
		}
	}
	if len(result.Movies) == 0 {
		return nil, fmt.Errorf("%w: Movie not found!", shared.ErrMovieNotFound)
	}
	result.TotalResults = len(result.Movies)
	return result, nil
}

func (m *MockProvider) Details(ctx context.Context, imdbID string) (*models.Movie, error) {
	m.record()
	if m.Err != nil {
		return nil, m.Err
	}

	movie, ok := m.Movies[imdbID]
	if !ok {
		return nil, fmt.Errorf("%w: Incorrect IMDb ID.", shared.ErrMovieNotFound)
	}
	return &movie, nil
}

func (m *MockProvider) record() {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

var _ services.MovieProvider = (*MockProvider)(nil)
