// package services defines interface MovieProvider for interacting with movie metadata APIs
package services

import (
	"context"
	"fmt"

	"github.com/desertthunder/reelist/internal/models"
)

// MovieProvider defines the interface for movie metadata providers used to populate list items.
type MovieProvider interface {
	// Search returns one page of results for a free-text query.
	Search(ctx context.Context, q SearchQuery) (*models.SearchResult, error)

	// Details retrieves the full record of a movie by its IMDb identifier.
	Details(ctx context.Context, imdbID string) (*models.Movie, error)

	// Name returns the name of the provider (e.g., "OMDb")
	Name() string
}

// SearchQuery describes a provider search. Page defaults to 1; Type and Year are optional filters.
type SearchQuery struct {
	Query string
	Page  int
	Type  string // movie, series or episode
	Year  string
}

// cacheKey identifies a query for memoization.
func (q SearchQuery) cacheKey() string {
	return fmt.Sprintf("search_%s_%d_%s_%s", q.Query, q.Page, q.Type, q.Year)
}
