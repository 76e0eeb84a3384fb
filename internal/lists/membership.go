package lists

import (
	"context"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/sourcegraph/conc/pool"

	"github.com/desertthunder/reelist/internal/models"
)

// Membership answers whether a movie is present in a user's lists.
//
// Lookups fail closed: a store error is logged and reported as absent.
type Membership struct {
	items  ItemDocuments
	logger *log.Logger
	fanout int
}

// NewMembership creates a [Membership] index over the item collection.
func NewMembership(items ItemDocuments, opts Options) *Membership {
	opts = opts.withDefaults()
	return &Membership{items: items, logger: opts.Logger, fanout: opts.MembershipConcurrency}
}

// IsMovieInList reports whether at least one item of the list references movieID.
// An empty user or movie ID is never present.
func (m *Membership) IsMovieInList(ctx context.Context, uid, listID, movieID string) bool {
	movieID = strings.TrimSpace(movieID)
	if strings.TrimSpace(uid) == "" || movieID == "" {
		return false
	}
	items, err := m.items.List(ctx, map[string]any{"user_id": uid, "list_id": listID, "movie_id": movieID})
	if err != nil {
		m.logger.Warn("membership check failed, reporting absent", "uid", uid, "list", listID, "movie", movieID, "error", err)
		return false
	}
	return len(items) > 0
}

// Compute maps each list ID to whether movieID is in that list.
// Lists are probed concurrently, at most Options.MembershipConcurrency at a time.
func (m *Membership) Compute(ctx context.Context, uid string, lists []*models.List, movieID string) models.Membership {
	var (
		mu     sync.Mutex
		result = make(models.Membership, len(lists))
	)

	p := pool.New().WithMaxGoroutines(m.fanout)
	for _, list := range lists {
		p.Go(func() {
			present := m.IsMovieInList(ctx, uid, list.ID, movieID)
			mu.Lock()
			result[list.ID] = present
			mu.Unlock()
		})
	}
	p.Wait()

	return result
}
