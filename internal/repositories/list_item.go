package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/reelist/internal/models"
	"github.com/desertthunder/reelist/internal/shared"
)

// ListItemRepository persists [models.ListItem] documents under users/{uid}/lists/{listId}/listItems.
type ListItemRepository struct {
	db *sql.DB
}

// NewListItemRepository creates a new [ListItemRepository] with the given database connection
func NewListItemRepository(db *sql.DB) *ListItemRepository {
	return &ListItemRepository{db: db}
}

const itemColumns = `id, sequence, user_id, list_id, movie_id, title, year, poster, type,
	plot, director, actors, genre, imdb_rating, added_at`

// Create inserts a new item. When the item has no ID it is given the deterministic
// composite ID of (user, list, movie), so a second insert of the same movie is rejected
// with [shared.ErrDuplicateItem].
func (r *ListItemRepository) Create(ctx context.Context, item *models.ListItem) error {
	if item.UserID == "" || item.ListID == "" || item.MovieID == "" {
		return fmt.Errorf("%w: user, list and movie ids are required", shared.ErrValidation)
	}

	sequence, err := NextSequence(ctx, r.db, "list_items")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	if item.ID == "" {
		item.ID = shared.ItemID(item.UserID, item.ListID, item.MovieID)
	}
	item.Sequence = sequence
	item.AddedAt = time.Now().UTC()

	query := `INSERT INTO list_items (` + itemColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	m := item.Metadata
	_, err = r.db.ExecContext(ctx, query,
		item.ID, item.Sequence, item.UserID, item.ListID, item.MovieID,
		item.Title, item.Year, item.Poster, item.Type,
		m.Plot, m.Director, m.Actors, m.Genre, m.IMDbRating, item.AddedAt,
	)
	switch {
	case isUniqueViolation(err):
		return fmt.Errorf("%w: %s", shared.ErrDuplicateItem, item.MovieID)
	case isForeignKeyViolation(err):
		return fmt.Errorf("%w: %s", shared.ErrListNotFound, item.ListID)
	case err != nil:
		return fmt.Errorf("failed to insert list item: %w", err)
	}

	return nil
}

// Delete removes one item from the list.
func (r *ListItemRepository) Delete(ctx context.Context, uid, listID, itemID string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM list_items WHERE id = ? AND list_id = ? AND user_id = ?`, itemID, listID, uid)
	if err != nil {
		return fmt.Errorf("failed to delete list item: %w", err)
	}
	return expectOne(result, fmt.Errorf("%w: %s", shared.ErrItemNotFound, itemID))
}

// List retrieves items matching the given criteria, oldest first unless "newest_first" is set.
//
// Supported criteria keys: "user_id", "list_id", "movie_id" (string) and "newest_first" (bool).
// A string key that is present always filters, even when empty.
func (r *ListItemRepository) List(ctx context.Context, criteria map[string]any) ([]*models.ListItem, error) {
	query := `SELECT ` + itemColumns + ` FROM list_items WHERE 1 = 1`
	args := []any{}

	for _, key := range []string{"user_id", "list_id", "movie_id"} {
		if v, ok := criteria[key].(string); ok {
			query += " AND " + key + " = ?"
			args = append(args, v)
		}
	}

	if newest, ok := criteria["newest_first"].(bool); ok && newest {
		query += " ORDER BY sequence DESC"
	} else {
		query += " ORDER BY sequence ASC"
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query list items: %w", err)
	}
	defer rows.Close()

	items := []*models.ListItem{}
	for rows.Next() {
		var (
			item models.ListItem
			m    = &item.Metadata
		)
		err := rows.Scan(&item.ID, &item.Sequence, &item.UserID, &item.ListID, &item.MovieID,
			&item.Title, &item.Year, &item.Poster, &item.Type,
			&m.Plot, &m.Director, &m.Actors, &m.Genre, &m.IMDbRating, &item.AddedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan list item: %w", err)
		}
		items = append(items, &item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return items, nil
}

// Count returns the number of items in the list.
func (r *ListItemRepository) Count(ctx context.Context, uid, listID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM list_items WHERE user_id = ? AND list_id = ?`, uid, listID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count list items: %w", err)
	}
	return n, nil
}
