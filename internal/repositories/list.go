package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/reelist/internal/models"
	"github.com/desertthunder/reelist/internal/shared"
)

// ListRepository persists [models.List] documents under users/{uid}/lists.
type ListRepository struct {
	db *sql.DB
}

// NewListRepository creates a new [ListRepository] with the given database connection
func NewListRepository(db *sql.DB) *ListRepository {
	return &ListRepository{db: db}
}

const listColumns = `id, sequence, user_id, name, is_default, is_public, created_at, updated_at`

// Create inserts a new list, assigning its ID, sequence and timestamps.
func (r *ListRepository) Create(ctx context.Context, list *models.List) error {
	if list.UserID == "" {
		return fmt.Errorf("%w: user id is required", shared.ErrValidation)
	}

	sequence, err := NextSequence(ctx, r.db, "lists")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	list.ID = shared.GenerateID()
	list.Sequence = sequence
	now := time.Now().UTC()
	list.CreatedAt = now
	list.UpdatedAt = now

	query := `INSERT INTO lists (` + listColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = r.db.ExecContext(ctx, query,
		list.ID, list.Sequence, list.UserID, list.Name, list.IsDefault, list.IsPublic, list.CreatedAt, list.UpdatedAt,
	)
	switch {
	case isForeignKeyViolation(err):
		return fmt.Errorf("%w: %s", shared.ErrUserNotFound, list.UserID)
	case isUniqueViolation(err):
		return fmt.Errorf("%w: %s", shared.ErrDefaultListExists, list.UserID)
	case err != nil:
		return fmt.Errorf("failed to insert list: %w", err)
	}

	return nil
}

// Get retrieves the list identified by listID when it belongs to uid.
func (r *ListRepository) Get(ctx context.Context, uid, listID string) (*models.List, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+listColumns+` FROM lists WHERE id = ? AND user_id = ?`, listID, uid)
	list, err := scanList(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrListNotFound, listID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query list: %w", err)
	}
	return list, nil
}

// Update applies the non-nil fields of upd to the list.
func (r *ListRepository) Update(ctx context.Context, uid, listID string, upd models.ListUpdate) error {
	sets := []string{"updated_at = ?"}
	args := []any{time.Now().UTC()}

	if upd.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *upd.Name)
	}
	if upd.IsPublic != nil {
		sets = append(sets, "is_public = ?")
		args = append(args, *upd.IsPublic)
	}

	query := `UPDATE lists SET ` + strings.Join(sets, ", ") + ` WHERE id = ? AND user_id = ?`
	args = append(args, listID, uid)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update list: %w", err)
	}
	return expectOne(result, fmt.Errorf("%w: %s", shared.ErrListNotFound, listID))
}

// Delete hard-deletes the list. It fails while the list still holds items.
func (r *ListRepository) Delete(ctx context.Context, uid, listID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM lists WHERE id = ? AND user_id = ?`, listID, uid)
	if isForeignKeyViolation(err) {
		return fmt.Errorf("failed to delete list %s: list still has items: %w", listID, err)
	}
	if err != nil {
		return fmt.Errorf("failed to delete list: %w", err)
	}
	return expectOne(result, fmt.Errorf("%w: %s", shared.ErrListNotFound, listID))
}

// List retrieves all lists matching the given criteria ordered by creation sequence.
//
// Supported criteria keys: "user_id" (string), "is_default" (bool).
// A present "user_id" always filters, even when empty.
func (r *ListRepository) List(ctx context.Context, criteria map[string]any) ([]*models.List, error) {
	query := `SELECT ` + listColumns + ` FROM lists WHERE 1 = 1`
	args := []any{}

	if uid, ok := criteria["user_id"].(string); ok {
		query += " AND user_id = ?"
		args = append(args, uid)
	}

	if isDefault, ok := criteria["is_default"].(bool); ok {
		query += " AND is_default = ?"
		args = append(args, isDefault)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query lists: %w", err)
	}
	defer rows.Close()

	lists := []*models.List{}
	for rows.Next() {
		list, err := scanList(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan list: %w", err)
		}
		lists = append(lists, list)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return lists, nil
}

func scanList(row scanner) (*models.List, error) {
	var list models.List
	err := row.Scan(&list.ID, &list.Sequence, &list.UserID, &list.Name, &list.IsDefault, &list.IsPublic,
		&list.CreatedAt, &list.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &list, nil
}
