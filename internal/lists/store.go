package lists

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/sourcegraph/conc/pool"

	"github.com/desertthunder/reelist/internal/models"
	"github.com/desertthunder/reelist/internal/shared"
)

const (
	DefaultDeleteConcurrency     = 8
	DefaultMembershipConcurrency = 4
)

// ListDocuments is the document-store collection of lists under users/{uid}/lists.
type ListDocuments interface {
	Create(ctx context.Context, list *models.List) error
	Get(ctx context.Context, uid, listID string) (*models.List, error)
	Update(ctx context.Context, uid, listID string, upd models.ListUpdate) error
	Delete(ctx context.Context, uid, listID string) error
	List(ctx context.Context, criteria map[string]any) ([]*models.List, error)
}

// ItemDocuments is the document-store collection of items nested under each list.
type ItemDocuments interface {
	Create(ctx context.Context, item *models.ListItem) error
	Delete(ctx context.Context, uid, listID, itemID string) error
	List(ctx context.Context, criteria map[string]any) ([]*models.ListItem, error)
}

// Options configures the list core.
type Options struct {
	Logger                *log.Logger
	DeleteConcurrency     int
	MembershipConcurrency int
	Observer              Observer
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
	if o.DeleteConcurrency < 1 {
		o.DeleteConcurrency = DefaultDeleteConcurrency
	}
	if o.MembershipConcurrency < 1 {
		o.MembershipConcurrency = DefaultMembershipConcurrency
	}
	return o
}

// Store owns CRUD over a user's list collection.
type Store struct {
	lists  ListDocuments
	items  ItemDocuments
	logger *log.Logger
	fanout int
}

// NewStore creates a [Store] over the given collections.
func NewStore(lists ListDocuments, items ItemDocuments, opts Options) *Store {
	opts = opts.withDefaults()
	return &Store{lists: lists, items: items, logger: opts.Logger, fanout: opts.DeleteConcurrency}
}

// CreateList validates name and persists a new list, returning its ID.
func (s *Store) CreateList(ctx context.Context, uid, name string, isDefault bool) (string, error) {
	if err := requireUser(uid); err != nil {
		return "", err
	}
	name, err := NormalizeName(name)
	if err != nil {
		return "", err
	}

	list := &models.List{UserID: uid, Name: name, IsDefault: isDefault}
	if err := s.lists.Create(ctx, list); err != nil {
		return "", storeErr("create list", err)
	}

	s.logger.Debug("list created", "uid", uid, "list", list.ID, "default", isDefault)
	return list.ID, nil
}

// GetUserLists returns the user's lists in creation order.
func (s *Store) GetUserLists(ctx context.Context, uid string) ([]*models.List, error) {
	if err := requireUser(uid); err != nil {
		return nil, err
	}
	lists, err := s.lists.List(ctx, map[string]any{"user_id": uid})
	if err != nil {
		return nil, storeErr("get user lists", err)
	}
	return lists, nil
}

// GetList returns the list when it belongs to uid.
func (s *Store) GetList(ctx context.Context, uid, listID string) (*models.List, error) {
	if err := requireUser(uid); err != nil {
		return nil, err
	}
	list, err := s.lists.Get(ctx, uid, listID)
	if err != nil {
		return nil, storeErr("get list", err)
	}
	return list, nil
}

// UpdateList applies a partial update. A name, when present, is validated first.
func (s *Store) UpdateList(ctx context.Context, uid, listID string, upd models.ListUpdate) error {
	if err := requireUser(uid); err != nil {
		return err
	}
	if upd.Name != nil {
		name, err := NormalizeName(*upd.Name)
		if err != nil {
			return err
		}
		upd.Name = &name
	}

	if err := s.lists.Update(ctx, uid, listID, upd); err != nil {
		return storeErr("update list", err)
	}
	return nil
}

// DeleteList deletes every item in the list, waits for all deletions, then deletes the list.
//
// Item deletions run concurrently. When any of them fails the list document is kept and the
// joined error is returned.
func (s *Store) DeleteList(ctx context.Context, uid, listID string) error {
	if _, err := s.GetList(ctx, uid, listID); err != nil {
		return err
	}

	items, err := s.GetListItems(ctx, uid, listID)
	if err != nil {
		return err
	}

	p := pool.New().WithMaxGoroutines(s.fanout).WithErrors().WithContext(ctx)
	for _, item := range items {
		p.Go(func(ctx context.Context) error {
			err := s.items.Delete(ctx, uid, listID, item.ID)
			if errors.Is(err, shared.ErrItemNotFound) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("item %s: %w", item.MovieID, err)
			}
			return nil
		})
	}

	if err := p.Wait(); err != nil {
		s.logger.Warn("cascade delete incomplete, keeping list", "uid", uid, "list", listID, "error", err)
		return storeErr("delete list items", err)
	}

	if err := s.lists.Delete(ctx, uid, listID); err != nil {
		return storeErr("delete list", err)
	}

	s.logger.Debug("list deleted", "uid", uid, "list", listID, "items", len(items))
	return nil
}

// GetListItems returns the list's items, newest first.
func (s *Store) GetListItems(ctx context.Context, uid, listID string) ([]*models.ListItem, error) {
	if err := requireUser(uid); err != nil {
		return nil, err
	}
	items, err := s.items.List(ctx, map[string]any{"user_id": uid, "list_id": listID, "newest_first": true})
	if err != nil {
		return nil, storeErr("get list items", err)
	}
	return items, nil
}

// FindItems returns the items of the list that reference movieID.
func (s *Store) FindItems(ctx context.Context, uid, listID, movieID string) ([]*models.ListItem, error) {
	if err := requireUser(uid); err != nil {
		return nil, err
	}
	movieID, err := requireMovie(movieID)
	if err != nil {
		return nil, err
	}
	items, err := s.items.List(ctx, map[string]any{"user_id": uid, "list_id": listID, "movie_id": movieID})
	if err != nil {
		return nil, storeErr("find items", err)
	}
	return items, nil
}

func requireUser(uid string) error {
	if strings.TrimSpace(uid) == "" {
		return fmt.Errorf("%w: user id is required", shared.ErrValidation)
	}
	return nil
}

// requireMovie returns the trimmed movie ID. An empty ID never reaches the store, where it
// would not select a single movie.
func requireMovie(movieID string) (string, error) {
	movieID = strings.TrimSpace(movieID)
	if movieID == "" {
		return "", fmt.Errorf("%w: movie id is required", shared.ErrValidation)
	}
	return movieID, nil
}

// storeErr passes domain errors through and wraps everything else as [shared.ErrStore].
func storeErr(op string, err error) error {
	for _, sentinel := range []error{
		shared.ErrValidation, shared.ErrDuplicateItem, shared.ErrProtectedList,
		shared.ErrListNotFound, shared.ErrDefaultListExists, shared.ErrItemNotFound, shared.ErrUserNotFound, shared.ErrStore,
	} {
		if errors.Is(err, sentinel) {
			return err
		}
	}
	return fmt.Errorf("%w: %s: %w", shared.ErrStore, op, err)
}
