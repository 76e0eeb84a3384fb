package lists

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/reelist/internal/models"
	"github.com/desertthunder/reelist/internal/shared"
)

// Mutation names reported to an [Observer].
const (
	OpCreateList  = "create_list"
	OpRenameList  = "rename_list"
	OpDeleteList  = "delete_list"
	OpAddMovie    = "add_movie"
	OpRemoveMovie = "remove_movie"
	OpToggleMovie = "toggle_movie"
)

// Observer receives the outcome of every mutation.
type Observer interface {
	ObserveMutation(op string, err error)
}

// Service is the single entry point for list and item mutations.
type Service struct {
	store      *Store
	membership *Membership
	logger     *log.Logger
	observer   Observer
}

// NewService wires a [Store] and a [Membership] index over the same collections.
func NewService(lists ListDocuments, items ItemDocuments, opts Options) *Service {
	opts = opts.withDefaults()
	return &Service{
		store:      NewStore(lists, items, opts),
		membership: NewMembership(items, opts),
		logger:     opts.Logger,
		observer:   opts.Observer,
	}
}

// Store returns the underlying list store.
func (s *Service) Store() *Store { return s.store }

// Membership returns the underlying membership index.
func (s *Service) Membership() *Membership { return s.membership }

// AddMovieToList copies movie into a new item of the list.
//
// It fails with [shared.ErrDuplicateItem] without writing when the list already holds the movie.
func (s *Service) AddMovieToList(ctx context.Context, uid, listID string, movie models.Movie) (item *models.ListItem, err error) {
	defer func() { s.observe(OpAddMovie, err) }()

	if movie.IMDbID, err = requireMovie(movie.IMDbID); err != nil {
		return nil, err
	}

	if _, err := s.store.GetList(ctx, uid, listID); err != nil {
		return nil, err
	}

	existing, err := s.store.FindItems(ctx, uid, listID, movie.IMDbID)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, fmt.Errorf("%w: %s", shared.ErrDuplicateItem, movie.IMDbID)
	}

	item = models.NewListItem(uid, listID, movie)
	if err := s.store.items.Create(ctx, item); err != nil {
		return nil, storeErr("add movie", err)
	}

	s.logger.Info("movie added", "uid", uid, "list", listID, "movie", movie.IMDbID)
	return item, nil
}

// RemoveMovieFromList deletes every item of the list that references movieID.
// Removing an absent movie succeeds without writing.
func (s *Service) RemoveMovieFromList(ctx context.Context, uid, listID, movieID string) (err error) {
	defer func() { s.observe(OpRemoveMovie, err) }()

	if movieID, err = requireMovie(movieID); err != nil {
		return err
	}

	items, err := s.store.FindItems(ctx, uid, listID, movieID)
	if err != nil {
		return err
	}

	for _, item := range items {
		err := s.store.items.Delete(ctx, uid, listID, item.ID)
		if err != nil && !errors.Is(err, shared.ErrItemNotFound) {
			return storeErr("remove movie", err)
		}
	}

	if len(items) > 0 {
		s.logger.Info("movie removed", "uid", uid, "list", listID, "movie", movieID, "items", len(items))
	}
	return nil
}

// CreateList creates a non-default list and returns its ID.
func (s *Service) CreateList(ctx context.Context, uid, name string) (id string, err error) {
	defer func() { s.observe(OpCreateList, err) }()
	return s.store.CreateList(ctx, uid, name, false)
}

// RenameList changes the name of a list.
func (s *Service) RenameList(ctx context.Context, uid, listID, newName string) (err error) {
	defer func() { s.observe(OpRenameList, err) }()
	return s.store.UpdateList(ctx, uid, listID, models.ListUpdate{Name: &newName})
}

// DeleteList cascades a delete of a list and its items.
// The default list is refused with [shared.ErrProtectedList].
func (s *Service) DeleteList(ctx context.Context, uid, listID string) (err error) {
	defer func() { s.observe(OpDeleteList, err) }()

	list, err := s.store.GetList(ctx, uid, listID)
	if err != nil {
		return err
	}
	if list.IsDefault {
		return fmt.Errorf("%w: %s", shared.ErrProtectedList, list.Name)
	}

	return s.store.DeleteList(ctx, uid, listID)
}

// EnsureProfile creates the default list when the user has none and returns it.
func (s *Service) EnsureProfile(ctx context.Context, uid string) (*models.List, error) {
	if err := requireUser(uid); err != nil {
		return nil, err
	}
	if list, err := s.defaultList(ctx, uid); list != nil || err != nil {
		return list, err
	}

	id, err := s.store.CreateList(ctx, uid, models.DefaultListName, true)
	if errors.Is(err, shared.ErrDefaultListExists) {
		// a concurrent bootstrap won the race for the default slot
		if list, err := s.defaultList(ctx, uid); list != nil || err != nil {
			return list, err
		}
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("profile bootstrapped", "uid", uid, "list", id)
	return s.store.GetList(ctx, uid, id)
}

func (s *Service) defaultList(ctx context.Context, uid string) (*models.List, error) {
	lists, err := s.store.lists.List(ctx, map[string]any{"user_id": uid, "is_default": true})
	if err != nil {
		return nil, storeErr("get default list", err)
	}
	if len(lists) == 0 {
		return nil, nil
	}
	return lists[0], nil
}

// ToggleMovie adds movie when the list lacks it and removes it otherwise.
// It returns the presence re-read from the store.
func (s *Service) ToggleMovie(ctx context.Context, uid, listID string, movie models.Movie) (present bool, err error) {
	defer func() { s.observe(OpToggleMovie, err) }()

	if movie.IMDbID, err = requireMovie(movie.IMDbID); err != nil {
		return false, err
	}

	existing, err := s.store.FindItems(ctx, uid, listID, movie.IMDbID)
	if err != nil {
		return false, err
	}

	if len(existing) > 0 {
		err = s.RemoveMovieFromList(ctx, uid, listID, movie.IMDbID)
	} else {
		_, err = s.AddMovieToList(ctx, uid, listID, movie)
	}
	if err != nil {
		return false, err
	}

	after, err := s.store.FindItems(ctx, uid, listID, movie.IMDbID)
	if err != nil {
		return false, err
	}
	return len(after) > 0, nil
}

// Lists returns the user's lists in creation order.
func (s *Service) Lists(ctx context.Context, uid string) ([]*models.List, error) {
	return s.store.GetUserLists(ctx, uid)
}

// Items returns the items of one of the user's lists, newest first.
func (s *Service) Items(ctx context.Context, uid, listID string) ([]*models.ListItem, error) {
	if _, err := s.store.GetList(ctx, uid, listID); err != nil {
		return nil, err
	}
	return s.store.GetListItems(ctx, uid, listID)
}

// MembershipFor re-reads the user's lists and reports which of them contain movieID.
func (s *Service) MembershipFor(ctx context.Context, uid, movieID string) ([]*models.List, models.Membership, error) {
	lists, err := s.store.GetUserLists(ctx, uid)
	if err != nil {
		return nil, nil, err
	}
	return lists, s.membership.Compute(ctx, uid, lists, movieID), nil
}

func (s *Service) observe(op string, err error) {
	if s.observer != nil {
		s.observer.ObserveMutation(op, err)
	}
}

// Error kinds returned by [Kind].
const (
	KindOK         = "ok"
	KindValidation = "validation"
	KindDuplicate  = "duplicate"
	KindProtected  = "protected"
	KindNotFound   = "not_found"
	KindStore      = "store"
	KindUnknown    = "unknown"
)

// Kind classifies a list error for callers that report outcomes.
func Kind(err error) string {
	switch {
	case err == nil:
		return KindOK
	case errors.Is(err, shared.ErrValidation):
		return KindValidation
	case errors.Is(err, shared.ErrDuplicateItem), errors.Is(err, shared.ErrDefaultListExists):
		return KindDuplicate
	case errors.Is(err, shared.ErrProtectedList):
		return KindProtected
	case errors.Is(err, shared.ErrListNotFound), errors.Is(err, shared.ErrItemNotFound), errors.Is(err, shared.ErrUserNotFound):
		return KindNotFound
	case errors.Is(err, shared.ErrStore):
		return KindStore
	default:
		return KindUnknown
	}
}
