package lists

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/desertthunder/reelist/internal/models"
	"github.com/desertthunder/reelist/internal/shared"
)

// fakeStore is an in-memory document store with injectable failures.
type fakeStore struct {
	mu    sync.Mutex
	seq   int
	lists map[string]*models.List
	items map[string]*models.ListItem

	listErr       error            // returned by item scans
	createItemErr error            // returned by item inserts
	deleteItemErr map[string]error // keyed by movie id
	listCalls     int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		lists:         map[string]*models.List{},
		items:         map[string]*models.ListItem{},
		deleteItemErr: map[string]error{},
	}
}

func (f *fakeStore) next() int {
	f.seq++
	return f.seq
}

// Lists returns the list collection view of the store.
func (f *fakeStore) Lists() ListDocuments { return fakeLists{f} }

// Items returns the item collection view of the store.
func (f *fakeStore) Items() ItemDocuments { return fakeItems{f} }

func (f *fakeStore) itemCount(listID, movieID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, item := range f.items {
		if item.ListID == listID && (movieID == "" || item.MovieID == movieID) {
			n++
		}
	}
	return n
}

func (f *fakeStore) writes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seq
}

type fakeLists struct{ *fakeStore }

func (f fakeLists) Create(_ context.Context, list *models.List) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if list.IsDefault {
		for _, l := range f.lists {
			if l.UserID == list.UserID && l.IsDefault {
				return fmt.Errorf("%w: %s", shared.ErrDefaultListExists, list.UserID)
			}
		}
	}

	list.Sequence = f.next()
	list.ID = fmt.Sprintf("list-%d", list.Sequence)
	list.CreatedAt = time.Now()
	cp := *list
	f.lists[list.ID] = &cp
	return nil
}

func (f fakeLists) Get(_ context.Context, uid, listID string) (*models.List, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	list, ok := f.lists[listID]
	if !ok || list.UserID != uid {
		return nil, fmt.Errorf("%w: %s", shared.ErrListNotFound, listID)
	}
	cp := *list
	return &cp, nil
}

func (f fakeLists) Update(_ context.Context, uid, listID string, upd models.ListUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	list, ok := f.lists[listID]
	if !ok || list.UserID != uid {
		return fmt.Errorf("%w: %s", shared.ErrListNotFound, listID)
	}
	f.next()
	if upd.Name != nil {
		list.Name = *upd.Name
	}
	if upd.IsPublic != nil {
		list.IsPublic = *upd.IsPublic
	}
	return nil
}

func (f fakeLists) Delete(_ context.Context, uid, listID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	list, ok := f.lists[listID]
	if !ok || list.UserID != uid {
		return fmt.Errorf("%w: %s", shared.ErrListNotFound, listID)
	}
	for _, item := range f.items {
		if item.ListID == listID {
			return fmt.Errorf("list %s still has items", listID)
		}
	}
	f.next()
	delete(f.lists, listID)
	return nil
}

func (f fakeLists) List(_ context.Context, criteria map[string]any) ([]*models.List, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := []*models.List{}
	for _, list := range f.lists {
		if uid, ok := criteria["user_id"].(string); ok && list.UserID != uid {
			continue
		}
		if d, ok := criteria["is_default"].(bool); ok && list.IsDefault != d {
			continue
		}
		cp := *list
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sequence < out[j].Sequence })
	return out, nil
}

type fakeItems struct{ *fakeStore }

func (f fakeItems) Create(_ context.Context, item *models.ListItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createItemErr != nil {
		return f.createItemErr
	}
	if item.ID == "" {
		item.ID = shared.ItemID(item.UserID, item.ListID, item.MovieID)
	}
	if _, ok := f.items[item.ID]; ok {
		return fmt.Errorf("%w: %s", shared.ErrDuplicateItem, item.MovieID)
	}
	item.Sequence = f.next()
	item.AddedAt = time.Now()
	cp := *item
	f.items[item.ID] = &cp
	return nil
}

func (f fakeItems) Delete(_ context.Context, uid, listID, itemID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	item, ok := f.items[itemID]
	if !ok || item.UserID != uid || item.ListID != listID {
		return fmt.Errorf("%w: %s", shared.ErrItemNotFound, itemID)
	}
	if err := f.deleteItemErr[item.MovieID]; err != nil {
		return err
	}
	f.next()
	delete(f.items, itemID)
	return nil
}

func (f fakeItems) List(_ context.Context, criteria map[string]any) ([]*models.ListItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}

	out := []*models.ListItem{}
	for _, item := range f.items {
		if v, ok := criteria["user_id"].(string); ok && item.UserID != v {
			continue
		}
		if v, ok := criteria["list_id"].(string); ok && item.ListID != v {
			continue
		}
		if v, ok := criteria["movie_id"].(string); ok && item.MovieID != v {
			continue
		}
		cp := *item
		out = append(out, &cp)
	}

	newest, _ := criteria["newest_first"].(bool)
	sort.Slice(out, func(i, j int) bool {
		if newest {
			return out[i].Sequence > out[j].Sequence
		}
		return out[i].Sequence < out[j].Sequence
	})
	return out, nil
}

// putItem inserts an item directly, bypassing duplicate checks.
func (f *fakeStore) putItem(uid, listID, movieID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seq := f.next()
	id := fmt.Sprintf("raw-%d", seq)
	f.items[id] = &models.ListItem{ID: id, UserID: uid, ListID: listID, MovieID: movieID, Sequence: seq}
}

type recordingObserver struct {
	mu   sync.Mutex
	seen map[string][]string
}

func (o *recordingObserver) ObserveMutation(op string, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.seen == nil {
		o.seen = map[string][]string{}
	}
	o.seen[op] = append(o.seen[op], Kind(err))
}
