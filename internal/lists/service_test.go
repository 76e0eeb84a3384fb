package lists

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/desertthunder/reelist/internal/models"
	"github.com/desertthunder/reelist/internal/shared"
)

var shawshank = models.Movie{
	IMDbID:     "tt0111161",
	Title:      "The Shawshank Redemption",
	Year:       "1994",
	Type:       "movie",
	Director:   "Frank Darabont",
	IMDbRating: "9.3",
}

// newProfile bootstraps uid with the default list plus "Watch Later".
func newProfile(t *testing.T, svc *Service, uid string) (favorites, watchLater string) {
	t.Helper()
	ctx := context.Background()

	def, err := svc.EnsureProfile(ctx, uid)
	if err != nil {
		t.Fatalf("EnsureProfile failed: %v", err)
	}
	id, err := svc.CreateList(ctx, uid, "Watch Later")
	if err != nil {
		t.Fatalf("CreateList failed: %v", err)
	}
	return def.ID, id
}

func TestService(t *testing.T) {
	ctx := context.Background()

	t.Run("AddMovieToList", func(t *testing.T) {
		t.Run("twice sequentially", func(t *testing.T) {
			fs := newFakeStore()
			svc := NewService(fs.Lists(), fs.Items(), Options{})
			_, list := newProfile(t, svc, "u1")

			item, err := svc.AddMovieToList(ctx, "u1", list, shawshank)
			if err != nil {
				t.Fatalf("first add failed: %v", err)
			}
			if item.Title != shawshank.Title || item.Metadata.Director != "Frank Darabont" {
				t.Errorf("denormalized fields not copied: %+v", item)
			}

			writes := fs.writes()
			_, err = svc.AddMovieToList(ctx, "u1", list, shawshank)
			if !errors.Is(err, shared.ErrDuplicateItem) {
				t.Fatalf("expected ErrDuplicateItem, got %v", err)
			}
			if fs.writes() != writes {
				t.Error("duplicate add must not write")
			}
			if n := fs.itemCount(list, shawshank.IMDbID); n != 1 {
				t.Errorf("expected 1 item, got %d", n)
			}
		})

		t.Run("concurrent adds produce one item", func(t *testing.T) {
			fs := newFakeStore()
			svc := NewService(fs.Lists(), fs.Items(), Options{})
			_, list := newProfile(t, svc, "u1")

			var (
				wg         sync.WaitGroup
				mu         sync.Mutex
				ok, dupes  int
				unexpected []error
			)
			for range 10 {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, err := svc.AddMovieToList(ctx, "u1", list, shawshank)
					mu.Lock()
					defer mu.Unlock()
					switch {
					case err == nil:
						ok++
					case errors.Is(err, shared.ErrDuplicateItem):
						dupes++
					default:
						unexpected = append(unexpected, err)
					}
				}()
			}
			wg.Wait()

			if ok != 1 || dupes != 9 || len(unexpected) != 0 {
				t.Errorf("expected 1 success and 9 duplicates, got %d/%d (%v)", ok, dupes, unexpected)
			}
		})

		t.Run("validation and ownership", func(t *testing.T) {
			fs := newFakeStore()
			svc := NewService(fs.Lists(), fs.Items(), Options{})
			_, list := newProfile(t, svc, "u1")

			tests := []struct {
				name  string
				uid   string
				list  string
				movie models.Movie
				want  error
			}{
				{"empty movie id", "u1", list, models.Movie{IMDbID: "  "}, shared.ErrValidation},
				{"other user", "u2", list, shawshank, shared.ErrListNotFound},
				{"missing list", "u1", "gone", shawshank, shared.ErrListNotFound},
			}

			for _, tt := range tests {
				t.Run(tt.name, func(t *testing.T) {
					if _, err := svc.AddMovieToList(ctx, tt.uid, tt.list, tt.movie); !errors.Is(err, tt.want) {
						t.Errorf("expected %v, got %v", tt.want, err)
					}
				})
			}
		})

		t.Run("store failure on insert", func(t *testing.T) {
			fs := newFakeStore()
			svc := NewService(fs.Lists(), fs.Items(), Options{})
			_, list := newProfile(t, svc, "u1")
			fs.createItemErr = errors.New("quota exceeded")

			_, err := svc.AddMovieToList(ctx, "u1", list, shawshank)
			if !errors.Is(err, shared.ErrStore) {
				t.Errorf("expected ErrStore, got %v", err)
			}
		})
	})

	t.Run("RemoveMovieFromList", func(t *testing.T) {
		t.Run("absent is a no-op", func(t *testing.T) {
			fs := newFakeStore()
			svc := NewService(fs.Lists(), fs.Items(), Options{})
			_, list := newProfile(t, svc, "u1")

			writes := fs.writes()
			if err := svc.RemoveMovieFromList(ctx, "u1", list, "tt0000001"); err != nil {
				t.Fatalf("expected no-op, got %v", err)
			}
			if fs.writes() != writes {
				t.Error("no-op remove must not write")
			}
		})

		t.Run("cleans up duplicates", func(t *testing.T) {
			fs := newFakeStore()
			svc := NewService(fs.Lists(), fs.Items(), Options{})
			_, list := newProfile(t, svc, "u1")
			fs.putItem("u1", list, "tt1")
			fs.putItem("u1", list, "tt1")
			fs.putItem("u1", list, "tt2")

			if err := svc.RemoveMovieFromList(ctx, "u1", list, "tt1"); err != nil {
				t.Fatalf("remove failed: %v", err)
			}
			if n := fs.itemCount(list, "tt1"); n != 0 {
				t.Errorf("expected all tt1 items removed, got %d", n)
			}
			if n := fs.itemCount(list, "tt2"); n != 1 {
				t.Errorf("tt2 should remain, got %d", n)
			}
		})
	})

	t.Run("DeleteList", func(t *testing.T) {
		t.Run("default list is protected", func(t *testing.T) {
			fs := newFakeStore()
			svc := NewService(fs.Lists(), fs.Items(), Options{})
			favorites, _ := newProfile(t, svc, "u1")
			fs.putItem("u1", favorites, "tt1")

			writes := fs.writes()
			if err := svc.DeleteList(ctx, "u1", favorites); !errors.Is(err, shared.ErrProtectedList) {
				t.Fatalf("expected ErrProtectedList, got %v", err)
			}
			if fs.writes() != writes {
				t.Error("protected delete must not write")
			}
			if n := fs.itemCount(favorites, ""); n != 1 {
				t.Errorf("items of the default list must survive, got %d", n)
			}
		})

		t.Run("N items", func(t *testing.T) {
			fs := newFakeStore()
			svc := NewService(fs.Lists(), fs.Items(), Options{})
			_, list := newProfile(t, svc, "u1")
			for i := range 7 {
				if _, err := svc.AddMovieToList(ctx, "u1", list, models.Movie{IMDbID: fmt.Sprintf("tt%07d", i)}); err != nil {
					t.Fatalf("add failed: %v", err)
				}
			}

			if err := svc.DeleteList(ctx, "u1", list); err != nil {
				t.Fatalf("DeleteList failed: %v", err)
			}
			if n := fs.itemCount(list, ""); n != 0 {
				t.Errorf("expected 0 items, got %d", n)
			}
			if _, err := svc.Store().GetList(ctx, "u1", list); !errors.Is(err, shared.ErrListNotFound) {
				t.Errorf("expected list gone, got %v", err)
			}
		})
	})

	t.Run("EnsureProfile is idempotent", func(t *testing.T) {
		fs := newFakeStore()
		svc := NewService(fs.Lists(), fs.Items(), Options{})

		first, err := svc.EnsureProfile(ctx, "u1")
		if err != nil {
			t.Fatalf("EnsureProfile failed: %v", err)
		}
		second, err := svc.EnsureProfile(ctx, "u1")
		if err != nil {
			t.Fatalf("EnsureProfile failed: %v", err)
		}

		if first.ID != second.ID || first.Name != models.DefaultListName || !first.IsDefault {
			t.Errorf("unexpected default lists: %+v / %+v", first, second)
		}

		lists, _ := svc.Lists(ctx, "u1")
		if len(lists) != 1 {
			t.Errorf("expected exactly one list, got %d", len(lists))
		}
	})

	t.Run("ToggleMovie", func(t *testing.T) {
		fs := newFakeStore()
		svc := NewService(fs.Lists(), fs.Items(), Options{})
		_, list := newProfile(t, svc, "u1")

		for i, want := range []bool{true, false, true} {
			present, err := svc.ToggleMovie(ctx, "u1", list, shawshank)
			if err != nil {
				t.Fatalf("toggle %d failed: %v", i, err)
			}
			if present != want {
				t.Errorf("toggle %d: expected present=%v, got %v", i, want, present)
			}
		}
	})

	t.Run("ToggleMovie trims the movie id", func(t *testing.T) {
		fs := newFakeStore()
		svc := NewService(fs.Lists(), fs.Items(), Options{})
		_, list := newProfile(t, svc, "u1")
		if _, err := svc.AddMovieToList(ctx, "u1", list, shawshank); err != nil {
			t.Fatalf("add failed: %v", err)
		}

		padded := shawshank
		padded.IMDbID = "  tt0111161 "
		present, err := svc.ToggleMovie(ctx, "u1", list, padded)
		if err != nil {
			t.Fatalf("toggle failed: %v", err)
		}
		if present || fs.itemCount(list, "tt0111161") != 0 {
			t.Errorf("expected the stored movie to be removed, present=%v", present)
		}
	})

	t.Run("empty movie id", func(t *testing.T) {
		fs := newFakeStore()
		svc := NewService(fs.Lists(), fs.Items(), Options{})
		_, list := newProfile(t, svc, "u1")
		for _, id := range []string{"tt1", "tt2", "tt3"} {
			fs.putItem("u1", list, id)
		}
		writes := fs.writes()

		for _, id := range []string{"", "   "} {
			if err := svc.RemoveMovieFromList(ctx, "u1", list, id); !errors.Is(err, shared.ErrValidation) {
				t.Errorf("RemoveMovieFromList(%q): expected ErrValidation, got %v", id, err)
			}
			if _, err := svc.ToggleMovie(ctx, "u1", list, models.Movie{IMDbID: id}); !errors.Is(err, shared.ErrValidation) {
				t.Errorf("ToggleMovie(%q): expected ErrValidation, got %v", id, err)
			}
			if _, err := svc.Store().FindItems(ctx, "u1", list, id); !errors.Is(err, shared.ErrValidation) {
				t.Errorf("FindItems(%q): expected ErrValidation, got %v", id, err)
			}
			if svc.Membership().IsMovieInList(ctx, "u1", list, id) {
				t.Errorf("IsMovieInList(%q) must be false", id)
			}
		}

		if n := fs.itemCount(list, ""); n != 3 {
			t.Errorf("expected all 3 items kept, got %d", n)
		}
		if fs.writes() != writes {
			t.Error("rejected calls must not write")
		}
	})

	t.Run("empty user id", func(t *testing.T) {
		fs := newFakeStore()
		svc := NewService(fs.Lists(), fs.Items(), Options{})
		_, list := newProfile(t, svc, "u1")
		fs.putItem("u1", list, "tt1")

		if _, err := svc.Lists(ctx, ""); !errors.Is(err, shared.ErrValidation) {
			t.Errorf("Lists: expected ErrValidation, got %v", err)
		}
		if _, err := svc.EnsureProfile(ctx, " "); !errors.Is(err, shared.ErrValidation) {
			t.Errorf("EnsureProfile: expected ErrValidation, got %v", err)
		}
		if _, err := svc.CreateList(ctx, "", "Later"); !errors.Is(err, shared.ErrValidation) {
			t.Errorf("CreateList: expected ErrValidation, got %v", err)
		}
		if err := svc.RemoveMovieFromList(ctx, "", list, "tt1"); !errors.Is(err, shared.ErrValidation) {
			t.Errorf("RemoveMovieFromList: expected ErrValidation, got %v", err)
		}
		if svc.Membership().IsMovieInList(ctx, "", list, "tt1") {
			t.Error("IsMovieInList must be false without a user")
		}
		if n := fs.itemCount(list, "tt1"); n != 1 {
			t.Errorf("expected the item kept, got %d", n)
		}
	})

	t.Run("concurrent EnsureProfile yields one default list", func(t *testing.T) {
		fs := newFakeStore()
		svc := NewService(fs.Lists(), fs.Items(), Options{})

		var (
			wg  sync.WaitGroup
			mu  sync.Mutex
			ids = map[string]bool{}
		)
		for range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				list, err := svc.EnsureProfile(ctx, "u1")
				if err != nil {
					t.Errorf("EnsureProfile failed: %v", err)
					return
				}
				mu.Lock()
				ids[list.ID] = true
				mu.Unlock()
			}()
		}
		wg.Wait()

		if len(ids) != 1 {
			t.Errorf("expected every caller to see the same default list, got %v", ids)
		}
	})

	t.Run("Items requires ownership", func(t *testing.T) {
		fs := newFakeStore()
		svc := NewService(fs.Lists(), fs.Items(), Options{})
		_, list := newProfile(t, svc, "u1")

		if _, err := svc.Items(ctx, "u2", list); !errors.Is(err, shared.ErrListNotFound) {
			t.Errorf("expected ErrListNotFound, got %v", err)
		}
	})

	t.Run("Observer", func(t *testing.T) {
		fs := newFakeStore()
		obs := &recordingObserver{}
		svc := NewService(fs.Lists(), fs.Items(), Options{Observer: obs})
		favorites, list := newProfile(t, svc, "u1")

		svc.AddMovieToList(ctx, "u1", list, shawshank)
		svc.AddMovieToList(ctx, "u1", list, shawshank)
		svc.DeleteList(ctx, "u1", favorites)
		svc.RenameList(ctx, "u1", list, " ")

		tests := []struct {
			op   string
			want []string
		}{
			{OpCreateList, []string{KindOK}},
			{OpAddMovie, []string{KindOK, KindDuplicate}},
			{OpDeleteList, []string{KindProtected}},
			{OpRenameList, []string{KindValidation}},
		}

		for _, tt := range tests {
			t.Run(tt.op, func(t *testing.T) {
				got := obs.seen[tt.op]
				if fmt.Sprint(got) != fmt.Sprint(tt.want) {
					t.Errorf("expected %v, got %v", tt.want, got)
				}
			})
		}
	})
}

func TestServiceScenarios(t *testing.T) {
	ctx := context.Background()

	t.Run("membership follows add and remove", func(t *testing.T) {
		fs := newFakeStore()
		svc := NewService(fs.Lists(), fs.Items(), Options{})
		favorites, watchLater := newProfile(t, svc, "u1")

		if _, err := svc.AddMovieToList(ctx, "u1", watchLater, shawshank); err != nil {
			t.Fatalf("add failed: %v", err)
		}

		_, got, err := svc.MembershipFor(ctx, "u1", shawshank.IMDbID)
		if err != nil {
			t.Fatalf("MembershipFor failed: %v", err)
		}
		if got[favorites] || !got[watchLater] || len(got) != 2 {
			t.Errorf("expected {Favorites: false, Watch Later: true}, got %v", got)
		}

		if err := svc.RemoveMovieFromList(ctx, "u1", watchLater, shawshank.IMDbID); err != nil {
			t.Fatalf("remove failed: %v", err)
		}

		_, got, _ = svc.MembershipFor(ctx, "u1", shawshank.IMDbID)
		if got[favorites] || got[watchLater] || len(got) != 2 {
			t.Errorf("expected {Favorites: false, Watch Later: false}, got %v", got)
		}
	})

	t.Run("rename to empty is rejected", func(t *testing.T) {
		fs := newFakeStore()
		svc := NewService(fs.Lists(), fs.Items(), Options{})
		_, watchLater := newProfile(t, svc, "u1")

		if err := svc.RenameList(ctx, "u1", watchLater, ""); !errors.Is(err, shared.ErrValidation) {
			t.Fatalf("expected ErrValidation, got %v", err)
		}

		list, err := svc.Store().GetList(ctx, "u1", watchLater)
		if err != nil {
			t.Fatalf("GetList failed: %v", err)
		}
		if list.Name != "Watch Later" {
			t.Errorf("expected name to remain Watch Later, got %q", list.Name)
		}
	})

	t.Run("delete list with three items", func(t *testing.T) {
		fs := newFakeStore()
		svc := NewService(fs.Lists(), fs.Items(), Options{})
		_, watchLater := newProfile(t, svc, "u1")

		for _, id := range []string{"tt0111161", "tt0068646", "tt0071562"} {
			if _, err := svc.AddMovieToList(ctx, "u1", watchLater, models.Movie{IMDbID: id}); err != nil {
				t.Fatalf("add failed: %v", err)
			}
		}

		if err := svc.DeleteList(ctx, "u1", watchLater); err != nil {
			t.Fatalf("DeleteList failed: %v", err)
		}

		lists, _ := svc.Lists(ctx, "u1")
		if len(lists) != 1 || lists[0].Name != models.DefaultListName {
			t.Errorf("expected only Favorites, got %+v", lists)
		}

		items, err := svc.Store().GetListItems(ctx, "u1", watchLater)
		if err != nil {
			t.Fatalf("item scan failed: %v", err)
		}
		if len(items) != 0 {
			t.Errorf("expected no items under deleted list, got %d", len(items))
		}
	})
}

func TestKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, KindOK},
		{fmt.Errorf("%w: x", shared.ErrValidation), KindValidation},
		{fmt.Errorf("%w: u1", shared.ErrDefaultListExists), KindDuplicate},
		{fmt.Errorf("%w: x", shared.ErrDuplicateItem), KindDuplicate},
		{shared.ErrProtectedList, KindProtected},
		{shared.ErrListNotFound, KindNotFound},
		{shared.ErrItemNotFound, KindNotFound},
		{storeErr("op", errors.New("boom")), KindStore},
		{errors.New("boom"), KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := Kind(tt.err); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}
