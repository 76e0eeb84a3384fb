package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/desertthunder/reelist/internal/cache"
	"github.com/desertthunder/reelist/internal/models"
	"github.com/desertthunder/reelist/internal/shared"
)

func newTestOMDb(t *testing.T, h http.HandlerFunc, mutate func(*OMDbOpts)) (*OMDbService, *int64) {
	t.Helper()

	var calls int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		h(w, r)
	}))
	t.Cleanup(srv.Close)

	opts := OMDbOpts{
		BaseURL:    srv.URL + "/",
		APIKey:     "test-key",
		HTTPClient: srv.Client(),
		RateLimit:  1000,
		Retries:    2,
		RetryDelay: time.Millisecond,
	}
	if mutate != nil {
		mutate(&opts)
	}

	svc, err := NewOMDbService(opts)
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	return svc, &calls
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func searchPage(total, page, n int) map[string]any {
	movies := []map[string]string{}
	for i := range n {
		id := fmt.Sprintf("tt%07d", (page-1)*10+i)
		movies = append(movies, map[string]string{"imdbID": id, "Title": "Movie " + id, "Year": "1999", "Type": "movie", "Poster": "N/A"})
	}
	return map[string]any{"Search": movies, "totalResults": strconv.Itoa(total), "Response": "True"}
}

func TestOMDbService(t *testing.T) {
	ctx := context.Background()

	t.Run("NewOMDbService", func(t *testing.T) {
		t.Run("Missing API Key", func(t *testing.T) {
			_, err := NewOMDbService(OMDbOpts{})
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})

		t.Run("Defaults", func(t *testing.T) {
			svc, err := NewOMDbService(OMDbOpts{APIKey: "k"})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if svc.baseURL != DefaultOMDbURL || svc.attempts != 1 || svc.Name() != "OMDb" {
				t.Errorf("unexpected defaults: %+v", svc)
			}
		})
	})

	t.Run("Search", func(t *testing.T) {
		t.Run("sends query parameters", func(t *testing.T) {
			svc, _ := newTestOMDb(t, func(w http.ResponseWriter, r *http.Request) {
				q := r.URL.Query()
				if q.Get("s") != "shawshank" || q.Get("page") != "2" || q.Get("type") != "movie" || q.Get("y") != "1994" || q.Get("apikey") != "test-key" {
					t.Errorf("unexpected query: %s", r.URL.RawQuery)
				}
				writeJSON(w, searchPage(11, 2, 1))
			}, nil)

			result, err := svc.Search(ctx, SearchQuery{Query: " shawshank ", Page: 2, Type: "movie", Year: "1994"})
			if err != nil {
				t.Fatalf("search failed: %v", err)
			}
			if result.TotalResults != 11 || result.Page != 2 || len(result.Movies) != 1 {
				t.Errorf("unexpected result: %+v", result)
			}
		})

		t.Run("Response False", func(t *testing.T) {
			svc, calls := newTestOMDb(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, map[string]string{"Response": "False", "Error": "Movie not found!"})
			}, nil)

			_, err := svc.Search(ctx, SearchQuery{Query: "zzzz"})
			if !errors.Is(err, shared.ErrMovieNotFound) {
				t.Fatalf("expected ErrMovieNotFound, got %v", err)
			}
			if err.Error() != "movie not found: Movie not found!" {
				t.Errorf("expected provider message, got %q", err)
			}
			if *calls != 1 {
				t.Errorf("not-found must not be retried, got %d calls", *calls)
			}
		})

		t.Run("empty query", func(t *testing.T) {
			svc, calls := newTestOMDb(t, func(w http.ResponseWriter, r *http.Request) {}, nil)
			if _, err := svc.Search(ctx, SearchQuery{Query: "  "}); !errors.Is(err, shared.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
			if *calls != 0 {
				t.Error("empty query must not hit the API")
			}
		})

		t.Run("uses cache", func(t *testing.T) {
			searchCache := cache.New[*models.SearchResult](cache.Config{TTL: time.Minute})
			svc, calls := newTestOMDb(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, searchPage(1, 1, 1))
			}, func(o *OMDbOpts) { o.SearchCache = searchCache })

			for range 3 {
				if _, err := svc.Search(ctx, SearchQuery{Query: "matrix"}); err != nil {
					t.Fatalf("search failed: %v", err)
				}
			}
			if *calls != 1 {
				t.Errorf("expected 1 API call, got %d", *calls)
			}
			if searchCache.Stats().Hits != 2 {
				t.Errorf("expected 2 cache hits, got %d", searchCache.Stats().Hits)
			}

			if _, err := svc.Search(ctx, SearchQuery{Query: "matrix", Page: 2}); err != nil {
				t.Fatalf("search failed: %v", err)
			}
			if *calls != 2 {
				t.Errorf("a different page must miss the cache, got %d calls", *calls)
			}
		})
	})

	t.Run("Retries", func(t *testing.T) {
		tests := []struct {
			name      string
			status    []int
			wantErr   error
			wantCalls int64
		}{
			{"recovers after 5xx", []int{503, 502, 200}, nil, 3},
			{"gives up after retries", []int{500, 500, 500}, shared.ErrServiceUnavailable, 3},
			{"no retry on 4xx", []int{401}, shared.ErrAPIRequest, 1},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				var n int64
				svc, calls := newTestOMDb(t, func(w http.ResponseWriter, r *http.Request) {
					i := atomic.AddInt64(&n, 1) - 1
					status := tt.status[min(int(i), len(tt.status)-1)]
					if status != http.StatusOK {
						w.WriteHeader(status)
						writeJSON(w, map[string]string{"Response": "False", "Error": "Invalid API key!"})
						return
					}
					writeJSON(w, map[string]string{"Response": "True", "imdbID": "tt0111161", "Title": "The Shawshank Redemption"})
				}, nil)

				movie, err := svc.Details(ctx, "tt0111161")
				if tt.wantErr == nil {
					if err != nil {
						t.Fatalf("expected success, got %v", err)
					}
					if movie.Title != "The Shawshank Redemption" {
						t.Errorf("unexpected movie: %+v", movie)
					}
				} else if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected %v, got %v", tt.wantErr, err)
				}

				if *calls != tt.wantCalls {
					t.Errorf("expected %d calls, got %d", tt.wantCalls, *calls)
				}
			})
		}
	})

	t.Run("Details", func(t *testing.T) {
		t.Run("requests full plot", func(t *testing.T) {
			detailsCache := cache.New[*models.Movie](cache.Config{TTL: time.Minute})
			svc, calls := newTestOMDb(t, func(w http.ResponseWriter, r *http.Request) {
				q := r.URL.Query()
				if q.Get("i") != "tt0111161" || q.Get("plot") != "full" {
					t.Errorf("unexpected query: %s", r.URL.RawQuery)
				}
				writeJSON(w, map[string]string{
					"Response": "True", "imdbID": "tt0111161", "Title": "The Shawshank Redemption",
					"Director": "Frank Darabont", "imdbRating": "9.3", "Runtime": "142 min",
				})
			}, func(o *OMDbOpts) { o.DetailsCache = detailsCache })

			movie, err := svc.Details(ctx, "tt0111161")
			if err != nil {
				t.Fatalf("details failed: %v", err)
			}
			if movie.Director != "Frank Darabont" || movie.IMDbRating != "9.3" || movie.Runtime != "142 min" {
				t.Errorf("unexpected movie: %+v", movie)
			}

			if _, err := svc.Details(ctx, "tt0111161"); err != nil {
				t.Fatalf("details failed: %v", err)
			}
			if *calls != 1 {
				t.Errorf("expected cached second lookup, got %d calls", *calls)
			}
		})

		t.Run("malformed body", func(t *testing.T) {
			svc, _ := newTestOMDb(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("not json"))
			}, nil)

			if _, err := svc.Details(ctx, "tt1"); !errors.Is(err, shared.ErrAPIRequest) {
				t.Errorf("expected ErrAPIRequest, got %v", err)
			}
		})

		t.Run("canceled context", func(t *testing.T) {
			svc, _ := newTestOMDb(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, map[string]string{"Response": "True"})
			}, nil)

			cctx, cancel := context.WithCancel(ctx)
			cancel()
			if _, err := svc.Details(cctx, "tt1"); err == nil {
				t.Error("expected error for canceled context")
			}
		})
	})

	t.Run("SearchPages", func(t *testing.T) {
		tests := []struct {
			name      string
			total     int
			maxPages  int
			wantCount int
			wantCalls int64
		}{
			{"accumulates until total", 25, 0, 25, 3},
			{"stops at max pages", 25, 2, 20, 2},
			{"single short page", 4, 5, 4, 1},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				svc, calls := newTestOMDb(t, func(w http.ResponseWriter, r *http.Request) {
					page, _ := strconv.Atoi(r.URL.Query().Get("page"))
					n := min(10, tt.total-(page-1)*10)
					if n <= 0 {
						writeJSON(w, map[string]string{"Response": "False", "Error": "Movie not found!"})
						return
					}
					writeJSON(w, searchPage(tt.total, page, n))
				}, nil)

				result, err := svc.SearchPages(ctx, SearchQuery{Query: "star"}, tt.maxPages)
				if err != nil {
					t.Fatalf("SearchPages failed: %v", err)
				}
				if len(result.Movies) != tt.wantCount || result.TotalResults != tt.total {
					t.Errorf("expected %d movies of %d, got %d of %d", tt.wantCount, tt.total, len(result.Movies), result.TotalResults)
				}
				if *calls != tt.wantCalls {
					t.Errorf("expected %d calls, got %d", tt.wantCalls, *calls)
				}
			})
		}
	})
}
