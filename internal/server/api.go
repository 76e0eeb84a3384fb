package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/reelist/internal/auth"
	"github.com/desertthunder/reelist/internal/lists"
	"github.com/desertthunder/reelist/internal/models"
	"github.com/desertthunder/reelist/internal/services"
	"github.com/desertthunder/reelist/internal/shared"
)

const maxBodyBytes = 1 << 20

// Accounts signs API users up and in.
type Accounts interface {
	SignUp(ctx context.Context, email, password, displayName string) (*models.User, error)
	SignIn(ctx context.Context, email, password string) (*models.User, error)
}

// APIOpts holds the collaborators of the JSON API.
type APIOpts struct {
	Lists    *lists.Service
	Movies   services.MovieProvider // optional; without it items carry only the movie id
	Accounts Accounts
	Tokens   *Tokens
	Metrics  http.Handler // optional /metrics handler
	Logger   *log.Logger
}

// API serves the movie list JSON API.
type API struct {
	lists    *lists.Service
	movies   services.MovieProvider
	accounts Accounts
	tokens   *Tokens
	metrics  http.Handler
	logger   *log.Logger
}

// NewAPI creates an [API].
func NewAPI(opts APIOpts) *API {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	return &API{
		lists:    opts.Lists,
		movies:   opts.Movies,
		accounts: opts.Accounts,
		tokens:   opts.Tokens,
		metrics:  opts.Metrics,
		logger:   opts.Logger,
	}
}

// Register adds every API route to r.
func (a *API) Register(r Router) {
	user := func(h http.HandlerFunc) http.Handler { return a.tokens.RequireUser(h) }

	r.Handle(http.MethodGet, "/health", http.HandlerFunc(a.health))
	if a.metrics != nil {
		r.Handle(http.MethodGet, "/metrics", a.metrics)
	}

	r.Handle(http.MethodPost, "/api/auth/signup", http.HandlerFunc(a.signUp))
	r.Handle(http.MethodPost, "/api/auth/login", http.HandlerFunc(a.login))
	r.Handle(http.MethodPost, "/api/auth/logout", user(a.logout))

	r.Handle(http.MethodGet, "/api/lists", user(a.getLists))
	r.Handle(http.MethodPost, "/api/lists", user(a.createList))
	r.Handle(http.MethodPatch, "/api/lists/{listID}", user(a.renameList))
	r.Handle(http.MethodDelete, "/api/lists/{listID}", user(a.deleteList))
	r.Handle(http.MethodGet, "/api/lists/{listID}/items", user(a.getItems))
	r.Handle(http.MethodPost, "/api/lists/{listID}/items", user(a.addItem))
	r.Handle(http.MethodDelete, "/api/lists/{listID}/items/{movieID}", user(a.removeItem))
	r.Handle(http.MethodPost, "/api/lists/{listID}/toggle/{movieID}", user(a.toggle))
	r.Handle(http.MethodGet, "/api/membership/{movieID}", user(a.membership))

	r.Handle(http.MethodGet, "/api/movies/search", http.HandlerFunc(a.search))
	r.Handle(http.MethodGet, "/api/movies/{imdbID}", http.HandlerFunc(a.details))
}

func (a *API) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type credentials struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

type sessionResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

func (a *API) signUp(w http.ResponseWriter, r *http.Request) {
	var body credentials
	if !decode(w, r, &body) {
		return
	}

	user, err := a.accounts.SignUp(r.Context(), body.Email, body.Password, body.DisplayName)
	if err != nil {
		writeError(w, err)
		return
	}
	a.issue(w, http.StatusCreated, user)
}

func (a *API) login(w http.ResponseWriter, r *http.Request) {
	var body credentials
	if !decode(w, r, &body) {
		return
	}

	user, err := a.accounts.SignIn(r.Context(), body.Email, body.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	a.issue(w, http.StatusOK, user)
}

func (a *API) issue(w http.ResponseWriter, status int, user *models.User) {
	token, err := a.tokens.Issue(user.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, status, sessionResponse{User: user, Token: token})
}

func (a *API) logout(w http.ResponseWriter, r *http.Request) {
	a.tokens.Revoke(bearerToken(r))
	w.WriteHeader(http.StatusNoContent)
}

type listsResponse struct {
	Lists []*models.List `json:"lists"`
}

func (a *API) getLists(w http.ResponseWriter, r *http.Request) {
	uid, _ := UserFromContext(r.Context())
	a.writeLists(w, r, uid, http.StatusOK)
}

// writeLists re-reads the user's lists after a mutation.
func (a *API) writeLists(w http.ResponseWriter, r *http.Request, uid string, status int) {
	all, err := a.lists.Lists(r.Context(), uid)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, status, listsResponse{Lists: all})
}

type listRequest struct {
	Name string `json:"name"`
}

func (a *API) createList(w http.ResponseWriter, r *http.Request) {
	uid, _ := UserFromContext(r.Context())

	var body listRequest
	if !decode(w, r, &body) {
		return
	}

	if _, err := a.lists.CreateList(r.Context(), uid, body.Name); err != nil {
		writeError(w, err)
		return
	}
	a.writeLists(w, r, uid, http.StatusCreated)
}

func (a *API) renameList(w http.ResponseWriter, r *http.Request) {
	uid, _ := UserFromContext(r.Context())
	listID := PathParam(r, "listID")

	var body listRequest
	if !decode(w, r, &body) {
		return
	}

	if err := a.lists.RenameList(r.Context(), uid, listID, body.Name); err != nil {
		writeError(w, err)
		return
	}

	list, err := a.lists.Store().GetList(r.Context(), uid, listID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (a *API) deleteList(w http.ResponseWriter, r *http.Request) {
	uid, _ := UserFromContext(r.Context())

	if err := a.lists.DeleteList(r.Context(), uid, PathParam(r, "listID")); err != nil {
		writeError(w, err)
		return
	}
	a.writeLists(w, r, uid, http.StatusOK)
}

type itemsResponse struct {
	ListID string             `json:"listId"`
	Items  []*models.ListItem `json:"items"`
}

func (a *API) getItems(w http.ResponseWriter, r *http.Request) {
	uid, _ := UserFromContext(r.Context())
	a.writeItems(w, r, uid, PathParam(r, "listID"), http.StatusOK)
}

func (a *API) writeItems(w http.ResponseWriter, r *http.Request, uid, listID string, status int) {
	items, err := a.lists.Items(r.Context(), uid, listID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, status, itemsResponse{ListID: listID, Items: items})
}

type addItemRequest struct {
	MovieID string        `json:"movieId"`
	Movie   *models.Movie `json:"movie"`
}

func (a *API) addItem(w http.ResponseWriter, r *http.Request) {
	uid, _ := UserFromContext(r.Context())
	listID := PathParam(r, "listID")

	var body addItemRequest
	if !decode(w, r, &body) {
		return
	}

	var movie models.Movie
	if body.Movie != nil && body.Movie.IMDbID != "" {
		movie = *body.Movie
	} else {
		resolved, err := a.resolveMovie(r.Context(), body.MovieID)
		if err != nil {
			writeError(w, err)
			return
		}
		movie = resolved
	}

	if _, err := a.lists.AddMovieToList(r.Context(), uid, listID, movie); err != nil {
		writeError(w, err)
		return
	}
	a.writeItems(w, r, uid, listID, http.StatusCreated)
}

func (a *API) removeItem(w http.ResponseWriter, r *http.Request) {
	uid, _ := UserFromContext(r.Context())
	listID := PathParam(r, "listID")

	if err := a.lists.RemoveMovieFromList(r.Context(), uid, listID, PathParam(r, "movieID")); err != nil {
		writeError(w, err)
		return
	}
	a.writeItems(w, r, uid, listID, http.StatusOK)
}

type membershipResponse struct {
	MovieID    string            `json:"movieId"`
	Lists      []*models.List    `json:"lists"`
	Membership models.Membership `json:"membership"`
}

func (a *API) toggle(w http.ResponseWriter, r *http.Request) {
	uid, _ := UserFromContext(r.Context())
	movieID := PathParam(r, "movieID")

	movie, err := a.resolveMovie(r.Context(), movieID)
	if err != nil {
		writeError(w, err)
		return
	}

	if _, err := a.lists.ToggleMovie(r.Context(), uid, PathParam(r, "listID"), movie); err != nil {
		writeError(w, err)
		return
	}
	a.writeMembership(w, r, uid, movieID)
}

func (a *API) membership(w http.ResponseWriter, r *http.Request) {
	uid, _ := UserFromContext(r.Context())
	a.writeMembership(w, r, uid, PathParam(r, "movieID"))
}

func (a *API) writeMembership(w http.ResponseWriter, r *http.Request, uid, movieID string) {
	all, membership, err := a.lists.MembershipFor(r.Context(), uid, movieID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, membershipResponse{MovieID: movieID, Lists: all, Membership: membership})
}

// resolveMovie fetches the movie record to snapshot, or returns a bare id without a provider.
func (a *API) resolveMovie(ctx context.Context, movieID string) (models.Movie, error) {
	movieID = strings.TrimSpace(movieID)
	if movieID == "" {
		return models.Movie{}, fmt.Errorf("%w: movieId is required", shared.ErrValidation)
	}
	if a.movies == nil {
		return models.Movie{IMDbID: movieID}, nil
	}

	movie, err := a.movies.Details(ctx, movieID)
	if err != nil {
		return models.Movie{}, err
	}
	return *movie, nil
}

func (a *API) search(w http.ResponseWriter, r *http.Request) {
	if a.movies == nil {
		writeError(w, fmt.Errorf("%w: no movie provider configured", shared.ErrServiceUnavailable))
		return
	}

	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))

	result, err := a.movies.Search(r.Context(), services.SearchQuery{
		Query: q.Get("q"),
		Page:  page,
		Type:  q.Get("type"),
		Year:  q.Get("year"),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (a *API) details(w http.ResponseWriter, r *http.Request) {
	if a.movies == nil {
		writeError(w, fmt.Errorf("%w: no movie provider configured", shared.ErrServiceUnavailable))
		return
	}

	movie, err := a.movies.Details(r.Context(), PathParam(r, "imdbID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, movie)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		writeError(w, fmt.Errorf("%w: invalid JSON body: %w", shared.ErrInvalidInput, err))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// StatusFor maps an error to its HTTP status and kind label.
func StatusFor(err error) (int, string) {
	switch kind := lists.Kind(err); kind {
	case lists.KindValidation:
		return http.StatusBadRequest, kind
	case lists.KindDuplicate:
		return http.StatusConflict, kind
	case lists.KindProtected:
		return http.StatusForbidden, kind
	case lists.KindNotFound:
		return http.StatusNotFound, kind
	case lists.KindStore:
		return http.StatusInternalServerError, kind
	}

	switch {
	case errors.Is(err, shared.ErrNotAuthenticated), errors.Is(err, shared.ErrInvalidCredentials),
		errors.Is(err, shared.ErrAuthFailed):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, shared.ErrEmailInUse):
		return http.StatusConflict, "conflict"
	case errors.Is(err, shared.ErrWeakPassword), errors.Is(err, shared.ErrInvalidEmail),
		errors.Is(err, shared.ErrInvalidInput):
		return http.StatusBadRequest, "invalid_input"
	case errors.Is(err, shared.ErrMovieNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, shared.ErrAPIRequest), errors.Is(err, shared.ErrServiceUnavailable):
		return http.StatusBadGateway, "provider"
	}
	return http.StatusInternalServerError, lists.KindUnknown
}

func writeError(w http.ResponseWriter, err error) {
	status, kind := StatusFor(err)
	writeJSON(w, status, errorResponse{Error: err.Error(), Kind: kind})
}

var _ Accounts = (*auth.Accounts)(nil)
