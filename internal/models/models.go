// package models defines the data model for the movie catalog
package models

import (
	"fmt"
	"time"
)

// DefaultListName is the display name of the list created with every profile.
const DefaultListName = "Favorites"

// MaxListNameLength is the maximum list name length in characters.
const MaxListNameLength = 50

// User is an account created by an authenticator. Immutable from the list core's perspective.
type User struct {
	ID           string    `json:"uid"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"displayName"`
	Provider     string    `json:"provider"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Path returns the document path of the user profile.
func (u User) Path() string {
	return "users/" + u.ID
}

// List is a named collection of movies owned by one user.
type List struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	Name      string    `json:"name"`
	IsDefault bool      `json:"isDefault"`
	IsPublic  bool      `json:"isPublic"`
	Sequence  int       `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Path returns the document path of the list.
func (l List) Path() string {
	return fmt.Sprintf("users/%s/lists/%s", l.UserID, l.ID)
}

// ListUpdate is a partial update; nil fields are left unchanged.
type ListUpdate struct {
	Name     *string `json:"name,omitempty"`
	IsPublic *bool   `json:"isPublic,omitempty"`
}

// Empty reports whether the update changes nothing.
func (u ListUpdate) Empty() bool {
	return u.Name == nil && u.IsPublic == nil
}

// ItemMetadata is the movie detail snapshot taken when the item was added.
type ItemMetadata struct {
	Plot       string `json:"plot"`
	Director   string `json:"director"`
	Actors     string `json:"actors"`
	Genre      string `json:"genre"`
	IMDbRating string `json:"imdbRating"`
}

// ListItem links a list to one external movie identifier.
type ListItem struct {
	ID       string       `json:"id"`
	UserID   string       `json:"-"`
	ListID   string       `json:"listId"`
	MovieID  string       `json:"movieId"`
	Title    string       `json:"title"`
	Year     string       `json:"year"`
	Poster   string       `json:"poster"`
	Type     string       `json:"type"`
	Metadata ItemMetadata `json:"metadata"`
	Sequence int          `json:"-"`
	AddedAt  time.Time    `json:"addedAt"`
}

// Path returns the document path of the item.
func (i ListItem) Path() string {
	return fmt.Sprintf("users/%s/lists/%s/listItems/%s", i.UserID, i.ListID, i.ID)
}

// NewListItem copies the denormalized fields of movie into an item for the given list.
func NewListItem(uid, listID string, movie Movie) *ListItem {
	return &ListItem{
		UserID:  uid,
		ListID:  listID,
		MovieID: movie.IMDbID,
		Title:   movie.Title,
		Year:    movie.Year,
		Poster:  movie.Poster,
		Type:    movie.Type,
		Metadata: ItemMetadata{
			Plot:       movie.Plot,
			Director:   movie.Director,
			Actors:     movie.Actors,
			Genre:      movie.Genre,
			IMDbRating: movie.IMDbRating,
		},
	}
}

// Movie is a record returned by the movie search/detail provider.
//
// JSON names follow the OMDb wire format.
type Movie struct {
	IMDbID     string `json:"imdbID"`
	Title      string `json:"Title"`
	Year       string `json:"Year"`
	Poster     string `json:"Poster"`
	Type       string `json:"Type"`
	Rated      string `json:"Rated,omitempty"`
	Released   string `json:"Released,omitempty"`
	Runtime    string `json:"Runtime,omitempty"`
	Genre      string `json:"Genre,omitempty"`
	Director   string `json:"Director,omitempty"`
	Actors     string `json:"Actors,omitempty"`
	Plot       string `json:"Plot,omitempty"`
	Language   string `json:"Language,omitempty"`
	Country    string `json:"Country,omitempty"`
	Awards     string `json:"Awards,omitempty"`
	IMDbRating string `json:"imdbRating,omitempty"`
}

// SearchResult is one page of provider search results.
type SearchResult struct {
	Movies       []Movie `json:"movies"`
	TotalResults int     `json:"totalResults"`
	Page         int     `json:"currentPage"`
}

// Membership maps list IDs to whether a given movie is present in that list.
type Membership map[string]bool
