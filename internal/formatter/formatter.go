// package formatter renders lists, items and movies as plain text for the CLI
package formatter

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/desertthunder/reelist/internal/models"
	"github.com/desertthunder/reelist/internal/shared"
)

const timeLayout = "2006-01-02 15:04"

// FormatLists renders a user's lists in display order, marking the default list.
func FormatLists(lists []*models.List) []byte {
	var buf bytes.Buffer

	if len(lists) == 0 {
		buf.WriteString("No lists\n")
		return buf.Bytes()
	}

	for i, list := range lists {
		marker := ""
		if list.IsDefault {
			marker = " (default)"
		}
		buf.WriteString(fmt.Sprintf("%d. %s%s [%s]\n", i+1, list.Name, marker, list.ID))
	}
	return buf.Bytes()
}

// FormatItems renders the items of list, newest first as returned by the store.
func FormatItems(list *models.List, items []*models.ListItem) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("List: %s\n", list.Name))
	buf.WriteString(fmt.Sprintf("Movies: %d\n\n", len(items)))

	for i, item := range items {
		buf.WriteString(fmt.Sprintf("%d. %s (%s) [%s] added %s\n",
			i+1, item.Title, orNA(item.Year), item.MovieID, item.AddedAt.Local().Format(timeLayout)))
	}
	return buf.Bytes()
}

// FormatSearch renders one page of search results.
func FormatSearch(result *models.SearchResult) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Results: %d (page %d)\n\n", result.TotalResults, result.Page))
	for _, movie := range result.Movies {
		buf.WriteString(fmt.Sprintf("%s  %s (%s) %s\n", movie.IMDbID, movie.Title, orNA(movie.Year), movie.Type))
	}
	return buf.Bytes()
}

// FormatMovie renders a movie detail record, skipping empty fields.
func FormatMovie(movie *models.Movie) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("%s (%s)\n", movie.Title, orNA(movie.Year)))
	for _, field := range [][2]string{
		{"IMDb ID", movie.IMDbID},
		{"Rated", movie.Rated},
		{"Released", movie.Released},
		{"Runtime", movie.Runtime},
		{"Genre", movie.Genre},
		{"Director", movie.Director},
		{"Actors", movie.Actors},
		{"Rating", movie.IMDbRating},
		{"Plot", movie.Plot},
	} {
		if field[1] == "" || field[1] == "N/A" {
			continue
		}
		buf.WriteString(fmt.Sprintf("%s: %s\n", field[0], field[1]))
	}
	return buf.Bytes()
}

// FormatMembership renders a checkbox per list showing whether movieID is in it.
func FormatMembership(movieID string, lists []*models.List, membership models.Membership) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Movie: %s\n", movieID))
	for _, list := range lists {
		check := " "
		if membership[list.ID] {
			check = "x"
		}
		buf.WriteString(fmt.Sprintf("[%s] %s\n", check, list.Name))
	}
	return buf.Bytes()
}

// FormatUser renders the signed-in user.
func FormatUser(user *models.User) []byte {
	name := user.DisplayName
	if name == "" {
		name = user.Email
	}
	return fmt.Appendf(nil, "Signed in as %s <%s> via %s\n", name, user.Email, user.Provider)
}

// ToJSON renders v as indented JSON followed by a newline.
func ToJSON(v any) ([]byte, error) {
	data, err := shared.MarshalJSON(v, true)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return append(data, '\n'), nil
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}
