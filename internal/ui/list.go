package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"

	"github.com/desertthunder/reelist/internal/models"
)

var (
	_ list.Item = movieListItem{}
	_ list.Item = movieItem{}
)

// movieListItem wraps [models.List] to implement [list.Item].
type movieListItem struct {
	list *models.List
}

func (i movieListItem) FilterValue() string { return i.list.Name }
func (i movieListItem) Title() string       { return i.list.Name }
func (i movieListItem) Description() string {
	if i.list.IsDefault {
		return "default list"
	}
	return fmt.Sprintf("created %s", i.list.CreatedAt.Local().Format("Jan 2, 2006"))
}

// movieItem wraps [models.ListItem] to implement [list.Item].
type movieItem struct {
	item *models.ListItem
}

func (i movieItem) FilterValue() string { return i.item.Title }
func (i movieItem) Title() string {
	if i.item.Year == "" {
		return i.item.Title
	}
	return fmt.Sprintf("%s (%s)", i.item.Title, i.item.Year)
}
func (i movieItem) Description() string {
	desc := i.item.MovieID
	if i.item.Metadata.Director != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.item.Metadata.Director)
	}
	return desc
}
