package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/reelist/internal/models"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgListsFetched MsgKind = iota
	MsgItemsFetched
	MsgMutated
)

type listsFetched struct {
	lists []*models.List
	err   error
}

type itemsFetched struct {
	list  *models.List
	items []*models.ListItem
	err   error
}

type mutated struct {
	status string
	err    error
}

// listsFetchedMsg is the constructor for [MsgListsFetched]
func listsFetchedMsg(lists []*models.List, err error) Msg {
	return Msg{kind: MsgListsFetched, data: listsFetched{lists, err}}
}

// itemsFetchedMsg is the constructor for [MsgItemsFetched]
func itemsFetchedMsg(list *models.List, items []*models.ListItem, err error) Msg {
	return Msg{kind: MsgItemsFetched, data: itemsFetched{list, items, err}}
}

// mutatedMsg is the constructor for [MsgMutated]
func mutatedMsg(status string, err error) Msg {
	return Msg{kind: MsgMutated, data: mutated{status, err}}
}
