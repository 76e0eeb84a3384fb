package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/reelist/internal/models"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	ListsView ViewState = iota
	ItemsView
	InputView
	ConfirmView
)

// ListService is the part of the list service the TUI drives.
type ListService interface {
	Lists(ctx context.Context, uid string) ([]*models.List, error)
	Items(ctx context.Context, uid, listID string) ([]*models.ListItem, error)
	CreateList(ctx context.Context, uid, name string) (string, error)
	RenameList(ctx context.Context, uid, listID, newName string) error
	DeleteList(ctx context.Context, uid, listID string) error
	RemoveMovieFromList(ctx context.Context, uid, listID, movieID string) error
}

// pending is a mutation waiting on input or confirmation.
type pending struct {
	prompt string
	// run performs the mutation with the entered text (empty for confirmations)
	run  func(ctx context.Context, text string) (string, error)
	from ViewState
}

// Model represents the TUI application state.
type Model struct {
	ctx       context.Context
	svc       ListService
	uid       string
	view      ViewState
	width     int
	height    int
	listsList list.Model
	itemsList list.Model
	lists     []*models.List
	current   *models.List
	input     textinput.Model
	pending   *pending
	status    string
	failed    bool
	err       error
	help      help.Model
	keys      keyMap
}

// NewModel creates a TUI model for the lists owned by uid.
func NewModel(ctx context.Context, svc ListService, uid string) *Model {
	input := textinput.New()
	input.CharLimit = models.MaxListNameLength
	input.Placeholder = "List name"

	return &Model{
		ctx:       ctx,
		svc:       svc,
		uid:       uid,
		view:      ListsView,
		listsList: newList("My Lists", nil),
		itemsList: newList("", nil),
		input:     input,
		help:      help.New(),
		keys:      newKeyMap(),
	}
}

func newList(title string, items []list.Item) list.Model {
	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	l.SetShowHelp(false)
	return l
}

// Init initializes the TUI by fetching the user's lists.
func (m *Model) Init() tea.Cmd {
	return m.fetchLists()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.listsList.SetSize(msg.Width-4, msg.Height-8)
		m.itemsList.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case tea.KeyMsg:
		if m.err != nil {
			return m, tea.Quit
		}
		switch m.view {
		case ListsView:
			return m.handleListsKeys(msg)
		case ItemsView:
			return m.handleItemsKeys(msg)
		case InputView:
			return m.handleInputKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateLists(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgListsFetched:
		data := msg.data.(listsFetched)
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		m.lists = data.lists
		items := make([]list.Item, len(data.lists))
		for i, l := range data.lists {
			items[i] = movieListItem{list: l}
		}
		cursor := m.listsList.Index()
		cmd := m.listsList.SetItems(items)
		m.listsList.Select(min(cursor, max(len(items)-1, 0)))
		return m, cmd

	case MsgItemsFetched:
		data := msg.data.(itemsFetched)
		if data.err != nil {
			m.setStatus("", data.err)
			m.view = ListsView
			m.current = nil
			return m, m.fetchLists()
		}
		m.current = data.list
		items := make([]list.Item, len(data.items))
		for i, item := range data.items {
			items[i] = movieItem{item: item}
		}
		cursor := m.itemsList.Index()
		m.itemsList.Title = fmt.Sprintf("Movies in '%s'", data.list.Name)
		cmd := m.itemsList.SetItems(items)
		m.itemsList.Select(min(cursor, max(len(items)-1, 0)))
		m.view = ItemsView
		return m, cmd

	case MsgMutated:
		data := msg.data.(mutated)
		m.setStatus(data.status, data.err)
		if m.view == ItemsView && m.current != nil {
			return m, m.fetchItems(m.current)
		}
		return m, m.fetchLists()
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress any key to quit", m.err))
	}

	switch m.view {
	case ListsView:
		return m.renderLists()
	case ItemsView:
		return m.renderItems()
	case InputView:
		return m.renderInput()
	case ConfirmView:
		return m.renderConfirm()
	default:
		return ""
	}
}

func (m *Model) handleListsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.listsList.FilterState() == list.Filtering {
		return m.updateLists(msg)
	}

	selected := m.selectedList()
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.enter):
		if selected != nil {
			m.itemsList.Select(0)
			return m, m.fetchItems(selected)
		}
		return m, nil
	case key.Matches(msg, m.keys.create):
		return m, m.prompt("New list name", "", func(ctx context.Context, name string) (string, error) {
			if _, err := m.svc.CreateList(ctx, m.uid, name); err != nil {
				return "", err
			}
			return "Created list", nil
		})
	case key.Matches(msg, m.keys.rename):
		if selected == nil {
			return m, nil
		}
		return m, m.prompt(fmt.Sprintf("Rename '%s'", selected.Name), selected.Name, func(ctx context.Context, name string) (string, error) {
			if err := m.svc.RenameList(ctx, m.uid, selected.ID, name); err != nil {
				return "", err
			}
			return "Renamed list", nil
		})
	case key.Matches(msg, m.keys.delete):
		if selected == nil {
			return m, nil
		}
		m.confirm(fmt.Sprintf("Delete '%s' and all of its movies?", selected.Name), func(ctx context.Context, _ string) (string, error) {
			if err := m.svc.DeleteList(ctx, m.uid, selected.ID); err != nil {
				return "", err
			}
			return fmt.Sprintf("Deleted '%s'", selected.Name), nil
		})
		return m, nil
	}

	return m.updateLists(msg)
}

func (m *Model) handleItemsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.itemsList.FilterState() == list.Filtering {
		return m.updateLists(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = ListsView
		m.current = nil
		return m, m.fetchLists()
	case key.Matches(msg, m.keys.delete):
		selected, ok := m.itemsList.SelectedItem().(movieItem)
		if !ok {
			return m, nil
		}
		listID := m.current.ID
		m.confirm(fmt.Sprintf("Remove '%s' from '%s'?", selected.item.Title, m.current.Name), func(ctx context.Context, _ string) (string, error) {
			if err := m.svc.RemoveMovieFromList(ctx, m.uid, listID, selected.item.MovieID); err != nil {
				return "", err
			}
			return fmt.Sprintf("Removed '%s'", selected.item.Title), nil
		})
		return m, nil
	}

	return m.updateLists(msg)
}

func (m *Model) handleInputKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		m.cancel()
		return m, nil
	case tea.KeyEnter:
		return m, m.submit(m.input.Value())
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.yes):
		return m, m.submit("")
	case key.Matches(msg, m.keys.no), key.Matches(msg, m.keys.quit):
		m.cancel()
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case ListsView:
		m.listsList, cmd = m.listsList.Update(msg)
	case ItemsView:
		m.itemsList, cmd = m.itemsList.Update(msg)
	}
	return m, cmd
}

func (m *Model) selectedList() *models.List {
	if selected, ok := m.listsList.SelectedItem().(movieListItem); ok {
		return selected.list
	}
	return nil
}

func (m *Model) prompt(title, value string, run func(context.Context, string) (string, error)) tea.Cmd {
	m.pending = &pending{prompt: title, run: run, from: m.view}
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.view = InputView
	return m.input.Focus()
}

func (m *Model) confirm(question string, run func(context.Context, string) (string, error)) {
	m.pending = &pending{prompt: question, run: run, from: m.view}
	m.view = ConfirmView
}

func (m *Model) cancel() {
	if m.pending != nil {
		m.view = m.pending.from
	}
	m.pending = nil
	m.input.Blur()
}

// submit runs the pending mutation and returns to the view it started from.
func (m *Model) submit(text string) tea.Cmd {
	p := m.pending
	m.cancel()
	if p == nil {
		return nil
	}

	ctx := m.ctx
	return func() tea.Msg {
		status, err := p.run(ctx, text)
		return mutatedMsg(status, err)
	}
}

func (m *Model) setStatus(status string, err error) {
	m.failed = err != nil
	if err != nil {
		status = err.Error()
	}
	m.status = status
}

func (m *Model) fetchLists() tea.Cmd {
	ctx, uid := m.ctx, m.uid
	return func() tea.Msg {
		lists, err := m.svc.Lists(ctx, uid)
		return listsFetchedMsg(lists, err)
	}
}

func (m *Model) fetchItems(l *models.List) tea.Cmd {
	ctx, uid := m.ctx, m.uid
	return func() tea.Msg {
		items, err := m.svc.Items(ctx, uid, l.ID)
		return itemsFetchedMsg(l, items, err)
	}
}

func (m *Model) renderLists() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.create, m.keys.rename, m.keys.delete, m.keys.quit}
	return m.withFooter(m.listsList.View(), helpKeys)
}

func (m *Model) renderItems() string {
	remove := key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "remove"))
	helpKeys := []key.Binding{remove, m.keys.back, m.keys.quit}
	return m.withFooter(m.itemsList.View(), helpKeys)
}

func (m *Model) renderInput() string {
	title := styles.prompt.Render(m.pending.prompt)
	save := key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save"))
	helpView := m.help.ShortHelpView([]key.Binding{save, m.keys.back})
	return fmt.Sprintf("%s\n%s\n\n%s", title, m.input.View(), helpView)
}

func (m *Model) renderConfirm() string {
	title := styles.confirm.Render(m.pending.prompt)
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.yes, m.keys.no})
	return fmt.Sprintf("%s\n%s", title, helpView)
}

func (m *Model) withFooter(body string, helpKeys []key.Binding) string {
	footer := m.help.ShortHelpView(helpKeys)
	if s := styles.status(m.status, m.failed); s != "" {
		footer = s + "\n" + footer
	}
	return fmt.Sprintf("%s\n\n%s", body, footer)
}
