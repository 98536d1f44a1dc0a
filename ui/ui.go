// Package ui is the interactive terminal interface for the watchlist.
//
// The model follows bubbletea's Elm architecture and drives a
// [watchlist.Controller]: the list view shows the account's entries,
// the form view is the add/edit modal, deletes go through an explicit
// confirmation view, and the search view lets a catalog result pre-fill
// the add form.
package ui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/aniwatch/aniwatch-server/catalog"
	"github.com/aniwatch/aniwatch-server/database/model"
	"github.com/aniwatch/aniwatch-server/watchlist"
)

// View is the screen the TUI currently shows.
type View int

const (
	WatchlistView View = iota
	FormView
	ConfirmDeleteView
	SearchView
)

// form focus positions, top to bottom.
const (
	focusTitle = iota
	focusStatus
	focusRating
)

type keyMap struct {
	add     key.Binding
	edit    key.Binding
	delete  key.Binding
	search  key.Binding
	refresh key.Binding
	back    key.Binding
	quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		add:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		edit:    key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		delete:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		search:  key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.add, k.edit, k.delete, k.search, k.refresh, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.add, k.edit, k.delete},
		{k.search, k.refresh},
		{k.back, k.quit},
	}
}

type entriesLoadedMsg struct {
	err error
}

type submitDoneMsg struct {
	err error
}

type deleteDoneMsg struct {
	err error
}

type searchDoneMsg struct {
	results []catalog.Anime
	err     error
}

// Model is the TUI application state.
type Model struct {
	ctx   context.Context
	ctrl  *watchlist.Controller
	email string

	view   View
	width  int
	height int

	entryList  list.Model
	resultList list.Model

	titleInput  textinput.Model
	ratingInput textinput.Model
	searchInput textinput.Model
	statusIndex int
	focus       int

	deleteID int64
	err      error

	help help.Model
	keys keyMap
}

// New creates the TUI model for one logged-in account.
func New(ctx context.Context, ctrl *watchlist.Controller, email string) *Model {
	title := textinput.New()
	title.Placeholder = "Title"
	title.CharLimit = 200

	rating := textinput.New()
	rating.Placeholder = "0"
	rating.CharLimit = 2

	search := textinput.New()
	search.Placeholder = "Search the catalog"
	search.CharLimit = 100

	entries := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	entries.Title = fmt.Sprintf("Watchlist of %s", email)
	entries.SetShowHelp(false)

	results := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	results.Title = "Catalog results"
	results.SetShowHelp(false)

	return &Model{
		ctx:         ctx,
		ctrl:        ctrl,
		email:       email,
		view:        WatchlistView,
		entryList:   entries,
		resultList:  results,
		titleInput:  title,
		ratingInput: rating,
		searchInput: search,
		help:        help.New(),
		keys:        newKeyMap(),
	}
}

// Init loads the watchlist from the server.
func (m *Model) Init() tea.Cmd {
	return m.loadEntries()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.entryList.SetSize(msg.Width-4, msg.Height-6)
		m.resultList.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case WatchlistView:
			return m.handleWatchlistKeys(msg)
		case FormView:
			return m.handleFormKeys(msg)
		case ConfirmDeleteView:
			return m.handleConfirmKeys(msg)
		case SearchView:
			return m.handleSearchKeys(msg)
		}

	case entriesLoadedMsg:
		m.err = msg.err
		if msg.err == nil {
			m.syncEntryList()
		}
		return m, nil

	case submitDoneMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.syncEntryList()
		m.view = WatchlistView
		return m, nil

	case deleteDoneMsg:
		m.err = msg.err
		if msg.err == nil {
			m.syncEntryList()
		}
		m.view = WatchlistView
		return m, nil

	case searchDoneMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		items := make([]list.Item, len(msg.results))
		for i, record := range msg.results {
			items[i] = resultItem{record: record}
		}
		m.resultList.SetItems(items)
		m.resultList.ResetSelected()
		return m, nil
	}

	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case WatchlistView:
		return m.renderWatchlist()
	case FormView:
		return m.renderForm()
	case ConfirmDeleteView:
		return m.renderConfirmDelete()
	case SearchView:
		return m.renderSearch()
	default:
		return ""
	}
}

func (m *Model) handleWatchlistKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "a":
		m.ctrl.OpenAdd()
		m.loadForm()
		m.view = FormView
		return m, nil
	case "e":
		if item, ok := m.entryList.SelectedItem().(entryItem); ok {
			if err := m.ctrl.OpenEdit(item.entry.ID); err != nil {
				m.err = err
				return m, nil
			}
			m.loadForm()
			m.view = FormView
		}
		return m, nil
	case "d":
		if item, ok := m.entryList.SelectedItem().(entryItem); ok {
			m.deleteID = item.entry.ID
			m.view = ConfirmDeleteView
		}
		return m, nil
	case "/":
		m.searchInput.SetValue("")
		m.searchInput.Focus()
		m.resultList.SetItems(nil)
		m.view = SearchView
		return m, nil
	case "r":
		return m, m.loadEntries()
	}

	var cmd tea.Cmd
	m.entryList, cmd = m.entryList.Update(msg)
	return m, cmd
}

func (m *Model) handleFormKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.ctrl.Cancel()
		m.err = nil
		m.view = WatchlistView
		return m, nil
	case "tab", "down":
		m.setFocus((m.focus + 1) % 3)
		return m, nil
	case "shift+tab", "up":
		m.setFocus((m.focus + 2) % 3)
		return m, nil
	case "left", "right":
		if m.focus == focusStatus {
			statuses := model.Statuses()
			if msg.String() == "right" {
				m.statusIndex = (m.statusIndex + 1) % len(statuses)
			} else {
				m.statusIndex = (m.statusIndex + len(statuses) - 1) % len(statuses)
			}
			return m, nil
		}
	case "enter":
		return m, m.submitForm()
	}

	var cmd tea.Cmd
	switch m.focus {
	case focusTitle:
		m.titleInput, cmd = m.titleInput.Update(msg)
	case focusRating:
		m.ratingInput, cmd = m.ratingInput.Update(msg)
	}
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y":
		id := m.deleteID
		return m, func() tea.Msg {
			return deleteDoneMsg{err: m.ctrl.Delete(m.ctx, id, true)}
		}
	case "n", "esc", "q":
		m.view = WatchlistView
		return m, nil
	case "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.err = nil
		m.view = WatchlistView
		return m, nil
	case "enter":
		if m.searchInput.Focused() {
			query := strings.TrimSpace(m.searchInput.Value())
			if query == "" {
				return m, nil
			}
			m.searchInput.Blur()
			return m, m.runSearch(query)
		}
		if len(m.resultList.Items()) > 0 {
			if err := m.ctrl.Pick(m.resultList.Index()); err != nil {
				m.err = err
				return m, nil
			}
			m.loadForm()
			m.view = FormView
		}
		return m, nil
	case "/":
		if !m.searchInput.Focused() {
			m.searchInput.Focus()
			return m, nil
		}
	}

	var cmd tea.Cmd
	if m.searchInput.Focused() {
		m.searchInput, cmd = m.searchInput.Update(msg)
	} else {
		m.resultList, cmd = m.resultList.Update(msg)
	}
	return m, cmd
}

// loadForm copies the controller's open form into the inputs.
func (m *Model) loadForm() {
	form := m.ctrl.Form()
	m.titleInput.SetValue(form.Title)
	m.ratingInput.SetValue(strconv.Itoa(form.Rating))
	m.statusIndex = 0
	for i, s := range model.Statuses() {
		if string(s) == form.Status {
			m.statusIndex = i
			break
		}
	}
	m.err = nil
	m.setFocus(focusTitle)
}

func (m *Model) setFocus(focus int) {
	m.focus = focus
	m.titleInput.Blur()
	m.ratingInput.Blur()
	switch focus {
	case focusTitle:
		m.titleInput.Focus()
	case focusRating:
		m.ratingInput.Focus()
	}
}

func (m *Model) syncEntryList() {
	entries := m.ctrl.Entries()
	items := make([]list.Item, len(entries))
	for i, e := range entries {
		items[i] = entryItem{entry: e}
	}
	m.entryList.SetItems(items)
}

func (m *Model) loadEntries() tea.Cmd {
	return func() tea.Msg {
		return entriesLoadedMsg{err: m.ctrl.Refresh(m.ctx)}
	}
}

func (m *Model) submitForm() tea.Cmd {
	rating, err := strconv.Atoi(strings.TrimSpace(m.ratingInput.Value()))
	if m.ratingInput.Value() != "" && err != nil {
		m.err = watchlist.ErrInvalidRating
		return nil
	}
	status := string(model.Statuses()[m.statusIndex])
	m.ctrl.SetForm(m.titleInput.Value(), status, rating)
	return func() tea.Msg {
		return submitDoneMsg{err: m.ctrl.Submit(m.ctx)}
	}
}

func (m *Model) runSearch(query string) tea.Cmd {
	return func() tea.Msg {
		results, err := m.ctrl.Search(m.ctx, query)
		return searchDoneMsg{results: results, err: err}
	}
}

func (m *Model) renderWatchlist() string {
	view := m.entryList.View()
	if m.err != nil {
		view += "\n" + errStyle.Render(m.err.Error())
	}
	return fmt.Sprintf("%s\n\n%s", view, m.help.ShortHelpView(m.keys.ShortHelp()))
}

func (m *Model) renderForm() string {
	title := "Add anime"
	if m.ctrl.Mode() == watchlist.ModeEdit {
		title = "Edit anime"
	}

	statuses := model.Statuses()
	status := string(statuses[m.statusIndex])
	statusLine := fmt.Sprintf("  Status: %s", status)
	if m.focus == focusStatus {
		statusLine = fmt.Sprintf("> Status: %s", selectedStyle.Render("< "+status+" >"))
	}

	lines := []string{
		titleStyle.Render(title),
		"",
		fmt.Sprintf("%s Title:  %s", cursor(m.focus == focusTitle), m.titleInput.View()),
		statusLine,
		fmt.Sprintf("%s Rating: %s", cursor(m.focus == focusRating), m.ratingInput.View()),
	}
	if m.err != nil {
		lines = append(lines, "", errStyle.Render(m.err.Error()))
	}
	lines = append(lines, "", helpStyle.Render("tab: next field • enter: save • esc: cancel"))
	return strings.Join(lines, "\n")
}

func (m *Model) renderConfirmDelete() string {
	question := titleStyle.Render(fmt.Sprintf("Delete entry %d from your watchlist?", m.deleteID))
	return fmt.Sprintf("%s\n\n%s", question, helpStyle.Render("y: delete • n: keep"))
}

func (m *Model) renderSearch() string {
	lines := []string{
		titleStyle.Render("Catalog search"),
		m.searchInput.View(),
		"",
	}
	if len(m.resultList.Items()) > 0 {
		lines = append(lines, m.resultList.View())
	}
	if m.err != nil {
		lines = append(lines, errStyle.Render(m.err.Error()))
	}
	lines = append(lines, "", helpStyle.Render("enter: search/pick • /: edit query • esc: back"))
	return strings.Join(lines, "\n")
}

func cursor(focused bool) string {
	if focused {
		return ">"
	}
	return " "
}
