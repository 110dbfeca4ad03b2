// Package model holds the Bubble Tea models of the interactive CLI commands.
package model

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/bnema/webhub/internal/cli/styles"
)

// PickerLoader returns the webapps offered by the picker.
type PickerLoader func() ([]styles.WebAppItem, error)

// PickerModel is the Bubble Tea model of `webhub pick`.
type PickerModel struct {
	list   list.Model
	search textinput.Model
	help   help.Model
	keys   styles.PickerKeyMap

	allItems    []styles.WebAppItem
	selected    string
	searchQuery string
	width       int
	height      int
	err         error

	load  PickerLoader
	theme *styles.Theme
}

// NewPickerModel creates a picker that fills itself with load.
func NewPickerModel(theme *styles.Theme, load PickerLoader) PickerModel {
	search := styles.NewSearchInput(theme)
	search.Focus()

	m := PickerModel{
		search: search,
		help:   styles.NewStyledHelp(theme),
		keys:   styles.DefaultPickerKeyMap(),
		load:   load,
		theme:  theme,
		width:  80,
		height: 24,
	}
	m.updateList()
	return m
}

type pickerLoadedMsg struct {
	items []styles.WebAppItem
	err   error
}

// Init implements tea.Model.
func (m PickerModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.loadItems)
}

func (m PickerModel) loadItems() tea.Msg {
	items, err := m.load()
	return pickerLoadedMsg{items: items, err: err}
}

// Update implements tea.Model.
func (m PickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.updateList()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Cancel):
			return m, tea.Quit

		case key.Matches(msg, m.keys.Open):
			if item, ok := m.list.SelectedItem().(styles.WebAppItem); ok {
				m.selected = item.ID
			}
			return m, tea.Quit

		case key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.Down):
			var cmd tea.Cmd
			m.list, cmd = m.list.Update(msg)
			cmds = append(cmds, cmd)

		default:
			var cmd tea.Cmd
			m.search, cmd = m.search.Update(msg)
			cmds = append(cmds, cmd)

			if m.search.Value() != m.searchQuery {
				m.searchQuery = m.search.Value()
				m.updateList()
			}
		}

	case pickerLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.allItems = msg.items
			m.updateList()
		}
	}

	return m, tea.Batch(cmds...)
}

func (m *PickerModel) updateList() {
	items := FilterItems(m.allItems, m.searchQuery)

	// search box and help
	listHeight := m.height - 6
	if listHeight < 5 {
		listHeight = 5
	}
	m.list = styles.NewWebAppList(m.theme, items, m.width, listHeight)
}

// FilterItems keeps the items fuzzily matching query, best match first.
// An empty query keeps every item in its original order.
func FilterItems(items []styles.WebAppItem, query string) []styles.WebAppItem {
	if query == "" {
		return items
	}
	targets := make([]string, len(items))
	for i, item := range items {
		targets[i] = item.FilterValue()
	}
	matches := fuzzy.Find(query, targets)
	out := make([]styles.WebAppItem, 0, len(matches))
	for _, match := range matches {
		out = append(out, items[match.Index])
	}
	return out
}

// View implements tea.Model.
func (m PickerModel) View() string {
	t := m.theme

	listView := m.list.View()
	switch {
	case m.err != nil:
		listView = t.ErrorStyle.Render("Error: " + m.err.Error())
	case len(m.allItems) == 0:
		listView = t.Subtle.Render("No webapps registered.")
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		t.InputFocused.Render(m.search.View()),
		"",
		listView,
		"",
		m.help.View(m.keys),
	)
}

// SelectedID returns the id of the webapp chosen by the user, or "".
func (m PickerModel) SelectedID() string {
	return m.selected
}

var _ tea.Model = (*PickerModel)(nil)
