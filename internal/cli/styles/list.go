package styles

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	cursorSelected = "▸ "
	cursorEmpty    = "  "
)

// WebAppItem is a webapp entry of the picker list.
type WebAppItem struct {
	ID       string
	Name     string
	URL      string
	Shortcut string
	Open     bool
}

// FilterValue implements list.Item.
func (i WebAppItem) FilterValue() string {
	return i.Name + " " + i.URL
}

// WebAppDelegate renders webapp items with theme styling.
type WebAppDelegate struct {
	Theme *Theme
}

func (d WebAppDelegate) Height() int { return 2 }

func (d WebAppDelegate) Spacing() int { return 0 }

func (d WebAppDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

// Render renders a single list item.
func (d WebAppDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	wi, ok := item.(WebAppItem)
	if !ok {
		return
	}

	t := d.Theme
	isSelected := index == m.Index()
	const (
		maxNameLength  = 50
		maxURLLength   = 60
		ellipsisLength = 3
	)

	name := wi.Name
	if len(name) > maxNameLength {
		name = name[:maxNameLength-ellipsisLength] + "..."
	}
	url := wi.URL
	if len(url) > maxURLLength {
		url = url[:maxURLLength-ellipsisLength] + "..."
	}

	cursor := cursorEmpty
	titleStyle := t.ListItemTitle
	urlStyle := t.ListItemDesc
	if isSelected {
		cursor = cursorSelected
		titleStyle = titleStyle.Foreground(t.Accent).Bold(true)
		urlStyle = urlStyle.Foreground(t.Text)
	}

	var badges []string
	if wi.Shortcut != "" {
		badges = append(badges, t.BadgeMuted.Render(wi.Shortcut))
	}
	if wi.Open {
		badges = append(badges, t.Badge.Render("open"))
	}

	line1 := lipgloss.JoinHorizontal(
		lipgloss.Left,
		t.Highlight.Render(cursor),
		titleStyle.Render(name),
	)
	line2 := lipgloss.JoinHorizontal(
		lipgloss.Left,
		strings.Repeat(" ", 3),
		urlStyle.Render(url),
		" ",
		strings.Join(badges, " "),
	)

	_, _ = fmt.Fprintf(w, "%s\n%s", line1, line2)
}

// NewWebAppList creates a themed list for webapp items.
func NewWebAppList(theme *Theme, items []WebAppItem, width, height int) list.Model {
	listItems := make([]list.Item, len(items))
	for i, item := range items {
		listItems[i] = item
	}

	l := list.New(listItems, WebAppDelegate{Theme: theme}, width, height)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowFilter(false)
	l.SetShowHelp(false)
	l.SetShowPagination(true)

	l.Styles.PaginationStyle = lipgloss.NewStyle().Foreground(theme.Muted)
	l.Styles.ActivePaginationDot = lipgloss.NewStyle().Foreground(theme.Accent)
	l.Styles.InactivePaginationDot = lipgloss.NewStyle().Foreground(theme.Muted)

	return l
}
