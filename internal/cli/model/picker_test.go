package model

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/webhub/internal/cli/styles"
)

func testItems() []styles.WebAppItem {
	return []styles.WebAppItem{
		{ID: "a", Name: "Mail", URL: "https://mail.example.com", Shortcut: "CommandOrControl+1"},
		{ID: "b", Name: "Chat", URL: "https://chat.example.com", Open: true},
		{ID: "c", Name: "Calendar", URL: "https://cal.example.com"},
	}
}

func loaded(t *testing.T, m PickerModel, items []styles.WebAppItem, err error) PickerModel {
	t.Helper()
	next, _ := m.Update(pickerLoadedMsg{items: items, err: err})
	pm, ok := next.(PickerModel)
	require.True(t, ok)
	return pm
}

func press(t *testing.T, m PickerModel, msg tea.KeyMsg) PickerModel {
	t.Helper()
	next, _ := m.Update(msg)
	pm, ok := next.(PickerModel)
	require.True(t, ok)
	return pm
}

func TestFilterItems(t *testing.T) {
	items := testItems()

	assert.Equal(t, items, FilterItems(items, ""))

	got := FilterItems(items, "chat")
	require.NotEmpty(t, got)
	assert.Equal(t, "b", got[0].ID)

	assert.Empty(t, FilterItems(items, "zzzz"))
}

func TestPicker_EnterSelectsHighlightedWebApp(t *testing.T) {
	m := loaded(t, NewPickerModel(styles.NewTheme(), nil), testItems(), nil)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, "b", m.SelectedID())
}

func TestPicker_TypingFilters(t *testing.T) {
	m := loaded(t, NewPickerModel(styles.NewTheme(), nil), testItems(), nil)

	for _, r := range "cal" {
		m = press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, "c", m.SelectedID())
}

func TestPicker_CancelSelectsNothing(t *testing.T) {
	m := loaded(t, NewPickerModel(styles.NewTheme(), nil), testItems(), nil)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Empty(t, next.(PickerModel).SelectedID())
}

func TestPicker_ShowsLoadError(t *testing.T) {
	m := loaded(t, NewPickerModel(styles.NewTheme(), nil), nil, errors.New("config unreadable"))
	assert.Contains(t, m.View(), "config unreadable")
}

func TestPicker_InitLoadsItems(t *testing.T) {
	m := NewPickerModel(styles.NewTheme(), func() ([]styles.WebAppItem, error) {
		return testItems(), nil
	})
	msg := m.loadItems()
	m = loaded(t, m, msg.(pickerLoadedMsg).items, nil)
	assert.Contains(t, m.View(), "Mail")
}
