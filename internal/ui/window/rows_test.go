package window

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bnema/webhub/internal/domain/entity"
)

func TestBuildRows(t *testing.T) {
	apps := []entity.WebApp{
		{ID: "a", Name: "Mail", URL: "https://mail.example.com/inbox", Shortcut: "CommandOrControl+1"},
		{ID: "b", Name: "Chat", URL: "https://chat.example.com"},
		{ID: "c", Name: "Docs", URL: "file:///home/me/docs/index.html"},
	}
	windows := []entity.WindowState{
		{WebAppID: "b", Visible: false},
		{WebAppID: "a", Visible: true},
	}

	rows := BuildRows(apps, windows)
	assert.Equal(t, []Row{
		{ID: "a", Name: "Mail", Host: "mail.example.com", Shortcut: "CommandOrControl+1", Status: StatusVisible},
		{ID: "b", Name: "Chat", Host: "chat.example.com", Status: StatusHidden},
		{ID: "c", Name: "Docs", Host: "file:///home/me/docs/index.html"},
	}, rows)

	assert.Equal(t, 1, IndexOf(rows, "b"))
	assert.Equal(t, -1, IndexOf(rows, "ghost"))
}
