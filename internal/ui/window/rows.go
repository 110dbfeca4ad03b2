package window

import (
	"net/url"

	"github.com/bnema/webhub/internal/domain/entity"
)

// Row is what the main window shows for one webapp.
type Row struct {
	ID       string
	Name     string
	Host     string
	Shortcut string
	Status   string
}

// Window status labels.
const (
	StatusVisible = "open"
	StatusHidden  = "hidden"
)

// BuildRows pairs webapps, already in display order, with their live windows.
func BuildRows(apps []entity.WebApp, windows []entity.WindowState) []Row {
	live := make(map[string]bool, len(windows))
	for _, w := range windows {
		live[w.WebAppID] = w.Visible
	}

	rows := make([]Row, 0, len(apps))
	for i := range apps {
		app := &apps[i]
		row := Row{
			ID:       app.ID,
			Name:     app.Name,
			Host:     hostOf(app.URL),
			Shortcut: app.Shortcut,
		}
		if visible, ok := live[app.ID]; ok {
			row.Status = StatusHidden
			if visible {
				row.Status = StatusVisible
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	return u.Host
}

// IndexOf returns the position of id in rows, or -1.
func IndexOf(rows []Row, id string) int {
	for i := range rows {
		if rows[i].ID == id {
			return i
		}
	}
	return -1
}
